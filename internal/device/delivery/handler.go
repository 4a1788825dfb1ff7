package delivery

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"sentry-backend/internal/device/dto"
	"sentry-backend/internal/device/usecase"

	"github.com/gin-gonic/gin"
)

// TestNotifier sends the fixed verification push to one user
type TestNotifier interface {
	SendTest(ctx context.Context, userID string) (bool, string)
}

type DeviceHandler struct {
	deviceUsecase usecase.DeviceUsecase
	testNotifier  TestNotifier
}

func NewDeviceHandler(deviceUsecase usecase.DeviceUsecase, testNotifier TestNotifier) *DeviceHandler {
	return &DeviceHandler{
		deviceUsecase: deviceUsecase,
		testNotifier:  testNotifier,
	}
}

// ReceiveDeviceData ingests one sensor reading. The response is always
// HTTP 200 with {success, message} so device firmware stays simple.
func (h *DeviceHandler) ReceiveDeviceData(c *gin.Context) {
	var req dto.DeviceDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, dto.DeviceDataResponse{Success: false, Message: "Invalid payload"})
		return
	}

	if err := h.deviceUsecase.IngestSensorData(&req); err != nil {
		log.Printf("[ERROR] Error saving device data: %v", err)
		c.JSON(http.StatusOK, dto.DeviceDataResponse{Success: false, Message: "Failed to save data"})
		return
	}

	c.JSON(http.StatusOK, dto.DeviceDataResponse{Success: true, Message: "Data received"})
}

// CrashAlert runs the Tier 2 confirmation pipeline for a threshold alert
func (h *DeviceHandler) CrashAlert(c *gin.Context) {
	var req dto.CrashAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid crash alert payload"})
		return
	}

	resp, err := h.deviceUsecase.ProcessCrashAlert(c.Request.Context(), c.GetString("userID"), &req)
	if err != nil {
		log.Printf("[ERROR] Error processing crash alert: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process crash alert"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCrashEvents lists stored crash events, newest first
func (h *DeviceHandler) GetCrashEvents(c *gin.Context) {
	limit := 50
	offset := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	events, err := h.deviceUsecase.ListCrashEvents(c.GetString("userID"), c.Query("device_id"), limit, offset)
	if err != nil {
		log.Printf("[ERROR] Error retrieving crash events: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve crash events"})
		return
	}

	c.JSON(http.StatusOK, dto.CrashEventsResponse{
		Events: events,
		Limit:  limit,
		Offset: offset,
	})
}

// SubmitCrashFeedback records the owner's verdict on a confirmed crash
func (h *DeviceHandler) SubmitCrashFeedback(c *gin.Context) {
	var req dto.CrashFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid feedback payload"})
		return
	}

	err := h.deviceUsecase.SubmitCrashFeedback(c.Param("id"), &req)
	switch {
	case errors.Is(err, usecase.ErrEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Crash event not found"})
	case errors.Is(err, usecase.ErrInvalidFeedback):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		log.Printf("[ERROR] Error submitting crash feedback: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit feedback"})
	default:
		c.JSON(http.StatusOK, dto.CrashFeedbackResponse{Success: true, Message: "Feedback submitted successfully"})
	}
}

// RegisterPushToken upserts a push token for the caller's device
func (h *DeviceHandler) RegisterPushToken(c *gin.Context) {
	var req dto.PushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token payload"})
		return
	}

	created, err := h.deviceUsecase.RegisterPushToken(c.GetString("userID"), &req)
	if errors.Is(err, usecase.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device_id and push_token are required"})
		return
	}
	if err != nil {
		log.Printf("[ERROR] Error registering push token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register push token"})
		return
	}

	message := "Push token updated successfully"
	if created {
		message = "Push token registered successfully"
	}
	c.JSON(http.StatusOK, dto.PushTokenResponse{Success: true, Message: message})
}

// SendTestNotification pushes a fixed test message to the caller's most
// recently updated active token
func (h *DeviceHandler) SendTestNotification(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	success, message := h.testNotifier.SendTest(c.Request.Context(), userID)
	c.JSON(http.StatusOK, dto.TestNotificationResponse{Success: success, Message: message})
}
