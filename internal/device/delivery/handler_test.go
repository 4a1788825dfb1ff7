package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"sentry-backend/internal/device/dto"
	"sentry-backend/internal/device/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsecase struct {
	ingestErr    error
	alertResp    *dto.CrashAlertResponse
	alertErr     error
	events       []dto.CrashEventResponse
	feedbackErr  error
	tokenCreated bool
	tokenErr     error

	lastUserID string
	lastLimit  int
	lastOffset int
}

func (s *stubUsecase) IngestSensorData(req *dto.DeviceDataRequest) error { return s.ingestErr }

func (s *stubUsecase) ProcessCrashAlert(ctx context.Context, userID string, req *dto.CrashAlertRequest) (*dto.CrashAlertResponse, error) {
	s.lastUserID = userID
	return s.alertResp, s.alertErr
}

func (s *stubUsecase) ListCrashEvents(userID, deviceID string, limit, offset int) ([]dto.CrashEventResponse, error) {
	s.lastUserID = userID
	s.lastLimit = limit
	s.lastOffset = offset
	return s.events, nil
}

func (s *stubUsecase) SubmitCrashFeedback(eventID string, req *dto.CrashFeedbackRequest) error {
	return s.feedbackErr
}

func (s *stubUsecase) RegisterPushToken(userID string, req *dto.PushTokenRequest) (bool, error) {
	s.lastUserID = userID
	return s.tokenCreated, s.tokenErr
}

type stubTestNotifier struct {
	ok  bool
	msg string
}

func (s *stubTestNotifier) SendTest(ctx context.Context, userID string) (bool, string) {
	return s.ok, s.msg
}

func setupRouter(uc usecase.DeviceUsecase, notifier TestNotifier, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if userID != "" {
		r.Use(func(c *gin.Context) {
			c.Set("userID", userID)
			c.Next()
		})
	}

	h := NewDeviceHandler(uc, notifier)
	r.POST("/data", h.ReceiveDeviceData)
	r.POST("/crash/alert", h.CrashAlert)
	r.GET("/crash/events", h.GetCrashEvents)
	r.POST("/crash/events/:id/feedback", h.SubmitCrashFeedback)
	r.POST("/push/token", h.RegisterPushToken)
	r.POST("/push/test", h.SendTestNotification)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestReceiveDeviceData(t *testing.T) {
	r := setupRouter(&stubUsecase{}, nil, "")

	w := doJSON(r, "POST", "/data", `{"device_id": "helmet-1", "az": 9.8}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.DeviceDataResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Data received", resp.Message)
}

func TestReceiveDeviceDataBadPayloadStill200(t *testing.T) {
	r := setupRouter(&stubUsecase{}, nil, "")

	w := doJSON(r, "POST", "/data", `{bad json`)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.DeviceDataResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestReceiveDeviceDataSaveErrorStill200(t *testing.T) {
	r := setupRouter(&stubUsecase{ingestErr: errors.New("db down")}, nil, "")

	w := doJSON(r, "POST", "/data", `{"device_id": "helmet-1"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.DeviceDataResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestCrashAlert(t *testing.T) {
	eventID := "evt-1"
	uc := &stubUsecase{alertResp: &dto.CrashAlertResponse{IsCrash: true, CrashEventID: &eventID}}
	r := setupRouter(uc, nil, "user-1")

	w := doJSON(r, "POST", "/crash/alert", `{"device_id": "helmet-1"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", uc.lastUserID)

	var resp dto.CrashAlertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.IsCrash)
	require.NotNil(t, resp.CrashEventID)
	assert.Equal(t, "evt-1", *resp.CrashEventID)
}

func TestCrashAlertProcessingError(t *testing.T) {
	r := setupRouter(&stubUsecase{alertErr: errors.New("ai exploded")}, nil, "")

	w := doJSON(r, "POST", "/crash/alert", `{"device_id": "helmet-1"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to process crash alert")
}

func TestCrashAlertBadPayload(t *testing.T) {
	r := setupRouter(&stubUsecase{}, nil, "")

	w := doJSON(r, "POST", "/crash/alert", `{bad`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCrashEventsDefaults(t *testing.T) {
	uc := &stubUsecase{events: []dto.CrashEventResponse{}}
	r := setupRouter(uc, nil, "user-1")

	req := httptest.NewRequest("GET", "/crash/events", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 50, uc.lastLimit)
	assert.Equal(t, 0, uc.lastOffset)
	assert.Equal(t, "user-1", uc.lastUserID)

	var resp dto.CrashEventsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 50, resp.Limit)
	assert.NotNil(t, resp.Events)
}

func TestGetCrashEventsQueryParams(t *testing.T) {
	uc := &stubUsecase{}
	r := setupRouter(uc, nil, "")

	req := httptest.NewRequest("GET", "/crash/events?limit=5&offset=10&device_id=helmet-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, uc.lastLimit)
	assert.Equal(t, 10, uc.lastOffset)
}

func TestSubmitCrashFeedback(t *testing.T) {
	r := setupRouter(&stubUsecase{}, nil, "")

	w := doJSON(r, "POST", "/crash/events/evt-1/feedback", `{"user_feedback": "true_positive"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Feedback submitted successfully")
}

func TestSubmitCrashFeedbackNotFound(t *testing.T) {
	r := setupRouter(&stubUsecase{feedbackErr: usecase.ErrEventNotFound}, nil, "")

	w := doJSON(r, "POST", "/crash/events/missing/feedback", `{"user_feedback": "true_positive"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitCrashFeedbackInvalidValue(t *testing.T) {
	r := setupRouter(&stubUsecase{feedbackErr: usecase.ErrInvalidFeedback}, nil, "")

	w := doJSON(r, "POST", "/crash/events/evt-1/feedback", `{"user_feedback": "maybe"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterPushTokenCreated(t *testing.T) {
	r := setupRouter(&stubUsecase{tokenCreated: true}, nil, "user-1")

	w := doJSON(r, "POST", "/push/token", `{"device_id": "helmet-1", "push_token": "tok"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "registered successfully")
}

func TestRegisterPushTokenUpdated(t *testing.T) {
	r := setupRouter(&stubUsecase{tokenCreated: false}, nil, "user-1")

	w := doJSON(r, "POST", "/push/token", `{"device_id": "helmet-1", "push_token": "tok"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "updated successfully")
}

func TestRegisterPushTokenValidationError(t *testing.T) {
	r := setupRouter(&stubUsecase{tokenErr: usecase.ErrValidation}, nil, "user-1")

	w := doJSON(r, "POST", "/push/token", `{"device_id": "helmet-1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendTestNotification(t *testing.T) {
	r := setupRouter(&stubUsecase{}, &stubTestNotifier{ok: true, msg: "Test notification sent successfully"}, "user-1")

	w := doJSON(r, "POST", "/push/test", ``)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.TestNotificationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestSendTestNotificationUnauthenticated(t *testing.T) {
	r := setupRouter(&stubUsecase{}, &stubTestNotifier{}, "")

	w := doJSON(r, "POST", "/push/test", ``)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
