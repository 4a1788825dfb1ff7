package api

import (
	"net/http"

	"sentry-backend/internal/auth/delivery"
	authUsecase "sentry-backend/internal/auth/usecase"
	deviceDelivery "sentry-backend/internal/device/delivery"
	"sentry-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUsecase authUsecase.AuthUsecase, deviceHandler *deviceDelivery.DeviceHandler, cfg *config.Config) {
	api := r.Group("/api/v1")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Device routes - helmet firmware authenticates with an API key,
		// crash alerts also accept an optional JWT to attribute the event
		device := api.Group("/device")
		device.Use(delivery.DeviceAPIKeyMiddleware(cfg))
		{
			device.POST("/data", deviceHandler.ReceiveDeviceData)
			device.POST("/crash/alert", delivery.OptionalAuthMiddleware(authUsecase), deviceHandler.CrashAlert)
			device.GET("/crash/events", delivery.OptionalAuthMiddleware(authUsecase), deviceHandler.GetCrashEvents)
			device.POST("/crash/events/:id/feedback", delivery.OptionalAuthMiddleware(authUsecase), deviceHandler.SubmitCrashFeedback)

			// Mobile companion routes (protected)
			mobile := device.Group("/mobile")
			mobile.Use(delivery.AuthMiddleware(authUsecase))
			{
				mobile.POST("/push/token", deviceHandler.RegisterPushToken)
				mobile.POST("/push/test", deviceHandler.SendTestNotification)
			}
		}
	}
}
