package api

import (
	authUsecase "sentry-backend/internal/auth/usecase"
	deviceDelivery "sentry-backend/internal/device/delivery"
	deviceUsecasePkg "sentry-backend/internal/device/usecase"
	"sentry-backend/internal/notification"
	"sentry-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase   authUsecase.AuthUsecase
	deviceHandler *deviceDelivery.DeviceHandler
	config        *config.Config
}

func NewHandler(authUc authUsecase.AuthUsecase, deviceUc deviceUsecasePkg.DeviceUsecase, notifService *notification.Service, cfg *config.Config) *Handler {
	return &Handler{
		authUsecase:   authUc,
		deviceHandler: deviceDelivery.NewDeviceHandler(deviceUc, notifService),
		config:        cfg,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-API-Key")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.deviceHandler, h.config)

	return r.Run(addr)
}
