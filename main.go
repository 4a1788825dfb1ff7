package main

import (
	"log"
	"os"

	api "sentry-backend/cmd/api"
	authdomain "sentry-backend/internal/auth/domain"
	authRepo "sentry-backend/internal/auth/repository"
	authUsecase "sentry-backend/internal/auth/usecase"
	devicedomain "sentry-backend/internal/device/domain"
	deviceRepo "sentry-backend/internal/device/repository"
	deviceUsecase "sentry-backend/internal/device/usecase"
	"sentry-backend/internal/notification"
	"sentry-backend/pkg/ai"
	"sentry-backend/pkg/config"
	"sentry-backend/pkg/database"
	"sentry-backend/pkg/push"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.UserSettings{},
		&authdomain.LovedOne{},
		&devicedomain.SensorData{},
		&devicedomain.CrashEvent{},
		&devicedomain.DeviceToken{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	settingsRepo := authRepo.NewUserSettingsRepository(db)
	lovedOneRepo := authRepo.NewLovedOneRepository(db)
	sensorRepo := deviceRepo.NewSensorDataRepository(db)
	crashRepo := deviceRepo.NewCrashEventRepository(db)
	tokenRepo := deviceRepo.NewDeviceTokenRepository(db)

	// Initialize push sender (optional, alerts are logged but not
	// delivered without it)
	sender, err := push.NewSender(push.Config{
		Provider:            push.ProviderType(cfg.PushProvider),
		ExpoPushURL:         cfg.ExpoPushURL,
		FirebaseCredentials: cfg.FirebaseCredentials,
	})
	if err != nil {
		log.Printf("[WARN] Failed to initialize push sender (notifications disabled): %v", err)
		sender = nil
	} else {
		log.Printf("Push sender initialized with provider: %s", cfg.PushProvider)
	}

	// Initialize AI crash analyzer (optional, crash alerts fall back to
	// a conservative verdict without it)
	analyzer, err := ai.NewCrashAnalyzer(ai.Config{
		Provider:      ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiModel:   cfg.GeminiModel,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
	})
	if err != nil {
		log.Printf("[WARN] Failed to initialize AI analyzer (falling back to conservative verdicts): %v", err)
		analyzer = nil
	} else {
		log.Printf("AI analyzer initialized with provider: %s", cfg.AIProvider)
	}

	// Initialize notification service
	notifService := notification.NewService(tokenRepo, crashRepo, userRepo, lovedOneRepo, sender, cfg.PushTimeout)

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, cfg)
	deviceUsecaseInstance := deviceUsecase.NewDeviceUsecase(db, sensorRepo, crashRepo, tokenRepo, settingsRepo, analyzer, notifService, cfg)

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, deviceUsecaseInstance, notifService, cfg)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Printf("Server starting on port %s", port)
	if err := handler.Start(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
