package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	// Shared API key presented by embedded devices on ingest/alert endpoints
	DeviceAPIKey string

	// AI provider config
	AIProvider    string // "gemini" or "ollama"
	GeminiAPIKey  string
	GeminiModel   string
	OllamaBaseURL string
	OllamaModel   string
	AITimeout     time.Duration

	// Push provider config
	PushProvider        string // "expo" or "fcm"
	ExpoPushURL         string
	FirebaseCredentials string
	PushTimeout         time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	aiTimeout := 30 * time.Second
	if t := os.Getenv("AI_TIMEOUT"); t != "" {
		if parsed, err := time.ParseDuration(t); err == nil {
			aiTimeout = parsed
		}
	}

	pushTimeout := 10 * time.Second
	if t := os.Getenv("PUSH_TIMEOUT"); t != "" {
		if parsed, err := time.ParseDuration(t); err == nil {
			pushTimeout = parsed
		}
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		DatabaseURL:         getEnv("DATABASE_URL", "host=localhost user=sentry password=sentry dbname=sentry port=5432 sslmode=disable"),
		JWTSecret:           getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		DeviceAPIKey:        getEnv("DEVICE_API_KEY", ""),
		AIProvider:          getEnv("AI_PROVIDER", "gemini"),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:         getEnv("OLLAMA_MODEL", "llama3"),
		AITimeout:           aiTimeout,
		PushProvider:        getEnv("PUSH_PROVIDER", "expo"),
		ExpoPushURL:         getEnv("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send"),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		PushTimeout:         pushTimeout,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
