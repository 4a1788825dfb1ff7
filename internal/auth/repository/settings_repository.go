package repository

import (
	"errors"
	"time"

	authdomain "sentry-backend/internal/auth/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultCrashAlertIntervalSeconds = 15

// UserSettingsRepository provides access to per-user preferences
type UserSettingsRepository interface {
	GetOrCreate(userID string) (*authdomain.UserSettings, error)
}

type userSettingsRepository struct {
	db *gorm.DB
}

// NewUserSettingsRepository creates a new instance of userSettingsRepository
func NewUserSettingsRepository(db *gorm.DB) UserSettingsRepository {
	return &userSettingsRepository{
		db: db,
	}
}

// GetOrCreate returns the settings row for a user, creating it with
// defaults on first access
func (r *userSettingsRepository) GetOrCreate(userID string) (*authdomain.UserSettings, error) {
	var settings authdomain.UserSettings
	err := r.db.Where("user_id = ?", userID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	settings = authdomain.UserSettings{
		ID:                        uuid.New().String(),
		UserID:                    userID,
		CrashAlertIntervalSeconds: defaultCrashAlertIntervalSeconds,
		CreatedAt:                 time.Now(),
		UpdatedAt:                 time.Now(),
	}
	if err := r.db.Create(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}
