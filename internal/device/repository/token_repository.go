package repository

import (
	"time"

	devicedomain "sentry-backend/internal/device/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceTokenRepository maps devices to their active push tokens
type DeviceTokenRepository interface {
	// Register upserts on (device_id, push_token) and reports whether a
	// new row was created
	Register(deviceID, pushToken, platform string, userID *string) (bool, error)
	ActiveForDevice(deviceID string) (*devicedomain.DeviceToken, error)
	ActiveForUser(userID string) ([]devicedomain.DeviceToken, error)
	MostRecentActiveForUser(userID string) (*devicedomain.DeviceToken, error)
}

type deviceTokenRepository struct {
	db *gorm.DB
}

// NewDeviceTokenRepository creates a new instance of deviceTokenRepository
func NewDeviceTokenRepository(db *gorm.DB) DeviceTokenRepository {
	return &deviceTokenRepository{
		db: db,
	}
}

// Register performs an atomic find-or-create on (device_id, push_token)
// followed by a conditional reactivation, all in one transaction, so two
// concurrent registrations for the same pair cannot create duplicates.
func (r *deviceTokenRepository) Register(deviceID, pushToken, platform string, userID *string) (bool, error) {
	created := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		token := &devicedomain.DeviceToken{
			ID:        uuid.New().String(),
			DeviceID:  deviceID,
			UserID:    userID,
			PushToken: pushToken,
			Platform:  platform,
			IsActive:  true,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		// INSERT ... ON CONFLICT (device_id, push_token) DO NOTHING
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "device_id"}, {Name: "push_token"}},
			DoNothing: true,
		}).Create(token)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected > 0 {
			created = true
			return nil
		}

		// Pair already registered: re-own, update platform, reactivate
		return tx.Model(&devicedomain.DeviceToken{}).
			Where("device_id = ? AND push_token = ?", deviceID, pushToken).
			Updates(map[string]interface{}{
				"user_id":    userID,
				"platform":   platform,
				"is_active":  true,
				"updated_at": time.Now(),
			}).Error
	})

	return created, err
}

func (r *deviceTokenRepository) ActiveForDevice(deviceID string) (*devicedomain.DeviceToken, error) {
	var token devicedomain.DeviceToken
	err := r.db.Where("device_id = ? AND is_active = ?", deviceID, true).
		Order("updated_at DESC").
		First(&token).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *deviceTokenRepository) ActiveForUser(userID string) ([]devicedomain.DeviceToken, error) {
	var tokens []devicedomain.DeviceToken
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *deviceTokenRepository) MostRecentActiveForUser(userID string) (*devicedomain.DeviceToken, error) {
	var token devicedomain.DeviceToken
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("updated_at DESC").
		First(&token).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}
