package repository

import (
	"errors"
	"time"

	devicedomain "sentry-backend/internal/device/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CrashEventRepository stores confirmed crash events
type CrashEventRepository interface {
	Create(event *devicedomain.CrashEvent) error
	FindByID(id string) (*devicedomain.CrashEvent, error)
	RecentForDevice(deviceID string, lookback time.Duration, limit int) ([]devicedomain.CrashEvent, error)
	List(userID, deviceID string, limit, offset int) ([]devicedomain.CrashEvent, error)
	SaveFeedback(event *devicedomain.CrashEvent) error
	MarkAlertSent(id string) error
}

type crashEventRepository struct {
	db *gorm.DB
}

// NewCrashEventRepository creates a new instance of crashEventRepository.
// Pass a transaction handle to make Create participate in it.
func NewCrashEventRepository(db *gorm.DB) CrashEventRepository {
	return &crashEventRepository{
		db: db,
	}
}

func (r *crashEventRepository) Create(event *devicedomain.CrashEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()
	return r.db.Create(event).Error
}

func (r *crashEventRepository) FindByID(id string) (*devicedomain.CrashEvent, error) {
	var event devicedomain.CrashEvent
	err := r.db.Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// RecentForDevice returns events inside the lookback window, most recent
// first, truncated to limit. Used as history context for the AI analysis.
func (r *crashEventRepository) RecentForDevice(deviceID string, lookback time.Duration, limit int) ([]devicedomain.CrashEvent, error) {
	threshold := time.Now().Add(-lookback)

	var events []devicedomain.CrashEvent
	err := r.db.Where("device_id = ? AND crash_timestamp >= ?", deviceID, threshold).
		Order("crash_timestamp DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// List returns events reverse-chronologically with pagination. userID and
// deviceID are optional filters; an authenticated caller only ever sees
// their own events.
func (r *crashEventRepository) List(userID, deviceID string, limit, offset int) ([]devicedomain.CrashEvent, error) {
	query := r.db.Model(&devicedomain.CrashEvent{})
	if deviceID != "" {
		query = query.Where("device_id = ?", deviceID)
	}
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var events []devicedomain.CrashEvent
	err := query.Order("crash_timestamp DESC").
		Limit(limit).Offset(offset).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *crashEventRepository) SaveFeedback(event *devicedomain.CrashEvent) error {
	event.UpdatedAt = time.Now()
	return r.db.Model(event).
		Select("user_feedback", "user_comments", "updated_at").
		Updates(event).Error
}

// MarkAlertSent flips alert_sent to true. Only that column is touched so a
// concurrent feedback update cannot be clobbered.
func (r *crashEventRepository) MarkAlertSent(id string) error {
	return r.db.Model(&devicedomain.CrashEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"alert_sent": true, "updated_at": time.Now()}).Error
}
