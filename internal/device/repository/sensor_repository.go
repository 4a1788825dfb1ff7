package repository

import (
	"time"

	devicedomain "sentry-backend/internal/device/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SensorDataRepository is the time-ordered store of raw device readings
type SensorDataRepository interface {
	Save(data *devicedomain.SensorData) error
	RecentForDevice(deviceID string, lookback time.Duration) ([]devicedomain.SensorData, error)
}

type sensorDataRepository struct {
	db *gorm.DB
}

// NewSensorDataRepository creates a new instance of sensorDataRepository
func NewSensorDataRepository(db *gorm.DB) SensorDataRepository {
	return &sensorDataRepository{
		db: db,
	}
}

func (r *sensorDataRepository) Save(data *devicedomain.SensorData) error {
	if data.ID == "" {
		data.ID = uuid.New().String()
	}
	if data.Timestamp.IsZero() {
		data.Timestamp = time.Now()
	}
	data.CreatedAt = time.Now()
	return r.db.Create(data).Error
}

// RecentForDevice returns readings inside the lookback window, ascending
// by timestamp. A device with no history yields an empty slice.
func (r *sensorDataRepository) RecentForDevice(deviceID string, lookback time.Duration) ([]devicedomain.SensorData, error) {
	threshold := time.Now().Add(-lookback)

	var readings []devicedomain.SensorData
	err := r.db.Where("device_id = ? AND timestamp >= ?", deviceID, threshold).
		Order("timestamp ASC").
		Find(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}
