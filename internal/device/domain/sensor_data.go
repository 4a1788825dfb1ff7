package domain

import "time"

// SensorData is one MPU6050 reading streamed by a device. Rows are
// append-only; retention is handled outside this backend.
type SensorData struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	DeviceID     string    `json:"device_id" gorm:"index:idx_sensor_device_ts,priority:1;not null"`
	AX           float64   `json:"ax"`
	AY           float64   `json:"ay"`
	AZ           float64   `json:"az"`
	Roll         float64   `json:"roll"`
	Pitch        float64   `json:"pitch"`
	TiltDetected bool      `json:"tilt_detected"`
	Timestamp    time.Time `json:"timestamp" gorm:"index:idx_sensor_device_ts,priority:2"`
	CreatedAt    time.Time `json:"created_at"`
}
