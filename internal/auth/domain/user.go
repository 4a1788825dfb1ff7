package domain

import "time"

// User accounts are created and managed by the auth service; this backend
// only reads them to resolve crash event owners and notification recipients.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserSettings holds per-user preferences consumed by the crash pipeline
type UserSettings struct {
	ID     string `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"uniqueIndex;not null"`

	// Minimum time between crash alert API calls (10-60 seconds). Also
	// drives how much sensor/history context the AI analysis gets.
	CrashAlertIntervalSeconds int `json:"crash_alert_interval_seconds" gorm:"default:15"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
