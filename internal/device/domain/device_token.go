package domain

import "time"

// Platforms a push token can belong to
const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
)

// DeviceToken maps a device to a push token. The (device_id, push_token)
// pair is unique; re-registration reactivates and re-owns the existing row.
// Tokens are never deleted, only soft-disabled via IsActive.
type DeviceToken struct {
	ID        string  `json:"id" gorm:"primaryKey"`
	DeviceID  string  `json:"device_id" gorm:"index;uniqueIndex:idx_device_push_token,priority:1;not null"`
	UserID    *string `json:"user_id,omitempty" gorm:"index:idx_token_user_active,priority:1"`
	PushToken string  `json:"-" gorm:"uniqueIndex:idx_device_push_token,priority:2;size:500;not null"`
	Platform  string  `json:"platform"`
	IsActive  bool    `json:"is_active" gorm:"index:idx_token_user_active,priority:2;default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
