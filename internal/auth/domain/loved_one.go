package domain

import "time"

// LovedOne relates a device owner to an emergency contact (also a user).
// The relationship is maintained by the account service; crash notification
// only ever reads it. A contact receives crash alerts when the relationship
// is active and the contact has opted into alerts.
type LovedOne struct {
	ID         string `json:"id" gorm:"primaryKey"`
	UserID     string `json:"user_id" gorm:"index:idx_loved_one_user;uniqueIndex:idx_user_loved_one,priority:1;not null"`
	LovedOneID string `json:"loved_one_id" gorm:"uniqueIndex:idx_user_loved_one,priority:2;not null"`
	IsActive   bool   `json:"is_active" gorm:"default:true"`
	IsAlerted  bool   `json:"is_alerted" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShouldNotify reports whether this contact receives crash alerts
func (l *LovedOne) ShouldNotify() bool {
	return l.IsActive && l.IsAlerted
}
