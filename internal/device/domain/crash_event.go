package domain

import (
	"fmt"
	"time"
)

// Severity levels assigned by the AI analysis
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// User feedback values on a confirmed crash
const (
	FeedbackTruePositive  = "true_positive"
	FeedbackFalsePositive = "false_positive"
)

// Acceleration is the 3-axis acceleration snapshot at impact time
type Acceleration struct {
	AX float64 `json:"ax"`
	AY float64 `json:"ay"`
	AZ float64 `json:"az"`
}

// Tilt is the orientation snapshot at impact time
type Tilt struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
}

// CrashEvent is a crash confirmed by the AI analysis tier. Created exactly
// once per confirmation; mutated afterwards only by feedback submission and
// by the notification dispatcher flipping AlertSent.
type CrashEvent struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	DeviceID         string    `json:"device_id" gorm:"index:idx_crash_device_ts,priority:1;not null"`
	UserID           *string   `json:"user_id,omitempty" gorm:"index"`
	CrashTimestamp   time.Time `json:"crash_timestamp" gorm:"index:idx_crash_device_ts,priority:2"`
	IsConfirmedCrash bool      `json:"is_confirmed_crash"`

	ConfidenceScore   float64      `json:"confidence_score"`
	Severity          string       `json:"severity" gorm:"default:low"`
	CrashType         string       `json:"crash_type"`
	AIReasoning       string       `json:"ai_reasoning" gorm:"type:text"`
	KeyIndicators     []string     `json:"key_indicators" gorm:"serializer:json"`
	FalsePositiveRisk float64      `json:"false_positive_risk"`
	MaxGForce         float64      `json:"max_g_force"`
	ImpactAccel       Acceleration `json:"impact_acceleration" gorm:"serializer:json;column:impact_acceleration"`
	FinalTilt         Tilt         `json:"final_tilt" gorm:"serializer:json"`

	// GPS snapshot at crash time; all nil when the device had no fix
	CrashLatitude      *float64 `json:"crash_latitude"`
	CrashLongitude     *float64 `json:"crash_longitude"`
	CrashAltitude      *float64 `json:"crash_altitude"`
	GPSAccuracyAtCrash *float64 `json:"gps_accuracy_at_crash"`
	SpeedAtCrash       *float64 `json:"speed_at_crash"`
	SpeedChangeAtCrash *float64 `json:"speed_change_at_crash"`
	MaxSpeedBeforeCrash *float64 `json:"max_speed_before_crash"`

	AlertSent    bool   `json:"alert_sent"`
	UserFeedback string `json:"user_feedback,omitempty"`
	UserComments string `json:"user_comments,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasLocation reports whether the event carries a usable GPS fix
func (e *CrashEvent) HasLocation() bool {
	return e.CrashLatitude != nil && e.CrashLongitude != nil
}

// ShouldDispatchAlert reports whether the severity warrants push
// notifications. Low severity events are persisted but not pushed.
func (e *CrashEvent) ShouldDispatchAlert() bool {
	return e.Severity == SeverityHigh || e.Severity == SeverityMedium
}

// MarkAlertSent flips AlertSent to true. The flag is monotonic; it is
// never reset once a notification has been delivered.
func (e *CrashEvent) MarkAlertSent() bool {
	if e.AlertSent {
		return false
	}
	e.AlertSent = true
	return true
}

// ApplyFeedback records the owner's verdict on the event
func (e *CrashEvent) ApplyFeedback(feedback, comments string) error {
	if feedback != FeedbackTruePositive && feedback != FeedbackFalsePositive {
		return fmt.Errorf("invalid feedback value %q", feedback)
	}
	e.UserFeedback = feedback
	if comments != "" {
		e.UserComments = comments
	}
	return nil
}
