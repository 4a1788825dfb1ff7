package dto

// GPSData is the optional location/speed snapshot sent with a crash alert.
// All fields are nil together when the device had no fix.
type GPSData struct {
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Altitude    *float64 `json:"altitude"`
	Accuracy    *float64 `json:"accuracy"`     // meters
	Speed       *float64 `json:"speed"`        // m/s
	SpeedChange *float64 `json:"speed_change"` // m/s²
	Timestamp   string   `json:"timestamp,omitempty"`
}

// HasFix reports whether the snapshot carries usable coordinates
func (g *GPSData) HasFix() bool {
	return g != nil && g.Latitude != nil && g.Longitude != nil
}

// SensorReadingPayload is the reading that tripped the client-side threshold
type SensorReadingPayload struct {
	DeviceID     string  `json:"device_id"`
	AX           float64 `json:"ax"`
	AY           float64 `json:"ay"`
	AZ           float64 `json:"az"`
	Roll         float64 `json:"roll"`
	Pitch        float64 `json:"pitch"`
	TiltDetected bool    `json:"tilt_detected"`
	Timestamp    string  `json:"timestamp"`
}

// ThresholdResult is the client-computed Tier 1 trigger metadata
type ThresholdResult struct {
	IsTriggered bool                   `json:"is_triggered"`
	TriggerType string                 `json:"trigger_type"` // g_force, tilt, both, none
	Severity    string                 `json:"severity"`     // low, medium, high
	GForce      float64                `json:"g_force"`
	Tilt        map[string]interface{} `json:"tilt"`
	Timestamp   int64                  `json:"timestamp"`
}

// CrashAlertRequest is the Tier 1 trigger sent by the mobile app
type CrashAlertRequest struct {
	DeviceID        string               `json:"device_id"`
	SensorReading   SensorReadingPayload `json:"sensor_reading"`
	ThresholdResult ThresholdResult      `json:"threshold_result"`
	Timestamp       string               `json:"timestamp"`
	GPSData         *GPSData             `json:"gps_data,omitempty"`
}

// CrashAlertResponse carries the Tier 2 verdict back to the app
type CrashAlertResponse struct {
	IsCrash           bool     `json:"is_crash"`
	Confidence        float64  `json:"confidence"`
	Severity          string   `json:"severity"`
	CrashType         string   `json:"crash_type"`
	Reasoning         string   `json:"reasoning"`
	KeyIndicators     []string `json:"key_indicators"`
	FalsePositiveRisk float64  `json:"false_positive_risk"`
	CrashEventID      *string  `json:"crash_event_id"`
}

// CrashEventResponse is the API projection of a stored crash event
type CrashEventResponse struct {
	ID                  string   `json:"id"`
	DeviceID            string   `json:"device_id"`
	CrashTimestamp      string   `json:"crash_timestamp"`
	IsConfirmedCrash    bool     `json:"is_confirmed_crash"`
	ConfidenceScore     float64  `json:"confidence_score"`
	Severity            string   `json:"severity"`
	CrashType           string   `json:"crash_type"`
	AIReasoning         string   `json:"ai_reasoning"`
	KeyIndicators       []string `json:"key_indicators"`
	FalsePositiveRisk   float64  `json:"false_positive_risk"`
	MaxGForce           float64  `json:"max_g_force"`
	CrashLatitude       *float64 `json:"crash_latitude"`
	CrashLongitude      *float64 `json:"crash_longitude"`
	CrashAltitude       *float64 `json:"crash_altitude"`
	GPSAccuracyAtCrash  *float64 `json:"gps_accuracy_at_crash"`
	SpeedAtCrash        *float64 `json:"speed_at_crash"`
	SpeedChangeAtCrash  *float64 `json:"speed_change_at_crash"`
	MaxSpeedBeforeCrash *float64 `json:"max_speed_before_crash"`
	AlertSent           bool     `json:"alert_sent"`
	UserFeedback        *string  `json:"user_feedback"`
	UserComments        *string  `json:"user_comments"`
	CreatedAt           string   `json:"created_at"`
	UpdatedAt           string   `json:"updated_at"`
}

// CrashEventsResponse wraps a paginated event listing
type CrashEventsResponse struct {
	Events []CrashEventResponse `json:"events"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// CrashFeedbackRequest lets the owner label a confirmed crash
type CrashFeedbackRequest struct {
	UserFeedback string `json:"user_feedback"` // true_positive or false_positive
	UserComments string `json:"user_comments,omitempty"`
}

// CrashFeedbackResponse reports the feedback submission outcome
type CrashFeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
