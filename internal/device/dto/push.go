package dto

// PushTokenRequest registers a push token for a device
type PushTokenRequest struct {
	DeviceID  string `json:"device_id"`
	PushToken string `json:"push_token"`
	Platform  string `json:"platform"` // ios or android
}

// PushTokenResponse reports the registration outcome
type PushTokenResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TestNotificationResponse reports the test push outcome
type TestNotificationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
