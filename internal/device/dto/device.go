package dto

// DeviceDataRequest is the payload the embedded device POSTs on every
// sensor sample
type DeviceDataRequest struct {
	DeviceID     string  `json:"device_id"`
	AX           float64 `json:"ax"`
	AY           float64 `json:"ay"`
	AZ           float64 `json:"az"`
	Roll         float64 `json:"roll"`
	Pitch        float64 `json:"pitch"`
	TiltDetected bool    `json:"tilt_detected"`
	Timestamp    string  `json:"timestamp,omitempty"`
}

// DeviceDataResponse is always returned with HTTP 200 so low-power
// firmware only has to parse one response shape
type DeviceDataResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
