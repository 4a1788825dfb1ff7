package usecase

import (
	"context"
	"errors"

	devicedomain "sentry-backend/internal/device/domain"
	"sentry-backend/internal/device/dto"
	"sentry-backend/pkg/ai"
)

// Typed errors the delivery layer maps to HTTP statuses
var (
	ErrEventNotFound   = errors.New("crash event not found")
	ErrInvalidFeedback = errors.New("invalid feedback value. Must be 'true_positive' or 'false_positive'")
	ErrValidation      = errors.New("invalid request")
)

// DeviceUsecase is the application surface for everything a device or the
// mobile app does: sensor ingest, the two-tier crash pipeline, event
// queries, feedback and push token registration.
type DeviceUsecase interface {
	IngestSensorData(req *dto.DeviceDataRequest) error
	ProcessCrashAlert(ctx context.Context, userID string, req *dto.CrashAlertRequest) (*dto.CrashAlertResponse, error)
	ListCrashEvents(userID, deviceID string, limit, offset int) ([]dto.CrashEventResponse, error)
	SubmitCrashFeedback(eventID string, req *dto.CrashFeedbackRequest) error
	RegisterPushToken(userID string, req *dto.PushTokenRequest) (bool, error)
}

// Notifier dispatches push notifications for a confirmed crash. Both
// methods are best-effort and never fail the crash pipeline.
type Notifier interface {
	NotifyOwner(ctx context.Context, event *devicedomain.CrashEvent, verdict *ai.Verdict) bool
	NotifyLovedOnes(ctx context.Context, event *devicedomain.CrashEvent)
}
