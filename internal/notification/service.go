package notification

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	authrepo "sentry-backend/internal/auth/repository"
	devicedomain "sentry-backend/internal/device/domain"
	devicerepo "sentry-backend/internal/device/repository"
	"sentry-backend/pkg/ai"
	"sentry-backend/pkg/push"
)

const (
	crashAlertChannel = "crash_alerts"
	maxReasoningChars = 100
)

// Service fans crash notifications out to the device owner and their
// emergency contacts. Every send is best-effort: a failed delivery is
// logged and absorbed, never raised to the crash pipeline.
type Service struct {
	tokenRepo    devicerepo.DeviceTokenRepository
	crashRepo    devicerepo.CrashEventRepository
	userRepo     authrepo.UserRepository
	lovedOneRepo authrepo.LovedOneRepository
	sender       push.Sender
	sendTimeout  time.Duration
}

// NewService creates a new notification service
func NewService(
	tokenRepo devicerepo.DeviceTokenRepository,
	crashRepo devicerepo.CrashEventRepository,
	userRepo authrepo.UserRepository,
	lovedOneRepo authrepo.LovedOneRepository,
	sender push.Sender,
	sendTimeout time.Duration,
) *Service {
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}
	return &Service{
		tokenRepo:    tokenRepo,
		crashRepo:    crashRepo,
		userRepo:     userRepo,
		lovedOneRepo: lovedOneRepo,
		sender:       sender,
		sendTimeout:  sendTimeout,
	}
}

// NotifyOwner pushes the crash alert to the device owner's active token.
// Returns true only on provider-confirmed delivery, in which case the
// event's alert_sent flag is set (a best-effort update outside the crash
// transaction; the flag only ever goes false to true).
func (s *Service) NotifyOwner(ctx context.Context, event *devicedomain.CrashEvent, verdict *ai.Verdict) bool {
	if s.sender == nil {
		log.Printf("[WARN] Push sender not configured, owner notification skipped (device_id=%s)", event.DeviceID)
		return false
	}

	token, err := s.tokenRepo.ActiveForDevice(event.DeviceID)
	if err != nil {
		log.Printf("[WARN] Failed to look up push token (device_id=%s): %v", event.DeviceID, err)
		return false
	}
	if token == nil {
		log.Printf("[WARN] No active push token for device %s", event.DeviceID)
		return false
	}

	reasoning := verdict.Reasoning
	if len(reasoning) > maxReasoningChars {
		reasoning = reasoning[:maxReasoningChars]
	}

	n := push.Notification{
		Title: "🚨 Crash Detected",
		Body:  fmt.Sprintf("Severity: %s | %s", severityLabel(verdict.Severity), reasoning),
		Data: map[string]string{
			"type":           "crash_detected",
			"crash_event_id": event.ID,
			"severity":       verdict.Severity,
			"confidence":     strconv.FormatFloat(verdict.Confidence, 'f', 2, 64),
			"crash_type":     verdict.CrashType,
			"timestamp":      event.CrashTimestamp.Format(time.RFC3339),
		},
		Priority:  "high",
		ChannelID: crashAlertChannel,
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	if err := s.sender.Send(sendCtx, token.PushToken, n); err != nil {
		log.Printf("[WARN] Owner notification failed (device_id=%s): %v", event.DeviceID, err)
		return false
	}

	if event.MarkAlertSent() {
		if err := s.crashRepo.MarkAlertSent(event.ID); err != nil {
			log.Printf("[WARN] Failed to record alert_sent (crash_event_id=%s): %v", event.ID, err)
		}
	}

	log.Printf("[OK] Owner notification sent (device_id=%s, crash_event_id=%s)", event.DeviceID, event.ID)
	return true
}

// NotifyLovedOnes pushes the crash location to every opted-in emergency
// contact of the event's owner. Each recipient is handled independently;
// one bad token never blocks the rest.
func (s *Service) NotifyLovedOnes(ctx context.Context, event *devicedomain.CrashEvent) {
	if event.UserID == nil {
		log.Printf("[WARN] No user associated with crash event %s, loved ones not notified", event.ID)
		return
	}
	if !event.HasLocation() {
		log.Printf("[WARN] No GPS location for crash event %s, loved ones not notified", event.ID)
		return
	}
	if s.sender == nil {
		log.Printf("[WARN] Push sender not configured, loved one notifications skipped (crash_event_id=%s)", event.ID)
		return
	}

	owner, err := s.userRepo.FindByID(*event.UserID)
	if err != nil || owner == nil {
		log.Printf("[WARN] Failed to resolve owner for crash event %s: %v", event.ID, err)
		return
	}

	lovedOnes, err := s.lovedOneRepo.AlertableForUser(owner.ID)
	if err != nil {
		log.Printf("[WARN] Failed to load loved ones for user %s: %v", owner.ID, err)
		return
	}

	mapLink := fmt.Sprintf("https://www.google.com/maps?q=%f,%f", *event.CrashLatitude, *event.CrashLongitude)

	for _, rel := range lovedOnes {
		tokens, err := s.tokenRepo.ActiveForUser(rel.LovedOneID)
		if err != nil {
			log.Printf("[WARN] Failed to load tokens for loved one %s: %v", rel.LovedOneID, err)
			continue
		}

		for _, token := range tokens {
			n := push.Notification{
				Title: fmt.Sprintf("🚨 Emergency: %s - Crash Detected", owner.Email),
				Body:  fmt.Sprintf("Location: %s", mapLink),
				Data: map[string]string{
					"type":           "loved_one_crash_alert",
					"crash_event_id": event.ID,
					"user_email":     owner.Email,
					"latitude":       strconv.FormatFloat(*event.CrashLatitude, 'f', -1, 64),
					"longitude":      strconv.FormatFloat(*event.CrashLongitude, 'f', -1, 64),
					"map_link":       mapLink,
				},
				Priority:  "high",
				ChannelID: crashAlertChannel,
			}

			sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
			err := s.sender.Send(sendCtx, token.PushToken, n)
			cancel()
			if err != nil {
				log.Printf("[WARN] Loved one notification failed (loved_one=%s, crash_event_id=%s): %v",
					rel.LovedOneID, event.ID, err)
				continue
			}
			log.Printf("[LOVED_ONES] Notification sent (loved_one=%s, crash_event_id=%s)", rel.LovedOneID, event.ID)
		}
	}
}

// SendTest pushes a fixed test message to the user's most recently updated
// active token
func (s *Service) SendTest(ctx context.Context, userID string) (bool, string) {
	token, err := s.tokenRepo.MostRecentActiveForUser(userID)
	if err != nil {
		log.Printf("[WARN] Failed to look up push token for user %s: %v", userID, err)
		return false, "Failed to send test notification. Check server logs for details."
	}
	if token == nil {
		return false, "No active push token found for your device. Please ensure notifications are enabled in the app."
	}
	if s.sender == nil {
		return false, "Push notifications are not configured on the server."
	}

	n := push.Notification{
		Title:     "🧪 Test Push Notification",
		Body:      "This is a test notification sent from the backend to verify push delivery is working correctly!",
		Data:      map[string]string{"type": "test"},
		Priority:  "high",
		ChannelID: crashAlertChannel,
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	if err := s.sender.Send(sendCtx, token.PushToken, n); err != nil {
		log.Printf("[WARN] Test notification failed (user_id=%s): %v", userID, err)
		return false, "Failed to send test notification. Check server logs for details."
	}
	return true, "Test notification sent successfully"
}

func severityLabel(severity string) string {
	switch severity {
	case devicedomain.SeverityHigh:
		return "HIGH"
	case devicedomain.SeverityMedium:
		return "MEDIUM"
	case devicedomain.SeverityLow:
		return "LOW"
	default:
		return "UNKNOWN"
	}
}
