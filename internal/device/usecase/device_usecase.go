package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	authrepo "sentry-backend/internal/auth/repository"
	devicedomain "sentry-backend/internal/device/domain"
	"sentry-backend/internal/device/dto"
	"sentry-backend/internal/device/repository"
	"sentry-backend/pkg/ai"
	"sentry-backend/pkg/config"

	"gorm.io/gorm"
)

const (
	defaultAlertIntervalSeconds = 15

	// Lookback window sizing: min(30 + (interval-10)*3, 180).
	// 10s interval = 30s lookback, 30s = 90s, 60s = 180s (cap).
	lookbackBaseSeconds    = 30
	lookbackIntervalOffset = 10
	lookbackSlope          = 3
	lookbackCapSeconds     = 180

	// History depth: max(1, interval/20)
	historyIntervalDivisor = 20
)

// deviceUsecase implements DeviceUsecase interface
type deviceUsecase struct {
	db           *gorm.DB
	sensorRepo   repository.SensorDataRepository
	crashRepo    repository.CrashEventRepository
	tokenRepo    repository.DeviceTokenRepository
	settingsRepo authrepo.UserSettingsRepository
	analyzer     ai.CrashAnalyzer
	notifier     Notifier
	aiTimeout    time.Duration
}

// NewDeviceUsecase creates a new instance of deviceUsecase
func NewDeviceUsecase(
	db *gorm.DB,
	sensorRepo repository.SensorDataRepository,
	crashRepo repository.CrashEventRepository,
	tokenRepo repository.DeviceTokenRepository,
	settingsRepo authrepo.UserSettingsRepository,
	analyzer ai.CrashAnalyzer,
	notifier Notifier,
	cfg *config.Config,
) DeviceUsecase {
	aiTimeout := 30 * time.Second
	if cfg != nil && cfg.AITimeout > 0 {
		aiTimeout = cfg.AITimeout
	}
	return &deviceUsecase{
		db:           db,
		sensorRepo:   sensorRepo,
		crashRepo:    crashRepo,
		tokenRepo:    tokenRepo,
		settingsRepo: settingsRepo,
		analyzer:     analyzer,
		notifier:     notifier,
		aiTimeout:    aiTimeout,
	}
}

// IngestSensorData persists one device reading
func (u *deviceUsecase) IngestSensorData(req *dto.DeviceDataRequest) error {
	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = "unknown"
	}

	data := &devicedomain.SensorData{
		DeviceID:     deviceID,
		AX:           req.AX,
		AY:           req.AY,
		AZ:           req.AZ,
		Roll:         req.Roll,
		Pitch:        req.Pitch,
		TiltDetected: req.TiltDetected,
		Timestamp:    parseTimestamp(req.Timestamp),
	}

	if err := u.sensorRepo.Save(data); err != nil {
		return err
	}

	log.Printf("[DATA] Device data saved: %s, ax=%.2f, ay=%.2f, az=%.2f, roll=%.1f, pitch=%.1f, tilt_detected=%t",
		deviceID, req.AX, req.AY, req.AZ, req.Roll, req.Pitch, req.TiltDetected)
	return nil
}

// ProcessCrashAlert runs the Tier 2 confirmation pipeline: gather windowed
// context, classify with the AI analyzer, persist on confirmation and
// dispatch severity-gated notifications.
func (u *deviceUsecase) ProcessCrashAlert(ctx context.Context, userID string, req *dto.CrashAlertRequest) (*dto.CrashAlertResponse, error) {
	log.Printf("[IN] Crash alert received | device_id=%s | timestamp=%s | threshold_severity=%s | trigger_type=%s | g_force=%.2fg | tilt_detected=%t | %s",
		req.DeviceID, req.Timestamp, req.ThresholdResult.Severity, req.ThresholdResult.TriggerType,
		req.ThresholdResult.GForce, req.SensorReading.TiltDetected, gpsLogInfo(req.GPSData))

	interval := u.alertInterval(userID)

	lookbackSeconds := lookbackBaseSeconds + (interval-lookbackIntervalOffset)*lookbackSlope
	if lookbackSeconds > lookbackCapSeconds {
		lookbackSeconds = lookbackCapSeconds
	}
	historyDepth := interval / historyIntervalDivisor
	if historyDepth < 1 {
		historyDepth = 1
	}
	lookback := time.Duration(lookbackSeconds) * time.Second
	log.Printf("[CONTEXT] Calculated lookback_seconds=%d based on interval=%d (device_id=%s)",
		lookbackSeconds, interval, req.DeviceID)

	readings := u.recentReadings(req.DeviceID, lookback)
	history := u.recentHistory(req.DeviceID, userID, lookback, historyDepth)

	input := ai.AnalysisInput{
		Readings:       toSensorSamples(readings),
		Current:        currentSample(&req.SensorReading),
		History:        toCrashSummaries(history),
		ContextSeconds: lookbackSeconds,
	}

	aiCtx, cancel := context.WithTimeout(ctx, u.aiTimeout)
	defer cancel()

	var verdict *ai.Verdict
	if u.analyzer != nil {
		verdict = u.analyzer.AnalyzeCrash(aiCtx, input)
	} else {
		log.Printf("[WARN] No AI analyzer configured, using fallback verdict (device_id=%s)", req.DeviceID)
		verdict = ai.FallbackVerdict()
	}

	if !verdict.IsCrash {
		log.Printf("[OK] False positive detected by AI - no crash event created (device_id=%s, confidence=%.2f, false_positive_risk=%.2f)",
			req.DeviceID, verdict.Confidence, verdict.FalsePositiveRisk)
		return verdictResponse(verdict, nil), nil
	}

	log.Printf("[CRASH] Crash confirmed by AI - creating CrashEvent (device_id=%s, severity=%s, confidence=%.2f)",
		req.DeviceID, verdict.Severity, verdict.Confidence)

	event := u.buildCrashEvent(userID, req, verdict)

	// The event must exist atomically or not at all; a half-created crash
	// record is unacceptable, so this error propagates.
	err := u.db.Transaction(func(tx *gorm.DB) error {
		return repository.NewCrashEventRepository(tx).Create(event)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create crash event: %w", err)
	}
	log.Printf("[SAVE] CrashEvent created | crash_event_id=%s | device_id=%s | severity=%s | confidence=%.2f",
		event.ID, req.DeviceID, verdict.Severity, verdict.Confidence)

	// Notification dispatch is severity-gated and best-effort: it runs
	// against the committed row and its outcome never unwinds the event.
	if event.ShouldDispatchAlert() && u.notifier != nil {
		if u.notifier.NotifyOwner(ctx, event, verdict) {
			log.Printf("[OK] Push notification sent (device_id=%s)", req.DeviceID)
		} else {
			log.Printf("[WARN] Push notification failed to send (device_id=%s)", req.DeviceID)
		}
		u.notifier.NotifyLovedOnes(ctx, event)
	}

	log.Printf("[OUT] Crash alert processing complete | device_id=%s | is_crash=%t | crash_event_id=%s",
		req.DeviceID, verdict.IsCrash, event.ID)
	return verdictResponse(verdict, &event.ID), nil
}

// ListCrashEvents returns stored events reverse-chronologically. When the
// caller is authenticated the listing is scoped to their own events.
func (u *deviceUsecase) ListCrashEvents(userID, deviceID string, limit, offset int) ([]dto.CrashEventResponse, error) {
	events, err := u.crashRepo.List(userID, deviceID, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CrashEventResponse, 0, len(events))
	for i := range events {
		out = append(out, toEventResponse(&events[i]))
	}
	log.Printf("[OK] Retrieved %d crash events (device_id=%s, limit=%d, offset=%d)", len(out), deviceID, limit, offset)
	return out, nil
}

// SubmitCrashFeedback records the owner's verdict on a confirmed crash
func (u *deviceUsecase) SubmitCrashFeedback(eventID string, req *dto.CrashFeedbackRequest) error {
	event, err := u.crashRepo.FindByID(eventID)
	if err != nil {
		return err
	}
	if event == nil {
		log.Printf("[WARN] Crash event not found (event_id=%s)", eventID)
		return ErrEventNotFound
	}

	if err := event.ApplyFeedback(req.UserFeedback, req.UserComments); err != nil {
		log.Printf("[WARN] Invalid feedback value (event_id=%s, feedback=%s)", eventID, req.UserFeedback)
		return ErrInvalidFeedback
	}

	if err := u.crashRepo.SaveFeedback(event); err != nil {
		return err
	}

	log.Printf("[OK] User feedback submitted (event_id=%s, feedback=%s)", eventID, req.UserFeedback)
	return nil
}

// RegisterPushToken upserts a push token for a device (see the token
// repository for the conflict semantics)
func (u *deviceUsecase) RegisterPushToken(userID string, req *dto.PushTokenRequest) (bool, error) {
	if req.DeviceID == "" || req.PushToken == "" {
		return false, ErrValidation
	}

	var owner *string
	if userID != "" {
		owner = &userID
	}

	created, err := u.tokenRepo.Register(req.DeviceID, req.PushToken, req.Platform, owner)
	if err != nil {
		return false, err
	}

	action := "updated"
	if created {
		action = "registered"
	}
	log.Printf("[OK] Push token %s for device %s (platform: %s, user: %s)", action, req.DeviceID, req.Platform, userID)
	return created, nil
}

// alertInterval resolves the requester's configured alert interval;
// anonymous callers and settings faults fall back to the default.
func (u *deviceUsecase) alertInterval(userID string) int {
	if userID == "" {
		return defaultAlertIntervalSeconds
	}
	settings, err := u.settingsRepo.GetOrCreate(userID)
	if err != nil {
		log.Printf("[WARN] Failed to fetch user settings, using default interval: %v", err)
		return defaultAlertIntervalSeconds
	}
	log.Printf("[SETTINGS] Using crash alert interval=%d seconds (user_id=%s)", settings.CrashAlertIntervalSeconds, userID)
	return settings.CrashAlertIntervalSeconds
}

// recentReadings degrades to an empty window on storage faults; losing
// sensor context must not block crash confirmation
func (u *deviceUsecase) recentReadings(deviceID string, lookback time.Duration) []devicedomain.SensorData {
	readings, err := u.sensorRepo.RecentForDevice(deviceID, lookback)
	if err != nil {
		log.Printf("[WARN] Error retrieving recent sensor data (device_id=%s): %v", deviceID, err)
		return nil
	}
	log.Printf("[DATA] Retrieved %d sensor data points for context (device_id=%s, lookback=%s)", len(readings), deviceID, lookback)
	return readings
}

// recentHistory is only available for authenticated owners and degrades
// the same way as sensor context
func (u *deviceUsecase) recentHistory(deviceID, userID string, lookback time.Duration, depth int) []devicedomain.CrashEvent {
	if userID == "" {
		return nil
	}
	history, err := u.crashRepo.RecentForDevice(deviceID, lookback, depth)
	if err != nil {
		log.Printf("[WARN] Failed to retrieve crash event history: %v", err)
		return nil
	}
	log.Printf("[HISTORY] Retrieved %d recent crash events for AI context (device_id=%s, num_events=%d)", len(history), deviceID, depth)
	return history
}

func (u *deviceUsecase) buildCrashEvent(userID string, req *dto.CrashAlertRequest, verdict *ai.Verdict) *devicedomain.CrashEvent {
	event := &devicedomain.CrashEvent{
		DeviceID:          req.DeviceID,
		CrashTimestamp:    parseTimestamp(req.Timestamp),
		IsConfirmedCrash:  true,
		ConfidenceScore:   verdict.Confidence,
		Severity:          verdict.Severity,
		CrashType:         verdict.CrashType,
		AIReasoning:       verdict.Reasoning,
		KeyIndicators:     verdict.KeyIndicators,
		FalsePositiveRisk: verdict.FalsePositiveRisk,
		MaxGForce:         req.ThresholdResult.GForce,
		ImpactAccel: devicedomain.Acceleration{
			AX: req.SensorReading.AX,
			AY: req.SensorReading.AY,
			AZ: req.SensorReading.AZ,
		},
		FinalTilt: devicedomain.Tilt{
			Roll:  req.SensorReading.Roll,
			Pitch: req.SensorReading.Pitch,
		},
	}
	if userID != "" {
		event.UserID = &userID
	}

	// GPS fields stay nil together when the device had no fix
	if req.GPSData.HasFix() {
		gps := req.GPSData
		event.CrashLatitude = gps.Latitude
		event.CrashLongitude = gps.Longitude
		event.CrashAltitude = gps.Altitude
		event.GPSAccuracyAtCrash = gps.Accuracy
		event.SpeedAtCrash = gps.Speed
		event.SpeedChangeAtCrash = gps.SpeedChange
		log.Printf("[GPS] GPS location available: (%f, %f) (device_id=%s)", *gps.Latitude, *gps.Longitude, req.DeviceID)
	} else {
		log.Printf("[WARN] No GPS location available at crash time (device_id=%s)", req.DeviceID)
	}

	return event
}

func verdictResponse(verdict *ai.Verdict, eventID *string) *dto.CrashAlertResponse {
	return &dto.CrashAlertResponse{
		IsCrash:           verdict.IsCrash,
		Confidence:        verdict.Confidence,
		Severity:          verdict.Severity,
		CrashType:         verdict.CrashType,
		Reasoning:         verdict.Reasoning,
		KeyIndicators:     verdict.KeyIndicators,
		FalsePositiveRisk: verdict.FalsePositiveRisk,
		CrashEventID:      eventID,
	}
}

func toEventResponse(e *devicedomain.CrashEvent) dto.CrashEventResponse {
	resp := dto.CrashEventResponse{
		ID:                  e.ID,
		DeviceID:            e.DeviceID,
		CrashTimestamp:      e.CrashTimestamp.Format(time.RFC3339),
		IsConfirmedCrash:    e.IsConfirmedCrash,
		ConfidenceScore:     e.ConfidenceScore,
		Severity:            e.Severity,
		CrashType:           e.CrashType,
		AIReasoning:         e.AIReasoning,
		KeyIndicators:       e.KeyIndicators,
		FalsePositiveRisk:   e.FalsePositiveRisk,
		MaxGForce:           e.MaxGForce,
		CrashLatitude:       e.CrashLatitude,
		CrashLongitude:      e.CrashLongitude,
		CrashAltitude:       e.CrashAltitude,
		GPSAccuracyAtCrash:  e.GPSAccuracyAtCrash,
		SpeedAtCrash:        e.SpeedAtCrash,
		SpeedChangeAtCrash:  e.SpeedChangeAtCrash,
		MaxSpeedBeforeCrash: e.MaxSpeedBeforeCrash,
		AlertSent:           e.AlertSent,
		CreatedAt:           e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           e.UpdatedAt.Format(time.RFC3339),
	}
	if resp.KeyIndicators == nil {
		resp.KeyIndicators = []string{}
	}
	if e.UserFeedback != "" {
		resp.UserFeedback = &e.UserFeedback
	}
	if e.UserComments != "" {
		resp.UserComments = &e.UserComments
	}
	return resp
}

func toSensorSamples(readings []devicedomain.SensorData) []ai.SensorSample {
	samples := make([]ai.SensorSample, 0, len(readings))
	for _, r := range readings {
		samples = append(samples, ai.SensorSample{
			AX:           r.AX,
			AY:           r.AY,
			AZ:           r.AZ,
			Roll:         r.Roll,
			Pitch:        r.Pitch,
			TiltDetected: r.TiltDetected,
			Timestamp:    r.Timestamp,
		})
	}
	return samples
}

func toCrashSummaries(events []devicedomain.CrashEvent) []ai.CrashSummary {
	summaries := make([]ai.CrashSummary, 0, len(events))
	for _, e := range events {
		summaries = append(summaries, ai.CrashSummary{
			IsConfirmedCrash: e.IsConfirmedCrash,
			ConfidenceScore:  e.ConfidenceScore,
			Severity:         e.Severity,
			CrashType:        e.CrashType,
			MaxGForce:        e.MaxGForce,
			CrashTimestamp:   e.CrashTimestamp,
		})
	}
	return summaries
}

func currentSample(r *dto.SensorReadingPayload) ai.SensorSample {
	return ai.SensorSample{
		AX:           r.AX,
		AY:           r.AY,
		AZ:           r.AZ,
		Roll:         r.Roll,
		Pitch:        r.Pitch,
		TiltDetected: r.TiltDetected,
		Timestamp:    parseTimestamp(r.Timestamp),
	}
}

func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Now()
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	return time.Now()
}

func gpsLogInfo(gps *dto.GPSData) string {
	if !gps.HasFix() {
		return "GPS: no data"
	}
	return fmt.Sprintf("GPS: lat=%f,lng=%f", *gps.Latitude, *gps.Longitude)
}
