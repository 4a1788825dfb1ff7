package usecase

import (
	"context"
	"testing"
	"time"

	authdomain "sentry-backend/internal/auth/domain"
	authrepo "sentry-backend/internal/auth/repository"
	devicedomain "sentry-backend/internal/device/domain"
	"sentry-backend/internal/device/dto"
	"sentry-backend/internal/device/repository"
	"sentry-backend/pkg/ai"
	"sentry-backend/pkg/config"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubAnalyzer struct {
	verdict *ai.Verdict
	lastIn  ai.AnalysisInput
	calls   int
}

func (s *stubAnalyzer) AnalyzeCrash(ctx context.Context, in ai.AnalysisInput) *ai.Verdict {
	s.lastIn = in
	s.calls++
	return s.verdict
}

type stubNotifier struct {
	ownerCalls    int
	lovedCalls    int
	ownerResult   bool
	lastEvent     *devicedomain.CrashEvent
	lastLovedOnes *devicedomain.CrashEvent
}

func (s *stubNotifier) NotifyOwner(ctx context.Context, event *devicedomain.CrashEvent, verdict *ai.Verdict) bool {
	s.ownerCalls++
	s.lastEvent = event
	return s.ownerResult
}

func (s *stubNotifier) NotifyLovedOnes(ctx context.Context, event *devicedomain.CrashEvent) {
	s.lovedCalls++
	s.lastLovedOnes = event
}

type ucFixture struct {
	db       *gorm.DB
	uc       DeviceUsecase
	analyzer *stubAnalyzer
	notifier *stubNotifier
}

func newFixture(t *testing.T, verdict *ai.Verdict) *ucFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&authdomain.User{},
		&authdomain.UserSettings{},
		&authdomain.LovedOne{},
		&devicedomain.SensorData{},
		&devicedomain.CrashEvent{},
		&devicedomain.DeviceToken{},
	))

	var analyzer *stubAnalyzer
	var crashAnalyzer ai.CrashAnalyzer
	if verdict != nil {
		analyzer = &stubAnalyzer{verdict: verdict}
		crashAnalyzer = analyzer
	}
	notifier := &stubNotifier{ownerResult: true}

	uc := NewDeviceUsecase(
		db,
		repository.NewSensorDataRepository(db),
		repository.NewCrashEventRepository(db),
		repository.NewDeviceTokenRepository(db),
		authrepo.NewUserSettingsRepository(db),
		crashAnalyzer,
		notifier,
		&config.Config{AITimeout: 5 * time.Second},
	)

	return &ucFixture{db: db, uc: uc, analyzer: analyzer, notifier: notifier}
}

func crashAlertRequest(deviceID string) *dto.CrashAlertRequest {
	return &dto.CrashAlertRequest{
		DeviceID: deviceID,
		SensorReading: dto.SensorReadingPayload{
			DeviceID: deviceID,
			AX:       1.2, AY: -0.5, AZ: 52.0,
			Roll: 78.0, Pitch: -12.0,
			TiltDetected: true,
			Timestamp:    time.Now().Format(time.RFC3339),
		},
		ThresholdResult: dto.ThresholdResult{
			IsTriggered: true,
			TriggerType: "both",
			Severity:    "high",
			GForce:      5.3,
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func countEvents(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&devicedomain.CrashEvent{}).Count(&count).Error)
	return count
}

func TestIngestSensorData(t *testing.T) {
	f := newFixture(t, nil)

	err := f.uc.IngestSensorData(&dto.DeviceDataRequest{
		DeviceID: "helmet-1",
		AX:       0.1, AY: 0.2, AZ: 9.8,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.db.Model(&devicedomain.SensorData{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestIngestSensorDataDefaultsDeviceID(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.uc.IngestSensorData(&dto.DeviceDataRequest{AZ: 9.8}))

	var data devicedomain.SensorData
	require.NoError(t, f.db.First(&data).Error)
	assert.Equal(t, "unknown", data.DeviceID)
}

func TestProcessCrashAlertConfirmedHighSeverity(t *testing.T) {
	f := newFixture(t, &ai.Verdict{
		IsCrash:    true,
		Confidence: 0.91,
		Severity:   devicedomain.SeverityHigh,
		CrashType:  "frontal_impact",
		Reasoning:  "Sustained impact pattern",
	})

	resp, err := f.uc.ProcessCrashAlert(context.Background(), "", crashAlertRequest("helmet-1"))
	require.NoError(t, err)

	assert.True(t, resp.IsCrash)
	require.NotNil(t, resp.CrashEventID)
	assert.Equal(t, int64(1), countEvents(t, f.db))
	assert.Equal(t, 1, f.notifier.ownerCalls)
	assert.Equal(t, 1, f.notifier.lovedCalls)

	var event devicedomain.CrashEvent
	require.NoError(t, f.db.First(&event).Error)
	assert.Equal(t, *resp.CrashEventID, event.ID)
	assert.True(t, event.IsConfirmedCrash)
	assert.Equal(t, 5.3, event.MaxGForce)
	assert.Equal(t, 52.0, event.ImpactAccel.AZ)
	assert.Nil(t, event.UserID)
}

func TestProcessCrashAlertFalsePositiveCreatesNothing(t *testing.T) {
	f := newFixture(t, &ai.Verdict{
		IsCrash:           false,
		Confidence:        0.7,
		Severity:          devicedomain.SeverityLow,
		FalsePositiveRisk: 0.9,
	})

	resp, err := f.uc.ProcessCrashAlert(context.Background(), "", crashAlertRequest("helmet-1"))
	require.NoError(t, err)

	assert.False(t, resp.IsCrash)
	assert.Nil(t, resp.CrashEventID)
	assert.Equal(t, int64(0), countEvents(t, f.db))
	assert.Equal(t, 0, f.notifier.ownerCalls)
}

func TestProcessCrashAlertNoAnalyzerUsesFallback(t *testing.T) {
	f := newFixture(t, nil)

	resp, err := f.uc.ProcessCrashAlert(context.Background(), "", crashAlertRequest("helmet-1"))
	require.NoError(t, err)

	assert.False(t, resp.IsCrash)
	assert.Equal(t, 0.8, resp.FalsePositiveRisk)
	assert.Equal(t, "AI analysis unavailable - defaulting to false positive", resp.Reasoning)
	assert.Nil(t, resp.CrashEventID)
	assert.Equal(t, int64(0), countEvents(t, f.db))
}

func TestProcessCrashAlertLowSeveritySkipsDispatch(t *testing.T) {
	f := newFixture(t, &ai.Verdict{
		IsCrash:    true,
		Confidence: 0.6,
		Severity:   devicedomain.SeverityLow,
		CrashType:  "fall",
	})

	resp, err := f.uc.ProcessCrashAlert(context.Background(), "", crashAlertRequest("helmet-1"))
	require.NoError(t, err)

	require.NotNil(t, resp.CrashEventID)
	assert.Equal(t, int64(1), countEvents(t, f.db))
	assert.Equal(t, 0, f.notifier.ownerCalls)
	assert.Equal(t, 0, f.notifier.lovedCalls)
}

func TestProcessCrashAlertDefaultContextWindow(t *testing.T) {
	f := newFixture(t, &ai.Verdict{IsCrash: false})

	// anonymous caller uses the 15s default interval
	_, err := f.uc.ProcessCrashAlert(context.Background(), "", crashAlertRequest("helmet-1"))
	require.NoError(t, err)

	assert.Equal(t, 45, f.analyzer.lastIn.ContextSeconds)
}

func TestProcessCrashAlertContextWindowScalesWithInterval(t *testing.T) {
	f := newFixture(t, &ai.Verdict{IsCrash: false})

	require.NoError(t, f.db.Create(&authdomain.UserSettings{
		ID:                        uuid.New().String(),
		UserID:                    "user-1",
		CrashAlertIntervalSeconds: 60,
	}).Error)

	// seed history inside the window so the depth bound is observable
	crashRepo := repository.NewCrashEventRepository(f.db)
	owner := "user-1"
	for i := 0; i < 5; i++ {
		require.NoError(t, crashRepo.Create(&devicedomain.CrashEvent{
			DeviceID:       "helmet-1",
			UserID:         &owner,
			CrashTimestamp: time.Now().Add(-time.Duration(i+1) * time.Second),
		}))
	}

	_, err := f.uc.ProcessCrashAlert(context.Background(), "user-1", crashAlertRequest("helmet-1"))
	require.NoError(t, err)

	// interval 60: lookback capped at 180s, history depth 60/20 = 3
	assert.Equal(t, 180, f.analyzer.lastIn.ContextSeconds)
	assert.Len(t, f.analyzer.lastIn.History, 3)
}

func TestProcessCrashAlertIncludesSensorContext(t *testing.T) {
	f := newFixture(t, &ai.Verdict{IsCrash: false})

	sensorRepo := repository.NewSensorDataRepository(f.db)
	for i := 0; i < 3; i++ {
		require.NoError(t, sensorRepo.Save(&devicedomain.SensorData{
			DeviceID:  "helmet-1",
			Timestamp: time.Now().Add(-time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, sensorRepo.Save(&devicedomain.SensorData{
		DeviceID:  "other-helmet",
		Timestamp: time.Now(),
	}))

	_, err := f.uc.ProcessCrashAlert(context.Background(), "", crashAlertRequest("helmet-1"))
	require.NoError(t, err)

	assert.Len(t, f.analyzer.lastIn.Readings, 3)
}

func TestProcessCrashAlertStoresGPSFix(t *testing.T) {
	f := newFixture(t, &ai.Verdict{IsCrash: true, Severity: devicedomain.SeverityLow})

	lat, lng, speed := 10.762622, 106.660172, 13.4
	req := crashAlertRequest("helmet-1")
	req.GPSData = &dto.GPSData{Latitude: &lat, Longitude: &lng, Speed: &speed}

	_, err := f.uc.ProcessCrashAlert(context.Background(), "", req)
	require.NoError(t, err)

	var event devicedomain.CrashEvent
	require.NoError(t, f.db.First(&event).Error)
	require.NotNil(t, event.CrashLatitude)
	assert.Equal(t, lat, *event.CrashLatitude)
	require.NotNil(t, event.SpeedAtCrash)
	assert.Equal(t, speed, *event.SpeedAtCrash)
}

func TestProcessCrashAlertWithoutGPSLeavesLocationNil(t *testing.T) {
	f := newFixture(t, &ai.Verdict{IsCrash: true, Severity: devicedomain.SeverityLow})

	_, err := f.uc.ProcessCrashAlert(context.Background(), "", crashAlertRequest("helmet-1"))
	require.NoError(t, err)

	var event devicedomain.CrashEvent
	require.NoError(t, f.db.First(&event).Error)
	assert.Nil(t, event.CrashLatitude)
	assert.Nil(t, event.CrashLongitude)
	assert.Nil(t, event.SpeedAtCrash)
	assert.False(t, event.HasLocation())
}

func TestProcessCrashAlertAttributesOwner(t *testing.T) {
	f := newFixture(t, &ai.Verdict{IsCrash: true, Severity: devicedomain.SeverityHigh})

	_, err := f.uc.ProcessCrashAlert(context.Background(), "user-1", crashAlertRequest("helmet-1"))
	require.NoError(t, err)

	var event devicedomain.CrashEvent
	require.NoError(t, f.db.First(&event).Error)
	require.NotNil(t, event.UserID)
	assert.Equal(t, "user-1", *event.UserID)
}

func TestListCrashEvents(t *testing.T) {
	f := newFixture(t, nil)

	crashRepo := repository.NewCrashEventRepository(f.db)
	for i := 0; i < 3; i++ {
		require.NoError(t, crashRepo.Create(&devicedomain.CrashEvent{
			DeviceID:       "helmet-1",
			CrashTimestamp: time.Now().Add(-time.Duration(i) * time.Minute),
			KeyIndicators:  nil,
		}))
	}

	events, err := f.uc.ListCrashEvents("", "helmet-1", 2, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.NotNil(t, events[0].KeyIndicators)
	assert.True(t, events[0].CrashTimestamp > events[1].CrashTimestamp)
}

func TestSubmitCrashFeedback(t *testing.T) {
	f := newFixture(t, nil)

	crashRepo := repository.NewCrashEventRepository(f.db)
	event := &devicedomain.CrashEvent{DeviceID: "helmet-1", CrashTimestamp: time.Now()}
	require.NoError(t, crashRepo.Create(event))

	err := f.uc.SubmitCrashFeedback(event.ID, &dto.CrashFeedbackRequest{
		UserFeedback: devicedomain.FeedbackTruePositive,
		UserComments: "real crash",
	})
	require.NoError(t, err)

	saved, err := crashRepo.FindByID(event.ID)
	require.NoError(t, err)
	assert.Equal(t, devicedomain.FeedbackTruePositive, saved.UserFeedback)
}

func TestSubmitCrashFeedbackUnknownEvent(t *testing.T) {
	f := newFixture(t, nil)

	err := f.uc.SubmitCrashFeedback("missing", &dto.CrashFeedbackRequest{
		UserFeedback: devicedomain.FeedbackTruePositive,
	})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestSubmitCrashFeedbackInvalidValue(t *testing.T) {
	f := newFixture(t, nil)

	crashRepo := repository.NewCrashEventRepository(f.db)
	event := &devicedomain.CrashEvent{DeviceID: "helmet-1", CrashTimestamp: time.Now()}
	require.NoError(t, crashRepo.Create(event))

	err := f.uc.SubmitCrashFeedback(event.ID, &dto.CrashFeedbackRequest{UserFeedback: "maybe"})
	assert.ErrorIs(t, err, ErrInvalidFeedback)
}

func TestRegisterPushToken(t *testing.T) {
	f := newFixture(t, nil)

	created, err := f.uc.RegisterPushToken("user-1", &dto.PushTokenRequest{
		DeviceID:  "helmet-1",
		PushToken: "ExponentPushToken[abc]",
		Platform:  "android",
	})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.uc.RegisterPushToken("user-1", &dto.PushTokenRequest{
		DeviceID:  "helmet-1",
		PushToken: "ExponentPushToken[abc]",
		Platform:  "android",
	})
	require.NoError(t, err)
	assert.False(t, created)
}

func TestRegisterPushTokenValidation(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.uc.RegisterPushToken("user-1", &dto.PushTokenRequest{DeviceID: "helmet-1"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.uc.RegisterPushToken("user-1", &dto.PushTokenRequest{PushToken: "tok"})
	assert.ErrorIs(t, err, ErrValidation)
}
