package service

import (
	"bytes"
	"context"
	"image"
	"path/filepath"
	"strings"
	"testing"

	"mri_screening_backend/internal/config"
	"mri_screening_backend/internal/model"
	"mri_screening_backend/internal/util"

	"github.com/alicebob/miniredis/v2"
	"github.com/disintegration/imaging"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func proctoringFixture(t *testing.T, rdb *redis.Client) (*gorm.DB, *ProctoringService, *model.TestAttempt, *model.User) {
	t.Helper()
	db := newTestDB(t)
	repos := newTestRepos(db)

	storageCfg := &config.Config{}
	storageCfg.Storage.Type = "local"
	storageCfg.Storage.LocalPath = t.TempDir()

	svc := NewProctoringService(repos.proctoring, repos.attempt, NewStorageService(storageCfg), rdb, testLogger(), config.ProctoringConfig{
		SnapshotMaxWidth:       640,
		SnapshotMaxHeight:      480,
		SnapshotJPEGQuality:    70,
		ViolationThreshold:     5,
		ViolationWindowMinutes: 10,
	})

	user := seedUser(t, db, "proctored@example.com")
	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	test := seedTest(t, db, category.ID, seedQuestions(t, db, topic.ID, 2))

	attempt := &model.TestAttempt{
		UserID:       user.ID,
		TestID:       test.ID,
		Status:       model.AttemptInProgress,
		ConsentGiven: true,
	}
	require.NoError(t, db.Create(attempt).Error)
	return db, svc, attempt, user
}

func miniredisClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestClassifySeverity(t *testing.T) {
	assert.Equal(t, model.SeverityCritical, model.ClassifySeverity(model.EventTabSwitch))
	assert.Equal(t, model.SeverityCritical, model.ClassifySeverity(model.EventFullscreenExit))
	assert.Equal(t, model.SeverityCritical, model.ClassifySeverity(model.EventDevToolsOpen))
	assert.Equal(t, model.SeverityWarning, model.ClassifySeverity(model.EventCopyPaste))
	assert.Equal(t, model.SeverityWarning, model.ClassifySeverity(model.EventFaceNotVisible))
	assert.Equal(t, model.SeverityInfo, model.ClassifySeverity(model.EventWebcamSnapshot))
}

func TestRecordEventStoresSignal(t *testing.T) {
	_, svc, attempt, user := proctoringFixture(t, miniredisClient(t))

	view, err := svc.RecordEvent(context.Background(), attempt.ID, user.ID, ProctoringEventRequest{
		EventType: model.EventWindowBlur,
		Metadata:  map[string]interface{}{"durationMs": 1200},
	})
	require.NoError(t, err)

	assert.Equal(t, model.SeverityWarning, view.Event.Severity)
	assert.False(t, view.AttemptFlagged)
	assert.Zero(t, view.ViolationCount)

	events, total, err := svc.ListEvents(attempt.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Contains(t, string(events[0].Metadata), "durationMs")
}

func TestCriticalEventsFlagAttempt(t *testing.T) {
	db, svc, attempt, user := proctoringFixture(t, miniredisClient(t))

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		view, err := svc.RecordEvent(ctx, attempt.ID, user.ID, ProctoringEventRequest{EventType: model.EventTabSwitch})
		require.NoError(t, err)
		assert.False(t, view.AttemptFlagged)
	}

	view, err := svc.RecordEvent(ctx, attempt.ID, user.ID, ProctoringEventRequest{EventType: model.EventFullscreenExit})
	require.NoError(t, err)
	assert.True(t, view.AttemptFlagged)
	assert.EqualValues(t, 5, view.ViolationCount)

	var got model.TestAttempt
	require.NoError(t, db.First(&got, attempt.ID).Error)
	assert.Equal(t, model.AttemptFlagged, got.Status)

	// flagged attempts still accept evidence
	_, err = svc.RecordEvent(ctx, attempt.ID, user.ID, ProctoringEventRequest{EventType: model.EventTabSwitch})
	assert.NoError(t, err)
}

func TestViolationCounterFallsBackWithoutRedis(t *testing.T) {
	db, svc, attempt, user := proctoringFixture(t, nil)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := svc.RecordEvent(ctx, attempt.ID, user.ID, ProctoringEventRequest{EventType: model.EventDevToolsOpen})
		require.NoError(t, err)
	}

	var got model.TestAttempt
	require.NoError(t, db.First(&got, attempt.ID).Error)
	assert.Equal(t, model.AttemptFlagged, got.Status)
}

func TestWarningEventsNeverFlag(t *testing.T) {
	db, svc, attempt, user := proctoringFixture(t, miniredisClient(t))

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		_, err := svc.RecordEvent(ctx, attempt.ID, user.ID, ProctoringEventRequest{EventType: model.EventRightClick})
		require.NoError(t, err)
	}

	var got model.TestAttempt
	require.NoError(t, db.First(&got, attempt.ID).Error)
	assert.Equal(t, model.AttemptInProgress, got.Status)
}

func TestUploadSnapshotDownscales(t *testing.T) {
	_, svc, attempt, user := proctoringFixture(t, miniredisClient(t))

	src := image.NewRGBA(image.Rect(0, 0, 1280, 960))
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, src, imaging.PNG))

	event, err := svc.UploadSnapshot(context.Background(), attempt.ID, user.ID, model.EventWebcamSnapshot, &buf)
	require.NoError(t, err)

	assert.Equal(t, model.SeverityInfo, event.Severity)
	require.True(t, strings.HasPrefix(event.ImagePath, "/uploads/"))
	assert.Equal(t, ".jpg", filepath.Ext(event.ImagePath))

	stored, err := imaging.Open(filepath.Join(svc.Storage.Provider.(*LocalStorageProvider).Config.LocalPath,
		strings.TrimPrefix(event.ImagePath, "/uploads/")))
	require.NoError(t, err)
	bounds := stored.Bounds()
	assert.LessOrEqual(t, bounds.Dx(), 640)
	assert.LessOrEqual(t, bounds.Dy(), 480)
}

func TestSnapshotRejectsNonSnapshotEvent(t *testing.T) {
	_, svc, attempt, user := proctoringFixture(t, miniredisClient(t))

	_, err := svc.UploadSnapshot(context.Background(), attempt.ID, user.ID, model.EventTabSwitch, bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestSnapshotRejectsNonImagePayload(t *testing.T) {
	_, svc, attempt, user := proctoringFixture(t, miniredisClient(t))

	payload := bytes.NewReader([]byte("%PDF-1.4 not a picture"))
	_, err := svc.UploadSnapshot(context.Background(), attempt.ID, user.ID, model.EventWebcamSnapshot, payload)
	assert.ErrorIs(t, err, util.ErrUnsupportedFileType)
}

func TestProctoringRequiresActiveAttempt(t *testing.T) {
	db, svc, attempt, user := proctoringFixture(t, miniredisClient(t))

	require.NoError(t, db.Model(&model.TestAttempt{}).
		Where("id = ?", attempt.ID).Update("status", model.AttemptCompleted).Error)

	_, err := svc.RecordEvent(context.Background(), attempt.ID, user.ID, ProctoringEventRequest{EventType: model.EventTabSwitch})
	assert.Error(t, err)
}
