package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"mri_screening_backend/internal/config"
	"mri_screening_backend/internal/model"
	"mri_screening_backend/internal/repository"
	"mri_screening_backend/internal/util"
	"mri_screening_backend/pkg/monitoring"

	"github.com/disintegration/imaging"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProctoringService struct {
	ProctoringRepo *repository.ProctoringRepository
	AttemptRepo    *repository.AttemptRepository
	Storage        *StorageService
	Redis          *redis.Client
	Logger         *zap.Logger

	mu  sync.RWMutex
	cfg config.ProctoringConfig
}

func NewProctoringService(
	proctoringRepo *repository.ProctoringRepository,
	attemptRepo *repository.AttemptRepository,
	storage *StorageService,
	rdb *redis.Client,
	logger *zap.Logger,
	cfg config.ProctoringConfig,
) *ProctoringService {
	return &ProctoringService{
		ProctoringRepo: proctoringRepo,
		AttemptRepo:    attemptRepo,
		Storage:        storage,
		Redis:          rdb,
		Logger:         logger,
		cfg:            cfg,
	}
}

// Reconfigure swaps thresholds at runtime; called from the config watcher.
func (s *ProctoringService) Reconfigure(cfg config.ProctoringConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *ProctoringService) settings() config.ProctoringConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

type ProctoringEventRequest struct {
	EventType model.ProctoringEventType `json:"eventType" binding:"required,oneof=webcam_snapshot screen_snapshot tab_switch fullscreen_exit right_click copy_paste window_blur devtools_open face_not_visible"`
	Metadata  map[string]interface{}    `json:"metadata"`
}

type ProctoringEventView struct {
	Event           *model.ProctoringEvent `json:"event"`
	AttemptFlagged  bool                   `json:"attemptFlagged"`
	ViolationCount  int64                  `json:"violationCount"`
	ViolationWindow int                    `json:"violationWindowMinutes"`
}

// RecordEvent stores a browser proctoring signal against an active attempt.
// Critical events feed a sliding violation counter; crossing the threshold
// flags the attempt for manual review.
func (s *ProctoringService) RecordEvent(ctx context.Context, attemptID, userID uint, req ProctoringEventRequest) (*ProctoringEventView, error) {
	attempt, err := s.ownedActiveAttempt(attemptID, userID)
	if err != nil {
		return nil, err
	}

	severity := model.ClassifySeverity(req.EventType)
	event := &model.ProctoringEvent{
		AttemptID: attemptID,
		EventType: req.EventType,
		Severity:  severity,
		Timestamp: time.Now(),
	}
	if len(req.Metadata) > 0 {
		raw, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, err
		}
		event.Metadata = raw
	}

	if err := s.ProctoringRepo.Create(event); err != nil {
		return nil, err
	}
	monitoring.ProctoringEventCounter.WithLabelValues(string(req.EventType), string(severity)).Inc()

	view := &ProctoringEventView{Event: event, ViolationWindow: s.settings().ViolationWindowMinutes}
	if severity == model.SeverityCritical {
		count, flagged, err := s.bumpViolations(ctx, attempt)
		if err != nil {
			s.Logger.Warn("violation counter update failed",
				zap.Uint("attempt_id", attemptID), zap.Error(err))
		}
		view.ViolationCount = count
		view.AttemptFlagged = flagged
	}
	return view, nil
}

// UploadSnapshot decodes a webcam or screen capture, downscales it to the
// configured bounds, re-encodes as JPEG and stores it alongside the event.
func (s *ProctoringService) UploadSnapshot(ctx context.Context, attemptID, userID uint, eventType model.ProctoringEventType, reader io.Reader) (*model.ProctoringEvent, error) {
	if _, err := s.ownedActiveAttempt(attemptID, userID); err != nil {
		return nil, err
	}
	if eventType != model.EventWebcamSnapshot && eventType != model.EventScreenSnapshot {
		return nil, errors.New("snapshot events must be webcam_snapshot or screen_snapshot")
	}
	if reader == nil {
		return nil, util.ErrNoSnapshotImage
	}

	_, body, err := util.ValidateMimeType(reader, []string{util.MimeImage})
	if err != nil {
		return nil, err
	}
	src, err := imaging.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	cfg := s.settings()
	bounds := src.Bounds()
	if bounds.Dx() > cfg.SnapshotMaxWidth || bounds.Dy() > cfg.SnapshotMaxHeight {
		src = imaging.Fit(src, cfg.SnapshotMaxWidth, cfg.SnapshotMaxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, src, imaging.JPEG, imaging.JPEGQuality(cfg.SnapshotJPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	objectName := fmt.Sprintf("snapshots/%d/%s.jpg", attemptID, uuid.New().String())
	path, err := s.Storage.Upload(ctx, objectName, &buf, int64(buf.Len()), util.MimeJPEG)
	if err != nil {
		return nil, err
	}

	event := &model.ProctoringEvent{
		AttemptID: attemptID,
		EventType: eventType,
		Severity:  model.SeverityInfo,
		ImagePath: path,
		Timestamp: time.Now(),
	}
	if err := s.ProctoringRepo.Create(event); err != nil {
		return nil, err
	}
	monitoring.ProctoringEventCounter.WithLabelValues(string(eventType), string(model.SeverityInfo)).Inc()
	return event, nil
}

func (s *ProctoringService) ListEvents(attemptID uint, page, limit int) ([]model.ProctoringEvent, int64, error) {
	return s.ProctoringRepo.ListByAttempt(attemptID, page, limit)
}

func (s *ProctoringService) ownedActiveAttempt(attemptID, userID uint) (*model.TestAttempt, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrAttemptNotFound
	}
	// Flagged attempts keep recording evidence until submission.
	if !attempt.Active() && attempt.Status != model.AttemptFlagged {
		return nil, util.ErrAttemptNotActive
	}
	return attempt, nil
}

func violationKey(attemptID uint) string {
	return "proctoring:violations:" + strconv.FormatUint(uint64(attemptID), 10)
}

// bumpViolations increments the per-attempt critical counter in Redis. The
// key expires after the violation window, giving a cheap sliding window.
// Falls back to counting rows when Redis is unreachable.
func (s *ProctoringService) bumpViolations(ctx context.Context, attempt *model.TestAttempt) (int64, bool, error) {
	cfg := s.settings()
	window := time.Duration(cfg.ViolationWindowMinutes) * time.Minute

	var count int64
	var err error
	if s.Redis != nil {
		key := violationKey(attempt.ID)
		count, err = s.Redis.Incr(ctx, key).Result()
		if err == nil {
			if count == 1 {
				s.Redis.Expire(ctx, key, window)
			}
		}
	} else {
		err = redis.Nil
	}
	if err != nil {
		count, err = s.ProctoringRepo.CountRecentCritical(attempt.ID, time.Now().Add(-window))
		if err != nil {
			return 0, false, err
		}
	}

	if count < int64(cfg.ViolationThreshold) {
		return count, false, nil
	}

	if attempt.Status != model.AttemptFlagged {
		attempt.Status = model.AttemptFlagged
		if err := s.AttemptRepo.Update(attempt); err != nil {
			return count, false, err
		}
		s.Logger.Warn("attempt flagged for excessive proctoring violations",
			zap.Uint("attempt_id", attempt.ID),
			zap.Int64("violations", count),
			zap.Int("threshold", cfg.ViolationThreshold))
	}
	return count, true, nil
}
