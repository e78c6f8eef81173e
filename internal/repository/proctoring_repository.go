package repository

import (
	"time"

	"mri_screening_backend/internal/model"

	"gorm.io/gorm"
)

type ProctoringRepository struct {
	DB *gorm.DB
}

func NewProctoringRepository(db *gorm.DB) *ProctoringRepository {
	return &ProctoringRepository{DB: db}
}

func (r *ProctoringRepository) Create(e *model.ProctoringEvent) error {
	return r.DB.Create(e).Error
}

func (r *ProctoringRepository) ListByAttempt(attemptID uint, page, limit int) ([]model.ProctoringEvent, int64, error) {
	var es []model.ProctoringEvent
	var total int64
	query := r.DB.Model(&model.ProctoringEvent{}).Where("attempt_id = ?", attemptID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("timestamp asc").Offset(offset).Limit(limit).Find(&es).Error
	return es, total, err
}

// CountRecentCritical counts critical events for an attempt since the cutoff.
// Used as the durable source of truth behind the Redis violation counter.
func (r *ProctoringRepository) CountRecentCritical(attemptID uint, since time.Time) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ProctoringEvent{}).
		Where("attempt_id = ? AND severity = ? AND timestamp >= ?",
			attemptID, model.SeverityCritical, since).
		Count(&count).Error
	return count, err
}
