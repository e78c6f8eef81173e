package repository

import (
	"time"

	"mri_screening_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(a *model.TestAttempt) error {
	return r.DB.Create(a).Error
}

func (r *AttemptRepository) CreateBatch(attempts []model.TestAttempt) error {
	return r.DB.Create(&attempts).Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.TestAttempt, error) {
	var a model.TestAttempt
	err := r.DB.Preload("Test").Preload("Test.Category").First(&a, id).Error
	return &a, err
}

// FindActiveByUserAndTest returns an attempt the candidate can still resume.
func (r *AttemptRepository) FindActiveByUserAndTest(userID, testID uint) (*model.TestAttempt, error) {
	var a model.TestAttempt
	err := r.DB.Preload("Test").
		Where("user_id = ? AND test_id = ? AND status IN ?",
			userID, testID, []model.AttemptStatus{model.AttemptStarted, model.AttemptInProgress}).
		Order("started_at desc").First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) ListByUser(userID uint, limit int) ([]model.TestAttempt, error) {
	var as []model.TestAttempt
	query := r.DB.Preload("Test").Preload("Test.Category").
		Where("user_id = ?", userID).Order("started_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&as).Error
	return as, err
}

func (r *AttemptRepository) ListCompletedByUser(userID uint) ([]model.TestAttempt, error) {
	var as []model.TestAttempt
	err := r.DB.Preload("Test").Preload("Test.Category").
		Where("user_id = ? AND status = ?", userID, model.AttemptCompleted).
		Order("completed_at desc").Find(&as).Error
	return as, err
}

func (r *AttemptRepository) ListCompleted(testID uint) ([]model.TestAttempt, error) {
	var as []model.TestAttempt
	query := r.DB.Where("status = ?", model.AttemptCompleted)
	if testID > 0 {
		query = query.Where("test_id = ?", testID)
	}
	err := query.Find(&as).Error
	return as, err
}

func (r *AttemptRepository) ListFlagged(limit int) ([]model.TestAttempt, error) {
	var as []model.TestAttempt
	query := r.DB.Preload("User").Preload("Test").
		Where("flagged_for_plagiarism = ?", true).
		Order("updated_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&as).Error
	return as, err
}

func (r *AttemptRepository) List(status model.AttemptStatus, page, limit int) ([]model.TestAttempt, int64, error) {
	var as []model.TestAttempt
	var total int64
	query := r.DB.Model(&model.TestAttempt{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("User").Preload("Test").Preload("Test.Category").
		Order("started_at desc").Offset(offset).Limit(limit).Find(&as).Error
	return as, total, err
}

func (r *AttemptRepository) Update(a *model.TestAttempt) error {
	return r.DB.Save(a).Error
}

// ExpireOverdue marks consented active attempts whose deadline passed.
// Pre-assigned attempts wait for the candidate's first open; their clock
// only starts once consent is recorded, so they are never swept here.
func (r *AttemptRepository) ExpireOverdue() (int64, error) {
	var tests []model.Test
	if err := r.DB.Select("id", "time_limit_minutes").Find(&tests).Error; err != nil {
		return 0, err
	}
	now := time.Now()
	var expired int64
	for _, t := range tests {
		cutoff := now.Add(-time.Duration(t.TimeLimitMinutes) * time.Minute)
		res := r.DB.Model(&model.TestAttempt{}).
			Where("test_id = ? AND status IN (?, ?) AND consent_given = ? AND started_at < ?",
				t.ID, model.AttemptStarted, model.AttemptInProgress, true, cutoff).
			Update("status", model.AttemptExpired)
		if res.Error != nil {
			return expired, res.Error
		}
		expired += res.RowsAffected
	}
	return expired, nil
}

// UserCategoryScore is one candidate's best completed score in a category.
type UserCategoryScore struct {
	UserID     uint    `gorm:"column:user_id"`
	CategoryID uint    `gorm:"column:category_id"`
	BestScore  float64 `gorm:"column:best_score"`
}

// BestScoresByCategory aggregates each candidate's best completed score per
// category. This is the percentile pool.
func (r *AttemptRepository) BestScoresByCategory() ([]UserCategoryScore, error) {
	var rows []UserCategoryScore
	err := r.DB.Table("test_attempts").
		Select("test_attempts.user_id AS user_id, tests.category_id AS category_id, MAX(test_attempts.score) AS best_score").
		Joins("JOIN tests ON tests.id = test_attempts.test_id").
		Where("test_attempts.status = ? AND test_attempts.score IS NOT NULL AND test_attempts.deleted_at IS NULL",
			model.AttemptCompleted).
		Group("test_attempts.user_id, tests.category_id").
		Scan(&rows).Error
	return rows, err
}

// CategoryAggregate is per-category attempt volume and outcomes.
type CategoryAggregate struct {
	CategoryID  uint    `gorm:"column:category_id"`
	Name        string  `gorm:"column:name"`
	StageNumber int     `gorm:"column:stage_number"`
	Attempts    int64   `gorm:"column:attempts"`
	Passed      int64   `gorm:"column:passed"`
	AvgScore    float64 `gorm:"column:avg_score"`
}

func (r *AttemptRepository) AggregateByCategory() ([]CategoryAggregate, error) {
	var rows []CategoryAggregate
	err := r.DB.Table("test_attempts").
		Select(`tests.category_id AS category_id,
			test_categories.name AS name,
			test_categories.stage_number AS stage_number,
			COUNT(*) AS attempts,
			SUM(CASE WHEN test_attempts.passed THEN 1 ELSE 0 END) AS passed,
			COALESCE(AVG(test_attempts.score), 0) AS avg_score`).
		Joins("JOIN tests ON tests.id = test_attempts.test_id").
		Joins("JOIN test_categories ON test_categories.id = tests.category_id").
		Where("test_attempts.status = ? AND test_attempts.deleted_at IS NULL", model.AttemptCompleted).
		Group("tests.category_id, test_categories.name, test_categories.stage_number").
		Order("test_categories.stage_number asc").
		Scan(&rows).Error
	return rows, err
}

func (r *AttemptRepository) CountCompleted() (int64, error) {
	var count int64
	err := r.DB.Model(&model.TestAttempt{}).Where("status = ?", model.AttemptCompleted).Count(&count).Error
	return count, err
}

func (r *AttemptRepository) CountPassed() (int64, error) {
	var count int64
	err := r.DB.Model(&model.TestAttempt{}).Where("passed = ?", true).Count(&count).Error
	return count, err
}

func (r *AttemptRepository) CountDistinctUsers() (int64, error) {
	var count int64
	err := r.DB.Model(&model.TestAttempt{}).Distinct("user_id").Count(&count).Error
	return count, err
}
