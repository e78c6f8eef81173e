package repository

import (
	"errors"

	"mri_screening_backend/internal/model"

	"gorm.io/gorm"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

func (r *AnswerRepository) FindByAttemptAndQuestion(attemptID, questionID uint) (*model.Answer, error) {
	var a model.Answer
	err := r.DB.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).First(&a).Error
	return &a, err
}

// Upsert saves the answer, updating the existing row for the same
// (attempt, question) pair when present. One row per pair is an invariant.
func (r *AnswerRepository) Upsert(a *model.Answer) error {
	existing, err := r.FindByAttemptAndQuestion(a.AttemptID, a.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.DB.Create(a).Error
		}
		return err
	}

	a.ID = existing.ID
	a.CreatedAt = existing.CreatedAt
	a.AnsweredAt = existing.AnsweredAt
	return r.DB.Save(a).Error
}

func (r *AnswerRepository) ListByAttempt(attemptID uint) ([]model.Answer, error) {
	var as []model.Answer
	err := r.DB.Preload("Question").Preload("Question.Topic").Preload("Question.Topic.Category").
		Where("attempt_id = ?", attemptID).Order("answered_at asc").Find(&as).Error
	return as, err
}

func (r *AnswerRepository) ListByAttempts(attemptIDs []uint) ([]model.Answer, error) {
	var as []model.Answer
	err := r.DB.Where("attempt_id IN ?", attemptIDs).Find(&as).Error
	return as, err
}

// ListGradedWithTopics returns graded answers across attempts with the
// question, topic and category chains loaded, for skill-gap aggregation.
func (r *AnswerRepository) ListGradedWithTopics(attemptIDs []uint) ([]model.Answer, error) {
	var as []model.Answer
	err := r.DB.Preload("Question").Preload("Question.Topic").Preload("Question.Topic.Category").
		Where("attempt_id IN ? AND is_correct IS NOT NULL", attemptIDs).Find(&as).Error
	return as, err
}

func (r *AnswerRepository) Save(a *model.Answer) error {
	return r.DB.Save(a).Error
}

// HardestQuestions ranks graded questions by ascending success rate.
// minAnswers keeps barely-used questions out of the ranking.
func (r *AnswerRepository) HardestQuestions(minAnswers int64, limit int) ([]model.QuestionStats, error) {
	var rows []model.QuestionStats
	err := r.DB.Table("answers").
		Select(`answers.question_id AS question_id,
			questions.question_text AS question_text,
			questions.difficulty_level AS difficulty_level,
			COUNT(*) AS total_answers,
			SUM(CASE WHEN answers.is_correct THEN 1 ELSE 0 END) AS correct_answers`).
		Joins("JOIN questions ON questions.id = answers.question_id").
		Where("answers.is_correct IS NOT NULL AND answers.deleted_at IS NULL").
		Group("answers.question_id, questions.question_text, questions.difficulty_level").
		Having("COUNT(*) >= ?", minAnswers).
		Order("SUM(CASE WHEN answers.is_correct THEN 1 ELSE 0 END) * 1.0 / COUNT(*) ASC").
		Limit(limit).
		Scan(&rows).Error
	for i := range rows {
		if rows[i].TotalAnswers > 0 {
			rows[i].SuccessRate = float64(rows[i].CorrectAnswers) / float64(rows[i].TotalAnswers) * 100
		}
	}
	return rows, err
}
