package repository

import (
	"mri_screening_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.Preload("Topic").Preload("Topic.Category").First(&q, id).Error
	return &q, err
}

func (r *QuestionRepository) FindByIDs(ids []uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("id IN ?", ids).Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) List(topicID uint, page, limit int) ([]model.Question, int64, error) {
	var qs []model.Question
	var total int64
	query := r.DB.Model(&model.Question{})
	if topicID > 0 {
		query = query.Where("topic_id = ?", topicID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("difficulty_level asc, created_at asc").Offset(offset).Limit(limit).Find(&qs).Error
	return qs, total, err
}

// RandomActiveByTopic draws up to n random active questions from a topic.
func (r *QuestionRepository) RandomActiveByTopic(topicID uint, n int) ([]model.Question, error) {
	randFn := "RAND()"
	if r.DB.Dialector.Name() == "sqlite" {
		randFn = "RANDOM()"
	}

	var qs []model.Question
	err := r.DB.Where("topic_id = ? AND is_active = ?", topicID, true).
		Order(randFn).Limit(n).Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) Update(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Question{}, id).Error
}
