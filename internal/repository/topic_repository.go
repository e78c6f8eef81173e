package repository

import (
	"mri_screening_backend/internal/model"

	"gorm.io/gorm"
)

type TopicRepository struct {
	DB *gorm.DB
}

func NewTopicRepository(db *gorm.DB) *TopicRepository {
	return &TopicRepository{DB: db}
}

func (r *TopicRepository) Create(t *model.QuestionTopic) error {
	return r.DB.Create(t).Error
}

func (r *TopicRepository) FindByID(id uint) (*model.QuestionTopic, error) {
	var t model.QuestionTopic
	err := r.DB.Preload("Category").First(&t, id).Error
	return &t, err
}

func (r *TopicRepository) ListByCategory(categoryID uint) ([]model.QuestionTopic, error) {
	var ts []model.QuestionTopic
	query := r.DB.Model(&model.QuestionTopic{})
	if categoryID > 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	err := query.Order("name asc").Find(&ts).Error
	return ts, err
}

func (r *TopicRepository) ListActiveByCategory(categoryID uint) ([]model.QuestionTopic, error) {
	var ts []model.QuestionTopic
	err := r.DB.Where("category_id = ? AND is_active = ?", categoryID, true).Order("name asc").Find(&ts).Error
	return ts, err
}

func (r *TopicRepository) Update(t *model.QuestionTopic) error {
	return r.DB.Save(t).Error
}

func (r *TopicRepository) Delete(id uint) error {
	return r.DB.Delete(&model.QuestionTopic{}, id).Error
}
