package repository

import (
	"mri_screening_backend/internal/model"

	"gorm.io/gorm"
)

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

func (r *TestRepository) Create(t *model.Test) error {
	return r.DB.Create(t).Error
}

func (r *TestRepository) FindByID(id uint) (*model.Test, error) {
	var t model.Test
	err := r.DB.Preload("Category").Preload("Questions").First(&t, id).Error
	return &t, err
}

func (r *TestRepository) FindActiveByID(id uint) (*model.Test, error) {
	var t model.Test
	err := r.DB.Preload("Category").Preload("Questions").
		Where("is_active = ?", true).First(&t, id).Error
	return &t, err
}

func (r *TestRepository) ListActive(categoryIDs []uint) ([]model.Test, error) {
	var ts []model.Test
	query := r.DB.Preload("Category").Where("is_active = ?", true)
	if len(categoryIDs) > 0 {
		query = query.Where("category_id IN ?", categoryIDs)
	}
	err := query.Order("created_at desc").Find(&ts).Error
	return ts, err
}

func (r *TestRepository) List(page, limit int) ([]model.Test, int64, error) {
	var ts []model.Test
	var total int64
	query := r.DB.Model(&model.Test{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := r.DB.Preload("Category").Order("created_at desc").Offset(offset).Limit(limit).Find(&ts).Error
	return ts, total, err
}

func (r *TestRepository) Update(t *model.Test) error {
	return r.DB.Save(t).Error
}

func (r *TestRepository) ReplaceQuestions(t *model.Test, questions []model.Question) error {
	return r.DB.Model(t).Association("Questions").Replace(questions)
}

func (r *TestRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Test{}, id).Error
}
