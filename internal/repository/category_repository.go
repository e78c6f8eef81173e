package repository

import (
	"mri_screening_backend/internal/model"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	DB *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

func (r *CategoryRepository) Create(c *model.TestCategory) error {
	return r.DB.Create(c).Error
}

func (r *CategoryRepository) FindByID(id uint) (*model.TestCategory, error) {
	var c model.TestCategory
	err := r.DB.First(&c, id).Error
	return &c, err
}

func (r *CategoryRepository) FindByStage(stageNumber int) (*model.TestCategory, error) {
	var c model.TestCategory
	err := r.DB.Where("stage_number = ?", stageNumber).First(&c).Error
	return &c, err
}

func (r *CategoryRepository) ListAll() ([]model.TestCategory, error) {
	var cs []model.TestCategory
	err := r.DB.Order("stage_number asc").Find(&cs).Error
	return cs, err
}

func (r *CategoryRepository) ListActive() ([]model.TestCategory, error) {
	var cs []model.TestCategory
	err := r.DB.Where("is_active = ?", true).Order("stage_number asc").Find(&cs).Error
	return cs, err
}

func (r *CategoryRepository) Update(c *model.TestCategory) error {
	return r.DB.Save(c).Error
}

func (r *CategoryRepository) Delete(id uint) error {
	return r.DB.Delete(&model.TestCategory{}, id).Error
}
