package repository

import (
	"mri_screening_backend/internal/model"

	"gorm.io/gorm"
)

type PlagiarismRepository struct {
	DB *gorm.DB
}

func NewPlagiarismRepository(db *gorm.DB) *PlagiarismRepository {
	return &PlagiarismRepository{DB: db}
}

func (r *PlagiarismRepository) Create(f *model.PlagiarismFlag) error {
	return r.DB.Create(f).Error
}

func (r *PlagiarismRepository) FindByID(id uint) (*model.PlagiarismFlag, error) {
	var f model.PlagiarismFlag
	err := r.DB.Preload("Attempt1").Preload("Attempt1.User").
		Preload("Attempt2").Preload("Attempt2.User").First(&f, id).Error
	return &f, err
}

// PairExists checks both orderings so a pair is never flagged twice.
func (r *PlagiarismRepository) PairExists(attempt1ID, attempt2ID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.PlagiarismFlag{}).
		Where("(attempt1_id = ? AND attempt2_id = ?) OR (attempt1_id = ? AND attempt2_id = ?)",
			attempt1ID, attempt2ID, attempt2ID, attempt1ID).
		Count(&count).Error
	return count > 0, err
}

func (r *PlagiarismRepository) List(reviewed *bool, page, limit int) ([]model.PlagiarismFlag, int64, error) {
	var fs []model.PlagiarismFlag
	var total int64
	query := r.DB.Model(&model.PlagiarismFlag{})
	if reviewed != nil {
		query = query.Where("reviewed = ?", *reviewed)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("Attempt1").Preload("Attempt1.User").
		Preload("Attempt2").Preload("Attempt2.User").
		Order("similarity_percentage desc").Offset(offset).Limit(limit).Find(&fs).Error
	return fs, total, err
}

func (r *PlagiarismRepository) Update(f *model.PlagiarismFlag) error {
	return r.DB.Save(f).Error
}
