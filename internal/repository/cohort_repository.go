package repository

import (
	"mri_screening_backend/internal/model"

	"gorm.io/gorm"
)

type CohortRepository struct {
	DB *gorm.DB
}

func NewCohortRepository(db *gorm.DB) *CohortRepository {
	return &CohortRepository{DB: db}
}

func (r *CohortRepository) Create(c *model.Cohort) error {
	return r.DB.Create(c).Error
}

func (r *CohortRepository) FindByID(id uint) (*model.Cohort, error) {
	var c model.Cohort
	err := r.DB.Preload("EnabledCategories").First(&c, id).Error
	return &c, err
}

func (r *CohortRepository) List(page, limit int) ([]model.Cohort, int64, error) {
	var cs []model.Cohort
	var total int64
	if err := r.DB.Model(&model.Cohort{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := r.DB.Preload("EnabledCategories").Order("created_at desc").
		Offset(offset).Limit(limit).Find(&cs).Error
	return cs, total, err
}

func (r *CohortRepository) Update(c *model.Cohort) error {
	return r.DB.Save(c).Error
}

func (r *CohortRepository) ReplaceCategories(c *model.Cohort, categories []model.TestCategory) error {
	return r.DB.Model(c).Association("EnabledCategories").Replace(categories)
}

func (r *CohortRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Cohort{}, id).Error
}

func (r *CohortRepository) AddMember(m *model.CohortMembership) error {
	return r.DB.Create(m).Error
}

func (r *CohortRepository) RemoveMember(cohortID, userID uint) error {
	return r.DB.Where("cohort_id = ? AND user_id = ?", cohortID, userID).
		Delete(&model.CohortMembership{}).Error
}

func (r *CohortRepository) ListMembers(cohortID uint) ([]model.CohortMembership, error) {
	var ms []model.CohortMembership
	err := r.DB.Preload("User").Preload("User.Profile").
		Where("cohort_id = ?", cohortID).Find(&ms).Error
	return ms, err
}

// MemberUserIDs returns the user ids of every cohort member.
func (r *CohortRepository) MemberUserIDs(cohortID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.CohortMembership{}).
		Where("cohort_id = ?", cohortID).Pluck("user_id", &ids).Error
	return ids, err
}

// CategoriesForUser returns the categories enabled for a candidate through
// any of their active cohorts.
func (r *CohortRepository) CategoriesForUser(userID uint) ([]model.TestCategory, error) {
	var categories []model.TestCategory
	err := r.DB.
		Joins("JOIN cohort_categories ON cohort_categories.test_category_id = test_categories.id").
		Joins("JOIN cohorts ON cohorts.id = cohort_categories.cohort_id AND cohorts.is_active = ? AND cohorts.deleted_at IS NULL", true).
		Joins("JOIN cohort_memberships ON cohort_memberships.cohort_id = cohorts.id AND cohort_memberships.deleted_at IS NULL").
		Where("cohort_memberships.user_id = ?", userID).
		Distinct().Find(&categories).Error
	return categories, err
}
