package model

// Cohort groups candidates that share the same enabled test categories,
// typically one intake round.
// swagger:model Cohort
type Cohort struct {
	BaseModel
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	EnabledCategories []TestCategory `gorm:"many2many:cohort_categories;" json:"enabledCategories,omitempty"`

	IsActive bool `gorm:"default:true" json:"isActive"`

	Memberships []CohortMembership `gorm:"foreignKey:CohortID" json:"memberships,omitempty"`
}

func (Cohort) TableName() string {
	return "cohorts"
}

// swagger:model CohortMembership
type CohortMembership struct {
	BaseModel
	CohortID uint    `gorm:"uniqueIndex:idx_cohort_user;type:bigint unsigned;not null" json:"cohortId"`
	Cohort   *Cohort `gorm:"foreignKey:CohortID" json:"-"`
	UserID   uint    `gorm:"uniqueIndex:idx_cohort_user;type:bigint unsigned;not null" json:"userId"`
	User     *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	AddedByID uint `gorm:"type:bigint unsigned" json:"addedById"`
}

func (CohortMembership) TableName() string {
	return "cohort_memberships"
}
