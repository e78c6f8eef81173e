package model

// TestCategory is one stage of the four-stage hiring pipeline
// (cognitive ability, detail orientation, trainability, domain knowledge).
// swagger:model TestCategory
type TestCategory struct {
	BaseModel
	Name         string `gorm:"size:100;not null" json:"name"`
	Slug         string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description  string `gorm:"type:text" json:"description"`
	StageNumber  int    `gorm:"uniqueIndex;not null" json:"stageNumber"` // 1-4
	PassingScore int    `gorm:"default:70" json:"passingScore"`          // percent
	IsActive     bool   `gorm:"default:true" json:"isActive"`
}

func (TestCategory) TableName() string {
	return "test_categories"
}
