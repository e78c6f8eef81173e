package model

// swagger:model QuestionTopic
type QuestionTopic struct {
	BaseModel
	CategoryID  uint          `gorm:"index;type:bigint unsigned;not null" json:"categoryId"`
	Category    *TestCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Name        string        `gorm:"size:100;not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	IsActive    bool          `gorm:"default:true" json:"isActive"`
}

func (QuestionTopic) TableName() string {
	return "question_topics"
}
