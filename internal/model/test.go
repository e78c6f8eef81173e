package model

// swagger:model Test
type Test struct {
	BaseModel
	CategoryID uint          `gorm:"index;type:bigint unsigned" json:"categoryId"`
	Category   *TestCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	Title            string `gorm:"size:200;not null" json:"title"`
	Description      string `gorm:"type:text" json:"description"`
	TimeLimitMinutes int    `gorm:"default:30" json:"timeLimitMinutes"`
	PassingScore     int    `gorm:"default:70" json:"passingScore"` // percent

	// When set, each attempt draws QuestionsPerTopic random active questions
	// from every active topic of the category instead of the fixed list.
	AutoGenerateFromTopics bool `gorm:"default:false" json:"autoGenerateFromTopics"`
	QuestionsPerTopic      int  `gorm:"default:5" json:"questionsPerTopic"`

	Questions []Question `gorm:"many2many:test_questions;" json:"questions,omitempty"`

	IsActive bool `gorm:"default:true" json:"isActive"`
}

func (Test) TableName() string {
	return "tests"
}
