package model

type QuestionType string

const (
	QuestionMCQ     QuestionType = "mcq"
	QuestionImage   QuestionType = "image"
	QuestionSpatial QuestionType = "spatial"
	QuestionDICOM   QuestionType = "dicom"
)

type AnswerOption string

const (
	OptionA AnswerOption = "a"
	OptionB AnswerOption = "b"
	OptionC AnswerOption = "c"
	OptionD AnswerOption = "d"
)

// HotspotRegion is the correct click area of a DICOM image question,
// in rendered-image pixel coordinates.
type HotspotRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r HotspotRegion) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// swagger:model Question
type Question struct {
	BaseModel
	TopicID uint           `gorm:"index;type:bigint unsigned" json:"topicId"`
	Topic   *QuestionTopic `gorm:"foreignKey:TopicID" json:"topic,omitempty"`

	QuestionType QuestionType `gorm:"size:20;default:'mcq'" json:"questionType"`
	QuestionText string       `gorm:"type:text;not null" json:"questionText"`
	ImagePath    string       `gorm:"size:255" json:"imagePath"`

	OptionA string `gorm:"size:500" json:"optionA"`
	OptionB string `gorm:"size:500" json:"optionB"`
	OptionC string `gorm:"size:500" json:"optionC"`
	OptionD string `gorm:"size:500" json:"optionD"`

	CorrectOption AnswerOption `gorm:"size:1" json:"-"`

	// DICOM hotspot questions are answered by clicking, not by option.
	HotspotX      int `gorm:"default:0" json:"-"`
	HotspotY      int `gorm:"default:0" json:"-"`
	HotspotWidth  int `gorm:"default:0" json:"-"`
	HotspotHeight int `gorm:"default:0" json:"-"`

	Explanation      string `gorm:"type:text" json:"explanation,omitempty"`
	DifficultyLevel  int    `gorm:"default:1" json:"difficultyLevel"` // 1=easy, 5=hard
	Points           int    `gorm:"default:1" json:"points"`
	TimeLimitSeconds int    `gorm:"default:60" json:"timeLimitSeconds"`
	IsActive         bool   `gorm:"default:true" json:"isActive"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) Hotspot() HotspotRegion {
	return HotspotRegion{X: q.HotspotX, Y: q.HotspotY, Width: q.HotspotWidth, Height: q.HotspotHeight}
}
