package model

import (
	"encoding/json"
	"time"
)

// ClickedPoint is where a candidate clicked on a DICOM hotspot question.
type ClickedPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// swagger:model Answer
type Answer struct {
	BaseModel
	AttemptID uint         `gorm:"uniqueIndex:idx_attempt_question;type:bigint unsigned;not null" json:"attemptId"`
	Attempt   *TestAttempt `gorm:"foreignKey:AttemptID" json:"-"`

	QuestionID uint      `gorm:"uniqueIndex:idx_attempt_question;type:bigint unsigned;not null" json:"questionId"`
	Question   *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`

	SelectedOption     *AnswerOption   `gorm:"size:1" json:"selectedOption,omitempty"`
	ClickedCoordinates json.RawMessage `gorm:"type:json" json:"clickedCoordinates,omitempty"`

	IsCorrect        *bool `json:"isCorrect,omitempty"`
	TimeSpentSeconds int   `gorm:"default:0" json:"timeSpentSeconds"`

	AnsweredAt time.Time `gorm:"autoCreateTime" json:"answeredAt"`
}

func (Answer) TableName() string {
	return "answers"
}

// Grade evaluates the answer against its question and records the verdict.
// Unanswered questions grade as incorrect.
func (a *Answer) Grade(q *Question) bool {
	correct := false
	switch {
	case q.QuestionType == QuestionDICOM && len(a.ClickedCoordinates) > 0:
		var p ClickedPoint
		if json.Unmarshal(a.ClickedCoordinates, &p) == nil {
			correct = q.Hotspot().Contains(p.X, p.Y)
		}
	case a.SelectedOption != nil:
		correct = *a.SelectedOption == q.CorrectOption
	}
	a.IsCorrect = &correct
	return correct
}

func (a *Answer) ClickedPoint() (ClickedPoint, bool) {
	if len(a.ClickedCoordinates) == 0 {
		return ClickedPoint{}, false
	}
	var p ClickedPoint
	if err := json.Unmarshal(a.ClickedCoordinates, &p); err != nil {
		return ClickedPoint{}, false
	}
	return p, true
}

func (a *Answer) SetClickedPoint(p ClickedPoint) {
	raw, _ := json.Marshal(p)
	a.ClickedCoordinates = raw
}
