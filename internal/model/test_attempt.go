package model

import (
	"encoding/json"
	"time"
)

type AttemptStatus string

const (
	AttemptStarted    AttemptStatus = "started"
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptExpired    AttemptStatus = "expired"
	AttemptFlagged    AttemptStatus = "flagged"
)

// swagger:model TestAttempt
type TestAttempt struct {
	BaseModel
	UserID uint  `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TestID uint  `gorm:"index;type:bigint unsigned;not null" json:"testId"`
	Test   *Test `gorm:"foreignKey:TestID" json:"test,omitempty"`

	Status AttemptStatus `gorm:"size:20;default:'started'" json:"status"`

	// QuestionSet is the ordered question id list served to this attempt.
	QuestionSet json.RawMessage `gorm:"type:json" json:"questionSet,omitempty"`

	Score  *float64 `json:"score,omitempty"`
	Passed *bool    `json:"passed,omitempty"`

	ConsentGiven     bool       `gorm:"default:false" json:"consentGiven"`
	ConsentTimestamp *time.Time `json:"consentTimestamp,omitempty"`
	IPAddress        string     `gorm:"size:45" json:"-"`
	UserAgent        string     `gorm:"size:255" json:"-"`

	StartedAt        time.Time  `gorm:"autoCreateTime" json:"startedAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	TimeSpentSeconds int        `gorm:"default:0" json:"timeSpentSeconds"`

	FlaggedForPlagiarism bool     `gorm:"default:false" json:"flaggedForPlagiarism"`
	SimilarityScore      *float64 `json:"similarityScore,omitempty"`

	Metadata json.RawMessage `gorm:"type:json" json:"metadata,omitempty"`

	Answers []Answer `gorm:"foreignKey:AttemptID" json:"answers,omitempty"`
}

func (TestAttempt) TableName() string {
	return "test_attempts"
}

// Active reports whether the attempt still accepts answers.
func (a *TestAttempt) Active() bool {
	return a.Status == AttemptStarted || a.Status == AttemptInProgress
}

// IsExpired reports whether the time limit has run out. Completed attempts
// never expire retroactively.
func (a *TestAttempt) IsExpired(now time.Time, timeLimitMinutes int) bool {
	if a.Status == AttemptCompleted {
		return false
	}
	deadline := a.StartedAt.Add(time.Duration(timeLimitMinutes) * time.Minute)
	return now.After(deadline)
}

// TimeRemaining returns whole seconds left on the clock, floored at zero.
func (a *TestAttempt) TimeRemaining(now time.Time, timeLimitMinutes int) int {
	if a.Status == AttemptCompleted {
		return 0
	}
	deadline := a.StartedAt.Add(time.Duration(timeLimitMinutes) * time.Minute)
	remaining := deadline.Sub(now)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Seconds())
}

// QuestionIDs decodes the stored question set. A nil slice means the set has
// not been generated yet.
func (a *TestAttempt) QuestionIDs() []uint {
	if len(a.QuestionSet) == 0 {
		return nil
	}
	var ids []uint
	if err := json.Unmarshal(a.QuestionSet, &ids); err != nil {
		return nil
	}
	return ids
}

func (a *TestAttempt) SetQuestionIDs(ids []uint) {
	raw, _ := json.Marshal(ids)
	a.QuestionSet = raw
}
