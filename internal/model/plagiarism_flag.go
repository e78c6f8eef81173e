package model

import "encoding/json"

// PlagiarismFlag records one suspicious attempt pair. A pair is stored once,
// regardless of order.
// swagger:model PlagiarismFlag
type PlagiarismFlag struct {
	BaseModel
	Attempt1ID uint         `gorm:"uniqueIndex:idx_flag_pair;type:bigint unsigned;not null" json:"attempt1Id"`
	Attempt1   *TestAttempt `gorm:"foreignKey:Attempt1ID" json:"attempt1,omitempty"`
	Attempt2ID uint         `gorm:"uniqueIndex:idx_flag_pair;type:bigint unsigned;not null" json:"attempt2Id"`
	Attempt2   *TestAttempt `gorm:"foreignKey:Attempt2ID" json:"attempt2,omitempty"`

	SimilarityPercentage float64         `gorm:"not null" json:"similarityPercentage"`
	MatchingQuestionIDs  json.RawMessage `gorm:"type:json" json:"matchingQuestionIds,omitempty"`

	Reviewed   bool   `gorm:"default:false" json:"reviewed"`
	ReviewNote string `gorm:"type:text" json:"reviewNote,omitempty"`
}

func (PlagiarismFlag) TableName() string {
	return "plagiarism_flags"
}

func (f *PlagiarismFlag) SetMatchingQuestionIDs(ids []uint) {
	raw, _ := json.Marshal(ids)
	f.MatchingQuestionIDs = raw
}
