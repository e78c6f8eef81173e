package model

import (
	"encoding/json"
	"time"
)

type ProctoringEventType string

const (
	EventWebcamSnapshot ProctoringEventType = "webcam_snapshot"
	EventScreenSnapshot ProctoringEventType = "screen_snapshot"
	EventTabSwitch      ProctoringEventType = "tab_switch"
	EventFullscreenExit ProctoringEventType = "fullscreen_exit"
	EventRightClick     ProctoringEventType = "right_click"
	EventCopyPaste      ProctoringEventType = "copy_paste"
	EventWindowBlur     ProctoringEventType = "window_blur"
	EventDevToolsOpen   ProctoringEventType = "devtools_open"
	EventFaceNotVisible ProctoringEventType = "face_not_visible"
)

type EventSeverity string

const (
	SeverityInfo     EventSeverity = "info"
	SeverityWarning  EventSeverity = "warning"
	SeverityCritical EventSeverity = "critical"
)

// ClassifySeverity maps a browser/webcam signal to its review severity.
// Critical events count toward the violation window that can flag an attempt.
func ClassifySeverity(t ProctoringEventType) EventSeverity {
	switch t {
	case EventTabSwitch, EventFullscreenExit, EventDevToolsOpen:
		return SeverityCritical
	case EventRightClick, EventCopyPaste, EventWindowBlur, EventFaceNotVisible:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// swagger:model ProctoringEvent
type ProctoringEvent struct {
	BaseModel
	AttemptID uint         `gorm:"index;type:bigint unsigned;not null" json:"attemptId"`
	Attempt   *TestAttempt `gorm:"foreignKey:AttemptID" json:"-"`

	EventType ProctoringEventType `gorm:"size:30;not null" json:"eventType"`
	Severity  EventSeverity       `gorm:"size:10;default:'info'" json:"severity"`

	ImagePath string          `gorm:"size:255" json:"imagePath,omitempty"`
	Metadata  json.RawMessage `gorm:"type:json" json:"metadata,omitempty"`

	Timestamp time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}

func (ProctoringEvent) TableName() string {
	return "proctoring_events"
}
