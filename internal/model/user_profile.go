package model

import (
	"time"

	"gorm.io/gorm"
)

// UserProfile carries the candidate intake data collected at registration.
// ProfileCompleted is derived, never written by handlers directly.
// swagger:model UserProfile
type UserProfile struct {
	BaseModel
	UserID uint `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"userId"`

	PhoneNumber string     `gorm:"size:20" json:"phoneNumber"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	NationalID  string     `gorm:"size:30;uniqueIndex" json:"nationalId"`
	Gender      string     `gorm:"size:20" json:"gender"`

	Province      string `gorm:"size:50" json:"province"`
	City          string `gorm:"size:100" json:"city"`
	StreetAddress string `gorm:"size:255" json:"streetAddress"`

	EmploymentStatus string `gorm:"size:30" json:"employmentStatus"`
	CurrentEmployer  string `gorm:"size:200" json:"currentEmployer"`
	YearsExperience  string `gorm:"size:10" json:"yearsExperience"` // 0, 1-2, 3-5, 5+
	HasMRIExperience bool   `gorm:"default:false" json:"hasMriExperience"`
	EducationLevel   string `gorm:"size:30" json:"educationLevel"`
	Institution      string `gorm:"size:200" json:"institution"`
	LicenseNumber    string `gorm:"size:50" json:"licenseNumber"`

	CVPath string `gorm:"size:255" json:"cvPath"`

	TermsAccepted         bool       `gorm:"default:false" json:"termsAccepted"`
	TermsAcceptedAt       *time.Time `json:"termsAcceptedAt,omitempty"`
	DataProcessingConsent bool       `gorm:"default:false" json:"dataProcessingConsent"`
	DataConsentAt         *time.Time `json:"dataConsentAt,omitempty"`

	ProfileCompleted bool `gorm:"default:false" json:"profileCompleted"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// RequiredFieldLabels maps profile fields that count toward completion to the
// label shown to the candidate when the field is still missing.
func (p *UserProfile) RequiredFieldLabels() map[string]bool {
	return map[string]bool{
		"Phone Number":            p.PhoneNumber != "",
		"Date of Birth":           p.DateOfBirth != nil,
		"National ID":             p.NationalID != "",
		"Province":                p.Province != "",
		"City":                    p.City != "",
		"Street Address":          p.StreetAddress != "",
		"Employment Status":       p.EmploymentStatus != "",
		"Education Level":         p.EducationLevel != "",
		"Terms Accepted":          p.TermsAccepted,
		"Data Processing Consent": p.DataProcessingConsent,
		"CV Document":             p.CVPath != "",
	}
}

func (p *UserProfile) BeforeSave(tx *gorm.DB) error {
	complete := true
	for _, ok := range p.RequiredFieldLabels() {
		if !ok {
			complete = false
			break
		}
	}
	p.ProfileCompleted = complete
	return nil
}
