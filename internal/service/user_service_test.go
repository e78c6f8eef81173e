package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"mri_screening_backend/internal/config"
	"mri_screening_backend/internal/model"
	"mri_screening_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func userFixture(t *testing.T) (*gorm.DB, *UserService) {
	t.Helper()
	db := newTestDB(t)
	repos := newTestRepos(db)
	cfg := &config.Config{}
	cfg.Storage.Type = "local"
	cfg.Storage.LocalPath = t.TempDir()
	return db, NewUserService(repos.user, NewStorageService(cfg))
}

func TestBuildProfileCompletion(t *testing.T) {
	dob := time.Date(1995, 4, 12, 0, 0, 0, 0, time.UTC)
	profile := &model.UserProfile{
		PhoneNumber:           "+27821234567",
		DateOfBirth:           &dob,
		NationalID:            "9504125800089",
		Province:              "Gauteng",
		City:                  "Johannesburg",
		EmploymentStatus:      "employed",
		EducationLevel:        "degree",
		TermsAccepted:         true,
		DataProcessingConsent: true,
	}

	// street address and CV are still missing
	completion := BuildProfileCompletion(profile)
	assert.Equal(t, 11, completion.TotalCount)
	assert.Equal(t, 9, completion.CompletedCount)
	assert.Equal(t, 81, completion.Percentage)
	assert.False(t, completion.IsComplete)
	assert.ElementsMatch(t, []string{"Street Address", "CV Document"}, completion.MissingFields)

	profile.StreetAddress = "12 Hospital Rd"
	profile.CVPath = "/uploads/cv/1.pdf"
	completion = BuildProfileCompletion(profile)
	assert.Equal(t, 100, completion.Percentage)
	assert.True(t, completion.IsComplete)
	assert.Empty(t, completion.MissingFields)
}

func TestUpdateProfile(t *testing.T) {
	db, svc := userFixture(t)
	user := seedUser(t, db, "profile@example.com")
	require.NoError(t, db.Create(&model.UserProfile{UserID: user.ID}).Error)

	profile, err := svc.UpdateProfile(user.ID, ProfileUpdateRequest{
		PhoneNumber: "+27829999999",
		City:        "Cape Town",
	})
	require.NoError(t, err)
	assert.Equal(t, "+27829999999", profile.PhoneNumber)
	assert.Equal(t, "Cape Town", profile.City)
}

func TestUploadCVValidatesExtension(t *testing.T) {
	db, svc := userFixture(t)
	user := seedUser(t, db, "cv@example.com")
	require.NoError(t, db.Create(&model.UserProfile{UserID: user.ID}).Error)

	content := bytes.NewReader([]byte("%PDF-1.4 fake"))
	profile, err := svc.UploadCV(context.Background(), user.ID, "resume.pdf", content, int64(content.Len()))
	require.NoError(t, err)
	assert.NotEmpty(t, profile.CVPath)

	_, err = svc.UploadCV(context.Background(), user.ID, "resume.exe", bytes.NewReader([]byte("MZ")), 2)
	assert.ErrorIs(t, err, util.ErrUnsupportedFileType)

	// a pdf extension does not excuse a non-document payload
	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")
	_, err = svc.UploadCV(context.Background(), user.ID, "resume.pdf", bytes.NewReader(gif), int64(len(gif)))
	assert.ErrorIs(t, err, util.ErrUnsupportedFileType)
}
