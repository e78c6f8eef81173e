package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"mri_screening_backend/internal/model"
	"mri_screening_backend/internal/repository"
	"mri_screening_backend/internal/util"

	"github.com/google/uuid"
)

type UserService struct {
	UserRepo *repository.UserRepository
	Storage  *StorageService
}

func NewUserService(userRepo *repository.UserRepository, storage *StorageService) *UserService {
	return &UserService{UserRepo: userRepo, Storage: storage}
}

type ProfileUpdateRequest struct {
	PhoneNumber      string `json:"phoneNumber" binding:"max=20"`
	Province         string `json:"province"`
	City             string `json:"city" binding:"max=100"`
	StreetAddress    string `json:"streetAddress" binding:"max=255"`
	EmploymentStatus string `json:"employmentStatus" binding:"omitempty,oneof=employed unemployed student self_employed"`
	CurrentEmployer  string `json:"currentEmployer" binding:"max=200"`
	EducationLevel   string `json:"educationLevel" binding:"omitempty,oneof=diploma degree masters other"`
	Institution      string `json:"institution" binding:"max=200"`
	LicenseNumber    string `json:"licenseNumber" binding:"max=50"`
}

func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	return s.UserRepo.FindByID(userID)
}

func (s *UserService) UpdateProfile(userID uint, req ProfileUpdateRequest) (*model.UserProfile, error) {
	profile, err := s.UserRepo.FindProfileByUserID(userID)
	if err != nil {
		return nil, err
	}

	if req.PhoneNumber != "" {
		profile.PhoneNumber = req.PhoneNumber
	}
	if req.Province != "" {
		profile.Province = req.Province
	}
	if req.City != "" {
		profile.City = req.City
	}
	if req.StreetAddress != "" {
		profile.StreetAddress = req.StreetAddress
	}
	if req.EmploymentStatus != "" {
		profile.EmploymentStatus = req.EmploymentStatus
	}
	if req.CurrentEmployer != "" {
		profile.CurrentEmployer = req.CurrentEmployer
	}
	if req.EducationLevel != "" {
		profile.EducationLevel = req.EducationLevel
	}
	if req.Institution != "" {
		profile.Institution = req.Institution
	}
	if req.LicenseNumber != "" {
		profile.LicenseNumber = req.LicenseNumber
	}

	if err := s.UserRepo.SaveProfile(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// UploadCV stores a candidate's CV document and records its path.
func (s *UserService) UploadCV(ctx context.Context, userID uint, filename string, reader io.Reader, size int64) (*model.UserProfile, error) {
	profile, err := s.UserRepo.FindProfileByUserID(userID)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := util.CVContentTypes[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", util.ErrUnsupportedFileType, ext)
	}
	_, body, err := util.ValidateMimeType(reader, util.AllowedCVMimeTypes)
	if err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("cv/%d_%s%s", userID, uuid.New().String(), ext)
	if _, err := s.Storage.Upload(ctx, objectName, body, size, contentType); err != nil {
		return nil, err
	}

	profile.CVPath = objectName
	if err := s.UserRepo.SaveProfile(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// ProfileCompletion reports how much of the required intake data is present,
// mirroring what the candidate sees as a completion bar.
func (s *UserService) ProfileCompletion(userID uint) (*model.ProfileCompletion, error) {
	profile, err := s.UserRepo.FindProfileByUserID(userID)
	if err != nil {
		return nil, err
	}
	return BuildProfileCompletion(profile), nil
}

func BuildProfileCompletion(profile *model.UserProfile) *model.ProfileCompletion {
	fields := profile.RequiredFieldLabels()

	completed := 0
	missing := make([]string, 0)
	for label, ok := range fields {
		if ok {
			completed++
		} else {
			missing = append(missing, label)
		}
	}

	total := len(fields)
	percentage := completed * 100 / total

	return &model.ProfileCompletion{
		Percentage:     percentage,
		CompletedCount: completed,
		TotalCount:     total,
		MissingFields:  missing,
		IsComplete:     percentage == 100,
	}
}

// Touch updates last-seen without blocking the request path.
func (s *UserService) Touch(userID uint) {
	go s.UserRepo.UpdateLastSeen(userID)
}
