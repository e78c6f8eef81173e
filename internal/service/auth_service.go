package service

import (
	"errors"
	"time"

	"mri_screening_backend/internal/config"
	"mri_screening_backend/internal/model"
	"mri_screening_backend/internal/repository"
	"mri_screening_backend/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

// RegistrationRequest collects the full candidate intake form.
type RegistrationRequest struct {
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`

	PhoneNumber string `json:"phoneNumber" binding:"required,max=20"`
	DateOfBirth string `json:"dateOfBirth" binding:"required"` // YYYY-MM-DD
	NationalID  string `json:"nationalId" binding:"required,max=30"`
	Gender      string `json:"gender" binding:"required,oneof=male female other prefer_not_to_say"`

	Province string `json:"province" binding:"required"`
	City     string `json:"city" binding:"required,max=100"`

	EmploymentStatus string `json:"employmentStatus" binding:"required,oneof=employed unemployed student self_employed"`
	CurrentEmployer  string `json:"currentEmployer" binding:"max=200"`
	YearsExperience  string `json:"yearsExperience" binding:"required,oneof=0 1-2 3-5 5+"`
	HasMRIExperience bool   `json:"hasMriExperience"`
	EducationLevel   string `json:"educationLevel" binding:"required,oneof=diploma degree masters other"`
	Institution      string `json:"institution" binding:"max=200"`
	LicenseNumber    string `json:"licenseNumber" binding:"max=50"`

	TermsAccepted         bool `json:"termsAccepted" binding:"required"`
	DataProcessingConsent bool `json:"dataProcessingConsent" binding:"required"`
}

func (s *AuthService) Register(req RegistrationRequest) (*model.User, error) {
	_, err := s.UserRepo.FindByEmail(req.Email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	exists, err := s.UserRepo.NationalIDExists(req.NationalID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrNationalIDRegistered
	}

	dob, err := time.Parse(util.DateFormat, req.DateOfBirth)
	if err != nil {
		return nil, errors.New("invalid date of birth, expected YYYY-MM-DD")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  string(hashedPassword),
		Role:      model.Candidate,
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, err
	}

	now := time.Now()
	profile := &model.UserProfile{
		UserID:                user.ID,
		PhoneNumber:           req.PhoneNumber,
		DateOfBirth:           &dob,
		NationalID:            req.NationalID,
		Gender:                req.Gender,
		Province:              req.Province,
		City:                  req.City,
		EmploymentStatus:      req.EmploymentStatus,
		CurrentEmployer:       req.CurrentEmployer,
		YearsExperience:       req.YearsExperience,
		HasMRIExperience:      req.HasMRIExperience,
		EducationLevel:        req.EducationLevel,
		Institution:           req.Institution,
		LicenseNumber:         req.LicenseNumber,
		TermsAccepted:         req.TermsAccepted,
		DataProcessingConsent: req.DataProcessingConsent,
	}
	if req.TermsAccepted {
		profile.TermsAcceptedAt = &now
	}
	if req.DataProcessingConsent {
		profile.DataConsentAt = &now
	}
	if err := s.UserRepo.SaveProfile(profile); err != nil {
		return nil, err
	}
	user.Profile = profile

	return user, nil
}

func (s *AuthService) Login(email, password string) (string, *model.User, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	if user.Disabled {
		return "", nil, util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	if err := s.UserRepo.UpdateLastLogin(user.ID); err != nil {
		return "", nil, err
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) GetCurrentUser(c *gin.Context) *model.User {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return nil
	}

	user, _ := s.UserRepo.FindByID(claims.UserID)
	return user
}
