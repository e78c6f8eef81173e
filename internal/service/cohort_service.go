package service

import (
	"errors"

	"mri_screening_backend/internal/model"
	"mri_screening_backend/internal/repository"
	"mri_screening_backend/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CohortService struct {
	CohortRepo   *repository.CohortRepository
	CategoryRepo *repository.CategoryRepository
	UserRepo     *repository.UserRepository
	TestRepo     *repository.TestRepository
	AttemptRepo  *repository.AttemptRepository
	TestSvc      *TestService
	Logger       *zap.Logger
}

func NewCohortService(
	cohortRepo *repository.CohortRepository,
	categoryRepo *repository.CategoryRepository,
	userRepo *repository.UserRepository,
	testRepo *repository.TestRepository,
	attemptRepo *repository.AttemptRepository,
	testSvc *TestService,
	logger *zap.Logger,
) *CohortService {
	return &CohortService{
		CohortRepo:   cohortRepo,
		CategoryRepo: categoryRepo,
		UserRepo:     userRepo,
		TestRepo:     testRepo,
		AttemptRepo:  attemptRepo,
		TestSvc:      testSvc,
		Logger:       logger,
	}
}

type CohortRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	CategoryIDs []uint `json:"categoryIds"`
	IsActive    *bool  `json:"isActive"`
}

func (s *CohortService) Create(req CohortRequest) (*model.Cohort, error) {
	cohort := &model.Cohort{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		cohort.IsActive = *req.IsActive
	}
	if err := s.CohortRepo.Create(cohort); err != nil {
		return nil, err
	}
	if len(req.CategoryIDs) > 0 {
		if err := s.assignCategories(cohort, req.CategoryIDs); err != nil {
			return nil, err
		}
	}
	return cohort, nil
}

func (s *CohortService) Update(id uint, req CohortRequest) (*model.Cohort, error) {
	cohort, err := s.get(id)
	if err != nil {
		return nil, err
	}
	cohort.Name = req.Name
	cohort.Description = req.Description
	if req.IsActive != nil {
		cohort.IsActive = *req.IsActive
	}
	if err := s.CohortRepo.Update(cohort); err != nil {
		return nil, err
	}
	if req.CategoryIDs != nil {
		if err := s.assignCategories(cohort, req.CategoryIDs); err != nil {
			return nil, err
		}
	}
	return cohort, nil
}

func (s *CohortService) assignCategories(cohort *model.Cohort, ids []uint) error {
	categories := make([]model.TestCategory, 0, len(ids))
	for _, id := range ids {
		category, err := s.CategoryRepo.FindByID(id)
		if err != nil {
			return errors.New("category not found")
		}
		categories = append(categories, *category)
	}
	return s.CohortRepo.ReplaceCategories(cohort, categories)
}

func (s *CohortService) get(id uint) (*model.Cohort, error) {
	cohort, err := s.CohortRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCohortNotFound
		}
		return nil, err
	}
	return cohort, nil
}

func (s *CohortService) Get(id uint) (*model.Cohort, error) {
	return s.get(id)
}

func (s *CohortService) List(page, limit int) ([]model.Cohort, int64, error) {
	return s.CohortRepo.List(page, limit)
}

func (s *CohortService) Delete(id uint) error {
	return s.CohortRepo.Delete(id)
}

func (s *CohortService) AddMember(cohortID, userID, addedByID uint) (*model.CohortMembership, error) {
	if _, err := s.get(cohortID); err != nil {
		return nil, err
	}
	if _, err := s.UserRepo.FindByID(userID); err != nil {
		return nil, util.ErrUserNotFound
	}
	membership := &model.CohortMembership{
		CohortID:  cohortID,
		UserID:    userID,
		AddedByID: addedByID,
	}
	if err := s.CohortRepo.AddMember(membership); err != nil {
		return nil, err
	}
	return membership, nil
}

func (s *CohortService) RemoveMember(cohortID, userID uint) error {
	return s.CohortRepo.RemoveMember(cohortID, userID)
}

func (s *CohortService) ListMembers(cohortID uint) ([]model.CohortMembership, error) {
	if _, err := s.get(cohortID); err != nil {
		return nil, err
	}
	return s.CohortRepo.ListMembers(cohortID)
}

type BulkAssignReport struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	UserIDs []uint   `json:"userIds"`
	Errors  []string `json:"errors,omitempty"`
}

// BulkAssignTest pre-creates an attempt per cohort member so an intake round
// can be opened in one step. Members with an attempt on the test already are
// skipped. Attempts start unconsented; the candidate still has to accept
// proctoring before the clock starts, so StartedAt is rewritten on first open.
func (s *CohortService) BulkAssignTest(cohortID, testID uint) (*BulkAssignReport, error) {
	if _, err := s.get(cohortID); err != nil {
		return nil, err
	}
	test, err := s.TestRepo.FindActiveByID(testID)
	if err != nil {
		return nil, util.ErrTestNotFound
	}

	userIDs, err := s.CohortRepo.MemberUserIDs(cohortID)
	if err != nil {
		return nil, err
	}

	report := &BulkAssignReport{UserIDs: []uint{}}
	var batch []model.TestAttempt
	for _, userID := range userIDs {
		if _, err := s.AttemptRepo.FindActiveByUserAndTest(userID, testID); err == nil {
			report.Skipped++
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		questionIDs, err := s.TestSvc.GenerateQuestionSet(test)
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
			continue
		}
		attempt := model.TestAttempt{
			UserID: userID,
			TestID: testID,
			Status: model.AttemptStarted,
		}
		attempt.SetQuestionIDs(questionIDs)
		batch = append(batch, attempt)
		report.UserIDs = append(report.UserIDs, userID)
	}

	if len(batch) > 0 {
		if err := s.AttemptRepo.CreateBatch(batch); err != nil {
			return nil, err
		}
	}
	report.Created = len(batch)

	s.Logger.Info("cohort test assignment",
		zap.Uint("cohort_id", cohortID),
		zap.Uint("test_id", testID),
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped))
	return report, nil
}
