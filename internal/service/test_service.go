package service

import (
	"errors"

	"mri_screening_backend/internal/model"
	"mri_screening_backend/internal/repository"
	"mri_screening_backend/internal/util"

	"gorm.io/gorm"
)

type TestService struct {
	TestRepo     *repository.TestRepository
	TopicRepo    *repository.TopicRepository
	QuestionRepo *repository.QuestionRepository
	CohortRepo   *repository.CohortRepository
	AttemptRepo  *repository.AttemptRepository
}

func NewTestService(
	testRepo *repository.TestRepository,
	topicRepo *repository.TopicRepository,
	questionRepo *repository.QuestionRepository,
	cohortRepo *repository.CohortRepository,
	attemptRepo *repository.AttemptRepository,
) *TestService {
	return &TestService{
		TestRepo:     testRepo,
		TopicRepo:    topicRepo,
		QuestionRepo: questionRepo,
		CohortRepo:   cohortRepo,
		AttemptRepo:  attemptRepo,
	}
}

type TestRequest struct {
	CategoryID             uint   `json:"categoryId" binding:"required"`
	Title                  string `json:"title" binding:"required,max=200"`
	Description            string `json:"description"`
	TimeLimitMinutes       int    `json:"timeLimitMinutes" binding:"required,min=1"`
	PassingScore           int    `json:"passingScore" binding:"min=0,max=100"`
	AutoGenerateFromTopics bool   `json:"autoGenerateFromTopics"`
	QuestionsPerTopic      int    `json:"questionsPerTopic" binding:"min=0"`
	QuestionIDs            []uint `json:"questionIds"`
	IsActive               bool   `json:"isActive"`
}

func (s *TestService) Create(req TestRequest) (*model.Test, error) {
	t := &model.Test{
		CategoryID:             req.CategoryID,
		Title:                  req.Title,
		Description:            req.Description,
		TimeLimitMinutes:       req.TimeLimitMinutes,
		PassingScore:           req.PassingScore,
		AutoGenerateFromTopics: req.AutoGenerateFromTopics,
		QuestionsPerTopic:      req.QuestionsPerTopic,
		IsActive:               req.IsActive,
	}
	if err := s.TestRepo.Create(t); err != nil {
		return nil, err
	}
	if len(req.QuestionIDs) > 0 {
		if err := s.assignQuestions(t, req.QuestionIDs); err != nil {
			return nil, err
		}
	}
	return s.TestRepo.FindByID(t.ID)
}

func (s *TestService) Update(id uint, req TestRequest) (*model.Test, error) {
	t, err := s.TestRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrTestNotFound
	}

	t.CategoryID = req.CategoryID
	t.Title = req.Title
	t.Description = req.Description
	t.TimeLimitMinutes = req.TimeLimitMinutes
	t.PassingScore = req.PassingScore
	t.AutoGenerateFromTopics = req.AutoGenerateFromTopics
	t.QuestionsPerTopic = req.QuestionsPerTopic
	t.IsActive = req.IsActive
	if err := s.TestRepo.Update(t); err != nil {
		return nil, err
	}
	if req.QuestionIDs != nil {
		if err := s.assignQuestions(t, req.QuestionIDs); err != nil {
			return nil, err
		}
	}
	return s.TestRepo.FindByID(t.ID)
}

func (s *TestService) assignQuestions(t *model.Test, ids []uint) error {
	questions, err := s.QuestionRepo.FindByIDs(ids)
	if err != nil {
		return err
	}
	return s.TestRepo.ReplaceQuestions(t, questions)
}

func (s *TestService) Delete(id uint) error {
	return s.TestRepo.Delete(id)
}

func (s *TestService) List(page, limit int) ([]model.Test, int64, error) {
	return s.TestRepo.List(page, limit)
}

// AvailableTestView is the candidate-facing test listing, with the
// candidate's own recent attempts attached.
type AvailableTestView struct {
	Test             model.Test          `json:"test"`
	PreviousAttempts []model.TestAttempt `json:"previousAttempts"`
}

// ListAvailable returns active tests. Candidates in at least one cohort only
// see tests of the categories their cohorts enable; candidates outside any
// cohort see every active test.
func (s *TestService) ListAvailable(userID uint) ([]model.Test, error) {
	categories, err := s.CohortRepo.CategoriesForUser(userID)
	if err != nil {
		return nil, err
	}

	var categoryIDs []uint
	for _, c := range categories {
		if c.IsActive {
			categoryIDs = append(categoryIDs, c.ID)
		}
	}

	return s.TestRepo.ListActive(categoryIDs)
}

func (s *TestService) GetDetail(testID, userID uint) (*AvailableTestView, error) {
	t, err := s.TestRepo.FindActiveByID(testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}

	attempts, err := s.AttemptRepo.ListByUser(userID, 5)
	if err != nil {
		return nil, err
	}
	own := make([]model.TestAttempt, 0, len(attempts))
	for _, a := range attempts {
		if a.TestID == testID {
			own = append(own, a)
		}
	}

	return &AvailableTestView{Test: *t, PreviousAttempts: own}, nil
}

// GenerateQuestionSet builds the ordered question id list for one attempt.
// Auto-generated tests draw QuestionsPerTopic random active questions from
// every active topic of the test's category; fixed tests use the assigned
// list ordered by difficulty.
func (s *TestService) GenerateQuestionSet(t *model.Test) ([]uint, error) {
	if !t.AutoGenerateFromTopics {
		ids := make([]uint, 0, len(t.Questions))
		for _, q := range t.Questions {
			if q.IsActive {
				ids = append(ids, q.ID)
			}
		}
		return ids, nil
	}

	topics, err := s.TopicRepo.ListActiveByCategory(t.CategoryID)
	if err != nil {
		return nil, err
	}

	perTopic := t.QuestionsPerTopic
	if perTopic <= 0 {
		perTopic = 5
	}

	var ids []uint
	for _, topic := range topics {
		questions, err := s.QuestionRepo.RandomActiveByTopic(topic.ID, perTopic)
		if err != nil {
			return nil, err
		}
		for _, q := range questions {
			ids = append(ids, q.ID)
		}
	}
	return ids, nil
}
