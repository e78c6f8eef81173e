package service

import (
	"errors"

	"mri_screening_backend/internal/model"
	"mri_screening_backend/internal/repository"
	"mri_screening_backend/internal/util"

	"gorm.io/gorm"
)

type QuestionService struct {
	QuestionRepo *repository.QuestionRepository
	TopicRepo    *repository.TopicRepository
	CategoryRepo *repository.CategoryRepository
}

func NewQuestionService(
	questionRepo *repository.QuestionRepository,
	topicRepo *repository.TopicRepository,
	categoryRepo *repository.CategoryRepository,
) *QuestionService {
	return &QuestionService{
		QuestionRepo: questionRepo,
		TopicRepo:    topicRepo,
		CategoryRepo: categoryRepo,
	}
}

type QuestionRequest struct {
	TopicID      uint               `json:"topicId" binding:"required"`
	QuestionType model.QuestionType `json:"questionType" binding:"required,oneof=mcq image spatial dicom"`
	QuestionText string             `json:"questionText" binding:"required"`
	ImagePath    string             `json:"imagePath"`

	OptionA string `json:"optionA"`
	OptionB string `json:"optionB"`
	OptionC string `json:"optionC"`
	OptionD string `json:"optionD"`

	CorrectOption model.AnswerOption `json:"correctOption" binding:"omitempty,oneof=a b c d"`

	HotspotX      int `json:"hotspotX" binding:"min=0"`
	HotspotY      int `json:"hotspotY" binding:"min=0"`
	HotspotWidth  int `json:"hotspotWidth" binding:"min=0"`
	HotspotHeight int `json:"hotspotHeight" binding:"min=0"`

	Explanation      string `json:"explanation"`
	DifficultyLevel  int    `json:"difficultyLevel" binding:"omitempty,min=1,max=5"`
	Points           int    `json:"points" binding:"omitempty,min=1"`
	TimeLimitSeconds int    `json:"timeLimitSeconds" binding:"omitempty,min=10"`
	IsActive         *bool  `json:"isActive"`
}

func (req *QuestionRequest) validate() error {
	if req.QuestionType == model.QuestionDICOM {
		if req.HotspotWidth <= 0 || req.HotspotHeight <= 0 {
			return errors.New("dicom questions require a hotspot region")
		}
		if req.ImagePath == "" {
			return errors.New("dicom questions require an image")
		}
		return nil
	}
	if req.CorrectOption == "" {
		return errors.New("option questions require a correct option")
	}
	return nil
}

func (req *QuestionRequest) apply(q *model.Question) {
	q.TopicID = req.TopicID
	q.QuestionType = req.QuestionType
	q.QuestionText = req.QuestionText
	q.ImagePath = req.ImagePath
	q.OptionA = req.OptionA
	q.OptionB = req.OptionB
	q.OptionC = req.OptionC
	q.OptionD = req.OptionD
	q.CorrectOption = req.CorrectOption
	q.HotspotX = req.HotspotX
	q.HotspotY = req.HotspotY
	q.HotspotWidth = req.HotspotWidth
	q.HotspotHeight = req.HotspotHeight
	q.Explanation = req.Explanation
	if req.DifficultyLevel > 0 {
		q.DifficultyLevel = req.DifficultyLevel
	}
	if req.Points > 0 {
		q.Points = req.Points
	}
	if req.TimeLimitSeconds > 0 {
		q.TimeLimitSeconds = req.TimeLimitSeconds
	}
	if req.IsActive != nil {
		q.IsActive = *req.IsActive
	}
}

func (s *QuestionService) Create(req QuestionRequest) (*model.Question, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if _, err := s.TopicRepo.FindByID(req.TopicID); err != nil {
		return nil, errors.New("topic not found")
	}

	q := &model.Question{
		DifficultyLevel:  1,
		Points:           1,
		TimeLimitSeconds: 60,
		IsActive:         true,
	}
	req.apply(q)
	if err := s.QuestionRepo.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) Update(id uint, req QuestionRequest) (*model.Question, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	q, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	req.apply(q)
	if err := s.QuestionRepo.Update(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) Get(id uint) (*model.Question, error) {
	q, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) Delete(id uint) error {
	return s.QuestionRepo.Delete(id)
}

func (s *QuestionService) List(topicID uint, page, limit int) ([]model.Question, int64, error) {
	return s.QuestionRepo.List(topicID, page, limit)
}

type TopicRequest struct {
	CategoryID  uint   `json:"categoryId" binding:"required"`
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

func (s *QuestionService) CreateTopic(req TopicRequest) (*model.QuestionTopic, error) {
	if _, err := s.CategoryRepo.FindByID(req.CategoryID); err != nil {
		return nil, errors.New("category not found")
	}
	topic := &model.QuestionTopic{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		topic.IsActive = *req.IsActive
	}
	if err := s.TopicRepo.Create(topic); err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *QuestionService) UpdateTopic(id uint, req TopicRequest) (*model.QuestionTopic, error) {
	topic, err := s.TopicRepo.FindByID(id)
	if err != nil {
		return nil, errors.New("topic not found")
	}
	topic.CategoryID = req.CategoryID
	topic.Name = req.Name
	topic.Description = req.Description
	if req.IsActive != nil {
		topic.IsActive = *req.IsActive
	}
	if err := s.TopicRepo.Update(topic); err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *QuestionService) DeleteTopic(id uint) error {
	return s.TopicRepo.Delete(id)
}

func (s *QuestionService) ListTopics(categoryID uint) ([]model.QuestionTopic, error) {
	return s.TopicRepo.ListByCategory(categoryID)
}

type CategoryRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	Slug         string `json:"slug" binding:"required,max=100"`
	Description  string `json:"description"`
	StageNumber  int    `json:"stageNumber" binding:"required,min=1,max=4"`
	PassingScore int    `json:"passingScore" binding:"omitempty,min=0,max=100"`
	IsActive     *bool  `json:"isActive"`
}

func (s *QuestionService) CreateCategory(req CategoryRequest) (*model.TestCategory, error) {
	category := &model.TestCategory{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		StageNumber:  req.StageNumber,
		PassingScore: req.PassingScore,
		IsActive:     true,
	}
	if category.PassingScore == 0 {
		category.PassingScore = 70
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if err := s.CategoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *QuestionService) UpdateCategory(id uint, req CategoryRequest) (*model.TestCategory, error) {
	category, err := s.CategoryRepo.FindByID(id)
	if err != nil {
		return nil, errors.New("category not found")
	}
	category.Name = req.Name
	category.Slug = req.Slug
	category.Description = req.Description
	category.StageNumber = req.StageNumber
	if req.PassingScore > 0 {
		category.PassingScore = req.PassingScore
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if err := s.CategoryRepo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *QuestionService) ListCategories(includeInactive bool) ([]model.TestCategory, error) {
	if includeInactive {
		return s.CategoryRepo.ListAll()
	}
	return s.CategoryRepo.ListActive()
}
