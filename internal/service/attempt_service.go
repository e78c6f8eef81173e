package service

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"mri_screening_backend/internal/model"
	"mri_screening_backend/internal/repository"
	"mri_screening_backend/internal/util"

	"gorm.io/gorm"
)

type AttemptService struct {
	AttemptRepo  *repository.AttemptRepository
	AnswerRepo   *repository.AnswerRepository
	QuestionRepo *repository.QuestionRepository
	TestRepo     *repository.TestRepository
	TestSvc      *TestService
}

func NewAttemptService(
	attemptRepo *repository.AttemptRepository,
	answerRepo *repository.AnswerRepository,
	questionRepo *repository.QuestionRepository,
	testRepo *repository.TestRepository,
	testSvc *TestService,
) *AttemptService {
	return &AttemptService{
		AttemptRepo:  attemptRepo,
		AnswerRepo:   answerRepo,
		QuestionRepo: questionRepo,
		TestRepo:     testRepo,
		TestSvc:      testSvc,
	}
}

// Start opens a new attempt after the candidate consents to proctoring.
// A still-active, unexpired attempt on the same test is resumed instead.
func (s *AttemptService) Start(userID, testID uint, consent bool, ip, userAgent string) (*model.TestAttempt, error) {
	if !consent {
		return nil, util.ErrConsentRequired
	}

	test, err := s.TestRepo.FindActiveByID(testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}

	active, err := s.AttemptRepo.FindActiveByUserAndTest(userID, testID)
	if err == nil {
		// pre-assigned attempts start the clock on first consented open
		if !active.ConsentGiven {
			now := time.Now()
			active.ConsentGiven = true
			active.ConsentTimestamp = &now
			active.StartedAt = now
			active.IPAddress = ip
			active.UserAgent = userAgent
			active.Status = model.AttemptInProgress
			if err := s.AttemptRepo.Update(active); err != nil {
				return nil, err
			}
			return active, nil
		}
		if active.IsExpired(time.Now(), test.TimeLimitMinutes) {
			active.Status = model.AttemptExpired
			if err := s.AttemptRepo.Update(active); err != nil {
				return nil, err
			}
		} else {
			return active, nil
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	questionIDs, err := s.TestSvc.GenerateQuestionSet(test)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	attempt := &model.TestAttempt{
		UserID:           userID,
		TestID:           testID,
		Status:           model.AttemptInProgress,
		ConsentGiven:     true,
		ConsentTimestamp: &now,
		IPAddress:        ip,
		UserAgent:        userAgent,
	}
	attempt.SetQuestionIDs(questionIDs)

	if err := s.AttemptRepo.Create(attempt); err != nil {
		return nil, err
	}
	attempt.Test = test
	return attempt, nil
}

func (s *AttemptService) findOwned(attemptID, userID uint) (*model.TestAttempt, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrAttemptNotFound
	}
	return attempt, nil
}

// CandidateQuestion is the question view served while taking a test: no
// correct option, no hotspot, no explanation.
type CandidateQuestion struct {
	ID               uint               `json:"id"`
	QuestionType     model.QuestionType `json:"questionType"`
	QuestionText     string             `json:"questionText"`
	ImagePath        string             `json:"imagePath,omitempty"`
	OptionA          string             `json:"optionA,omitempty"`
	OptionB          string             `json:"optionB,omitempty"`
	OptionC          string             `json:"optionC,omitempty"`
	OptionD          string             `json:"optionD,omitempty"`
	Points           int                `json:"points"`
	TimeLimitSeconds int                `json:"timeLimitSeconds"`
}

type AttemptQuestionsView struct {
	Attempt       *model.TestAttempt  `json:"attempt"`
	Questions     []CandidateQuestion `json:"questions"`
	TimeRemaining int                 `json:"timeRemaining"`
}

// Questions returns the attempt's question set in stored order.
func (s *AttemptService) Questions(attemptID, userID uint) (*AttemptQuestionsView, error) {
	attempt, err := s.findOwned(attemptID, userID)
	if err != nil {
		return nil, err
	}

	if attempt.IsExpired(time.Now(), attempt.Test.TimeLimitMinutes) {
		attempt.Status = model.AttemptExpired
		if err := s.AttemptRepo.Update(attempt); err != nil {
			return nil, err
		}
		return nil, util.ErrAttemptExpired
	}

	ids := attempt.QuestionIDs()
	questions, err := s.QuestionRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}

	// FindByIDs gives no ordering guarantee; restore question-set order.
	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	views := make([]CandidateQuestion, 0, len(ids))
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			continue
		}
		views = append(views, CandidateQuestion{
			ID:               q.ID,
			QuestionType:     q.QuestionType,
			QuestionText:     q.QuestionText,
			ImagePath:        q.ImagePath,
			OptionA:          q.OptionA,
			OptionB:          q.OptionB,
			OptionC:          q.OptionC,
			OptionD:          q.OptionD,
			Points:           q.Points,
			TimeLimitSeconds: q.TimeLimitSeconds,
		})
	}

	return &AttemptQuestionsView{
		Attempt:       attempt,
		Questions:     views,
		TimeRemaining: attempt.TimeRemaining(time.Now(), attempt.Test.TimeLimitMinutes),
	}, nil
}

type AnswerRequest struct {
	QuestionID       uint                `json:"questionId" binding:"required"`
	SelectedOption   *model.AnswerOption `json:"selectedOption" binding:"omitempty,oneof=a b c d"`
	ClickedX         *int                `json:"clickedX"`
	ClickedY         *int                `json:"clickedY"`
	TimeSpentSeconds int                 `json:"timeSpentSeconds" binding:"min=0"`
}

type AnswerResult struct {
	QuestionID uint               `json:"questionId"`
	IsCorrect  bool               `json:"isCorrect"`
	Type       model.QuestionType `json:"questionType"`
}

// SubmitAnswer records one answer, replacing any earlier answer to the same
// question within the attempt.
func (s *AttemptService) SubmitAnswer(attemptID, userID uint, req AnswerRequest) (*AnswerResult, error) {
	attempt, err := s.findOwned(attemptID, userID)
	if err != nil {
		return nil, err
	}
	if !attempt.Active() {
		return nil, util.ErrAttemptNotActive
	}
	if attempt.IsExpired(time.Now(), attempt.Test.TimeLimitMinutes) {
		attempt.Status = model.AttemptExpired
		if err := s.AttemptRepo.Update(attempt); err != nil {
			return nil, err
		}
		return nil, util.ErrAttemptExpired
	}

	inSet := false
	for _, id := range attempt.QuestionIDs() {
		if id == req.QuestionID {
			inSet = true
			break
		}
	}
	if !inSet {
		return nil, util.ErrQuestionNotInSet
	}

	question, err := s.QuestionRepo.FindByID(req.QuestionID)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}

	answer := &model.Answer{
		AttemptID:        attemptID,
		QuestionID:       req.QuestionID,
		TimeSpentSeconds: req.TimeSpentSeconds,
	}
	if question.QuestionType == model.QuestionDICOM && req.ClickedX != nil && req.ClickedY != nil {
		answer.SetClickedPoint(model.ClickedPoint{X: *req.ClickedX, Y: *req.ClickedY})
	} else if req.SelectedOption != nil {
		answer.SelectedOption = req.SelectedOption
	} else {
		return nil, errors.New("answer must carry a selected option or clicked coordinates")
	}

	correct := answer.Grade(question)
	if err := s.AnswerRepo.Upsert(answer); err != nil {
		return nil, err
	}

	if attempt.Status == model.AttemptStarted {
		attempt.Status = model.AttemptInProgress
		if err := s.AttemptRepo.Update(attempt); err != nil {
			return nil, err
		}
	}

	return &AnswerResult{
		QuestionID: question.ID,
		IsCorrect:  correct,
		Type:       question.QuestionType,
	}, nil
}

type TimeRemainingView struct {
	TimeRemaining int  `json:"timeRemaining"`
	IsExpired     bool `json:"isExpired"`
}

func (s *AttemptService) TimeRemaining(attemptID, userID uint) (*TimeRemainingView, error) {
	attempt, err := s.findOwned(attemptID, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &TimeRemainingView{
		TimeRemaining: attempt.TimeRemaining(now, attempt.Test.TimeLimitMinutes),
		IsExpired:     attempt.IsExpired(now, attempt.Test.TimeLimitMinutes),
	}, nil
}

type SubmitRequest struct {
	Disqualified           bool   `json:"disqualified"`
	DisqualificationReason string `json:"disqualificationReason"`
}

// Submit closes the attempt. Unanswered questions are materialized as
// incorrect answers so the score denominator always covers the full set.
// Disqualified attempts score zero and record the reason in metadata.
func (s *AttemptService) Submit(attemptID, userID uint, req SubmitRequest) (*model.TestAttempt, error) {
	attempt, err := s.findOwned(attemptID, userID)
	if err != nil {
		return nil, err
	}
	if attempt.Status == model.AttemptCompleted {
		return nil, util.ErrAttemptSubmitted
	}

	now := time.Now()
	attempt.TimeSpentSeconds = int(now.Sub(attempt.StartedAt).Seconds())
	attempt.Status = model.AttemptCompleted
	attempt.CompletedAt = &now

	if req.Disqualified {
		if err := s.disqualify(attempt, req.DisqualificationReason, now); err != nil {
			return nil, err
		}
		return attempt, s.AttemptRepo.Update(attempt)
	}

	if err := s.materializeUnanswered(attempt); err != nil {
		return nil, err
	}
	if err := s.CalculateScore(attempt); err != nil {
		return nil, err
	}
	return attempt, s.AttemptRepo.Update(attempt)
}

func (s *AttemptService) disqualify(attempt *model.TestAttempt, reason string, now time.Time) error {
	if reason == "" {
		reason = "Fullscreen exit violation"
	}

	incorrect := false
	for _, questionID := range attempt.QuestionIDs() {
		answer := &model.Answer{
			AttemptID:  attempt.ID,
			QuestionID: questionID,
			IsCorrect:  &incorrect,
		}
		if err := s.AnswerRepo.Upsert(answer); err != nil {
			return err
		}
	}

	zero := 0.0
	failed := false
	attempt.Score = &zero
	attempt.Passed = &failed

	meta := map[string]interface{}{}
	if len(attempt.Metadata) > 0 {
		json.Unmarshal(attempt.Metadata, &meta)
	}
	meta["disqualified"] = true
	meta["disqualification_reason"] = reason
	meta["disqualification_timestamp"] = now.Format(time.RFC3339)
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	attempt.Metadata = raw
	return nil
}

// materializeUnanswered creates an incorrect answer row for every question
// the candidate never touched, and grades any answer still ungraded.
func (s *AttemptService) materializeUnanswered(attempt *model.TestAttempt) error {
	answers, err := s.AnswerRepo.ListByAttempt(attempt.ID)
	if err != nil {
		return err
	}
	answered := make(map[uint]*model.Answer, len(answers))
	for i := range answers {
		answered[answers[i].QuestionID] = &answers[i]
	}

	incorrect := false
	for _, questionID := range attempt.QuestionIDs() {
		existing, ok := answered[questionID]
		if !ok {
			answer := &model.Answer{
				AttemptID:  attempt.ID,
				QuestionID: questionID,
				IsCorrect:  &incorrect,
			}
			if err := s.AnswerRepo.Upsert(answer); err != nil {
				return err
			}
			continue
		}
		if existing.IsCorrect == nil {
			question, err := s.QuestionRepo.FindByID(questionID)
			if err != nil {
				return err
			}
			existing.Grade(question)
			if err := s.AnswerRepo.Save(existing); err != nil {
				return err
			}
		}
	}
	return nil
}

// CalculateScore computes the points-weighted percentage over the question
// set and stores score and pass verdict on the attempt.
func (s *AttemptService) CalculateScore(attempt *model.TestAttempt) error {
	ids := attempt.QuestionIDs()
	questions, err := s.QuestionRepo.FindByIDs(ids)
	if err != nil {
		return err
	}
	answers, err := s.AnswerRepo.ListByAttempt(attempt.ID)
	if err != nil {
		return err
	}

	correct := make(map[uint]bool, len(answers))
	for _, a := range answers {
		if a.IsCorrect != nil && *a.IsCorrect {
			correct[a.QuestionID] = true
		}
	}

	score := ComputeScore(questions, correct)
	passed := score >= float64(attempt.Test.PassingScore)
	attempt.Score = &score
	attempt.Passed = &passed
	return nil
}

// ComputeScore is the points-weighted score: earned points over possible
// points, as a percentage rounded to two decimals. Zero possible points
// scores zero.
func ComputeScore(questions []model.Question, correctByID map[uint]bool) float64 {
	totalPoints := 0
	earnedPoints := 0
	for _, q := range questions {
		points := q.Points
		if points <= 0 {
			points = 1
		}
		totalPoints += points
		if correctByID[q.ID] {
			earnedPoints += points
		}
	}
	if totalPoints == 0 {
		return 0
	}
	score := float64(earnedPoints) / float64(totalPoints) * 100
	return math.Round(score*100) / 100
}

type AttemptResult struct {
	Attempt        *model.TestAttempt `json:"attempt"`
	Answers        []model.Answer     `json:"answers"`
	TotalQuestions int                `json:"totalQuestions"`
	CorrectAnswers int                `json:"correctAnswers"`
}

func (s *AttemptService) Result(attemptID, userID uint) (*AttemptResult, error) {
	attempt, err := s.findOwned(attemptID, userID)
	if err != nil {
		return nil, err
	}

	answers, err := s.AnswerRepo.ListByAttempt(attemptID)
	if err != nil {
		return nil, err
	}

	correctCount := 0
	for _, a := range answers {
		if a.IsCorrect != nil && *a.IsCorrect {
			correctCount++
		}
	}

	return &AttemptResult{
		Attempt:        attempt,
		Answers:        answers,
		TotalQuestions: len(attempt.QuestionIDs()),
		CorrectAnswers: correctCount,
	}, nil
}

// ExpireOverdue sweeps timed-out attempts; called from a background ticker.
func (s *AttemptService) ExpireOverdue() (int64, error) {
	return s.AttemptRepo.ExpireOverdue()
}

// List is the review-side attempt listing, optionally filtered by status.
func (s *AttemptService) List(status model.AttemptStatus, flaggedOnly bool, page, limit int) ([]model.TestAttempt, int64, error) {
	if flaggedOnly {
		attempts, err := s.AttemptRepo.ListFlagged(limit)
		return attempts, int64(len(attempts)), err
	}
	return s.AttemptRepo.List(status, page, limit)
}
