package service

import (
	"errors"
	"math"
	"sort"
	"sync"

	"mri_screening_backend/internal/config"
	"mri_screening_backend/internal/model"
	"mri_screening_backend/internal/repository"
	"mri_screening_backend/pkg/monitoring"

	"go.uber.org/zap"
)

type PlagiarismService struct {
	PlagiarismRepo *repository.PlagiarismRepository
	AttemptRepo    *repository.AttemptRepository
	AnswerRepo     *repository.AnswerRepository
	Logger         *zap.Logger

	mu  sync.RWMutex
	cfg config.PlagiarismConfig
}

func NewPlagiarismService(
	plagiarismRepo *repository.PlagiarismRepository,
	attemptRepo *repository.AttemptRepository,
	answerRepo *repository.AnswerRepository,
	logger *zap.Logger,
	cfg config.PlagiarismConfig,
) *PlagiarismService {
	return &PlagiarismService{
		PlagiarismRepo: plagiarismRepo,
		AttemptRepo:    attemptRepo,
		AnswerRepo:     answerRepo,
		Logger:         logger,
		cfg:            cfg,
	}
}

func (s *PlagiarismService) Reconfigure(cfg config.PlagiarismConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *PlagiarismService) threshold() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.SimilarityThreshold
}

// answerKey is one candidate's response to one question, normalized so two
// attempts can be compared: option answers by letter, click answers by point.
type answerKey struct {
	option   model.AnswerOption
	clickedX int
	clickedY int
	clicked  bool
}

func buildAnswerMap(answers []model.Answer) map[uint]answerKey {
	m := make(map[uint]answerKey, len(answers))
	for _, a := range answers {
		key := answerKey{}
		if a.SelectedOption != nil {
			key.option = *a.SelectedOption
		} else if p, ok := a.ClickedPoint(); ok {
			key.clicked = true
			key.clickedX = p.X
			key.clickedY = p.Y
		} else {
			// materialized unanswered rows carry no response to compare
			continue
		}
		m[a.QuestionID] = key
	}
	return m
}

// Similarity compares two attempts over the questions both actually answered.
// It returns the percentage of shared questions with identical responses and
// the matching question ids. Fewer than one shared question scores zero.
func Similarity(a, b map[uint]answerKey) (float64, []uint) {
	shared := 0
	var matching []uint
	for qid, ka := range a {
		kb, ok := b[qid]
		if !ok {
			continue
		}
		shared++
		if ka == kb {
			matching = append(matching, qid)
		}
	}
	if shared == 0 {
		return 0, nil
	}
	sort.Slice(matching, func(i, j int) bool { return matching[i] < matching[j] })
	pct := float64(len(matching)) / float64(shared) * 100
	return math.Round(pct*100) / 100, matching
}

type ScanReport struct {
	AttemptsScanned int `json:"attemptsScanned"`
	PairsCompared   int `json:"pairsCompared"`
	FlagsCreated    int `json:"flagsCreated"`
}

// ScanTest compares every completed attempt pair within one test. testID 0
// scans all completed attempts grouped by test.
func (s *PlagiarismService) ScanTest(testID uint) (*ScanReport, error) {
	attempts, err := s.AttemptRepo.ListCompleted(testID)
	if err != nil {
		return nil, err
	}

	byTest := make(map[uint][]model.TestAttempt)
	for _, a := range attempts {
		byTest[a.TestID] = append(byTest[a.TestID], a)
	}

	report := &ScanReport{AttemptsScanned: len(attempts)}
	for _, group := range byTest {
		if err := s.scanGroup(group, report); err != nil {
			return report, err
		}
	}
	return report, nil
}

// ScanAll is the ticker entrypoint.
func (s *PlagiarismService) ScanAll() (*ScanReport, error) {
	return s.ScanTest(0)
}

func (s *PlagiarismService) scanGroup(attempts []model.TestAttempt, report *ScanReport) error {
	if len(attempts) < 2 {
		return nil
	}

	ids := make([]uint, len(attempts))
	for i, a := range attempts {
		ids[i] = a.ID
	}
	answers, err := s.AnswerRepo.ListByAttempts(ids)
	if err != nil {
		return err
	}
	byAttempt := make(map[uint][]model.Answer)
	for _, a := range answers {
		byAttempt[a.AttemptID] = append(byAttempt[a.AttemptID], a)
	}
	maps := make(map[uint]map[uint]answerKey, len(attempts))
	for _, a := range attempts {
		maps[a.ID] = buildAnswerMap(byAttempt[a.ID])
	}

	threshold := s.threshold()
	for i := 0; i < len(attempts); i++ {
		for j := i + 1; j < len(attempts); j++ {
			a1, a2 := &attempts[i], &attempts[j]
			// self-similarity across retakes is expected, not collusion
			if a1.UserID == a2.UserID {
				continue
			}
			report.PairsCompared++
			monitoring.PlagiarismComparisons.Inc()

			pct, matching := Similarity(maps[a1.ID], maps[a2.ID])
			if pct < threshold {
				continue
			}

			created, err := s.flagPair(a1, a2, pct, matching)
			if err != nil {
				return err
			}
			if created {
				report.FlagsCreated++
			}
		}
	}
	return nil
}

// flagPair stores the pair once and marks both attempts. Re-scans update the
// attempts' similarity score but do not duplicate the flag row.
func (s *PlagiarismService) flagPair(a1, a2 *model.TestAttempt, pct float64, matching []uint) (bool, error) {
	exists, err := s.PlagiarismRepo.PairExists(a1.ID, a2.ID)
	if err != nil {
		return false, err
	}

	for _, a := range []*model.TestAttempt{a1, a2} {
		if !a.FlaggedForPlagiarism || a.SimilarityScore == nil || *a.SimilarityScore < pct {
			a.FlaggedForPlagiarism = true
			score := pct
			a.SimilarityScore = &score
			if err := s.AttemptRepo.Update(a); err != nil {
				return false, err
			}
		}
	}

	if exists {
		return false, nil
	}

	flag := &model.PlagiarismFlag{
		Attempt1ID:           a1.ID,
		Attempt2ID:           a2.ID,
		SimilarityPercentage: pct,
	}
	flag.SetMatchingQuestionIDs(matching)
	if err := s.PlagiarismRepo.Create(flag); err != nil {
		return false, err
	}
	monitoring.PlagiarismFlagsCreated.Inc()
	s.Logger.Warn("plagiarism flag created",
		zap.Uint("attempt1_id", a1.ID),
		zap.Uint("attempt2_id", a2.ID),
		zap.Float64("similarity", pct))
	return true, nil
}

func (s *PlagiarismService) ListFlags(reviewed *bool, page, limit int) ([]model.PlagiarismFlag, int64, error) {
	return s.PlagiarismRepo.List(reviewed, page, limit)
}

type ReviewRequest struct {
	Note string `json:"note" binding:"required"`
}

func (s *PlagiarismService) Review(flagID uint, note string) (*model.PlagiarismFlag, error) {
	flag, err := s.PlagiarismRepo.FindByID(flagID)
	if err != nil {
		return nil, errors.New("flag not found")
	}
	flag.Reviewed = true
	flag.ReviewNote = note
	if err := s.PlagiarismRepo.Update(flag); err != nil {
		return nil, err
	}
	return flag, nil
}
