package service

import (
	"math"
	"sort"
	"sync"

	"mri_screening_backend/internal/config"
	"mri_screening_backend/internal/model"
	"mri_screening_backend/internal/repository"
)

type AnalyticsService struct {
	AttemptRepo  *repository.AttemptRepository
	AnswerRepo   *repository.AnswerRepository
	CategoryRepo *repository.CategoryRepository

	mu  sync.RWMutex
	cfg config.AnalyticsConfig
}

func NewAnalyticsService(
	attemptRepo *repository.AttemptRepository,
	answerRepo *repository.AnswerRepository,
	categoryRepo *repository.CategoryRepository,
	cfg config.AnalyticsConfig,
) *AnalyticsService {
	return &AnalyticsService{
		AttemptRepo:  attemptRepo,
		AnswerRepo:   answerRepo,
		CategoryRepo: categoryRepo,
		cfg:          cfg,
	}
}

func (s *AnalyticsService) Reconfigure(cfg config.AnalyticsConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *AnalyticsService) settings() config.AnalyticsConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Percentile is the share of pool scores strictly below the given score, as
// a percentage. Pools smaller than minSample return nil: a rank among a
// handful of candidates would mislead more than inform.
func Percentile(score float64, pool []float64, minSample int) *float64 {
	if len(pool) < minSample {
		return nil
	}
	below := 0
	for _, other := range pool {
		if other < score {
			below++
		}
	}
	p := float64(below) / float64(len(pool)) * 100
	p = math.Round(p*100) / 100
	return &p
}

// CandidateDashboard assembles the candidate's analytics view: completed
// test totals, per-category percentiles, topic-level skill gaps and the
// four-stage readiness rubric.
func (s *AnalyticsService) CandidateDashboard(userID uint) (*model.CandidateDashboard, error) {
	attempts, err := s.AttemptRepo.ListCompletedByUser(userID)
	if err != nil {
		return nil, err
	}

	dashboard := &model.CandidateDashboard{
		CategoryPercentiles: map[string]*float64{},
		SkillGaps:           []model.SkillGap{},
	}

	scoreSum := 0.0
	scored := 0
	bestByCategory := map[uint]float64{}
	passedByCategory := map[uint]bool{}
	for _, a := range attempts {
		dashboard.TotalTests++
		if a.Passed != nil && *a.Passed {
			dashboard.PassedTests++
		}
		if a.Score == nil || a.Test == nil {
			continue
		}
		scoreSum += *a.Score
		scored++
		categoryID := a.Test.CategoryID
		if best, ok := bestByCategory[categoryID]; !ok || *a.Score > best {
			bestByCategory[categoryID] = *a.Score
		}
		if a.Passed != nil && *a.Passed {
			passedByCategory[categoryID] = true
		}
	}
	if scored > 0 {
		dashboard.AverageScore = math.Round(scoreSum/float64(scored)*100) / 100
	}

	pools, err := s.percentilePools()
	if err != nil {
		return nil, err
	}
	categories, err := s.CategoryRepo.ListAll()
	if err != nil {
		return nil, err
	}
	categoryByID := make(map[uint]model.TestCategory, len(categories))
	for _, c := range categories {
		categoryByID[c.ID] = c
	}

	minSample := s.settings().MinPercentileSample
	for categoryID, best := range bestByCategory {
		category, ok := categoryByID[categoryID]
		if !ok {
			continue
		}
		dashboard.CategoryPercentiles[category.Slug] = Percentile(best, pools[categoryID], minSample)
	}

	gaps, err := s.skillGaps(attempts)
	if err != nil {
		return nil, err
	}
	dashboard.SkillGaps = gaps

	dashboard.Rubric = buildRubric(categories, bestByCategory, passedByCategory, pools, minSample)
	return dashboard, nil
}

// percentilePools groups every candidate's best completed score by category.
func (s *AnalyticsService) percentilePools() (map[uint][]float64, error) {
	rows, err := s.AttemptRepo.BestScoresByCategory()
	if err != nil {
		return nil, err
	}
	pools := map[uint][]float64{}
	for _, row := range rows {
		pools[row.CategoryID] = append(pools[row.CategoryID], row.BestScore)
	}
	return pools, nil
}

// skillGaps aggregates graded answers by topic and surfaces the topics the
// candidate scores under the gap threshold on. QuestionsToImprove is how
// many more correct answers would lift the topic to the threshold.
func (s *AnalyticsService) skillGaps(attempts []model.TestAttempt) ([]model.SkillGap, error) {
	if len(attempts) == 0 {
		return []model.SkillGap{}, nil
	}
	ids := make([]uint, len(attempts))
	for i, a := range attempts {
		ids[i] = a.ID
	}
	answers, err := s.AnswerRepo.ListGradedWithTopics(ids)
	if err != nil {
		return nil, err
	}

	type topicAgg struct {
		topic    string
		category string
		correct  int
		total    int
	}
	byTopic := map[uint]*topicAgg{}
	for _, a := range answers {
		if a.Question == nil || a.Question.Topic == nil {
			continue
		}
		agg, ok := byTopic[a.Question.TopicID]
		if !ok {
			agg = &topicAgg{topic: a.Question.Topic.Name}
			if a.Question.Topic.Category != nil {
				agg.category = a.Question.Topic.Category.Name
			}
			byTopic[a.Question.TopicID] = agg
		}
		agg.total++
		if a.IsCorrect != nil && *a.IsCorrect {
			agg.correct++
		}
	}

	threshold := s.settings().SkillGapThreshold
	gaps := []model.SkillGap{}
	for _, agg := range byTopic {
		pct := float64(agg.correct) / float64(agg.total) * 100
		if pct >= threshold {
			continue
		}
		needed := int(math.Ceil(threshold/100*float64(agg.total))) - agg.correct
		if needed < 1 {
			needed = 1
		}
		gaps = append(gaps, model.SkillGap{
			Topic:              agg.topic,
			Category:           agg.category,
			Percentage:         math.Round(pct*100) / 100,
			Correct:            agg.correct,
			Total:              agg.total,
			QuestionsToImprove: needed,
		})
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i].Percentage < gaps[j].Percentage })
	return gaps, nil
}

// buildRubric lays the candidate's best scores over the four hiring stages.
// Certification-ready means every active stage is attempted and passed.
func buildRubric(
	categories []model.TestCategory,
	bestByCategory map[uint]float64,
	passedByCategory map[uint]bool,
	pools map[uint][]float64,
	minSample int,
) model.RubricAssessment {
	rubric := model.RubricAssessment{Stages: []model.StageReadiness{}}

	sorted := make([]model.TestCategory, len(categories))
	copy(sorted, categories)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StageNumber < sorted[j].StageNumber })

	sum := 0.0
	activeStages := 0
	attemptedStages := 0
	allPassed := true
	for _, c := range sorted {
		if !c.IsActive {
			continue
		}
		activeStages++
		stage := model.StageReadiness{
			StageNumber: c.StageNumber,
			Category:    c.Name,
		}
		if best, ok := bestByCategory[c.ID]; ok {
			stage.Attempted = true
			stage.Score = best
			stage.Passed = passedByCategory[c.ID]
			stage.Percentile = Percentile(best, pools[c.ID], minSample)
			sum += best
			attemptedStages++
		}
		if !stage.Passed {
			allPassed = false
		}
		rubric.Stages = append(rubric.Stages, stage)
	}

	// Readiness averages the stages the candidate has actually attempted;
	// unattempted stages block certification but do not drag the average.
	if attemptedStages > 0 {
		rubric.OverallReadiness = math.Round(sum/float64(attemptedStages)*100) / 100
	}
	rubric.CertificationReady = activeStages > 0 && allPassed
	return rubric
}

// AdminDashboard is the recruiter overview: volume, pass rate, per-category
// aggregates, the hardest questions and plagiarism-flagged attempts.
func (s *AnalyticsService) AdminDashboard() (*model.AdminDashboard, error) {
	dashboard := &model.AdminDashboard{}

	var err error
	if dashboard.TotalAttempts, err = s.AttemptRepo.CountCompleted(); err != nil {
		return nil, err
	}
	if dashboard.TotalCandidates, err = s.AttemptRepo.CountDistinctUsers(); err != nil {
		return nil, err
	}
	passed, err := s.AttemptRepo.CountPassed()
	if err != nil {
		return nil, err
	}
	if dashboard.TotalAttempts > 0 {
		rate := float64(passed) / float64(dashboard.TotalAttempts) * 100
		dashboard.PassRate = math.Round(rate*100) / 100
	}

	aggregates, err := s.AttemptRepo.AggregateByCategory()
	if err != nil {
		return nil, err
	}
	dashboard.CategoryStats = make([]model.CategoryStats, 0, len(aggregates))
	for _, agg := range aggregates {
		stat := model.CategoryStats{
			Name:         agg.Name,
			StageNumber:  agg.StageNumber,
			Attempts:     agg.Attempts,
			AverageScore: math.Round(agg.AvgScore*100) / 100,
		}
		if agg.Attempts > 0 {
			stat.PassRate = math.Round(float64(agg.Passed)/float64(agg.Attempts)*100*100) / 100
		}
		dashboard.CategoryStats = append(dashboard.CategoryStats, stat)
	}

	limit := s.settings().HardestQuestionLimit
	dashboard.HardestQuestions, err = s.AnswerRepo.HardestQuestions(1, limit)
	if err != nil {
		return nil, err
	}

	dashboard.FlaggedAttempts, err = s.AttemptRepo.ListFlagged(50)
	if err != nil {
		return nil, err
	}
	return dashboard, nil
}
