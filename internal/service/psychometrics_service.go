package service

import (
	"errors"
	"math"
	"sort"

	"mri_screening_backend/internal/model"
	"mri_screening_backend/internal/repository"
	"mri_screening_backend/internal/util"

	"gonum.org/v1/gonum/stat"
	"gorm.io/gorm"
)

// PsychometricsService computes internal-consistency statistics over a
// test's completed attempts: Cronbach's alpha and per-item point-biserial
// discrimination.
type PsychometricsService struct {
	AttemptRepo  *repository.AttemptRepository
	AnswerRepo   *repository.AnswerRepository
	TestRepo     *repository.TestRepository
	MinAttempts  int
}

func NewPsychometricsService(
	attemptRepo *repository.AttemptRepository,
	answerRepo *repository.AnswerRepository,
	testRepo *repository.TestRepository,
) *PsychometricsService {
	return &PsychometricsService{
		AttemptRepo: attemptRepo,
		AnswerRepo:  answerRepo,
		TestRepo:    testRepo,
		MinAttempts: 2,
	}
}

// itemMatrix is attempts x items of 0/1 scores. Items are the union of
// graded question ids across the sampled attempts, in ascending id order.
type itemMatrix struct {
	questionIDs []uint
	rows        [][]float64
}

func buildItemMatrix(attemptIDs []uint, answers []model.Answer) *itemMatrix {
	questionSet := map[uint]bool{}
	graded := map[uint]map[uint]float64{}
	for _, a := range answers {
		if a.IsCorrect == nil {
			continue
		}
		questionSet[a.QuestionID] = true
		if graded[a.AttemptID] == nil {
			graded[a.AttemptID] = map[uint]float64{}
		}
		score := 0.0
		if *a.IsCorrect {
			score = 1.0
		}
		graded[a.AttemptID][a.QuestionID] = score
	}

	questionIDs := make([]uint, 0, len(questionSet))
	for qid := range questionSet {
		questionIDs = append(questionIDs, qid)
	}
	sort.Slice(questionIDs, func(i, j int) bool { return questionIDs[i] < questionIDs[j] })

	m := &itemMatrix{questionIDs: questionIDs}
	for _, attemptID := range attemptIDs {
		scores, ok := graded[attemptID]
		if !ok {
			continue
		}
		row := make([]float64, len(questionIDs))
		for i, qid := range questionIDs {
			row[i] = scores[qid]
		}
		m.rows = append(m.rows, row)
	}
	return m
}

func (m *itemMatrix) column(i int) []float64 {
	col := make([]float64, len(m.rows))
	for r, row := range m.rows {
		col[r] = row[i]
	}
	return col
}

func (m *itemMatrix) totals() []float64 {
	totals := make([]float64, len(m.rows))
	for r, row := range m.rows {
		sum := 0.0
		for _, v := range row {
			sum += v
		}
		totals[r] = sum
	}
	return totals
}

// CronbachAlpha is the classic internal-consistency coefficient:
// k/(k-1) * (1 - sum(item variances)/variance(totals)). Degenerate samples
// (under two items or zero total variance) return zero.
func CronbachAlpha(m *itemMatrix) float64 {
	k := len(m.questionIDs)
	if k < 2 || len(m.rows) < 2 {
		return 0
	}

	itemVarSum := 0.0
	for i := 0; i < k; i++ {
		itemVarSum += stat.Variance(m.column(i), nil)
	}
	totalVar := stat.Variance(m.totals(), nil)
	if totalVar == 0 {
		return 0
	}

	alpha := float64(k) / float64(k-1) * (1 - itemVarSum/totalVar)
	return math.Round(alpha*10000) / 10000
}

// ItemDiscrimination is the correlation between an item's score and the
// total score of the remaining items. A near-zero or negative value marks a
// question that does not separate strong candidates from weak ones.
func ItemDiscrimination(m *itemMatrix, item int) float64 {
	if len(m.rows) < 2 {
		return 0
	}
	itemScores := m.column(item)
	rest := make([]float64, len(m.rows))
	for r, row := range m.rows {
		sum := 0.0
		for i, v := range row {
			if i == item {
				continue
			}
			sum += v
		}
		rest[r] = sum
	}

	corr := stat.Correlation(itemScores, rest, nil)
	if math.IsNaN(corr) {
		return 0
	}
	return math.Round(corr*10000) / 10000
}

// Reliability builds the psychometric report for one test.
func (s *PsychometricsService) Reliability(testID uint) (*model.ReliabilityReport, error) {
	if _, err := s.TestRepo.FindByID(testID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}

	attempts, err := s.AttemptRepo.ListCompleted(testID)
	if err != nil {
		return nil, err
	}
	if len(attempts) < s.MinAttempts {
		return nil, util.ErrNotEnoughAttempts
	}

	attemptIDs := make([]uint, len(attempts))
	for i, a := range attempts {
		attemptIDs[i] = a.ID
	}
	answers, err := s.AnswerRepo.ListByAttempts(attemptIDs)
	if err != nil {
		return nil, err
	}

	matrix := buildItemMatrix(attemptIDs, answers)
	if len(matrix.rows) < s.MinAttempts {
		return nil, util.ErrNotEnoughAttempts
	}

	report := &model.ReliabilityReport{
		TestID:         testID,
		CronbachAlpha:  CronbachAlpha(matrix),
		SampleAttempts: len(matrix.rows),
		SampleItems:    len(matrix.questionIDs),
		Items:          make([]model.ItemAnalysis, 0, len(matrix.questionIDs)),
	}

	for i, qid := range matrix.questionIDs {
		col := matrix.column(i)
		successRate := stat.Mean(col, nil) * 100
		report.Items = append(report.Items, model.ItemAnalysis{
			QuestionID:     qid,
			SuccessRate:    math.Round(successRate*100) / 100,
			Discrimination: ItemDiscrimination(matrix, i),
		})
	}
	return report, nil
}
