package service

import (
	"fmt"
	"testing"

	"mri_screening_backend/internal/model"
	"mri_screening_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Guttman-style 4x3 response pattern with hand-computed statistics.
func guttmanMatrix() *itemMatrix {
	return &itemMatrix{
		questionIDs: []uint{1, 2, 3},
		rows: [][]float64{
			{1, 1, 1},
			{1, 1, 0},
			{1, 0, 0},
			{0, 0, 0},
		},
	}
}

func TestCronbachAlphaKnownValue(t *testing.T) {
	alpha := CronbachAlpha(guttmanMatrix())
	assert.InDelta(t, 0.75, alpha, 0.0001)
}

func TestCronbachAlphaDegenerate(t *testing.T) {
	// single item
	assert.Zero(t, CronbachAlpha(&itemMatrix{
		questionIDs: []uint{1},
		rows:        [][]float64{{1}, {0}},
	}))

	// everyone scored the same: zero total variance
	assert.Zero(t, CronbachAlpha(&itemMatrix{
		questionIDs: []uint{1, 2},
		rows:        [][]float64{{1, 0}, {1, 0}},
	}))
}

func TestItemDiscriminationKnownValue(t *testing.T) {
	m := guttmanMatrix()
	assert.InDelta(t, 0.7071, ItemDiscrimination(m, 1), 0.0001)

	// an item everyone answers identically carries no signal
	flat := &itemMatrix{
		questionIDs: []uint{1, 2},
		rows:        [][]float64{{1, 1}, {1, 0}, {1, 1}},
	}
	assert.Zero(t, ItemDiscrimination(flat, 0))
}

func TestReliabilityReport(t *testing.T) {
	db := newTestDB(t)
	repos := newTestRepos(db)
	svc := NewPsychometricsService(repos.attempt, repos.answer, repos.test)

	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	questions := seedQuestions(t, db, topic.ID, 3)
	test := seedTest(t, db, category.ID, questions)

	pattern := [][]bool{
		{true, true, true},
		{true, true, false},
		{true, false, false},
		{false, false, false},
	}
	for i, row := range pattern {
		user := seedUser(t, db, fmt.Sprintf("psy%d@example.com", i))
		score := 50.0
		attempt := model.TestAttempt{
			UserID:       user.ID,
			TestID:       test.ID,
			Status:       model.AttemptCompleted,
			Score:        &score,
			ConsentGiven: true,
		}
		require.NoError(t, db.Create(&attempt).Error)
		for j, correct := range row {
			correct := correct
			require.NoError(t, db.Create(&model.Answer{
				AttemptID:  attempt.ID,
				QuestionID: questions[j].ID,
				IsCorrect:  &correct,
			}).Error)
		}
	}

	report, err := svc.Reliability(test.ID)
	require.NoError(t, err)

	assert.Equal(t, test.ID, report.TestID)
	assert.Equal(t, 4, report.SampleAttempts)
	assert.Equal(t, 3, report.SampleItems)
	assert.InDelta(t, 0.75, report.CronbachAlpha, 0.0001)

	require.Len(t, report.Items, 3)
	assert.Equal(t, questions[0].ID, report.Items[0].QuestionID)
	assert.InDelta(t, 75.0, report.Items[0].SuccessRate, 0.001)
	assert.InDelta(t, 50.0, report.Items[1].SuccessRate, 0.001)
	assert.InDelta(t, 0.7071, report.Items[1].Discrimination, 0.0001)
}

func TestReliabilityRequiresEnoughAttempts(t *testing.T) {
	db := newTestDB(t)
	repos := newTestRepos(db)
	svc := NewPsychometricsService(repos.attempt, repos.answer, repos.test)

	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	test := seedTest(t, db, category.ID, seedQuestions(t, db, topic.ID, 2))

	_, err := svc.Reliability(test.ID)
	assert.ErrorIs(t, err, util.ErrNotEnoughAttempts)

	_, err = svc.Reliability(9999)
	assert.ErrorIs(t, err, util.ErrTestNotFound)
}
