package service

import (
	"testing"
	"time"

	"mri_screening_backend/internal/config"
	"mri_screening_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func analyticsFixture(t *testing.T) (*gorm.DB, *AnalyticsService) {
	t.Helper()
	db := newTestDB(t)
	repos := newTestRepos(db)
	svc := NewAnalyticsService(repos.attempt, repos.answer, repos.category, config.AnalyticsConfig{
		MinPercentileSample:  5,
		SkillGapThreshold:    60,
		HardestQuestionLimit: 20,
	})
	return db, svc
}

func seedScoredAttempt(t *testing.T, db *gorm.DB, userID, testID uint, score float64, passed bool) *model.TestAttempt {
	t.Helper()
	now := time.Now()
	attempt := &model.TestAttempt{
		UserID:       userID,
		TestID:       testID,
		Status:       model.AttemptCompleted,
		Score:        &score,
		Passed:       &passed,
		ConsentGiven: true,
		CompletedAt:  &now,
	}
	require.NoError(t, db.Create(attempt).Error)
	return attempt
}

func TestPercentile(t *testing.T) {
	pool := []float64{40, 50, 60, 70, 80, 90}

	p := Percentile(90, pool, 5)
	require.NotNil(t, p)
	assert.InDelta(t, 83.33, *p, 0.01)

	p = Percentile(40, pool, 5)
	require.NotNil(t, p)
	assert.Zero(t, *p)

	// ties do not count as "below"
	p = Percentile(60, pool, 5)
	require.NotNil(t, p)
	assert.InDelta(t, 33.33, *p, 0.01)
}

func TestPercentileSmallPoolIsNil(t *testing.T) {
	assert.Nil(t, Percentile(80, []float64{50, 60, 70}, 5))
	assert.Nil(t, Percentile(80, nil, 5))
}

func TestCandidateDashboard(t *testing.T) {
	db, svc := analyticsFixture(t)
	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	questions := seedQuestions(t, db, topic.ID, 4)
	test := seedTest(t, db, category.ID, questions)

	// five other candidates fill the percentile pool
	for i, score := range []float64{40, 50, 60, 70, 80} {
		other := seedUser(t, db, poolEmail(i))
		seedScoredAttempt(t, db, other.ID, test.ID, score, score >= 70)
	}

	subject := seedUser(t, db, "subject@example.com")
	attempt := seedScoredAttempt(t, db, subject.ID, test.ID, 90, true)

	// one correct of four on the topic: 25%, well under the 60% gap threshold
	for i, q := range questions {
		correct := i == 0
		require.NoError(t, db.Create(&model.Answer{
			AttemptID:  attempt.ID,
			QuestionID: q.ID,
			IsCorrect:  &correct,
		}).Error)
	}

	dashboard, err := svc.CandidateDashboard(subject.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, dashboard.TotalTests)
	assert.Equal(t, 1, dashboard.PassedTests)
	assert.InDelta(t, 90.0, dashboard.AverageScore, 0.001)

	p := dashboard.CategoryPercentiles[category.Slug]
	require.NotNil(t, p)
	assert.InDelta(t, 83.33, *p, 0.01)

	require.Len(t, dashboard.SkillGaps, 1)
	gap := dashboard.SkillGaps[0]
	assert.Equal(t, "reasoning", gap.Topic)
	assert.InDelta(t, 25.0, gap.Percentage, 0.001)
	assert.Equal(t, 1, gap.Correct)
	assert.Equal(t, 4, gap.Total)
	// ceil(60% of 4) = 3 correct needed, one already in hand
	assert.Equal(t, 2, gap.QuestionsToImprove)

	require.Len(t, dashboard.Rubric.Stages, 1)
	stage := dashboard.Rubric.Stages[0]
	assert.True(t, stage.Attempted)
	assert.True(t, stage.Passed)
	assert.InDelta(t, 90.0, stage.Score, 0.001)
	assert.True(t, dashboard.Rubric.CertificationReady)
	assert.InDelta(t, 90.0, dashboard.Rubric.OverallReadiness, 0.001)
}

func poolEmail(i int) string {
	return string(rune('a'+i)) + "-pool@example.com"
}

func TestCandidateDashboardHidesPercentileUnderMinSample(t *testing.T) {
	db, svc := analyticsFixture(t)
	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	test := seedTest(t, db, category.ID, seedQuestions(t, db, topic.ID, 2))

	subject := seedUser(t, db, "lonely@example.com")
	seedScoredAttempt(t, db, subject.ID, test.ID, 85, true)

	dashboard, err := svc.CandidateDashboard(subject.ID)
	require.NoError(t, err)
	assert.Nil(t, dashboard.CategoryPercentiles[category.Slug])
}

func TestRubricUnattemptedStageBlocksReadiness(t *testing.T) {
	db, svc := analyticsFixture(t)
	stage1 := seedCategory(t, db, 1)
	stage2 := seedCategory(t, db, 2)
	topic := seedTopic(t, db, stage1.ID, "reasoning")
	test := seedTest(t, db, stage1.ID, seedQuestions(t, db, topic.ID, 2))
	_ = stage2

	subject := seedUser(t, db, "partway@example.com")
	seedScoredAttempt(t, db, subject.ID, test.ID, 95, true)

	dashboard, err := svc.CandidateDashboard(subject.ID)
	require.NoError(t, err)

	require.Len(t, dashboard.Rubric.Stages, 2)
	assert.True(t, dashboard.Rubric.Stages[0].Attempted)
	assert.False(t, dashboard.Rubric.Stages[1].Attempted)
	assert.False(t, dashboard.Rubric.CertificationReady)
	// readiness reflects the attempted stage only
	assert.InDelta(t, 95.0, dashboard.Rubric.OverallReadiness, 0.001)
}

func TestAdminDashboard(t *testing.T) {
	db, svc := analyticsFixture(t)
	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	questions := seedQuestions(t, db, topic.ID, 2)
	test := seedTest(t, db, category.ID, questions)

	u1 := seedUser(t, db, "admin1@example.com")
	u2 := seedUser(t, db, "admin2@example.com")
	a1 := seedScoredAttempt(t, db, u1.ID, test.ID, 80, true)
	seedScoredAttempt(t, db, u2.ID, test.ID, 40, false)

	yes, no := true, false
	require.NoError(t, db.Create(&model.Answer{AttemptID: a1.ID, QuestionID: questions[0].ID, IsCorrect: &yes}).Error)
	require.NoError(t, db.Create(&model.Answer{AttemptID: a1.ID, QuestionID: questions[1].ID, IsCorrect: &no}).Error)

	dashboard, err := svc.AdminDashboard()
	require.NoError(t, err)

	assert.EqualValues(t, 2, dashboard.TotalAttempts)
	assert.EqualValues(t, 2, dashboard.TotalCandidates)
	assert.InDelta(t, 50.0, dashboard.PassRate, 0.001)

	require.Len(t, dashboard.CategoryStats, 1)
	stats := dashboard.CategoryStats[0]
	assert.EqualValues(t, 2, stats.Attempts)
	assert.InDelta(t, 50.0, stats.PassRate, 0.001)
	assert.InDelta(t, 60.0, stats.AverageScore, 0.001)

	require.NotEmpty(t, dashboard.HardestQuestions)
	hardest := dashboard.HardestQuestions[0]
	assert.Equal(t, questions[1].ID, hardest.QuestionID)
	assert.Zero(t, hardest.SuccessRate)
}
