package service

import (
	"testing"

	"mri_screening_backend/internal/config"
	"mri_screening_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func plagiarismFixture(t *testing.T) (*gorm.DB, *testRepos, *PlagiarismService) {
	t.Helper()
	db := newTestDB(t)
	repos := newTestRepos(db)
	svc := NewPlagiarismService(repos.plagiarism, repos.attempt, repos.answer, testLogger(), config.PlagiarismConfig{
		SimilarityThreshold: 70,
		ScanIntervalMinutes: 60,
	})
	return db, repos, svc
}

func seedCompletedAttempt(t *testing.T, db *gorm.DB, userID, testID uint, questions []model.Question, options []model.AnswerOption) *model.TestAttempt {
	t.Helper()
	attempt := model.TestAttempt{
		UserID:       userID,
		TestID:       testID,
		Status:       model.AttemptCompleted,
		ConsentGiven: true,
	}
	attempt.SetQuestionIDs(questionIDsOf(questions))
	require.NoError(t, db.Create(&attempt).Error)

	for i, opt := range options {
		opt := opt
		answer := model.Answer{
			AttemptID:      attempt.ID,
			QuestionID:     questions[i].ID,
			SelectedOption: &opt,
		}
		answer.Grade(&questions[i])
		require.NoError(t, db.Create(&answer).Error)
	}
	return &attempt
}

func questionIDsOf(questions []model.Question) []uint {
	ids := make([]uint, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}

func TestSimilarityCountsSharedAnswers(t *testing.T) {
	a := map[uint]answerKey{
		1: {option: model.OptionA},
		2: {option: model.OptionB},
		3: {option: model.OptionC},
	}
	b := map[uint]answerKey{
		1: {option: model.OptionA},
		2: {option: model.OptionB},
		3: {option: model.OptionD},
		4: {option: model.OptionA},
	}

	pct, matching := Similarity(a, b)
	assert.InDelta(t, 66.67, pct, 0.01)
	assert.Equal(t, []uint{1, 2}, matching)
}

func TestSimilarityEmptyOverlap(t *testing.T) {
	pct, matching := Similarity(
		map[uint]answerKey{1: {option: model.OptionA}},
		map[uint]answerKey{2: {option: model.OptionA}},
	)
	assert.Zero(t, pct)
	assert.Empty(t, matching)
}

func TestScanTestFlagsIdenticalAttempts(t *testing.T) {
	db, _, svc := plagiarismFixture(t)
	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	questions := seedQuestions(t, db, topic.ID, 5)
	test := seedTest(t, db, category.ID, questions)

	u1 := seedUser(t, db, "copy1@example.com")
	u2 := seedUser(t, db, "copy2@example.com")
	u3 := seedUser(t, db, "honest@example.com")

	same := []model.AnswerOption{model.OptionA, model.OptionB, model.OptionC, model.OptionD, model.OptionA}
	diff := []model.AnswerOption{model.OptionB, model.OptionA, model.OptionA, model.OptionA, model.OptionC}

	a1 := seedCompletedAttempt(t, db, u1.ID, test.ID, questions, same)
	a2 := seedCompletedAttempt(t, db, u2.ID, test.ID, questions, same)
	seedCompletedAttempt(t, db, u3.ID, test.ID, questions, diff)

	report, err := svc.ScanTest(test.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, report.AttemptsScanned)
	assert.Equal(t, 1, report.FlagsCreated)

	flags, total, err := svc.ListFlags(nil, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.InDelta(t, 100.0, flags[0].SimilarityPercentage, 0.001)

	for _, id := range []uint{a1.ID, a2.ID} {
		var got model.TestAttempt
		require.NoError(t, db.First(&got, id).Error)
		assert.True(t, got.FlaggedForPlagiarism)
		require.NotNil(t, got.SimilarityScore)
		assert.InDelta(t, 100.0, *got.SimilarityScore, 0.001)
	}

	// a second scan must not duplicate the flag
	report, err = svc.ScanTest(test.ID)
	require.NoError(t, err)
	assert.Zero(t, report.FlagsCreated)
	_, total, err = svc.ListFlags(nil, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestScanSkipsSameUserRetakes(t *testing.T) {
	db, _, svc := plagiarismFixture(t)
	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	questions := seedQuestions(t, db, topic.ID, 4)
	test := seedTest(t, db, category.ID, questions)

	user := seedUser(t, db, "retaker@example.com")
	same := []model.AnswerOption{model.OptionA, model.OptionA, model.OptionB, model.OptionC}
	seedCompletedAttempt(t, db, user.ID, test.ID, questions, same)
	seedCompletedAttempt(t, db, user.ID, test.ID, questions, same)

	report, err := svc.ScanTest(test.ID)
	require.NoError(t, err)
	assert.Zero(t, report.FlagsCreated)
}

func TestScanBelowThresholdDoesNotFlag(t *testing.T) {
	db, _, svc := plagiarismFixture(t)
	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	questions := seedQuestions(t, db, topic.ID, 4)
	test := seedTest(t, db, category.ID, questions)

	u1 := seedUser(t, db, "below1@example.com")
	u2 := seedUser(t, db, "below2@example.com")

	// 2 of 4 shared answers: 50%, under the 70% threshold
	seedCompletedAttempt(t, db, u1.ID, test.ID, questions,
		[]model.AnswerOption{model.OptionA, model.OptionA, model.OptionB, model.OptionB})
	seedCompletedAttempt(t, db, u2.ID, test.ID, questions,
		[]model.AnswerOption{model.OptionA, model.OptionA, model.OptionC, model.OptionD})

	report, err := svc.ScanTest(test.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.PairsCompared)
	assert.Zero(t, report.FlagsCreated)
}

func TestReviewMarksFlag(t *testing.T) {
	db, repos, svc := plagiarismFixture(t)
	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	questions := seedQuestions(t, db, topic.ID, 3)
	test := seedTest(t, db, category.ID, questions)

	u1 := seedUser(t, db, "rev1@example.com")
	u2 := seedUser(t, db, "rev2@example.com")
	same := []model.AnswerOption{model.OptionA, model.OptionB, model.OptionC}
	seedCompletedAttempt(t, db, u1.ID, test.ID, questions, same)
	seedCompletedAttempt(t, db, u2.ID, test.ID, questions, same)

	_, err := svc.ScanTest(test.ID)
	require.NoError(t, err)

	flags, _, err := repos.plagiarism.List(nil, 1, 10)
	require.NoError(t, err)
	require.Len(t, flags, 1)

	reviewed, err := svc.Review(flags[0].ID, "confirmed, shared workstation")
	require.NoError(t, err)
	assert.True(t, reviewed.Reviewed)
	assert.Equal(t, "confirmed, shared workstation", reviewed.ReviewNote)
}
