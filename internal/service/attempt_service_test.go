package service

import (
	"encoding/json"
	"testing"
	"time"

	"mri_screening_backend/internal/model"
	"mri_screening_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartRequiresConsent(t *testing.T) {
	db, _, svc := attemptFixture(t)
	user := seedUser(t, db, "consent@example.com")
	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	test := seedTest(t, db, category.ID, seedQuestions(t, db, topic.ID, 3))

	_, err := svc.Start(user.ID, test.ID, false, "127.0.0.1", "ua")
	assert.ErrorIs(t, err, util.ErrConsentRequired)
}

func TestStartCreatesAttemptWithQuestionSet(t *testing.T) {
	db, _, svc := attemptFixture(t)
	user := seedUser(t, db, "start@example.com")
	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	questions := seedQuestions(t, db, topic.ID, 4)
	test := seedTest(t, db, category.ID, questions)

	attempt, err := svc.Start(user.ID, test.ID, true, "127.0.0.1", "ua")
	require.NoError(t, err)

	assert.Equal(t, model.AttemptInProgress, attempt.Status)
	assert.True(t, attempt.ConsentGiven)
	assert.NotNil(t, attempt.ConsentTimestamp)
	assert.Len(t, attempt.QuestionIDs(), len(questions))
}

func TestStartResumesActiveAttempt(t *testing.T) {
	db, _, svc := attemptFixture(t)
	user := seedUser(t, db, "resume@example.com")
	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	test := seedTest(t, db, category.ID, seedQuestions(t, db, topic.ID, 3))

	first, err := svc.Start(user.ID, test.ID, true, "127.0.0.1", "ua")
	require.NoError(t, err)

	second, err := svc.Start(user.ID, test.ID, true, "127.0.0.1", "ua")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestSubmitAnswerGradesAndReplaces(t *testing.T) {
	db, repos, svc := attemptFixture(t)
	user := seedUser(t, db, "answers@example.com")
	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	questions := seedQuestions(t, db, topic.ID, 2)
	test := seedTest(t, db, category.ID, questions)

	attempt, err := svc.Start(user.ID, test.ID, true, "127.0.0.1", "ua")
	require.NoError(t, err)

	wrong := model.OptionB
	result, err := svc.SubmitAnswer(attempt.ID, user.ID, AnswerRequest{
		QuestionID:     questions[0].ID,
		SelectedOption: &wrong,
	})
	require.NoError(t, err)
	assert.False(t, result.IsCorrect)

	// resubmission replaces the first answer instead of adding a row
	right := model.OptionA
	result, err = svc.SubmitAnswer(attempt.ID, user.ID, AnswerRequest{
		QuestionID:     questions[0].ID,
		SelectedOption: &right,
	})
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)

	answers, err := repos.answer.ListByAttempt(attempt.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.True(t, *answers[0].IsCorrect)
}

func TestSubmitAnswerRejectsForeignQuestion(t *testing.T) {
	db, _, svc := attemptFixture(t)
	user := seedUser(t, db, "foreign@example.com")
	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	questions := seedQuestions(t, db, topic.ID, 2)
	test := seedTest(t, db, category.ID, questions[:1])

	outsider := seedQuestions(t, db, topic.ID, 1)[0]

	attempt, err := svc.Start(user.ID, test.ID, true, "127.0.0.1", "ua")
	require.NoError(t, err)

	opt := model.OptionA
	_, err = svc.SubmitAnswer(attempt.ID, user.ID, AnswerRequest{
		QuestionID:     outsider.ID,
		SelectedOption: &opt,
	})
	assert.ErrorIs(t, err, util.ErrQuestionNotInSet)
}

func TestSubmitScoresAndMaterializesUnanswered(t *testing.T) {
	db, repos, svc := attemptFixture(t)
	user := seedUser(t, db, "scoring@example.com")
	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	questions := seedQuestions(t, db, topic.ID, 4)
	test := seedTest(t, db, category.ID, questions)

	attempt, err := svc.Start(user.ID, test.ID, true, "127.0.0.1", "ua")
	require.NoError(t, err)

	// answer 3 of 4: two correct, one wrong; the fourth stays unanswered
	right := model.OptionA
	wrong := model.OptionC
	for i, opt := range []*model.AnswerOption{&right, &right, &wrong} {
		_, err := svc.SubmitAnswer(attempt.ID, user.ID, AnswerRequest{
			QuestionID:     questions[i].ID,
			SelectedOption: opt,
		})
		require.NoError(t, err)
	}

	submitted, err := svc.Submit(attempt.ID, user.ID, SubmitRequest{})
	require.NoError(t, err)

	assert.Equal(t, model.AttemptCompleted, submitted.Status)
	require.NotNil(t, submitted.Score)
	assert.InDelta(t, 50.0, *submitted.Score, 0.001)
	require.NotNil(t, submitted.Passed)
	assert.False(t, *submitted.Passed)

	answers, err := repos.answer.ListByAttempt(attempt.ID)
	require.NoError(t, err)
	assert.Len(t, answers, 4)
	for _, a := range answers {
		assert.NotNil(t, a.IsCorrect)
	}
}

func TestSubmitTwiceFails(t *testing.T) {
	db, _, svc := attemptFixture(t)
	user := seedUser(t, db, "twice@example.com")
	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	test := seedTest(t, db, category.ID, seedQuestions(t, db, topic.ID, 2))

	attempt, err := svc.Start(user.ID, test.ID, true, "127.0.0.1", "ua")
	require.NoError(t, err)

	_, err = svc.Submit(attempt.ID, user.ID, SubmitRequest{})
	require.NoError(t, err)

	_, err = svc.Submit(attempt.ID, user.ID, SubmitRequest{})
	assert.ErrorIs(t, err, util.ErrAttemptSubmitted)
}

func TestDisqualifiedSubmissionScoresZero(t *testing.T) {
	db, repos, svc := attemptFixture(t)
	user := seedUser(t, db, "disqualified@example.com")
	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	questions := seedQuestions(t, db, topic.ID, 3)
	test := seedTest(t, db, category.ID, questions)

	attempt, err := svc.Start(user.ID, test.ID, true, "127.0.0.1", "ua")
	require.NoError(t, err)

	// a correct answer before disqualification must not count
	right := model.OptionA
	_, err = svc.SubmitAnswer(attempt.ID, user.ID, AnswerRequest{
		QuestionID:     questions[0].ID,
		SelectedOption: &right,
	})
	require.NoError(t, err)

	submitted, err := svc.Submit(attempt.ID, user.ID, SubmitRequest{
		Disqualified:           true,
		DisqualificationReason: "left fullscreen repeatedly",
	})
	require.NoError(t, err)

	require.NotNil(t, submitted.Score)
	assert.Zero(t, *submitted.Score)
	require.NotNil(t, submitted.Passed)
	assert.False(t, *submitted.Passed)

	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(submitted.Metadata, &meta))
	assert.Equal(t, true, meta["disqualified"])
	assert.Equal(t, "left fullscreen repeatedly", meta["disqualification_reason"])

	answers, err := repos.answer.ListByAttempt(attempt.ID)
	require.NoError(t, err)
	require.Len(t, answers, 3)
	for _, a := range answers {
		require.NotNil(t, a.IsCorrect)
		assert.False(t, *a.IsCorrect)
	}
}

func TestDicomHotspotGrading(t *testing.T) {
	db, _, svc := attemptFixture(t)
	user := seedUser(t, db, "dicom@example.com")
	category := seedCategory(t, db, 4)
	topic := seedTopic(t, db, category.ID, "image reading")

	q := model.Question{
		TopicID:       topic.ID,
		QuestionType:  model.QuestionDICOM,
		QuestionText:  "click the lesion",
		ImagePath:     "dicom/scan.jpg",
		HotspotX:      100,
		HotspotY:      100,
		HotspotWidth:  50,
		HotspotHeight: 50,
		Points:        1,
		IsActive:      true,
	}
	require.NoError(t, db.Create(&q).Error)
	test := seedTest(t, db, category.ID, []model.Question{q})

	attempt, err := svc.Start(user.ID, test.ID, true, "127.0.0.1", "ua")
	require.NoError(t, err)

	inX, inY := 120, 130
	result, err := svc.SubmitAnswer(attempt.ID, user.ID, AnswerRequest{
		QuestionID: q.ID,
		ClickedX:   &inX,
		ClickedY:   &inY,
	})
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)

	outX, outY := 10, 10
	result, err = svc.SubmitAnswer(attempt.ID, user.ID, AnswerRequest{
		QuestionID: q.ID,
		ClickedX:   &outX,
		ClickedY:   &outY,
	})
	require.NoError(t, err)
	assert.False(t, result.IsCorrect)
}

func TestExpiredAttemptRejectsAnswers(t *testing.T) {
	db, _, svc := attemptFixture(t)
	user := seedUser(t, db, "expired@example.com")
	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	questions := seedQuestions(t, db, topic.ID, 2)
	test := seedTest(t, db, category.ID, questions)

	attempt, err := svc.Start(user.ID, test.ID, true, "127.0.0.1", "ua")
	require.NoError(t, err)

	// push the start time past the deadline
	started := time.Now().Add(-time.Duration(test.TimeLimitMinutes+1) * time.Minute)
	require.NoError(t, db.Model(&model.TestAttempt{}).
		Where("id = ?", attempt.ID).Update("started_at", started).Error)

	opt := model.OptionA
	_, err = svc.SubmitAnswer(attempt.ID, user.ID, AnswerRequest{
		QuestionID:     questions[0].ID,
		SelectedOption: &opt,
	})
	assert.ErrorIs(t, err, util.ErrAttemptExpired)
}

func TestExpireOverdueSparesUnconsentedAssignments(t *testing.T) {
	db, _, svc := attemptFixture(t)
	candidate := seedUser(t, db, "overdue@example.com")
	assignee := seedUser(t, db, "assigned@example.com")
	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	questions := seedQuestions(t, db, topic.ID, 2)
	test := seedTest(t, db, category.ID, questions)

	running, err := svc.Start(candidate.ID, test.ID, true, "127.0.0.1", "ua")
	require.NoError(t, err)

	// pre-assigned attempt: consent not given, clock not started by the candidate
	assigned := &model.TestAttempt{
		UserID: assignee.ID,
		TestID: test.ID,
		Status: model.AttemptStarted,
	}
	require.NoError(t, db.Create(assigned).Error)

	stale := time.Now().Add(-time.Duration(test.TimeLimitMinutes+5) * time.Minute)
	for _, id := range []uint{running.ID, assigned.ID} {
		require.NoError(t, db.Model(&model.TestAttempt{}).
			Where("id = ?", id).Update("started_at", stale).Error)
	}

	expired, err := svc.ExpireOverdue()
	require.NoError(t, err)
	assert.EqualValues(t, 1, expired)

	var got model.TestAttempt
	require.NoError(t, db.First(&got, running.ID).Error)
	assert.Equal(t, model.AttemptExpired, got.Status)

	var gotAssigned model.TestAttempt
	require.NoError(t, db.First(&gotAssigned, assigned.ID).Error)
	assert.Equal(t, model.AttemptStarted, gotAssigned.Status)
}

func TestComputeScoreWeightsPoints(t *testing.T) {
	questions := []model.Question{
		{BaseModel: model.BaseModel{ID: 1}, Points: 3},
		{BaseModel: model.BaseModel{ID: 2}, Points: 1},
		{BaseModel: model.BaseModel{ID: 3}, Points: 1},
	}
	score := ComputeScore(questions, map[uint]bool{1: true})
	assert.InDelta(t, 60.0, score, 0.001)

	assert.Zero(t, ComputeScore(nil, nil))
}
