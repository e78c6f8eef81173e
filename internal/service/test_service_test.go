package service

import (
	"testing"

	"mri_screening_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testServiceFixture(t *testing.T) (*gorm.DB, *testRepos, *TestService) {
	t.Helper()
	db := newTestDB(t)
	repos := newTestRepos(db)
	return db, repos, NewTestService(repos.test, repos.topic, repos.question, repos.cohort, repos.attempt)
}

func TestGenerateQuestionSetFixed(t *testing.T) {
	db, _, svc := testServiceFixture(t)
	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	questions := seedQuestions(t, db, topic.ID, 3)

	// an inactive question in the assigned list is excluded
	inactive := model.Question{
		TopicID:       topic.ID,
		QuestionType:  model.QuestionMCQ,
		QuestionText:  "retired question",
		CorrectOption: model.OptionA,
		Points:        1,
	}
	require.NoError(t, db.Create(&inactive).Error)
	test := seedTest(t, db, category.ID, append(questions, inactive))

	full, err := svc.TestRepo.FindByID(test.ID)
	require.NoError(t, err)

	ids, err := svc.GenerateQuestionSet(full)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
	assert.NotContains(t, ids, inactive.ID)
}

func TestGenerateQuestionSetFromTopics(t *testing.T) {
	db, _, svc := testServiceFixture(t)
	category := seedCategory(t, db, 1)
	t1 := seedTopic(t, db, category.ID, "safety")
	t2 := seedTopic(t, db, category.ID, "anatomy")
	seedQuestions(t, db, t1.ID, 4)
	seedQuestions(t, db, t2.ID, 4)

	test := &model.Test{
		CategoryID:             category.ID,
		Title:                  "Generated",
		TimeLimitMinutes:       30,
		PassingScore:           70,
		AutoGenerateFromTopics: true,
		QuestionsPerTopic:      2,
		IsActive:               true,
	}
	require.NoError(t, db.Create(test).Error)

	ids, err := svc.GenerateQuestionSet(test)
	require.NoError(t, err)
	assert.Len(t, ids, 4)

	seen := map[uint]bool{}
	for _, id := range ids {
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestListAvailableRespectsCohortCategories(t *testing.T) {
	db, _, svc := testServiceFixture(t)
	stage1 := seedCategory(t, db, 1)
	stage2 := seedCategory(t, db, 2)
	topic1 := seedTopic(t, db, stage1.ID, "reasoning")
	topic2 := seedTopic(t, db, stage2.ID, "safety")
	test1 := seedTest(t, db, stage1.ID, seedQuestions(t, db, topic1.ID, 2))
	seedTest(t, db, stage2.ID, seedQuestions(t, db, topic2.ID, 2))

	outsider := seedUser(t, db, "outsider@example.com")
	all, err := svc.ListAvailable(outsider.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	member := seedUser(t, db, "cohorted@example.com")
	cohort := model.Cohort{Name: "Stage 1 only", IsActive: true, EnabledCategories: []model.TestCategory{*stage1}}
	require.NoError(t, db.Create(&cohort).Error)
	require.NoError(t, db.Create(&model.CohortMembership{CohortID: cohort.ID, UserID: member.ID}).Error)

	visible, err := svc.ListAvailable(member.ID)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, test1.ID, visible[0].ID)
}
