package service

import (
	"fmt"
	"testing"

	"mri_screening_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func cohortFixture(t *testing.T) (*gorm.DB, *testRepos, *CohortService) {
	t.Helper()
	db := newTestDB(t)
	repos := newTestRepos(db)
	testSvc := NewTestService(repos.test, repos.topic, repos.question, repos.cohort, repos.attempt)
	svc := NewCohortService(repos.cohort, repos.category, repos.user, repos.test, repos.attempt, testSvc, testLogger())
	return db, repos, svc
}

func TestCohortCreateWithCategories(t *testing.T) {
	db, _, svc := cohortFixture(t)
	category := seedCategory(t, db, 1)

	cohort, err := svc.Create(CohortRequest{
		Name:        "August Intake",
		Description: "first screening round",
		CategoryIDs: []uint{category.ID},
	})
	require.NoError(t, err)

	got, err := svc.Get(cohort.ID)
	require.NoError(t, err)
	require.Len(t, got.EnabledCategories, 1)
	assert.Equal(t, category.ID, got.EnabledCategories[0].ID)
	assert.True(t, got.IsActive)
}

func TestCohortMembership(t *testing.T) {
	db, _, svc := cohortFixture(t)
	admin := seedUser(t, db, "hr@example.com")
	candidate := seedUser(t, db, "member@example.com")

	cohort, err := svc.Create(CohortRequest{Name: "Members"})
	require.NoError(t, err)

	_, err = svc.AddMember(cohort.ID, candidate.ID, admin.ID)
	require.NoError(t, err)

	members, err := svc.ListMembers(cohort.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, candidate.ID, members[0].UserID)
	assert.Equal(t, admin.ID, members[0].AddedByID)

	require.NoError(t, svc.RemoveMember(cohort.ID, candidate.ID))
	members, err = svc.ListMembers(cohort.ID)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestBulkAssignTest(t *testing.T) {
	db, repos, svc := cohortFixture(t)
	admin := seedUser(t, db, "assigner@example.com")
	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	test := seedTest(t, db, category.ID, seedQuestions(t, db, topic.ID, 3))

	cohort, err := svc.Create(CohortRequest{Name: "Bulk", CategoryIDs: []uint{category.ID}})
	require.NoError(t, err)

	var members []*model.User
	for i := 0; i < 3; i++ {
		m := seedUser(t, db, fmt.Sprintf("bulk%d@example.com", i))
		_, err := svc.AddMember(cohort.ID, m.ID, admin.ID)
		require.NoError(t, err)
		members = append(members, m)
	}

	// one member already has an open attempt and must be skipped
	busy := model.TestAttempt{UserID: members[0].ID, TestID: test.ID, Status: model.AttemptInProgress, ConsentGiven: true}
	require.NoError(t, db.Create(&busy).Error)

	report, err := svc.BulkAssignTest(cohort.ID, test.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Skipped)
	assert.Len(t, report.UserIDs, 2)

	attempt, err := repos.attempt.FindActiveByUserAndTest(members[1].ID, test.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptStarted, attempt.Status)
	assert.False(t, attempt.ConsentGiven)
	assert.Len(t, attempt.QuestionIDs(), 3)

	// assigning again skips everyone
	report, err = svc.BulkAssignTest(cohort.ID, test.ID)
	require.NoError(t, err)
	assert.Zero(t, report.Created)
	assert.Equal(t, 3, report.Skipped)
}

func TestAssignedAttemptStartsClockOnFirstOpen(t *testing.T) {
	db, repos, svc := cohortFixture(t)
	admin := seedUser(t, db, "opener-admin@example.com")
	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	test := seedTest(t, db, category.ID, seedQuestions(t, db, topic.ID, 2))

	cohort, err := svc.Create(CohortRequest{Name: "Opens"})
	require.NoError(t, err)
	candidate := seedUser(t, db, "opener@example.com")
	_, err = svc.AddMember(cohort.ID, candidate.ID, admin.ID)
	require.NoError(t, err)

	_, err = svc.BulkAssignTest(cohort.ID, test.ID)
	require.NoError(t, err)

	testSvc := NewTestService(repos.test, repos.topic, repos.question, repos.cohort, repos.attempt)
	attemptSvc := NewAttemptService(repos.attempt, repos.answer, repos.question, repos.test, testSvc)

	attempt, err := attemptSvc.Start(candidate.ID, test.ID, true, "127.0.0.1", "ua")
	require.NoError(t, err)
	assert.Equal(t, model.AttemptInProgress, attempt.Status)
	assert.True(t, attempt.ConsentGiven)
	assert.NotNil(t, attempt.ConsentTimestamp)
}
