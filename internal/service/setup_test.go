package service

import (
	"fmt"
	"strings"
	"testing"

	"mri_screening_backend/internal/model"
	"mri_screening_backend/internal/repository"
	"mri_screening_backend/pkg/database"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database per test and runs the full
// migration against it.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

type testRepos struct {
	user       *repository.UserRepository
	category   *repository.CategoryRepository
	topic      *repository.TopicRepository
	question   *repository.QuestionRepository
	test       *repository.TestRepository
	attempt    *repository.AttemptRepository
	answer     *repository.AnswerRepository
	cohort     *repository.CohortRepository
	proctoring *repository.ProctoringRepository
	plagiarism *repository.PlagiarismRepository
}

func newTestRepos(db *gorm.DB) *testRepos {
	return &testRepos{
		user:       repository.NewUserRepository(db),
		category:   repository.NewCategoryRepository(db),
		topic:      repository.NewTopicRepository(db),
		question:   repository.NewQuestionRepository(db),
		test:       repository.NewTestRepository(db),
		attempt:    repository.NewAttemptRepository(db),
		answer:     repository.NewAnswerRepository(db),
		cohort:     repository.NewCohortRepository(db),
		proctoring: repository.NewProctoringRepository(db),
		plagiarism: repository.NewPlagiarismRepository(db),
	}
}

func seedUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		FirstName: "Test",
		LastName:  "Candidate",
		Email:     email,
		Password:  "not-a-real-hash",
		Role:      model.Candidate,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedCategory(t *testing.T, db *gorm.DB, stage int) *model.TestCategory {
	t.Helper()
	category := &model.TestCategory{
		Name:         fmt.Sprintf("Stage %d", stage),
		Slug:         fmt.Sprintf("stage-%d-%s", stage, strings.ToLower(strings.ReplaceAll(t.Name(), "/", "-"))),
		StageNumber:  stage,
		PassingScore: 70,
		IsActive:     true,
	}
	require.NoError(t, db.Create(category).Error)
	return category
}

func seedTopic(t *testing.T, db *gorm.DB, categoryID uint, name string) *model.QuestionTopic {
	t.Helper()
	topic := &model.QuestionTopic{CategoryID: categoryID, Name: name, IsActive: true}
	require.NoError(t, db.Create(topic).Error)
	return topic
}

// seedQuestions creates n active mcq questions whose correct option is "a".
func seedQuestions(t *testing.T, db *gorm.DB, topicID uint, n int) []model.Question {
	t.Helper()
	questions := make([]model.Question, 0, n)
	for i := 0; i < n; i++ {
		q := model.Question{
			TopicID:          topicID,
			QuestionType:     model.QuestionMCQ,
			QuestionText:     fmt.Sprintf("question %d", i+1),
			OptionA:          "right",
			OptionB:          "wrong",
			OptionC:          "wrong",
			OptionD:          "wrong",
			CorrectOption:    model.OptionA,
			Points:           1,
			TimeLimitSeconds: 60,
			IsActive:         true,
		}
		require.NoError(t, db.Create(&q).Error)
		questions = append(questions, q)
	}
	return questions
}

func seedTest(t *testing.T, db *gorm.DB, categoryID uint, questions []model.Question) *model.Test {
	t.Helper()
	test := &model.Test{
		CategoryID:       categoryID,
		Title:            "Seeded Test",
		TimeLimitMinutes: 30,
		PassingScore:     70,
		IsActive:         true,
		Questions:        questions,
	}
	require.NoError(t, db.Create(test).Error)
	return test
}

// attemptFixture wires the services the attempt lifecycle tests need.
func attemptFixture(t *testing.T) (*gorm.DB, *testRepos, *AttemptService) {
	t.Helper()
	db := newTestDB(t)
	repos := newTestRepos(db)
	testSvc := NewTestService(repos.test, repos.topic, repos.question, repos.cohort, repos.attempt)
	attemptSvc := NewAttemptService(repos.attempt, repos.answer, repos.question, repos.test, testSvc)
	return db, repos, attemptSvc
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
