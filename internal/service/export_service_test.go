package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestAttemptsWorkbook(t *testing.T) {
	db := newTestDB(t)
	repos := newTestRepos(db)
	svc := NewExportService(repos.attempt)

	category := seedCategory(t, db, 1)
	topic := seedTopic(t, db, category.ID, "reasoning")
	test := seedTest(t, db, category.ID, seedQuestions(t, db, topic.ID, 2))

	u1 := seedUser(t, db, "export1@example.com")
	u2 := seedUser(t, db, "export2@example.com")
	seedScoredAttempt(t, db, u1.ID, test.ID, 85, true)
	seedScoredAttempt(t, db, u2.ID, test.ID, 55, false)

	buf, filename, err := svc.AttemptsWorkbook()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "assessment_results_"))
	assert.True(t, strings.HasSuffix(filename, ".xlsx"))

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("All Attempts")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Attempt ID", rows[0][0])
	assert.Equal(t, "Seeded Test", rows[1][3])

	userRows, err := f.GetRows("User Summary")
	require.NoError(t, err)
	// header plus one row per candidate
	assert.Len(t, userRows, 3)
}

func TestAttemptsWorkbookEmpty(t *testing.T) {
	db := newTestDB(t)
	repos := newTestRepos(db)
	svc := NewExportService(repos.attempt)

	buf, _, err := svc.AttemptsWorkbook()
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("All Attempts")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
