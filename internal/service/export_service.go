package service

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"mri_screening_backend/internal/model"
	"mri_screening_backend/internal/repository"
	"mri_screening_backend/internal/util"

	"github.com/xuri/excelize/v2"
)

// ExportService renders recruiter reports as xlsx workbooks.
type ExportService struct {
	AttemptRepo *repository.AttemptRepository
}

func NewExportService(attemptRepo *repository.AttemptRepository) *ExportService {
	return &ExportService{AttemptRepo: attemptRepo}
}

const (
	sheetAttempts = "All Attempts"
	sheetUsers    = "User Summary"
)

// AttemptsWorkbook builds the full results export: one row per completed
// attempt plus a per-candidate summary sheet.
func (s *ExportService) AttemptsWorkbook() (*bytes.Buffer, string, error) {
	attempts, _, err := s.AttemptRepo.List("", 1, 100000)
	if err != nil {
		return nil, "", err
	}
	return s.renderWorkbook(attempts)
}

func (s *ExportService) renderWorkbook(attempts []model.TestAttempt) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetAttempts)
	if _, err := f.NewSheet(sheetUsers); err != nil {
		return nil, "", err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, "", err
	}

	attemptHeaders := []interface{}{
		"Attempt ID", "Candidate", "Email", "Test", "Category", "Status",
		"Score (%)", "Passed", "Started At", "Completed At", "Time Spent (s)",
		"Flagged For Plagiarism",
	}
	if err := f.SetSheetRow(sheetAttempts, "A1", &attemptHeaders); err != nil {
		return nil, "", err
	}
	f.SetCellStyle(sheetAttempts, "A1", "L1", headerStyle)

	type userAgg struct {
		name     string
		email    string
		attempts int
		passed   int
		scoreSum float64
		scored   int
		best     float64
	}
	users := map[uint]*userAgg{}

	for i, a := range attempts {
		cell := fmt.Sprintf("A%d", i+2)

		candidate, email := "", ""
		if a.User != nil {
			candidate = a.User.FullName()
			email = a.User.Email
		}
		testName, category := "", ""
		if a.Test != nil {
			testName = a.Test.Title
			if a.Test.Category != nil {
				category = a.Test.Category.Name
			}
		}
		score := ""
		if a.Score != nil {
			score = fmt.Sprintf("%.2f", *a.Score)
		}
		passed := ""
		if a.Passed != nil {
			passed = fmt.Sprintf("%t", *a.Passed)
		}
		completedAt := ""
		if a.CompletedAt != nil {
			completedAt = a.CompletedAt.Format(util.TimeFormat)
		}

		row := []interface{}{
			a.ID, candidate, email, testName, category, string(a.Status),
			score, passed, a.StartedAt.Format(util.TimeFormat), completedAt,
			a.TimeSpentSeconds, a.FlaggedForPlagiarism,
		}
		if err := f.SetSheetRow(sheetAttempts, cell, &row); err != nil {
			return nil, "", err
		}

		agg, ok := users[a.UserID]
		if !ok {
			agg = &userAgg{name: candidate, email: email}
			users[a.UserID] = agg
		}
		agg.attempts++
		if a.Passed != nil && *a.Passed {
			agg.passed++
		}
		if a.Score != nil {
			agg.scoreSum += *a.Score
			agg.scored++
			if *a.Score > agg.best {
				agg.best = *a.Score
			}
		}
	}

	userHeaders := []interface{}{
		"Candidate", "Email", "Attempts", "Passed", "Average Score (%)", "Best Score (%)",
	}
	if err := f.SetSheetRow(sheetUsers, "A1", &userHeaders); err != nil {
		return nil, "", err
	}
	f.SetCellStyle(sheetUsers, "A1", "F1", headerStyle)

	row := 2
	for _, agg := range users {
		avg := 0.0
		if agg.scored > 0 {
			avg = math.Round(agg.scoreSum/float64(agg.scored)*100) / 100
		}
		cells := []interface{}{agg.name, agg.email, agg.attempts, agg.passed, avg, agg.best}
		if err := f.SetSheetRow(sheetUsers, fmt.Sprintf("A%d", row), &cells); err != nil {
			return nil, "", err
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("assessment_results_%s.xlsx", time.Now().Format(util.DateFormat))
	return buf, filename, nil
}
