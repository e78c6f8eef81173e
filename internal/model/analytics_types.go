package model

// Aggregated read models returned by the analytics endpoints. None of these
// are persisted.

type SkillGap struct {
	Topic              string  `json:"topic"`
	Category           string  `json:"category"`
	Percentage         float64 `json:"percentage"`
	Correct            int     `json:"correct"`
	Total              int     `json:"total"`
	QuestionsToImprove int     `json:"questionsToImprove"`
}

type StageReadiness struct {
	StageNumber int      `json:"stageNumber"`
	Category    string   `json:"category"`
	Score       float64  `json:"score"`
	Passed      bool     `json:"passed"`
	Percentile  *float64 `json:"percentile,omitempty"`
	Attempted   bool     `json:"attempted"`
}

type RubricAssessment struct {
	Stages             []StageReadiness `json:"stages"`
	OverallReadiness   float64          `json:"overallReadiness"`
	CertificationReady bool             `json:"certificationReady"`
}

type CandidateDashboard struct {
	TotalTests          int                 `json:"totalTests"`
	PassedTests         int                 `json:"passedTests"`
	AverageScore        float64             `json:"averageScore"`
	CategoryPercentiles map[string]*float64 `json:"categoryPercentiles"`
	SkillGaps           []SkillGap          `json:"skillGaps"`
	Rubric              RubricAssessment    `json:"rubric"`
}

type CategoryStats struct {
	Name         string  `json:"name"`
	StageNumber  int     `json:"stageNumber"`
	Attempts     int64   `json:"attempts"`
	PassRate     float64 `json:"passRate"`
	AverageScore float64 `json:"averageScore"`
}

type QuestionStats struct {
	QuestionID      uint    `json:"questionId"`
	QuestionText    string  `json:"questionText"`
	DifficultyLevel int     `json:"difficultyLevel"`
	TotalAnswers    int64   `json:"totalAnswers"`
	CorrectAnswers  int64   `json:"correctAnswers"`
	SuccessRate     float64 `json:"successRate"`
}

type AdminDashboard struct {
	TotalAttempts    int64           `json:"totalAttempts"`
	TotalCandidates  int64           `json:"totalCandidates"`
	PassRate         float64         `json:"passRate"`
	CategoryStats    []CategoryStats `json:"categoryStats"`
	HardestQuestions []QuestionStats `json:"hardestQuestions"`
	FlaggedAttempts  []TestAttempt   `json:"flaggedAttempts"`
}

type ItemAnalysis struct {
	QuestionID     uint    `json:"questionId"`
	SuccessRate    float64 `json:"successRate"`
	Discrimination float64 `json:"discrimination"`
}

type ReliabilityReport struct {
	TestID         uint           `json:"testId"`
	CronbachAlpha  float64        `json:"cronbachAlpha"`
	SampleAttempts int            `json:"sampleAttempts"`
	SampleItems    int            `json:"sampleItems"`
	Items          []ItemAnalysis `json:"items"`
}

type ProfileCompletion struct {
	Percentage     int      `json:"percentage"`
	CompletedCount int      `json:"completedCount"`
	TotalCount     int      `json:"totalCount"`
	MissingFields  []string `json:"missingFields"`
	IsComplete     bool     `json:"isComplete"`
}
