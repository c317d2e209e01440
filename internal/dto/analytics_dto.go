package dto

import "time"

// AnalyticsSubmissionRow is the per-submission view of the analytics dashboard.
type AnalyticsSubmissionRow struct {
	ID             uint               `json:"id"`
	Timestamp      time.Time          `json:"timestamp"`
	User           string             `json:"user"`
	Stage          int                `json:"stage"`
	PromptPreview  string             `json:"promptPreview"`
	OverallScore   float64            `json:"overallScore"`
	CriteriaScores map[string]float64 `json:"criteriaScores"`
	Tokens         int                `json:"tokens"`
}

// UserProgress compares a participant's best attempt in each stage.
type UserProgress struct {
	User               string   `json:"user"`
	Stage1Score        *float64 `json:"stage1Score"`
	Stage2Score        *float64 `json:"stage2Score"`
	Improvement        *float64 `json:"improvement"`
	ImprovementDisplay string   `json:"improvementDisplay"`
	Stage1Attempts     int      `json:"stage1Attempts"`
	Stage2Attempts     int      `json:"stage2Attempts"`
}

// AnalyticsResponse aggregates submissions and feedback for the admin dashboard.
type AnalyticsResponse struct {
	SessionID             *uint                    `json:"sessionId,omitempty"`
	TotalSubmissions      int                      `json:"totalSubmissions"`
	AverageScore          float64                  `json:"averageScore"`
	AverageStage1Score    float64                  `json:"averageStage1Score"`
	AverageStage2Score    float64                  `json:"averageStage2Score"`
	TotalTokens           int                      `json:"totalTokens"`
	TotalCO2              float64                  `json:"totalCO2"`
	AverageFeedbackRating float64                  `json:"averageFeedbackRating"`
	FeedbackCount         int                      `json:"feedbackCount"`
	Users                 []UserProgress           `json:"users"`
	Submissions           []AnalyticsSubmissionRow `json:"submissions"`
	GeneratedAt           time.Time                `json:"generatedAt"`
	CacheHit              bool                     `json:"cacheHit"`
}
