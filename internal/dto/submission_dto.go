package dto

import (
	"time"

	"github.com/noah-isme/prompt-workshop-api/internal/models"
)

// CreateSubmissionRequest is the payload of POST /submissions, used by clients that evaluate elsewhere.
type CreateSubmissionRequest struct {
	SessionID          *uint              `json:"sessionId" validate:"omitempty,gt=0"`
	UserID             string             `json:"userId" validate:"max=128"`
	Stage              int                `json:"stage" validate:"omitempty,oneof=1 2"`
	Prompt             string             `json:"prompt" validate:"required"`
	TargetOutput       string             `json:"targetOutput" validate:"required"`
	EffectivenessScore float64            `json:"effectivenessScore" validate:"gte=0,lte=100"`
	CriteriaScores     map[string]float64 `json:"criteriaScores" validate:"omitempty,dive,gte=0,lte=100"`
	Clarity            *float64           `json:"clarity" validate:"omitempty,gte=0,lte=100"`
	Specificity        *float64           `json:"specificity" validate:"omitempty,gte=0,lte=100"`
	Efficiency         *float64           `json:"efficiency" validate:"omitempty,gte=0,lte=100"`
	Feedback           string             `json:"feedback"`
	ImprovedPrompt     string             `json:"improvedPrompt"`
	Improvements       []string           `json:"improvements"`
	Tokens             int                `json:"tokens" validate:"gte=0"`
}

// SubmissionResponse describes a stored submission.
type SubmissionResponse struct {
	ID                 uint               `json:"id"`
	SessionID          uint               `json:"sessionId"`
	UserID             string             `json:"userId"`
	Stage              int                `json:"stage"`
	Prompt             string             `json:"prompt"`
	TargetOutput       string             `json:"targetOutput"`
	EffectivenessScore float64            `json:"effectivenessScore"`
	CriteriaScores     map[string]float64 `json:"criteriaScores"`
	Improvements       []string           `json:"improvements"`
	Feedback           string             `json:"feedback"`
	ImprovedPrompt     string             `json:"improvedPrompt"`
	Tokens             int                `json:"tokens"`
	EstimatedCO2       float64            `json:"estimatedCO2"`
	EstimatedCost      float64            `json:"estimatedCost"`
	UserRating         *int               `json:"userRating"`
	Timestamp          time.Time          `json:"timestamp"`
}

// NewSubmissionResponse builds a response DTO from a model.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	improvements := []string(submission.Improvements)
	if improvements == nil {
		improvements = []string{}
	}

	return SubmissionResponse{
		ID:                 submission.ID,
		SessionID:          submission.SessionID,
		UserID:             submission.UserID,
		Stage:              submission.Stage,
		Prompt:             submission.Prompt,
		TargetOutput:       submission.Goal,
		EffectivenessScore: submission.OverallScore,
		CriteriaScores:     submission.Scores(),
		Improvements:       improvements,
		Feedback:           submission.Feedback,
		ImprovedPrompt:     submission.ImprovedPrompt,
		Tokens:             submission.TokenCount,
		EstimatedCO2:       submission.CO2Grams,
		EstimatedCost:      submission.CostUSD,
		UserRating:         submission.UserRating,
		Timestamp:          submission.CreatedAt,
	}
}

// NewSubmissionResponses converts a list of submissions.
func NewSubmissionResponses(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}
	return responses
}

// RateEvaluationRequest is the payload of POST /rate-evaluation.
// SubmissionID is preferred; Prompt selects the most recent submission with identical text.
type RateEvaluationRequest struct {
	SubmissionID *uint  `json:"submissionId" validate:"omitempty,gt=0"`
	Prompt       string `json:"prompt" validate:"required_without=SubmissionID"`
	Rating       int    `json:"rating" validate:"required,gte=1,lte=5"`
}
