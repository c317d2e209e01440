package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/prompt-workshop-api/internal/models"
	"github.com/noah-isme/prompt-workshop-api/internal/repository"
	"github.com/noah-isme/prompt-workshop-api/pkg/ai"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type stubEvaluator struct {
	mu     sync.Mutex
	result ai.EvaluationResult
	err    error
	inputs []ai.EvaluationInput
}

func (s *stubEvaluator) Evaluate(_ context.Context, input ai.EvaluationInput) (ai.EvaluationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, input)
	if s.err != nil {
		return ai.EvaluationResult{}, s.err
	}
	return s.result, nil
}

func (s *stubEvaluator) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inputs)
}

// failingSubmissions wraps a repository and fails every insert.
type failingSubmissions struct {
	repository.SubmissionRepository
}

func (failingSubmissions) Create(context.Context, *models.Submission) error {
	return errors.New("connection reset")
}

type recordingObserver struct {
	mu          sync.Mutex
	submissions []models.Submission
}

func (r *recordingObserver) SubmissionCreated(_ context.Context, submission models.Submission) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions = append(r.submissions, submission)
}

func refundSession(open bool) models.Session {
	return models.Session{
		Name:       "Refunds",
		Stage1Goal: "Write a refund email",
		Stage1Criteria: []models.Criterion{
			{Name: "Clarity", Description: "clear"},
			{Name: "Specificity", Description: "specific"},
			{Name: "Efficiency", Description: "concise"},
		},
		Stage2Goal:     "Plan a product launch",
		Stage2Criteria: []models.Criterion{{Name: "Reach", Description: "audience"}},
		IsOpen:         open,
	}
}

func refundResult() ai.EvaluationResult {
	return ai.EvaluationResult{
		EffectivenessScore: 72,
		CriteriaScores: []ai.CriterionScore{
			{Name: "Clarity", Score: 80},
			{Name: "Specificity", Score: 65},
			{Name: "Efficiency", Score: 70},
		},
		Feedback:       "Solid start",
		Improvements:   []string{"Name the order", "State the amount", "Set a deadline"},
		ImprovedPrompt: "Draft a refund email for order 42",
		Usage:          ai.Usage{InputTokens: 900, OutputTokens: 350},
	}
}

func newValidator() *validator.Validate {
	return validator.New()
}
