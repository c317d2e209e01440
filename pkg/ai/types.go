package ai

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrEvaluationFailed indicates the completion call failed or returned nothing usable.
	ErrEvaluationFailed = errors.New("evaluation failed")
	// ErrSchemaViolation indicates the model output did not match the evaluation schema.
	ErrSchemaViolation = errors.New("evaluation output violates schema")
)

// Criterion is a named axis a prompt is scored on.
type Criterion struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DefaultCriteria is used whenever an evaluation is requested without criteria.
var DefaultCriteria = []Criterion{
	{Name: "Clarity", Description: "How clear and unambiguous the prompt is"},
	{Name: "Specificity", Description: "How specific and detailed the prompt is for achieving the goal"},
	{Name: "Efficiency", Description: "How concise yet complete the prompt is"},
}

// EvaluationInput contains everything needed to grade a single prompt.
type EvaluationInput struct {
	Prompt   string
	Goal     string
	Criteria []Criterion
}

// CriterionScore pairs a criterion name with the score the model assigned.
type CriterionScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Usage reports the token counts of the completion calls behind an evaluation.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// EvaluationResult is the structured evaluation returned by an Evaluator.
type EvaluationResult struct {
	EffectivenessScore float64          `json:"effectivenessScore"`
	CriteriaScores     []CriterionScore `json:"criteriaScores"`
	Feedback           string           `json:"feedback"`
	Improvements       []string         `json:"improvements"`
	ImprovedPrompt     string           `json:"improvedPrompt"`
	Usage              Usage            `json:"usage"`
}

// ScoreMap returns the criteria scores keyed by criterion name.
func (r EvaluationResult) ScoreMap() map[string]float64 {
	scores := make(map[string]float64, len(r.CriteriaScores))
	for _, score := range r.CriteriaScores {
		scores[score.Name] = score.Score
	}
	return scores
}

// Evaluator grades a prompt against a goal and a set of criteria.
type Evaluator interface {
	Evaluate(ctx context.Context, input EvaluationInput) (EvaluationResult, error)
}

// NormalizeCriteria trims criteria, drops unnamed and repeated entries and falls back to
// DefaultCriteria when none remain.
func NormalizeCriteria(criteria []Criterion) []Criterion {
	normalized := make([]Criterion, 0, len(criteria))
	seen := make(map[string]struct{}, len(criteria))
	for _, criterion := range criteria {
		name := strings.TrimSpace(criterion.Name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		normalized = append(normalized, Criterion{Name: name, Description: strings.TrimSpace(criterion.Description)})
	}
	if len(normalized) == 0 {
		return append([]Criterion(nil), DefaultCriteria...)
	}
	return normalized
}

func criteriaNames(criteria []Criterion) []string {
	names := make([]string, 0, len(criteria))
	for _, criterion := range criteria {
		names = append(names, criterion.Name)
	}
	return names
}
