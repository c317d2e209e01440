package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const evaluationSchemaURL = "https://promptlab.local/schemas/evaluation.json"

const (
	minImprovements = 3
	maxImprovements = 5
)

// evaluationSchema is the compiled response contract for one criteria set.
type evaluationSchema struct {
	criteria []Criterion
	document json.RawMessage
	compiled *jsonschema.Schema
}

type evaluationPayload struct {
	EffectivenessScore float64            `json:"effectivenessScore"`
	CriteriaScores     map[string]float64 `json:"criteriaScores"`
	Feedback           string             `json:"feedback"`
	Improvements       []string           `json:"improvements"`
	ImprovedPrompt     string             `json:"improvedPrompt"`
}

func scoreProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"minimum":     0,
		"maximum":     100,
		"description": description,
	}
}

func buildSchemaDocument(criteria []Criterion) map[string]interface{} {
	properties := make(map[string]interface{}, len(criteria))
	for _, criterion := range criteria {
		properties[criterion.Name] = scoreProperty(fmt.Sprintf("Score for %s (0-100)", criterion.Name))
	}

	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"effectivenessScore", "criteriaScores", "feedback", "improvements", "improvedPrompt"},
		"properties": map[string]interface{}{
			"effectivenessScore": scoreProperty("Overall effectiveness of the prompt in achieving the goal"),
			"criteriaScores": map[string]interface{}{
				"type":                 "object",
				"additionalProperties": false,
				"required":             criteriaNames(criteria),
				"properties":           properties,
			},
			"feedback": map[string]interface{}{
				"type":        "string",
				"minLength":   1,
				"description": "Detailed feedback explaining strengths and weaknesses",
			},
			"improvements": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"minItems":    minImprovements,
				"maxItems":    maxImprovements,
				"description": "3-5 specific improvements that could be made",
			},
			"improvedPrompt": map[string]interface{}{
				"type":        "string",
				"minLength":   1,
				"description": "An improved version of the prompt",
			},
		},
	}
}

func newEvaluationSchema(criteria []Criterion) (*evaluationSchema, error) {
	document, err := json.Marshal(buildSchemaDocument(criteria))
	if err != nil {
		return nil, fmt.Errorf("marshal evaluation schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(evaluationSchemaURL, bytes.NewReader(document)); err != nil {
		return nil, fmt.Errorf("add evaluation schema: %w", err)
	}
	compiled, err := compiler.Compile(evaluationSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile evaluation schema: %w", err)
	}

	return &evaluationSchema{criteria: criteria, document: document, compiled: compiled}, nil
}

// parse validates raw model output and converts it into an EvaluationResult.
func (s *evaluationSchema) parse(content string) (EvaluationResult, error) {
	body := extractJSONObject(content)
	if body == "" {
		return EvaluationResult{}, fmt.Errorf("%w: no json object in output", ErrSchemaViolation)
	}

	var generic interface{}
	if err := json.Unmarshal([]byte(body), &generic); err != nil {
		return EvaluationResult{}, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	if err := s.compiled.Validate(generic); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return EvaluationResult{}, fmt.Errorf("%w: %s", ErrSchemaViolation, validationErr.Error())
		}
		return EvaluationResult{}, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}

	var payload evaluationPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return EvaluationResult{}, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}

	return s.toResult(payload), nil
}

func (s *evaluationSchema) toResult(payload evaluationPayload) EvaluationResult {
	scores := make([]CriterionScore, 0, len(s.criteria))
	for _, criterion := range s.criteria {
		scores = append(scores, CriterionScore{Name: criterion.Name, Score: payload.CriteriaScores[criterion.Name]})
	}

	return EvaluationResult{
		EffectivenessScore: payload.EffectivenessScore,
		CriteriaScores:     scores,
		Feedback:           strings.TrimSpace(payload.Feedback),
		Improvements:       payload.Improvements,
		ImprovedPrompt:     strings.TrimSpace(payload.ImprovedPrompt),
	}
}

// extractJSONObject strips markdown fences and surrounding prose from a model reply.
func extractJSONObject(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	}
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end < start {
		return ""
	}
	return trimmed[start : end+1]
}
