package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultMaxToolRounds = 10

const (
	toolCriterionScore     = "record_criterion_score"
	toolEffectivenessScore = "record_effectiveness_score"
	toolFeedback           = "record_feedback"
	toolImprovements       = "record_improvements"
	toolImprovedPrompt     = "record_improved_prompt"
	toolComplete           = "complete_evaluation"
)

// ToolCallingEvaluator collects an evaluation through function calls for models without structured output.
type ToolCallingEvaluator struct {
	client    ChatCompleter
	cfg       OpenAIConfig
	maxRounds int
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewToolCallingEvaluator builds an evaluator that drives the model through grading tools.
func NewToolCallingEvaluator(cfg OpenAIConfig) (*ToolCallingEvaluator, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	return &ToolCallingEvaluator{
		client:    cfg.Client,
		cfg:       cfg,
		maxRounds: defaultMaxToolRounds,
		tracer:    otel.Tracer("github.com/noah-isme/prompt-workshop-api/pkg/ai/tools"),
		logger:    cfg.Logger.With().Str("component", "tool_evaluator").Logger(),
	}, nil
}

// Model reports the model the evaluator calls.
func (e *ToolCallingEvaluator) Model() string {
	return e.cfg.Model
}

// gradingState accumulates tool call arguments until the evaluation is complete.
type gradingState struct {
	EffectivenessScore *float64           `json:"effectivenessScore,omitempty"`
	CriteriaScores     map[string]float64 `json:"criteriaScores"`
	Feedback           *string            `json:"feedback,omitempty"`
	Improvements       []string           `json:"improvements,omitempty"`
	ImprovedPrompt     *string            `json:"improvedPrompt,omitempty"`
	completed          bool
}

// Evaluate runs the tool-calling loop and validates the assembled state against the evaluation schema.
func (e *ToolCallingEvaluator) Evaluate(parent context.Context, input EvaluationInput) (EvaluationResult, error) {
	ctx, span := e.tracer.Start(parent, "tools.evaluate", trace.WithAttributes(
		attribute.String("model", e.cfg.Model),
		attribute.String("mode", ModeTools),
	))
	defer span.End()

	criteria := NormalizeCriteria(input.Criteria)
	schema, err := newEvaluationSchema(criteria)
	if err != nil {
		return EvaluationResult{}, e.fail(span, "schema", fmt.Errorf("%w: %v", ErrEvaluationFailed, err))
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: toolSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: buildEvaluationPrompt(input, criteria)},
	}
	tools := gradingTools(criteria)
	state := &gradingState{CriteriaScores: map[string]float64{}}
	usage := Usage{}

	start := time.Now()
	defer func() {
		aiDuration.WithLabelValues(e.cfg.Model, ModeTools).Observe(time.Since(start).Seconds())
	}()

	for round := 0; round < e.maxRounds && !state.completed; round++ {
		resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       e.cfg.Model,
			MaxTokens:   e.cfg.MaxTokens,
			Temperature: e.cfg.Temperature,
			Messages:    messages,
			Tools:       tools,
		})
		if err != nil {
			return EvaluationResult{}, e.fail(span, "request", fmt.Errorf("%w: tool round %d: %v", ErrEvaluationFailed, round+1, err))
		}
		usage.InputTokens += resp.Usage.PromptTokens
		usage.OutputTokens += resp.Usage.CompletionTokens
		aiTokens.WithLabelValues(e.cfg.Model, "input").Add(float64(resp.Usage.PromptTokens))
		aiTokens.WithLabelValues(e.cfg.Model, "output").Add(float64(resp.Usage.CompletionTokens))

		if len(resp.Choices) == 0 {
			return EvaluationResult{}, e.fail(span, "empty", fmt.Errorf("%w: no choices returned", ErrEvaluationFailed))
		}

		message := resp.Choices[0].Message
		if len(message.ToolCalls) == 0 {
			break
		}

		messages = append(messages, message)
		for _, call := range message.ToolCalls {
			reply := state.apply(call.Function.Name, call.Function.Arguments)
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    reply,
			})
		}
	}
	span.SetAttributes(attribute.Bool("evaluation.completed", state.completed))

	document, err := json.Marshal(state)
	if err != nil {
		return EvaluationResult{}, e.fail(span, "schema", fmt.Errorf("%w: %v", ErrSchemaViolation, err))
	}
	result, err := schema.parse(string(document))
	if err != nil {
		e.logger.Warn().Err(err).Bool("completed", state.completed).Msg("tool evaluation incomplete")
		return EvaluationResult{}, e.fail(span, "schema", err)
	}

	result.Usage = usage
	return result, nil
}

func (e *ToolCallingEvaluator) fail(span trace.Span, reason string, err error) error {
	aiFailures.WithLabelValues(e.cfg.Model, ModeTools, reason).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// apply executes one tool call against the state and returns the tool reply.
func (s *gradingState) apply(name, arguments string) string {
	switch name {
	case toolCriterionScore:
		var args struct {
			Name  string  `json:"name"`
			Score float64 `json:"score"`
		}
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return toolError(err)
		}
		s.CriteriaScores[strings.TrimSpace(args.Name)] = args.Score
		return fmt.Sprintf("%s score set to %g", args.Name, args.Score)
	case toolEffectivenessScore:
		var args struct {
			Score float64 `json:"score"`
		}
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return toolError(err)
		}
		s.EffectivenessScore = &args.Score
		return fmt.Sprintf("effectiveness score set to %g", args.Score)
	case toolFeedback:
		var args struct {
			Feedback string `json:"feedback"`
		}
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return toolError(err)
		}
		s.Feedback = &args.Feedback
		return "feedback recorded"
	case toolImprovements:
		var args struct {
			Improvements []string `json:"improvements"`
		}
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return toolError(err)
		}
		s.Improvements = args.Improvements
		return fmt.Sprintf("recorded %d improvement suggestions", len(args.Improvements))
	case toolImprovedPrompt:
		var args struct {
			ImprovedPrompt string `json:"improvedPrompt"`
		}
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return toolError(err)
		}
		s.ImprovedPrompt = &args.ImprovedPrompt
		return "improved prompt recorded"
	case toolComplete:
		s.completed = true
		return "evaluation completed"
	default:
		return fmt.Sprintf("error: unknown tool %q", name)
	}
}

func toolError(err error) string {
	return fmt.Sprintf("error: invalid arguments: %v", err)
}

func toolDefinition(name, description string, parameters map[string]interface{}) openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

func objectSchema(required []string, properties map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"required":   required,
		"properties": properties,
	}
}

func gradingTools(criteria []Criterion) []openai.Tool {
	reasoning := map[string]interface{}{"type": "string", "description": "Brief explanation of the score"}

	return []openai.Tool{
		toolDefinition(toolCriterionScore, "Record the 0-100 score for one evaluation criterion", objectSchema(
			[]string{"name", "score"},
			map[string]interface{}{
				"name":      map[string]interface{}{"type": "string", "enum": criteriaNames(criteria)},
				"score":     scoreProperty("The criterion score from 0 to 100"),
				"reasoning": reasoning,
			},
		)),
		toolDefinition(toolEffectivenessScore, "Record the overall effectiveness score (0-100) for the prompt", objectSchema(
			[]string{"score"},
			map[string]interface{}{
				"score":     scoreProperty("The overall effectiveness score from 0 to 100"),
				"reasoning": reasoning,
			},
		)),
		toolDefinition(toolFeedback, "Record detailed feedback on the strengths and weaknesses of the prompt", objectSchema(
			[]string{"feedback"},
			map[string]interface{}{"feedback": map[string]interface{}{"type": "string"}},
		)),
		toolDefinition(toolImprovements, "Record 3-5 specific improvements", objectSchema(
			[]string{"improvements"},
			map[string]interface{}{"improvements": map[string]interface{}{
				"type":     "array",
				"items":    map[string]interface{}{"type": "string"},
				"minItems": minImprovements,
				"maxItems": maxImprovements,
			}},
		)),
		toolDefinition(toolImprovedPrompt, "Record an improved version of the prompt", objectSchema(
			[]string{"improvedPrompt"},
			map[string]interface{}{"improvedPrompt": map[string]interface{}{"type": "string"}},
		)),
		toolDefinition(toolComplete, "Call once every grading field has been recorded", objectSchema(
			[]string{"summary"},
			map[string]interface{}{"summary": map[string]interface{}{"type": "string"}},
		)),
	}
}
