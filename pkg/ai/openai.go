package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "promptlab",
		Subsystem: "ai",
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of AI evaluation requests",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"model", "mode"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "promptlab",
		Subsystem: "ai",
		Name:      "evaluation_failures_total",
		Help:      "Number of AI evaluation failures",
	}, []string{"model", "mode", "reason"})

	aiTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "promptlab",
		Subsystem: "ai",
		Name:      "tokens_total",
		Help:      "Tokens consumed by AI evaluations",
	}, []string{"model", "direction"})
)

// Evaluation modes.
const (
	ModeStructured = "structured"
	ModeTools      = "tools"
)

const (
	DefaultOpenAIModel = "gpt-4o-mini"
	defaultMaxTokens   = 2048
)

// ChatCompleter is the subset of the OpenAI client used by the evaluators.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIConfig defines configuration options for the OpenAI-compatible evaluators.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
	// Client overrides the HTTP client built from APIKey and BaseURL.
	Client ChatCompleter
}

func (cfg OpenAIConfig) withDefaults() (OpenAIConfig, error) {
	if cfg.Client == nil && cfg.APIKey == "" {
		return cfg, fmt.Errorf("ai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Logger.GetLevel() == zerolog.Disabled {
		cfg.Logger = zerolog.Nop()
	}
	if cfg.Client == nil {
		config := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			config.BaseURL = cfg.BaseURL
		}
		cfg.Client = openai.NewClientWithConfig(config)
	}
	return cfg, nil
}

// OpenAIEvaluator requests a schema-constrained JSON completion and validates it locally.
type OpenAIEvaluator struct {
	client ChatCompleter
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIEvaluator builds a new structured-output evaluator.
func NewOpenAIEvaluator(cfg OpenAIConfig) (*OpenAIEvaluator, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	return &OpenAIEvaluator{
		client: cfg.Client,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/prompt-workshop-api/pkg/ai/openai"),
		logger: cfg.Logger.With().Str("component", "openai_evaluator").Logger(),
	}, nil
}

// Model reports the model the evaluator calls.
func (e *OpenAIEvaluator) Model() string {
	return e.cfg.Model
}

// Evaluate sends one evaluation request and parses the schema-validated response.
func (e *OpenAIEvaluator) Evaluate(parent context.Context, input EvaluationInput) (EvaluationResult, error) {
	ctx, span := e.tracer.Start(parent, "openai.evaluate", trace.WithAttributes(
		attribute.String("model", e.cfg.Model),
		attribute.String("mode", ModeStructured),
	))
	defer span.End()

	criteria := NormalizeCriteria(input.Criteria)
	span.SetAttributes(attribute.Int("criteria.count", len(criteria)))

	schema, err := newEvaluationSchema(criteria)
	if err != nil {
		return EvaluationResult{}, e.fail(span, "schema", err)
	}

	request := openai.ChatCompletionRequest{
		Model:       e.cfg.Model,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: evaluatorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildStructuredPrompt(input, criteria, schema.document)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "prompt_evaluation",
				Schema: schema.document,
			},
		},
	}

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(e.cfg.Model, ModeStructured).Observe(time.Since(start).Seconds())
	if err != nil {
		return EvaluationResult{}, e.fail(span, "request", fmt.Errorf("%w: openai evaluate: %v", ErrEvaluationFailed, err))
	}
	e.recordUsage(resp.Usage)

	if len(resp.Choices) == 0 {
		return EvaluationResult{}, e.fail(span, "empty", fmt.Errorf("%w: no choices returned", ErrEvaluationFailed))
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	result, err := schema.parse(content)
	if err != nil {
		e.logger.Warn().Err(err).Str("model", e.cfg.Model).Msg("evaluation output rejected")
		return EvaluationResult{}, e.fail(span, "schema", err)
	}

	result.Usage = Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens}
	span.SetAttributes(
		attribute.Float64("evaluation.effectiveness", result.EffectivenessScore),
		attribute.Int("evaluation.tokens", result.Usage.Total()),
	)
	return result, nil
}

func (e *OpenAIEvaluator) recordUsage(usage openai.Usage) {
	aiTokens.WithLabelValues(e.cfg.Model, "input").Add(float64(usage.PromptTokens))
	aiTokens.WithLabelValues(e.cfg.Model, "output").Add(float64(usage.CompletionTokens))
}

func (e *OpenAIEvaluator) fail(span trace.Span, reason string, err error) error {
	aiFailures.WithLabelValues(e.cfg.Model, ModeStructured, reason).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if !errors.Is(err, ErrEvaluationFailed) && !errors.Is(err, ErrSchemaViolation) {
		return fmt.Errorf("%w: %v", ErrEvaluationFailed, err)
	}
	return err
}
