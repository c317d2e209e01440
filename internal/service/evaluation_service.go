package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/prompt-workshop-api/internal/config"
	"github.com/noah-isme/prompt-workshop-api/internal/dto"
	"github.com/noah-isme/prompt-workshop-api/internal/models"
	"github.com/noah-isme/prompt-workshop-api/internal/observability"
	"github.com/noah-isme/prompt-workshop-api/internal/repository"
	"github.com/noah-isme/prompt-workshop-api/pkg/ai"
)

const defaultPersistTimeout = 5 * time.Second

// EvaluationService runs one prompt evaluation end to end.
type EvaluationService interface {
	Evaluate(ctx context.Context, req dto.EvaluateRequest) (dto.EvaluateResponse, error)
}

// EvaluationOptions tunes persistence of evaluation results.
type EvaluationOptions struct {
	// PersistenceMode is config.PersistenceBestEffort or config.PersistenceStrict.
	PersistenceMode string
	PersistTimeout  time.Duration
	Observers       []SubmissionObserver
}

type evaluationService struct {
	sessions    repository.SessionRepository
	submissions repository.SubmissionRepository
	evaluator   ai.Evaluator
	validator   *validator.Validate
	options     EvaluationOptions
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewEvaluationService constructs the evaluation pipeline. A nil evaluator makes every
// evaluation fail with ErrEvaluatorUnavailable.
func NewEvaluationService(sessions repository.SessionRepository, submissions repository.SubmissionRepository, evaluator ai.Evaluator, validate *validator.Validate, options EvaluationOptions, logger zerolog.Logger) EvaluationService {
	if options.PersistenceMode == "" {
		options.PersistenceMode = config.PersistenceBestEffort
	}
	if options.PersistTimeout <= 0 {
		options.PersistTimeout = defaultPersistTimeout
	}

	return &evaluationService{
		sessions:    sessions,
		submissions: submissions,
		evaluator:   evaluator,
		validator:   validate,
		options:     options,
		logger:      logger.With().Str("component", "evaluation_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/prompt-workshop-api/internal/service/evaluation"),
	}
}

func (s *evaluationService) Evaluate(ctx context.Context, req dto.EvaluateRequest) (dto.EvaluateResponse, error) {
	ctx, span := s.tracer.Start(ctx, "evaluation.run")
	defer span.End()

	req.Prompt = strings.TrimSpace(req.Prompt)
	req.TargetOutput = strings.TrimSpace(req.TargetOutput)
	req.UserID = strings.TrimSpace(req.UserID)

	if err := s.validator.Struct(req); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.EvaluateResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	stageLabel := strconv.Itoa(req.Stage)
	span.SetAttributes(attribute.Int("evaluation.stage", req.Stage))

	session, err := s.sessions.Active(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "session closed")
			observability.Evaluations().WithLabelValues(stageLabel, "session_closed").Inc()
			return dto.EvaluateResponse{}, ErrSessionClosed
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve session failed")
		return dto.EvaluateResponse{}, fmt.Errorf("resolve open session: %w", err)
	}
	span.SetAttributes(attribute.Int64("evaluation.session_id", int64(session.ID)))

	if s.evaluator == nil {
		span.SetStatus(codes.Error, "evaluator unavailable")
		observability.Evaluations().WithLabelValues(stageLabel, "unavailable").Inc()
		return dto.EvaluateResponse{}, ErrEvaluatorUnavailable
	}

	goal, criteria := resolveStageConfig(session, req)

	result, err := s.evaluator.Evaluate(ctx, ai.EvaluationInput{Prompt: req.Prompt, Goal: goal, Criteria: criteria})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation failed")
		observability.Evaluations().WithLabelValues(stageLabel, "failed").Inc()
		s.logger.Error().Err(err).
			Uint("session_id", session.ID).
			Str("user_id", req.UserID).
			Int("stage", req.Stage).
			Msg("evaluator failed")
		return dto.EvaluateResponse{}, fmt.Errorf("%w: %w", ErrEvaluation, err)
	}

	tokens := result.Usage.Total()
	scores := scoresForCriteria(criteria, result.ScoreMap())
	submission := models.Submission{
		SessionID:      session.ID,
		UserID:         req.UserID,
		Stage:          req.Stage,
		Prompt:         req.Prompt,
		Goal:           goal,
		OverallScore:   result.EffectivenessScore,
		CriteriaScores: scoreColumn(scores),
		Improvements:   datatypes.JSONSlice[string](append([]string{}, result.Improvements...)),
		TokenCount:     tokens,
		CO2Grams:       EstimateCO2(tokens),
		CostUSD:        EstimateCost(tokens),
		Feedback:       result.Feedback,
		ImprovedPrompt: result.ImprovedPrompt,
	}

	persisted, err := s.persist(ctx, &submission)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		observability.Evaluations().WithLabelValues(stageLabel, "persistence_failed").Inc()
		return dto.EvaluateResponse{}, err
	}

	observability.Evaluations().WithLabelValues(stageLabel, "ok").Inc()
	span.SetAttributes(attribute.Int("evaluation.tokens", tokens), attribute.Bool("evaluation.persisted", persisted))

	response := dto.EvaluateResponse{
		SessionID:          session.ID,
		Stage:              req.Stage,
		OriginalPrompt:     req.Prompt,
		TargetOutput:       goal,
		Criteria:           dto.CriteriaFromAI(criteria),
		EffectivenessScore: result.EffectivenessScore,
		CriteriaScores:     scores,
		Feedback:           result.Feedback,
		Improvements:       append([]string{}, result.Improvements...),
		ImprovedPrompt:     result.ImprovedPrompt,
		EnergyConsumption: dto.EnergyConsumption{
			Tokens:        tokens,
			EstimatedCO2:  submission.CO2Grams,
			EstimatedCost: submission.CostUSD,
		},
		Persisted: persisted,
	}
	if persisted {
		id := submission.ID
		response.SubmissionID = &id
	}

	return response, nil
}

// persist stores the submission on a context detached from the caller so a client
// disconnect does not abort the write. In best-effort mode failures are logged only.
func (s *evaluationService) persist(ctx context.Context, submission *models.Submission) (bool, error) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.options.PersistTimeout)
	defer cancel()

	if err := s.submissions.Create(writeCtx, submission); err != nil {
		observability.SubmissionsPersisted().WithLabelValues("evaluate", "error").Inc()
		s.logger.Error().Err(err).
			Uint("session_id", submission.SessionID).
			Str("user_id", submission.UserID).
			Int("stage", submission.Stage).
			Str("persistence_mode", s.options.PersistenceMode).
			Msg("failed to persist submission")
		if s.options.PersistenceMode == config.PersistenceStrict {
			return false, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		return false, nil
	}

	observability.SubmissionsPersisted().WithLabelValues("evaluate", "ok").Inc()
	notifySubmissionCreated(writeCtx, s.options.Observers, *submission)
	return true, nil
}

// resolveStageConfig takes goal and criteria from the open session and only falls back
// to the request when the session leaves them empty.
func resolveStageConfig(session models.Session, req dto.EvaluateRequest) (string, []ai.Criterion) {
	goal := strings.TrimSpace(session.GoalForStage(req.Stage))
	if goal == "" {
		goal = req.TargetOutput
	}

	criteria := dto.CriteriaToAI(session.CriteriaForStage(req.Stage))
	if len(criteria) == 0 {
		criteria = dto.CriteriaToAI(dto.CriteriaToModels(req.Criteria))
	}

	return goal, ai.NormalizeCriteria(criteria)
}

// scoresForCriteria keeps exactly one score per declared criterion, coercing missing ones to 0.
func scoresForCriteria(criteria []ai.Criterion, scores map[string]float64) map[string]float64 {
	result := make(map[string]float64, len(criteria))
	for _, criterion := range criteria {
		result[criterion.Name] = scores[criterion.Name]
	}
	return result
}

func scoreColumn(scores map[string]float64) datatypes.JSONMap {
	column := make(datatypes.JSONMap, len(scores))
	for name, score := range scores {
		column[name] = score
	}
	return column
}
