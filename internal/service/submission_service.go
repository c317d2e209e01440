package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/prompt-workshop-api/internal/dto"
	"github.com/noah-isme/prompt-workshop-api/internal/models"
	"github.com/noah-isme/prompt-workshop-api/internal/observability"
	"github.com/noah-isme/prompt-workshop-api/internal/repository"
)

const anonymousUserID = "anonymous"

// SubmissionService lists, stores and rates scored submissions.
type SubmissionService interface {
	List(ctx context.Context, sessionID *uint) ([]dto.SubmissionResponse, error)
	Create(ctx context.Context, req dto.CreateSubmissionRequest) (dto.SubmissionResponse, error)
	Rate(ctx context.Context, req dto.RateEvaluationRequest) (dto.SubmissionResponse, error)
}

type submissionService struct {
	sessions    repository.SessionRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	observers   []SubmissionObserver
	logger      zerolog.Logger
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(sessions repository.SessionRepository, submissions repository.SubmissionRepository, validate *validator.Validate, logger zerolog.Logger, observers ...SubmissionObserver) SubmissionService {
	return &submissionService{
		sessions:    sessions,
		submissions: submissions,
		validator:   validate,
		observers:   observers,
		logger:      logger.With().Str("component", "submission_service").Logger(),
	}
}

func (s *submissionService) List(ctx context.Context, sessionID *uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{SessionID: sessionID})
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponses(submissions), nil
}

func (s *submissionService) Create(ctx context.Context, req dto.CreateSubmissionRequest) (dto.SubmissionResponse, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	req.TargetOutput = strings.TrimSpace(req.TargetOutput)
	req.UserID = strings.TrimSpace(req.UserID)

	if err := s.validator.Struct(req); err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	session, err := s.resolveSession(ctx, req.SessionID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if req.UserID == "" {
		req.UserID = anonymousUserID
	}
	if req.Stage == 0 {
		req.Stage = models.StageOne
	}

	submission := models.Submission{
		SessionID:      session.ID,
		UserID:         req.UserID,
		Stage:          req.Stage,
		Prompt:         req.Prompt,
		Goal:           req.TargetOutput,
		OverallScore:   req.EffectivenessScore,
		CriteriaScores: scoreColumn(directScores(req)),
		Improvements:   datatypes.JSONSlice[string](append([]string{}, req.Improvements...)),
		TokenCount:     req.Tokens,
		CO2Grams:       EstimateCO2(req.Tokens),
		CostUSD:        EstimateCost(req.Tokens),
		Feedback:       req.Feedback,
		ImprovedPrompt: req.ImprovedPrompt,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		observability.SubmissionsPersisted().WithLabelValues("direct", "error").Inc()
		return dto.SubmissionResponse{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	observability.SubmissionsPersisted().WithLabelValues("direct", "ok").Inc()
	notifySubmissionCreated(ctx, s.observers, submission)

	return dto.NewSubmissionResponse(submission), nil
}

// Rate attaches a one-time rating, preferring the submission id over the prompt text match.
func (s *submissionService) Rate(ctx context.Context, req dto.RateEvaluationRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	var (
		submission models.Submission
		err        error
	)
	if req.SubmissionID != nil {
		submission, err = s.submissions.GetByID(ctx, *req.SubmissionID)
	} else {
		submission, err = s.submissions.LatestByPrompt(ctx, req.Prompt)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if submission.HasRating() {
		return dto.SubmissionResponse{}, ErrAlreadyRated
	}

	if err := s.submissions.SetRating(ctx, submission.ID, req.Rating); err != nil {
		switch {
		case errors.Is(err, repository.ErrRatingAlreadySet):
			return dto.SubmissionResponse{}, ErrAlreadyRated
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	rating := req.Rating
	submission.UserRating = &rating
	s.logger.Info().Uint("submission_id", submission.ID).Int("rating", rating).Msg("evaluation rated")
	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) resolveSession(ctx context.Context, sessionID *uint) (models.Session, error) {
	if sessionID == nil {
		session, err := s.sessions.Active(ctx)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Session{}, ErrSessionClosed
		}
		return session, err
	}

	session, err := s.sessions.GetByID(ctx, *sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Session{}, ErrSessionNotFound
	}
	return session, err
}

// directScores prefers the criteria map and falls back to the legacy static fields.
func directScores(req dto.CreateSubmissionRequest) map[string]float64 {
	if len(req.CriteriaScores) > 0 {
		return req.CriteriaScores
	}
	return map[string]float64{
		"Clarity":     valueOrZero(req.Clarity),
		"Specificity": valueOrZero(req.Specificity),
		"Efficiency":  valueOrZero(req.Efficiency),
	}
}

func valueOrZero(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}
