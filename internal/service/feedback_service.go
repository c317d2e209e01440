package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/prompt-workshop-api/internal/dto"
	"github.com/noah-isme/prompt-workshop-api/internal/models"
	"github.com/noah-isme/prompt-workshop-api/internal/repository"
)

// FeedbackService records session level star ratings.
type FeedbackService interface {
	Submit(ctx context.Context, req dto.FeedbackRequest) (dto.FeedbackResponse, error)
	List(ctx context.Context, sessionID *uint) ([]dto.FeedbackResponse, error)
}

// FeedbackObserver is notified after a rating is stored.
type FeedbackObserver interface {
	FeedbackCreated(ctx context.Context, feedback models.SessionFeedback)
}

type feedbackService struct {
	repo      repository.FeedbackRepository
	sessions  repository.SessionRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	observers []FeedbackObserver
}

// NewFeedbackService constructs the feedback service.
func NewFeedbackService(repo repository.FeedbackRepository, sessions repository.SessionRepository, validate *validator.Validate, logger zerolog.Logger, observers ...FeedbackObserver) FeedbackService {
	return &feedbackService{
		repo:      repo,
		sessions:  sessions,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "feedback_service").Logger(),
		observers: observers,
	}
}

func (s *feedbackService) Submit(ctx context.Context, req dto.FeedbackRequest) (dto.FeedbackResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.FeedbackResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	feedback := models.SessionFeedback{
		UserID: strings.TrimSpace(req.UserID),
		Rating: req.Rating,
	}
	if feedback.UserID == "" {
		feedback.UserID = anonymousUserID
	}
	if req.Message != nil {
		if message := strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(*req.Message))); message != "" {
			feedback.Message = &message
		}
	}

	session, err := s.sessions.Active(ctx)
	switch {
	case err == nil:
		feedback.SessionID = &session.ID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Warn().Err(err).Msg("failed to resolve open session for feedback")
	}

	if err := s.repo.Create(ctx, &feedback); err != nil {
		return dto.FeedbackResponse{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	for _, observer := range s.observers {
		observer.FeedbackCreated(ctx, feedback)
	}

	return dto.NewFeedbackResponse(feedback), nil
}

func (s *feedbackService) List(ctx context.Context, sessionID *uint) ([]dto.FeedbackResponse, error) {
	feedback, err := s.repo.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return dto.NewFeedbackResponses(feedback), nil
}
