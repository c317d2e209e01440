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

// SessionService exposes workshop session administration.
type SessionService interface {
	List(ctx context.Context) ([]dto.SessionResponse, error)
	Active(ctx context.Context) (*dto.SessionResponse, error)
	Create(ctx context.Context, req dto.CreateSessionRequest) (dto.SessionResponse, error)
	Update(ctx context.Context, req dto.UpdateSessionRequest) (dto.SessionResponse, error)
}

type sessionService struct {
	repo      repository.SessionRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	exclusive bool
	logger    zerolog.Logger
}

// NewSessionService constructs the session service. With exclusive set, opening a
// session closes every other one.
func NewSessionService(repo repository.SessionRepository, validate *validator.Validate, exclusive bool, logger zerolog.Logger) SessionService {
	return &sessionService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		exclusive: exclusive,
		logger:    logger.With().Str("component", "session_service").Logger(),
	}
}

func (s *sessionService) List(ctx context.Context) ([]dto.SessionResponse, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewSessionResponses(sessions), nil
}

// Active returns nil when no session is open.
func (s *sessionService) Active(ctx context.Context) (*dto.SessionResponse, error) {
	session, err := s.repo.Active(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	response := dto.NewSessionResponse(session)
	return &response, nil
}

func (s *sessionService) Create(ctx context.Context, req dto.CreateSessionRequest) (dto.SessionResponse, error) {
	req.Name = s.cleanName(req.Name)
	req.Stage1Goal = strings.TrimSpace(req.Stage1Goal)
	req.Stage2Goal = strings.TrimSpace(req.Stage2Goal)

	if err := s.validator.Struct(req); err != nil {
		return dto.SessionResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	stage1, err := cleanCriteria(req.Stage1Criteria)
	if err != nil {
		return dto.SessionResponse{}, err
	}
	stage2, err := cleanCriteria(req.Stage2Criteria)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	session := models.Session{
		Name:           req.Name,
		Stage1Goal:     req.Stage1Goal,
		Stage1Criteria: stage1,
		Stage2Goal:     req.Stage2Goal,
		Stage2Criteria: stage2,
		IsOpen:         true,
	}

	if s.exclusive {
		err = s.repo.SaveExclusive(ctx, &session)
	} else {
		err = s.repo.Create(ctx, &session)
	}
	if err != nil {
		return dto.SessionResponse{}, err
	}

	s.logger.Info().Uint("session_id", session.ID).Str("name", session.Name).Msg("session created")
	return dto.NewSessionResponse(session), nil
}

func (s *sessionService) Update(ctx context.Context, req dto.UpdateSessionRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SessionResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if req.IsOpen == nil && !req.Toggle && !req.HasContentChanges() {
		return dto.SessionResponse{}, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	session, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SessionResponse{}, ErrSessionNotFound
		}
		return dto.SessionResponse{}, err
	}

	switch {
	case req.IsOpen != nil:
		session.IsOpen = *req.IsOpen
	case req.Toggle:
		session.IsOpen = !session.IsOpen
	}

	if req.Name != nil {
		name := s.cleanName(*req.Name)
		if name == "" {
			return dto.SessionResponse{}, fmt.Errorf("%w: name is empty", ErrValidation)
		}
		session.Name = name
	}
	if req.Stage1Goal != nil {
		if session.Stage1Goal = strings.TrimSpace(*req.Stage1Goal); session.Stage1Goal == "" {
			return dto.SessionResponse{}, fmt.Errorf("%w: stage1_goal is empty", ErrValidation)
		}
	}
	if req.Stage2Goal != nil {
		if session.Stage2Goal = strings.TrimSpace(*req.Stage2Goal); session.Stage2Goal == "" {
			return dto.SessionResponse{}, fmt.Errorf("%w: stage2_goal is empty", ErrValidation)
		}
	}
	if req.Stage1Criteria != nil {
		if session.Stage1Criteria, err = cleanCriteria(req.Stage1Criteria); err != nil {
			return dto.SessionResponse{}, err
		}
	}
	if req.Stage2Criteria != nil {
		if session.Stage2Criteria, err = cleanCriteria(req.Stage2Criteria); err != nil {
			return dto.SessionResponse{}, err
		}
	}

	if s.exclusive && session.IsOpen {
		err = s.repo.SaveExclusive(ctx, &session)
	} else {
		err = s.repo.Update(ctx, &session)
	}
	if err != nil {
		return dto.SessionResponse{}, err
	}

	s.logger.Info().Uint("session_id", session.ID).Bool("is_open", session.IsOpen).Msg("session updated")
	return dto.NewSessionResponse(session), nil
}

func (s *sessionService) cleanName(name string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(name)))
}

// cleanCriteria trims criteria and rejects duplicate names within a stage.
func cleanCriteria(criteria []dto.CriterionPayload) ([]models.Criterion, error) {
	cleaned := make([]models.Criterion, 0, len(criteria))
	seen := make(map[string]struct{}, len(criteria))
	for _, criterion := range criteria {
		name := strings.TrimSpace(criterion.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: criterion name is empty", ErrValidation)
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate criterion %q", ErrValidation, name)
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, models.Criterion{Name: name, Description: strings.TrimSpace(criterion.Description)})
	}
	return cleaned, nil
}
