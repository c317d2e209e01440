package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/prompt-workshop-api/internal/dto"
	"github.com/noah-isme/prompt-workshop-api/internal/repository"
)

// Goals answered by the legacy goal endpoint when no session is open.
const (
	DefaultStage1Goal = "Write a professional email to a client explaining a project delay"
	DefaultStage2Goal = "Write a professional email to a client explaining a project delay"
)

// GoalService is the legacy single-goal view over the active session.
type GoalService interface {
	Get(ctx context.Context) (dto.GoalsResponse, error)
	Update(ctx context.Context, req dto.UpdateGoalsRequest) (dto.GoalsResponse, error)
}

type goalService struct {
	sessions repository.SessionRepository
	logger   zerolog.Logger
}

// NewGoalService constructs the goal service.
func NewGoalService(sessions repository.SessionRepository, logger zerolog.Logger) GoalService {
	return &goalService{
		sessions: sessions,
		logger:   logger.With().Str("component", "goal_service").Logger(),
	}
}

func (s *goalService) Get(ctx context.Context) (dto.GoalsResponse, error) {
	session, err := s.sessions.Active(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GoalsResponse{Stage1: DefaultStage1Goal, Stage2: DefaultStage2Goal}, nil
		}
		return dto.GoalsResponse{}, err
	}

	id := session.ID
	return dto.GoalsResponse{Stage1: session.Stage1Goal, Stage2: session.Stage2Goal, SessionID: &id}, nil
}

// Update writes non-empty goals onto the active session.
func (s *goalService) Update(ctx context.Context, req dto.UpdateGoalsRequest) (dto.GoalsResponse, error) {
	session, err := s.sessions.Active(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GoalsResponse{}, ErrSessionClosed
		}
		return dto.GoalsResponse{}, err
	}

	if stage1 := strings.TrimSpace(req.Stage1); stage1 != "" {
		session.Stage1Goal = stage1
	}
	if stage2 := strings.TrimSpace(req.Stage2); stage2 != "" {
		session.Stage2Goal = stage2
	}

	if err := s.sessions.Update(ctx, &session); err != nil {
		return dto.GoalsResponse{}, err
	}

	s.logger.Info().Uint("session_id", session.ID).Msg("session goals updated")
	id := session.ID
	return dto.GoalsResponse{Stage1: session.Stage1Goal, Stage2: session.Stage2Goal, SessionID: &id}, nil
}
