package dto

import (
	"time"

	"github.com/noah-isme/prompt-workshop-api/internal/models"
)

// CreateSessionRequest is the payload of POST /sessions.
type CreateSessionRequest struct {
	Name           string             `json:"name" validate:"required,max=200"`
	Stage1Goal     string             `json:"stage1_goal" validate:"required"`
	Stage1Criteria []CriterionPayload `json:"stage1_criteria" validate:"omitempty,dive"`
	Stage2Goal     string             `json:"stage2_goal" validate:"required"`
	Stage2Criteria []CriterionPayload `json:"stage2_criteria" validate:"omitempty,dive"`
}

// UpdateSessionRequest is the payload of PATCH /sessions. Absent fields are left unchanged.
type UpdateSessionRequest struct {
	ID             uint               `json:"id" validate:"required,gt=0"`
	IsOpen         *bool              `json:"is_open"`
	Toggle         bool               `json:"toggle"`
	Name           *string            `json:"name" validate:"omitempty,min=1,max=200"`
	Stage1Goal     *string            `json:"stage1_goal" validate:"omitempty,min=1"`
	Stage1Criteria []CriterionPayload `json:"stage1_criteria" validate:"omitempty,dive"`
	Stage2Goal     *string            `json:"stage2_goal" validate:"omitempty,min=1"`
	Stage2Criteria []CriterionPayload `json:"stage2_criteria" validate:"omitempty,dive"`
}

// HasContentChanges reports whether the update touches name, goals or criteria.
func (r UpdateSessionRequest) HasContentChanges() bool {
	return r.Name != nil || r.Stage1Goal != nil || r.Stage2Goal != nil || r.Stage1Criteria != nil || r.Stage2Criteria != nil
}

// SessionResponse describes a workshop session to API consumers.
type SessionResponse struct {
	ID             uint               `json:"id"`
	Name           string             `json:"name"`
	Stage1Goal     string             `json:"stage1_goal"`
	Stage1Criteria []CriterionPayload `json:"stage1_criteria"`
	Stage2Goal     string             `json:"stage2_goal"`
	Stage2Criteria []CriterionPayload `json:"stage2_criteria"`
	IsOpen         bool               `json:"is_open"`
	CreatedAt      time.Time          `json:"created_at"`
}

// NewSessionResponse builds a response DTO from a model.
func NewSessionResponse(session models.Session) SessionResponse {
	return SessionResponse{
		ID:             session.ID,
		Name:           session.Name,
		Stage1Goal:     session.Stage1Goal,
		Stage1Criteria: CriteriaFromModels(session.CriteriaForStage(models.StageOne)),
		Stage2Goal:     session.Stage2Goal,
		Stage2Criteria: CriteriaFromModels(session.CriteriaForStage(models.StageTwo)),
		IsOpen:         session.IsOpen,
		CreatedAt:      session.CreatedAt,
	}
}

// NewSessionResponses converts a list of sessions.
func NewSessionResponses(sessions []models.Session) []SessionResponse {
	responses := make([]SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		responses = append(responses, NewSessionResponse(session))
	}
	return responses
}

// GoalsResponse is the legacy single-goal view of the active session.
type GoalsResponse struct {
	Stage1    string `json:"stage1"`
	Stage2    string `json:"stage2"`
	SessionID *uint  `json:"sessionId,omitempty"`
}

// UpdateGoalsRequest is the payload of POST /goal. Empty stages are left unchanged.
type UpdateGoalsRequest struct {
	Stage1 string `json:"stage1"`
	Stage2 string `json:"stage2"`
}
