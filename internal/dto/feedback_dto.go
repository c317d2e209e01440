package dto

import (
	"time"

	"github.com/noah-isme/prompt-workshop-api/internal/models"
)

// FeedbackRequest is the payload of POST /feedback.
type FeedbackRequest struct {
	UserID  string  `json:"userId" validate:"max=128"`
	Rating  int     `json:"rating" validate:"required,gte=1,lte=5"`
	Message *string `json:"message" validate:"omitempty,max=2000"`
}

// FeedbackResponse describes stored session feedback.
type FeedbackResponse struct {
	ID        uint      `json:"id"`
	SessionID *uint     `json:"sessionId"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Message   *string   `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewFeedbackResponse builds a response DTO from a model.
func NewFeedbackResponse(feedback models.SessionFeedback) FeedbackResponse {
	return FeedbackResponse{
		ID:        feedback.ID,
		SessionID: feedback.SessionID,
		UserID:    feedback.UserID,
		Rating:    feedback.Rating,
		Message:   feedback.Message,
		Timestamp: feedback.CreatedAt,
	}
}

// NewFeedbackResponses converts a list of feedback rows.
func NewFeedbackResponses(feedback []models.SessionFeedback) []FeedbackResponse {
	responses := make([]FeedbackResponse, 0, len(feedback))
	for _, item := range feedback {
		responses = append(responses, NewFeedbackResponse(item))
	}
	return responses
}
