package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/prompt-workshop-api/internal/models"
)

// FeedbackRepository stores session level star ratings.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.SessionFeedback) error
	List(ctx context.Context, sessionID *uint) ([]models.SessionFeedback, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository instantiates the gorm backed repository.
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *models.SessionFeedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *feedbackRepository) List(ctx context.Context, sessionID *uint) ([]models.SessionFeedback, error) {
	query := r.db.WithContext(ctx).Model(&models.SessionFeedback{})
	if sessionID != nil {
		query = query.Where("session_id = ?", *sessionID)
	}

	var feedback []models.SessionFeedback
	if err := query.Order("created_at DESC").Order("id DESC").Find(&feedback).Error; err != nil {
		return nil, err
	}
	return feedback, nil
}
