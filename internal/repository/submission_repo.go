package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/prompt-workshop-api/internal/models"
)

// ErrRatingAlreadySet is returned when a rating is written to a submission that already carries one.
var ErrRatingAlreadySet = errors.New("submission already rated")

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	SessionID *uint
}

// SubmissionRepository defines data operations for scored submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	LatestByPrompt(ctx context.Context, prompt string) (models.Submission, error)
	SetRating(ctx context.Context, id uint, rating int) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the gorm backed repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(submission).Error
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.db.WithContext(ctx).Model(&models.Submission{})
	if filter.SessionID != nil {
		query = query.Where("session_id = ?", *filter.SessionID)
	}

	var submissions []models.Submission
	if err := query.Order("created_at DESC").Order("id DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) LatestByPrompt(ctx context.Context, prompt string) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Where("prompt = ?", prompt).
		Order("created_at DESC").
		Order("id DESC").
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

// SetRating stores the rating only while the submission is still unrated.
func (r *submissionRepository) SetRating(ctx context.Context, id uint, rating int) error {
	result := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ?", id).
		Where("user_rating IS NULL").
		Update("user_rating", rating)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrRatingAlreadySet
	}
	return nil
}
