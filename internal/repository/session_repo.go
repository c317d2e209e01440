package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/prompt-workshop-api/internal/models"
)

// SessionRepository defines data operations for workshop sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	List(ctx context.Context) ([]models.Session, error)
	Active(ctx context.Context) (models.Session, error)
	GetByID(ctx context.Context, id uint) (models.Session, error)
	Update(ctx context.Context, session *models.Session) error
	// SaveExclusive creates or updates the session and closes every other session atomically.
	SaveExclusive(ctx context.Context, session *models.Session) error
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository instantiates the gorm backed repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) List(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// Active returns the most recently created open session or gorm.ErrRecordNotFound.
func (r *sessionRepository) Active(ctx context.Context) (models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).
		Where("is_open = ?", true).
		Order("created_at DESC").
		Order("id DESC").
		First(&session).Error; err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id uint) (models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (r *sessionRepository) Update(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *sessionRepository) SaveExclusive(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(session).Error; err != nil {
			return err
		}
		if !session.IsOpen {
			return nil
		}
		return tx.Model(&models.Session{}).
			Where("id <> ?", session.ID).
			Where("is_open = ?", true).
			Update("is_open", false).Error
	})
}
