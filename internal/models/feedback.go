package models

import "time"

// SessionFeedback is a participant's star rating of the workshop itself.
type SessionFeedback struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID *uint     `gorm:"index" json:"session_id"`
	UserID    string    `gorm:"size:128;not null;index" json:"user_id"`
	Rating    int       `gorm:"not null;check:chk_session_feedback_rating,rating >= 1 AND rating <= 5" json:"rating"`
	Message   *string   `gorm:"type:text" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the singular table name used by the workshop schema.
func (SessionFeedback) TableName() string {
	return "session_feedback"
}
