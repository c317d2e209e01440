package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Submission is one scored prompt evaluation.
type Submission struct {
	ID             uint                        `gorm:"primaryKey" json:"id"`
	SessionID      uint                        `gorm:"not null;index" json:"session_id"`
	UserID         string                      `gorm:"size:128;not null;index" json:"user_id"`
	Stage          int                         `gorm:"not null" json:"stage"`
	Prompt         string                      `gorm:"type:text;not null" json:"prompt"`
	Goal           string                      `gorm:"type:text;not null" json:"goal"`
	OverallScore   float64                     `gorm:"not null" json:"overall_score"`
	CriteriaScores datatypes.JSONMap           `gorm:"column:criteria_scores" json:"criteria_scores"`
	Improvements   datatypes.JSONSlice[string] `gorm:"default:'[]'" json:"improvements"`
	TokenCount     int                         `gorm:"not null" json:"token_count"`
	CO2Grams       float64                     `gorm:"column:co2_grams;not null" json:"co2_grams"`
	CostUSD        float64                     `gorm:"column:cost_usd;not null" json:"cost_usd"`
	Feedback       string                      `gorm:"type:text" json:"feedback"`
	ImprovedPrompt string                      `gorm:"type:text" json:"improved_prompt"`
	UserRating     *int                        `json:"user_rating"`
	CreatedAt      time.Time                   `gorm:"index" json:"created_at"`
	Session        Session                     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// Scores returns the criteria scores as numbers, skipping values that are not numeric.
func (s Submission) Scores() map[string]float64 {
	scores := make(map[string]float64, len(s.CriteriaScores))
	for name, raw := range s.CriteriaScores {
		switch value := raw.(type) {
		case float64:
			scores[name] = value
		case float32:
			scores[name] = float64(value)
		case int:
			scores[name] = float64(value)
		case int64:
			scores[name] = float64(value)
		case json.Number:
			if f, err := value.Float64(); err == nil {
				scores[name] = f
			}
		}
	}
	return scores
}

// HasRating reports whether the participant already rated this evaluation.
func (s Submission) HasRating() bool {
	return s.UserRating != nil
}
