package models

import (
	"time"

	"gorm.io/datatypes"
)

// Stage numbers of a workshop.
const (
	StageOne = 1
	StageTwo = 2
)

// Criterion is a named scoring axis configured on a session stage.
type Criterion struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Session is an administrator-configured workshop run with per-stage goals and criteria.
type Session struct {
	ID             uint                           `gorm:"primaryKey" json:"id"`
	Name           string                         `gorm:"type:text;not null" json:"name"`
	Stage1Goal     string                         `gorm:"column:stage1_goal;type:text;not null" json:"stage1_goal"`
	Stage1Criteria datatypes.JSONSlice[Criterion] `gorm:"column:stage1_criteria;default:'[]'" json:"stage1_criteria"`
	Stage2Goal     string                         `gorm:"column:stage2_goal;type:text;not null" json:"stage2_goal"`
	Stage2Criteria datatypes.JSONSlice[Criterion] `gorm:"column:stage2_criteria;default:'[]'" json:"stage2_criteria"`
	IsOpen         bool                           `gorm:"not null;index" json:"is_open"`
	CreatedAt      time.Time                      `gorm:"index" json:"created_at"`
}

// GoalForStage returns the goal text configured for the stage.
func (s Session) GoalForStage(stage int) string {
	if stage == StageTwo {
		return s.Stage2Goal
	}
	return s.Stage1Goal
}

// CriteriaForStage returns the criteria configured for the stage.
func (s Session) CriteriaForStage(stage int) []Criterion {
	if stage == StageTwo {
		return []Criterion(s.Stage2Criteria)
	}
	return []Criterion(s.Stage1Criteria)
}
