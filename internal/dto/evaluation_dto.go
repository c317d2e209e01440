package dto

// EvaluateRequest is the payload of POST /evaluate.
type EvaluateRequest struct {
	Prompt       string             `json:"prompt" validate:"required"`
	TargetOutput string             `json:"targetOutput" validate:"required"`
	UserID       string             `json:"userId" validate:"required,max=128"`
	Stage        int                `json:"stage" validate:"required,oneof=1 2"`
	Criteria     []CriterionPayload `json:"criteria" validate:"omitempty,dive"`
}

// EnergyConsumption reports the derived sustainability metrics of an evaluation.
type EnergyConsumption struct {
	Tokens        int     `json:"tokens"`
	EstimatedCO2  float64 `json:"estimatedCO2"`
	EstimatedCost float64 `json:"estimatedCost"`
}

// EvaluateResponse is returned by POST /evaluate.
type EvaluateResponse struct {
	SubmissionID       *uint              `json:"submissionId,omitempty"`
	SessionID          uint               `json:"sessionId"`
	Stage              int                `json:"stage"`
	OriginalPrompt     string             `json:"originalPrompt"`
	TargetOutput       string             `json:"targetOutput"`
	Criteria           []CriterionPayload `json:"criteria"`
	EffectivenessScore float64            `json:"effectivenessScore"`
	CriteriaScores     map[string]float64 `json:"criteriaScores"`
	Feedback           string             `json:"feedback"`
	Improvements       []string           `json:"improvements"`
	ImprovedPrompt     string             `json:"improvedPrompt"`
	EnergyConsumption  EnergyConsumption  `json:"energyConsumption"`
	Persisted          bool               `json:"persisted"`
}
