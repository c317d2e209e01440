package dto

import (
	"github.com/noah-isme/prompt-workshop-api/internal/models"
	"github.com/noah-isme/prompt-workshop-api/pkg/ai"
)

// CriterionPayload is a criterion as exchanged with API clients.
type CriterionPayload struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// CriteriaToModels converts payload criteria into model criteria.
func CriteriaToModels(criteria []CriterionPayload) []models.Criterion {
	if criteria == nil {
		return nil
	}
	converted := make([]models.Criterion, 0, len(criteria))
	for _, criterion := range criteria {
		converted = append(converted, models.Criterion{Name: criterion.Name, Description: criterion.Description})
	}
	return converted
}

// CriteriaFromModels converts model criteria into payload criteria.
func CriteriaFromModels(criteria []models.Criterion) []CriterionPayload {
	converted := make([]CriterionPayload, 0, len(criteria))
	for _, criterion := range criteria {
		converted = append(converted, CriterionPayload{Name: criterion.Name, Description: criterion.Description})
	}
	return converted
}

// CriteriaToAI converts model criteria into evaluator criteria.
func CriteriaToAI(criteria []models.Criterion) []ai.Criterion {
	converted := make([]ai.Criterion, 0, len(criteria))
	for _, criterion := range criteria {
		converted = append(converted, ai.Criterion{Name: criterion.Name, Description: criterion.Description})
	}
	return converted
}

// CriteriaFromAI converts evaluator criteria into payload criteria.
func CriteriaFromAI(criteria []ai.Criterion) []CriterionPayload {
	converted := make([]CriterionPayload, 0, len(criteria))
	for _, criterion := range criteria {
		converted = append(converted, CriterionPayload{Name: criterion.Name, Description: criterion.Description})
	}
	return converted
}
