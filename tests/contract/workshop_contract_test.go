package contract_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/prompt-workshop-api/internal/config"
	"github.com/noah-isme/prompt-workshop-api/internal/dto"
	"github.com/noah-isme/prompt-workshop-api/internal/handler"
	"github.com/noah-isme/prompt-workshop-api/internal/models"
	"github.com/noah-isme/prompt-workshop-api/internal/repository"
	"github.com/noah-isme/prompt-workshop-api/internal/router"
	"github.com/noah-isme/prompt-workshop-api/internal/service"
	"github.com/noah-isme/prompt-workshop-api/pkg/ai"
)

type stubEvaluator struct{}

func (stubEvaluator) Evaluate(_ context.Context, input ai.EvaluationInput) (ai.EvaluationResult, error) {
	scores := make([]ai.CriterionScore, 0, len(input.Criteria))
	for i, criterion := range input.Criteria {
		scores = append(scores, ai.CriterionScore{Name: criterion.Name, Score: float64(60 + 10*i)})
	}
	return ai.EvaluationResult{
		EffectivenessScore: 74,
		CriteriaScores:     scores,
		Feedback:           "Mention the order number.",
		Improvements:       []string{"Mention the order number"},
		ImprovedPrompt:     "Write a refund email for order 1234 that apologises once.",
		Usage:              ai.Usage{InputTokens: 600, OutputTokens: 200},
	}, nil
}

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", name))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func newContractApp(t *testing.T) *fiber.App {
	t.Helper()

	// A nil database selects the process memory store.
	repos := repository.NewRepositories(nil)
	logger := zerolog.Nop()
	validate := validator.New(validator.WithRequiredStructEnabled())
	cfg := config.Config{AppName: "contract", DatabaseDriver: config.DriverMemory, EvaluateRateLimit: 100}

	session := models.Session{
		Name:           "Contract",
		Stage1Goal:     "Write a refund email",
		Stage1Criteria: []models.Criterion{{Name: "Clarity", Description: "clear"}, {Name: "Tone", Description: "warm"}},
		Stage2Goal:     "Plan a launch",
		IsOpen:         true,
	}
	require.NoError(t, repos.Sessions.Create(context.Background(), &session))

	analytics := service.NewAnalyticsService(repos.Submissions, repos.Feedback, nil, time.Minute, logger)
	evaluation := service.NewEvaluationService(repos.Sessions, repos.Submissions, stubEvaluator{}, validate, service.EvaluationOptions{
		Observers: []service.SubmissionObserver{analytics},
	}, logger)

	app := fiber.New()
	router.Register(app, cfg, router.Dependencies{
		EvaluationHandler: handler.NewEvaluationHandler(evaluation, 5*time.Second, logger),
		AnalyticsHandler:  handler.NewAnalyticsHandler(analytics, logger),
	})
	return app
}

func postEvaluation(t *testing.T, app *fiber.App, payload dto.EvaluateRequest) []byte {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/evaluate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return raw
}

func validateAgainst(t *testing.T, schema *jsonschema.Schema, raw []byte) {
	t.Helper()
	var document interface{}
	require.NoError(t, json.Unmarshal(raw, &document))
	require.NoError(t, schema.Validate(document))
}

func TestEvaluationContract(t *testing.T) {
	schema := compileSchema(t, "evaluation_response.schema.json")
	app := newContractApp(t)

	raw := postEvaluation(t, app, dto.EvaluateRequest{
		Prompt:       "Write a refund email",
		TargetOutput: "Refund email",
		UserID:       "user-1",
		Stage:        1,
	})
	validateAgainst(t, schema, raw)
}

func TestAnalyticsContract(t *testing.T) {
	schema := compileSchema(t, "analytics_response.schema.json")
	app := newContractApp(t)

	postEvaluation(t, app, dto.EvaluateRequest{Prompt: "Write a refund email", TargetOutput: "Refund email", UserID: "user-1", Stage: 1})
	postEvaluation(t, app, dto.EvaluateRequest{Prompt: "Plan a launch", TargetOutput: "Launch plan", UserID: "user-2", Stage: 2})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/analytics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	validateAgainst(t, schema, raw)
}
