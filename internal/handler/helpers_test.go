package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/prompt-workshop-api/internal/config"
	"github.com/noah-isme/prompt-workshop-api/internal/handler"
	"github.com/noah-isme/prompt-workshop-api/internal/middleware"
	"github.com/noah-isme/prompt-workshop-api/internal/models"
	"github.com/noah-isme/prompt-workshop-api/internal/repository"
	"github.com/noah-isme/prompt-workshop-api/internal/router"
	"github.com/noah-isme/prompt-workshop-api/internal/service"
	"github.com/noah-isme/prompt-workshop-api/pkg/ai"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
}

type stubEvaluator struct {
	mu     sync.Mutex
	result ai.EvaluationResult
	err    error
	inputs []ai.EvaluationInput
}

func (s *stubEvaluator) Evaluate(_ context.Context, input ai.EvaluationInput) (ai.EvaluationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, input)
	if s.err != nil {
		return ai.EvaluationResult{}, s.err
	}
	return s.result, nil
}

type testApp struct {
	app       *fiber.App
	db        *gorm.DB
	repos     repository.Repositories
	evaluator *stubEvaluator
}

type appOptions struct {
	cfg         config.Config
	memory      bool
	noEvaluator bool
}

func newTestApp(t *testing.T, opts appOptions) *testApp {
	t.Helper()

	var db *gorm.DB
	if !opts.memory {
		name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
		dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
		var err error
		db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		require.NoError(t, err)
		require.NoError(t, db.AutoMigrate(&models.Session{}, &models.Submission{}, &models.SessionFeedback{}))
		t.Cleanup(func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		})
	}

	cfg := opts.cfg
	if cfg.AppName == "" {
		cfg.AppName = "Prompt Workshop API"
	}
	if cfg.DatabaseDriver == "" {
		cfg.DatabaseDriver = config.DriverSQLite
		if opts.memory {
			cfg.DatabaseDriver = config.DriverMemory
		}
	}
	if cfg.EvaluateRateLimit == 0 {
		cfg.EvaluateRateLimit = 1000
	}

	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())
	repos := repository.NewRepositories(db)

	evaluator := &stubEvaluator{result: ai.EvaluationResult{
		EffectivenessScore: 82,
		CriteriaScores: []ai.CriterionScore{
			{Name: "Clarity", Score: 90},
			{Name: "Specificity", Score: 75},
		},
		Feedback:       "Solid structure, name the refund amount.",
		Improvements:   []string{"State the refund amount", "Set a deadline"},
		ImprovedPrompt: "Write a two paragraph refund email that states the amount.",
		Usage:          ai.Usage{InputTokens: 1000, OutputTokens: 250},
	}}
	var aiEvaluator ai.Evaluator = evaluator
	if opts.noEvaluator {
		aiEvaluator = nil
	}

	schemaService := service.NewSchemaService(repos.Schema, cfg, logger)
	analyticsService := service.NewAnalyticsService(repos.Submissions, repos.Feedback, nil, 0, logger)
	evaluationService := service.NewEvaluationService(repos.Sessions, repos.Submissions, aiEvaluator, validate, service.EvaluationOptions{
		PersistenceMode: config.PersistenceBestEffort,
		Observers:       []service.SubmissionObserver{analyticsService},
	}, logger)

	app := fiber.New()
	app.Use(middleware.CorrelationID())
	router.Register(app, cfg, router.Dependencies{
		EvaluationHandler: handler.NewEvaluationHandler(evaluationService, cfg.EvaluationTimeout, logger),
		SessionHandler:    handler.NewSessionHandler(service.NewSessionService(repos.Sessions, validate, cfg.ExclusiveSessions, logger), logger),
		SubmissionHandler: handler.NewSubmissionHandler(service.NewSubmissionService(repos.Sessions, repos.Submissions, validate, logger, analyticsService), logger),
		FeedbackHandler:   handler.NewFeedbackHandler(service.NewFeedbackService(repos.Feedback, repos.Sessions, validate, logger, analyticsService), logger),
		GoalHandler:       handler.NewGoalHandler(service.NewGoalService(repos.Sessions, logger), logger),
		AnalyticsHandler:  handler.NewAnalyticsHandler(analyticsService, logger),
		HealthHandler:     handler.NewHealthHandler(schemaService, logger),
		SchemaHandler:     handler.NewSchemaHandler(schemaService, logger),
	})

	return &testApp{app: app, db: db, repos: repos, evaluator: evaluator}
}

func (a *testApp) seedSession(t *testing.T, name string, open bool) models.Session {
	t.Helper()
	session := models.Session{
		Name:       name,
		Stage1Goal: "Write a refund email",
		Stage1Criteria: []models.Criterion{
			{Name: "Clarity", Description: "clear"},
			{Name: "Specificity", Description: "specific"},
		},
		Stage2Goal:     "Plan a product launch",
		Stage2Criteria: []models.Criterion{{Name: "Reach", Description: "audience"}},
		IsOpen:         open,
	}
	require.NoError(t, a.repos.Sessions.Create(context.Background(), &session))
	return session
}

func (a *testApp) do(t *testing.T, method, path string, payload interface{}, headers ...string) (*http.Response, envelope) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		switch value := payload.(type) {
		case string:
			body = strings.NewReader(value)
		default:
			raw, err := json.Marshal(value)
			require.NoError(t, err)
			body = bytes.NewReader(raw)
		}
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)

	var decoded envelope
	decodeResponse(t, resp, &decoded)
	return resp, decoded
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func decodeData(t *testing.T, env envelope, target interface{}) {
	t.Helper()
	require.NotEmpty(t, env.Data)
	require.NoError(t, json.Unmarshal(env.Data, target))
}
