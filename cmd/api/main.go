package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/prompt-workshop-api/internal/config"
	"github.com/noah-isme/prompt-workshop-api/internal/database"
	"github.com/noah-isme/prompt-workshop-api/internal/handler"
	"github.com/noah-isme/prompt-workshop-api/internal/middleware"
	"github.com/noah-isme/prompt-workshop-api/internal/observability"
	"github.com/noah-isme/prompt-workshop-api/internal/repository"
	"github.com/noah-isme/prompt-workshop-api/internal/router"
	"github.com/noah-isme/prompt-workshop-api/internal/service"
	"github.com/noah-isme/prompt-workshop-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && level != zerolog.NoLevel {
		logger = logger.Level(level)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if db == nil {
		logger.Warn().Msg("no database configured, submissions are kept in memory only")
	}
	repos := repository.NewRepositories(db)

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, analytics caching disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, submission events disabled")
			natsConn = nil
		} else {
			defer natsConn.Drain()
		}
	}

	var evaluator ai.Evaluator
	if cfg.HasAICredentials() {
		built, err := ai.NewEvaluator(ai.ProviderConfig{
			Provider:    cfg.AIProvider,
			Mode:        cfg.AIMode,
			APIKey:      cfg.AIAPIKey,
			BaseURL:     cfg.AIBaseURL,
			Model:       cfg.AIModel,
			MaxTokens:   cfg.AIMaxTokens,
			Temperature: cfg.AITemperature,
			Logger:      logger,
		})
		if err != nil {
			log.Fatalf("failed to create evaluator: %v", err)
		}
		evaluator = built
	} else {
		logger.Warn().Str("provider", cfg.AIProvider).Msg("no ai api key configured, evaluations are unavailable")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	schemaService := service.NewSchemaService(repos.Schema, cfg, logger)
	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := schemaService.Init(initCtx); err != nil {
		cancelInit()
		log.Fatalf("failed to initialise schema: %v", err)
	}
	cancelInit()

	analyticsService := service.NewAnalyticsService(repos.Submissions, repos.Feedback, redisClient, cfg.AnalyticsCacheTTL, logger)
	events := service.NewSubmissionEvents(natsConn, cfg.NATSSubject, redisClient, logger)
	observers := []service.SubmissionObserver{analyticsService, events}

	evaluationService := service.NewEvaluationService(repos.Sessions, repos.Submissions, evaluator, validate, service.EvaluationOptions{
		PersistenceMode: cfg.PersistenceMode,
		Observers:       observers,
	}, logger)
	sessionService := service.NewSessionService(repos.Sessions, validate, cfg.ExclusiveSessions, logger)
	submissionService := service.NewSubmissionService(repos.Sessions, repos.Submissions, validate, logger, observers...)
	feedbackService := service.NewFeedbackService(repos.Feedback, repos.Sessions, validate, logger, analyticsService)
	goalService := service.NewGoalService(repos.Sessions, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		ReadTimeout:  cfg.EvaluationTimeout + 5*time.Second,
		WriteTimeout: cfg.EvaluationTimeout + 5*time.Second,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})
	app.Get("/metrics", observability.MetricsHandler())
	router.Register(app, cfg, router.Dependencies{
		EvaluationHandler: handler.NewEvaluationHandler(evaluationService, cfg.EvaluationTimeout, logger),
		SessionHandler:    handler.NewSessionHandler(sessionService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		FeedbackHandler:   handler.NewFeedbackHandler(feedbackService, logger),
		GoalHandler:       handler.NewGoalHandler(goalService, logger),
		AnalyticsHandler:  handler.NewAnalyticsHandler(analyticsService, logger),
		HealthHandler:     handler.NewHealthHandler(schemaService, logger),
		SchemaHandler:     handler.NewSchemaHandler(schemaService, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().Str("address", cfg.HTTPAddress()).Str("database", cfg.DatabaseDriver).Msg("prompt workshop api started")
	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
