package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/prompt-workshop-api/internal/config"
	"github.com/noah-isme/prompt-workshop-api/internal/dto"
	"github.com/noah-isme/prompt-workshop-api/internal/models"
	"github.com/noah-isme/prompt-workshop-api/internal/repository"
)

// Health states reported by the health endpoint.
const (
	HealthHealthy   = "healthy"
	HealthDegraded  = "degraded"
	HealthUnhealthy = "unhealthy"
)

// Migration states derived from the submission score columns.
const (
	MigrationMigrated      = "migrated"
	MigrationNewOnly       = "new-only"
	MigrationOldOnly       = "old-only"
	MigrationUninitialized = "uninitialized"
)

// DefaultSessionName names the session seeded by init.
const DefaultSessionName = "Default Workshop Session"

// Criteria written onto sessions that were created before criteria were configurable.
var (
	DefaultStage1Criteria = []models.Criterion{
		{Name: "Professionalism", Description: "Uses appropriate business language and tone"},
		{Name: "Empathy", Description: "Acknowledges customer concerns and shows understanding"},
		{Name: "Actionability", Description: "Provides clear next steps or solutions"},
		{Name: "Completeness", Description: "Addresses all aspects of the complaint"},
	}
	DefaultStage2Criteria = []models.Criterion{
		{Name: "Strategic Thinking", Description: "Shows clear understanding of market positioning"},
		{Name: "Audience Targeting", Description: "Identifies and addresses specific customer segments"},
		{Name: "Channel Strategy", Description: "Proposes appropriate marketing channels and tactics"},
		{Name: "Measurability", Description: "Includes metrics and KPIs for success tracking"},
	}
)

// DefaultSession returns the session seeded into an empty database.
func DefaultSession() models.Session {
	return models.Session{
		Name:           DefaultSessionName,
		Stage1Goal:     "Write a prompt that generates a professional email response to a customer complaint",
		Stage1Criteria: append([]models.Criterion(nil), DefaultStage1Criteria...),
		Stage2Goal:     "Write a prompt that generates a comprehensive marketing strategy for a new product launch",
		Stage2Criteria: append([]models.Criterion(nil), DefaultStage2Criteria...),
		IsOpen:         true,
	}
}

// SchemaService runs idempotent schema administration and reports health.
type SchemaService interface {
	Init(ctx context.Context) (dto.SchemaOperationResponse, error)
	Migrate(ctx context.Context) (dto.SchemaOperationResponse, error)
	Health(ctx context.Context) (dto.HealthResponse, error)
}

type schemaService struct {
	repo   repository.SchemaRepository
	cfg    config.Config
	logger zerolog.Logger
	now    func() time.Time
}

// NewSchemaService constructs the schema service.
func NewSchemaService(repo repository.SchemaRepository, cfg config.Config, logger zerolog.Logger) SchemaService {
	return &schemaService{
		repo:   repo,
		cfg:    cfg,
		logger: logger.With().Str("component", "schema_service").Logger(),
		now:    time.Now,
	}
}

// Init creates the tables and seeds the default session when none exist.
func (s *schemaService) Init(ctx context.Context) (dto.SchemaOperationResponse, error) {
	if err := s.repo.Migrate(ctx); err != nil {
		return dto.SchemaOperationResponse{}, fmt.Errorf("create tables: %w", err)
	}

	seeded, err := s.repo.SeedDefaultSession(ctx, DefaultSession())
	if err != nil {
		return dto.SchemaOperationResponse{}, fmt.Errorf("seed default session: %w", err)
	}

	s.logger.Info().Bool("default_session_seeded", seeded).Msg("database initialised")
	return dto.SchemaOperationResponse{
		Message:              "Database initialized successfully",
		DefaultSessionSeeded: seeded,
	}, nil
}

// Migrate ensures criteria columns exist, backfills empty criteria and converts legacy scores.
func (s *schemaService) Migrate(ctx context.Context) (dto.SchemaOperationResponse, error) {
	if err := s.repo.Migrate(ctx); err != nil {
		return dto.SchemaOperationResponse{}, fmt.Errorf("ensure columns: %w", err)
	}

	updated, err := s.repo.BackfillCriteria(ctx, DefaultStage1Criteria, DefaultStage2Criteria)
	if err != nil {
		return dto.SchemaOperationResponse{}, fmt.Errorf("backfill criteria: %w", err)
	}

	migrated, err := s.repo.MigrateLegacyScores(ctx)
	if err != nil {
		return dto.SchemaOperationResponse{}, fmt.Errorf("migrate legacy scores: %w", err)
	}

	s.logger.Info().Int64("sessions_updated", updated).Int64("submissions_migrated", migrated).Msg("database migrated")
	return dto.SchemaOperationResponse{
		Message:             "Migration completed successfully",
		SessionsUpdated:     updated,
		SubmissionsMigrated: migrated,
	}, nil
}

// Health returns ErrDatabaseUnavailable together with the report when the store cannot be reached.
func (s *schemaService) Health(ctx context.Context) (dto.HealthResponse, error) {
	response := dto.HealthResponse{
		Status:      HealthHealthy,
		Timestamp:   s.now().UTC(),
		Service:     s.cfg.AppName,
		Environment: s.cfg.AppEnv,
		Database:    dto.DatabaseHealth{Driver: s.cfg.DatabaseDriver},
		Config: dto.EnvironmentHealth{
			HasAIKey:       s.cfg.HasAICredentials(),
			HasDatabaseURL: s.cfg.DatabaseURL != "",
			AIProvider:     s.cfg.AIProvider,
			AIMode:         s.cfg.AIMode,
		},
	}

	start := time.Now()
	if err := s.repo.Ping(ctx); err != nil {
		response.Status = HealthUnhealthy
		response.Database.Error = err.Error()
		s.logger.Error().Err(err).Msg("database ping failed")
		return response, fmt.Errorf("%w: %w", ErrDatabaseUnavailable, err)
	}
	response.Database.Connected = true
	response.Database.ResponseTime = time.Since(start).Round(time.Microsecond).String()

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		response.Status = HealthUnhealthy
		response.Database.Error = err.Error()
		s.logger.Error().Err(err).Msg("database stats failed")
		return response, fmt.Errorf("%w: %w", ErrDatabaseUnavailable, err)
	}

	response.Tables = map[string]dto.TableHealth{
		"sessions":         {Exists: stats.SessionsTable, Count: stats.Sessions, ActiveCount: stats.OpenSessions},
		"submissions":      {Exists: stats.SubmissionsTable, Count: stats.Submissions},
		"session_feedback": {Exists: stats.FeedbackTable, Count: stats.Feedback},
	}
	response.Schema = &dto.SchemaHealth{
		HasDynamicCriteria: stats.HasDynamicCriteria,
		HasStaticCriteria:  stats.HasStaticCriteria,
		MigrationStatus:    migrationStatus(stats),
	}

	if s.cfg.UsesMemoryStore() {
		response.Status = HealthDegraded
	}

	return response, nil
}

func migrationStatus(stats repository.SchemaStats) string {
	switch {
	case stats.HasDynamicCriteria && stats.HasStaticCriteria:
		return MigrationMigrated
	case stats.HasDynamicCriteria:
		return MigrationNewOnly
	case stats.HasStaticCriteria:
		return MigrationOldOnly
	default:
		return MigrationUninitialized
	}
}
