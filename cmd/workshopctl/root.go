package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/noah-isme/prompt-workshop-api/internal/config"
	"github.com/noah-isme/prompt-workshop-api/internal/database"
	"github.com/noah-isme/prompt-workshop-api/internal/repository"
	"github.com/noah-isme/prompt-workshop-api/internal/service"
)

// services is the subset of the API wiring the operator commands need.
type services struct {
	schema   service.SchemaService
	sessions service.SessionService
}

type serviceFactory func(cmd *cobra.Command) (services, error)

func newRootCmd() *cobra.Command {
	return newRootCmdWithFactory(loadServices)
}

func newRootCmdWithFactory(factory serviceFactory) *cobra.Command {
	root := &cobra.Command{
		Use:   "workshopctl",
		Short: "Operate the prompt workshop database",
		Long: `workshopctl runs the schema administration operations of the prompt
workshop API against the configured database and manages workshop sessions
without going through the HTTP admin endpoints.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	root.PersistentFlags().Duration("timeout", 30*time.Second, "Timeout for each database operation")

	root.AddCommand(newInitCmd(factory))
	root.AddCommand(newMigrateCmd(factory))
	root.AddCommand(newSessionsCmd(factory))

	return root
}

func loadServices(cmd *cobra.Command) (services, error) {
	cfg, err := config.Load()
	if err != nil {
		return services{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.UsesMemoryStore() {
		return services{}, fmt.Errorf("no database configured: set PROMPTLAB_DATABASE_URL")
	}

	db, err := database.Open(cfg)
	if err != nil {
		return services{}, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger := commandLogger(cmd)
	repos := repository.NewRepositories(db)
	validate := validator.New(validator.WithRequiredStructEnabled())

	return services{
		schema:   service.NewSchemaService(repos.Schema, cfg, logger),
		sessions: service.NewSessionService(repos.Sessions, validate, cfg.ExclusiveSessions, logger),
	}, nil
}

func commandLogger(cmd *cobra.Command) zerolog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return zerolog.New(io.Discard)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(cmd.Context(), timeout)
}
