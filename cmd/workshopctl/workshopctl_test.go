package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/prompt-workshop-api/internal/config"
	"github.com/noah-isme/prompt-workshop-api/internal/repository"
	"github.com/noah-isme/prompt-workshop-api/internal/service"
)

func newTestFactory(t *testing.T) (serviceFactory, repository.Repositories) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	repos := repository.NewRepositories(db)
	require.NoError(t, repos.Schema.Migrate(context.Background()))
	cfg := config.Config{AppName: "workshopctl", DatabaseDriver: config.DriverSQLite}
	svc := services{
		schema:   service.NewSchemaService(repos.Schema, cfg, zerolog.Nop()),
		sessions: service.NewSessionService(repos.Sessions, validator.New(), false, zerolog.Nop()),
	}
	return func(*cobra.Command) (services, error) { return svc, nil }, repos
}

func runCommand(t *testing.T, factory serviceFactory, args ...string) (string, error) {
	t.Helper()
	root := newRootCmdWithFactory(factory)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInitSeedsDefaultSessionOnce(t *testing.T) {
	factory, repos := newTestFactory(t)

	out, err := runCommand(t, factory, "init")
	require.NoError(t, err)
	require.Contains(t, out, "Database initialized successfully")
	require.Contains(t, out, "default session seeded")

	out, err = runCommand(t, factory, "init")
	require.NoError(t, err)
	require.NotContains(t, out, "default session seeded")

	sessions, err := repos.Sessions.List(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, service.DefaultSessionName, sessions[0].Name)
}

func TestMigrateIsIdempotent(t *testing.T) {
	factory, _ := newTestFactory(t)

	_, err := runCommand(t, factory, "init")
	require.NoError(t, err)

	out, err := runCommand(t, factory, "migrate")
	require.NoError(t, err)
	require.Contains(t, out, "Migration completed successfully")

	out, err = runCommand(t, factory, "migrate")
	require.NoError(t, err)
	require.NotContains(t, out, "sessions backfilled")
}

func TestSessionsCloseOpenAndToggle(t *testing.T) {
	factory, repos := newTestFactory(t)
	_, err := runCommand(t, factory, "init")
	require.NoError(t, err)

	sessions, err := repos.Sessions.List(context.Background())
	require.NoError(t, err)
	id := fmt.Sprintf("%d", sessions[0].ID)

	out, err := runCommand(t, factory, "sessions", "close", id)
	require.NoError(t, err)
	require.Contains(t, out, "is now closed")

	out, err = runCommand(t, factory, "sessions", "toggle", id)
	require.NoError(t, err)
	require.Contains(t, out, "is now open")

	out, err = runCommand(t, factory, "sessions", "list")
	require.NoError(t, err)
	require.Contains(t, out, service.DefaultSessionName)
	require.Contains(t, out, "true")
}

func TestSessionsRejectInvalidID(t *testing.T) {
	factory, _ := newTestFactory(t)

	_, err := runCommand(t, factory, "sessions", "open", "abc")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid session id")

	_, err = runCommand(t, factory, "sessions", "open", "99")
	require.Error(t, err)
	require.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestSessionsListEmpty(t *testing.T) {
	factory, _ := newTestFactory(t)

	out, err := runCommand(t, factory, "sessions", "list")
	require.NoError(t, err)
	require.Contains(t, out, "No sessions found.")
}
