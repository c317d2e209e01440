package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/prompt-workshop-api/internal/config"
)

// Open connects to the relational store selected in configuration.
// It returns a nil database when the in-memory store is configured.
func Open(cfg config.Config) (*gorm.DB, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		return ConnectPostgres(cfg.DatabaseURL)
	case config.DriverSQLite:
		return ConnectSQLite(cfg.DatabaseURL)
	case config.DriverMemory:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}
