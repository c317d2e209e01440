package dto

import "time"

// DatabaseHealth reports connectivity of the relational store.
type DatabaseHealth struct {
	Driver       string `json:"driver"`
	Connected    bool   `json:"connected"`
	ResponseTime string `json:"responseTime,omitempty"`
	Error        string `json:"error,omitempty"`
}

// TableHealth reports existence and row counts of a table.
type TableHealth struct {
	Exists      bool  `json:"exists"`
	Count       int64 `json:"count"`
	ActiveCount int64 `json:"activeCount,omitempty"`
}

// SchemaHealth reports which submission score layouts are present.
type SchemaHealth struct {
	HasDynamicCriteria bool   `json:"hasDynamicCriteria"`
	HasStaticCriteria  bool   `json:"hasStaticCriteria"`
	MigrationStatus    string `json:"migrationStatus"`
}

// EnvironmentHealth reports which external credentials are configured.
type EnvironmentHealth struct {
	HasAIKey       bool   `json:"hasAiKey"`
	HasDatabaseURL bool   `json:"hasDatabaseUrl"`
	AIProvider     string `json:"aiProvider"`
	AIMode         string `json:"aiMode"`
}

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Service     string                 `json:"service"`
	Environment string                 `json:"environment"`
	Database    DatabaseHealth         `json:"database"`
	Tables      map[string]TableHealth `json:"tables,omitempty"`
	Schema      *SchemaHealth          `json:"schema,omitempty"`
	Config      EnvironmentHealth      `json:"config"`
}

// SchemaOperationResponse reports the outcome of an init or migrate run.
type SchemaOperationResponse struct {
	Message              string `json:"message"`
	DefaultSessionSeeded bool   `json:"defaultSessionSeeded"`
	SessionsUpdated      int64  `json:"sessionsUpdated"`
	SubmissionsMigrated  int64  `json:"submissionsMigrated"`
}
