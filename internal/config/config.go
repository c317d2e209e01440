package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Persistence modes for the evaluation pipeline.
const (
	PersistenceBestEffort = "best_effort"
	PersistenceStrict     = "strict"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds runtime configuration values for the workshop API.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	LogLevel          string
	DatabaseDriver    string
	DatabaseURL       string
	RedisURL          string
	AnalyticsCacheTTL time.Duration
	NATSURL           string
	NATSSubject       string
	AIProvider        string
	AIMode            string
	AIModel           string
	AIBaseURL         string
	AIAPIKey          string
	AIMaxTokens       int
	AITemperature     float32
	EvaluationTimeout time.Duration
	PersistenceMode   string
	EvaluateRateLimit int
	ExclusiveSessions bool
	AdminJWTSecret    string
	CORSAllowOrigins  string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// UsesMemoryStore reports whether submissions live in the non-durable in-process store.
func (c Config) UsesMemoryStore() bool {
	return c.DatabaseDriver == DriverMemory
}

// HasAICredentials reports whether an API key is configured for the evaluator.
func (c Config) HasAICredentials() bool {
	return c.AIAPIKey != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PROMPTLAB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Prompt Workshop API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("http.cors_origins", "*")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("analytics.cache_ttl", "30s")
	v.SetDefault("nats.subject", "workshop.submissions")
	v.SetDefault("ai.provider", "anthropic")
	v.SetDefault("ai.mode", "structured")
	v.SetDefault("ai.max_tokens", 2048)
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("evaluation.timeout", "30s")
	v.SetDefault("evaluation.persistence_mode", PersistenceBestEffort)
	v.SetDefault("evaluation.rate_limit", 20)
	v.SetDefault("sessions.exclusive_open", false)

	// Provider keys are also accepted unprefixed, the way the providers document them.
	_ = v.BindEnv("anthropic_api_key", "PROMPTLAB_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("openai_api_key", "PROMPTLAB_OPENAI_API_KEY", "OPENAI_API_KEY")

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cacheTTL, err := parseDuration(v, "analytics.cache_ttl", 30*time.Second)
	if err != nil {
		return Config{}, err
	}

	timeout, err := parseDuration(v, "evaluation.timeout", 30*time.Second)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		LogLevel:          strings.ToLower(v.GetString("log.level")),
		DatabaseDriver:    strings.ToLower(strings.TrimSpace(v.GetString("database.driver"))),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		AnalyticsCacheTTL: cacheTTL,
		NATSURL:           v.GetString("nats.url"),
		NATSSubject:       v.GetString("nats.subject"),
		AIProvider:        strings.ToLower(v.GetString("ai.provider")),
		AIMode:            strings.ToLower(v.GetString("ai.mode")),
		AIModel:           v.GetString("ai.model"),
		AIBaseURL:         v.GetString("ai.base_url"),
		AIAPIKey:          v.GetString("ai.api_key"),
		AIMaxTokens:       v.GetInt("ai.max_tokens"),
		AITemperature:     float32(v.GetFloat64("ai.temperature")),
		EvaluationTimeout: timeout,
		PersistenceMode:   strings.ToLower(v.GetString("evaluation.persistence_mode")),
		EvaluateRateLimit: v.GetInt("evaluation.rate_limit"),
		ExclusiveSessions: v.GetBool("sessions.exclusive_open"),
		AdminJWTSecret:    v.GetString("admin.jwt_secret"),
		CORSAllowOrigins:  v.GetString("http.cors_origins"),
	}

	if cfg.AIAPIKey == "" {
		switch cfg.AIProvider {
		case "anthropic":
			cfg.AIAPIKey = v.GetString("anthropic_api_key")
		case "openai", "openai-compatible":
			cfg.AIAPIKey = v.GetString("openai_api_key")
		}
	}

	if cfg.DatabaseDriver == DriverPostgres && cfg.DatabaseURL == "" {
		cfg.DatabaseDriver = DriverMemory
	}

	switch cfg.DatabaseDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	switch cfg.PersistenceMode {
	case PersistenceBestEffort, PersistenceStrict:
	default:
		return Config{}, fmt.Errorf("unsupported persistence mode %q", cfg.PersistenceMode)
	}

	if cfg.AIMaxTokens <= 0 {
		cfg.AIMaxTokens = 2048
	}

	if cfg.EvaluateRateLimit <= 0 {
		cfg.EvaluateRateLimit = 20
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return fallback, nil
	}

	duration, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if duration <= 0 {
		return fallback, nil
	}
	return duration, nil
}
