package ai

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Providers supported by NewEvaluator.
const (
	ProviderAnthropic        = "anthropic"
	ProviderOpenAI           = "openai"
	ProviderOpenAICompatible = "openai-compatible"
)

const (
	// AnthropicBaseURL is Anthropic's OpenAI-compatible endpoint.
	AnthropicBaseURL      = "https://api.anthropic.com/v1/"
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
)

// ProviderConfig selects a provider and evaluation mode.
type ProviderConfig struct {
	Provider    string
	Mode        string
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
	Client      ChatCompleter
}

// NewEvaluator builds the evaluator for the configured provider and mode.
func NewEvaluator(cfg ProviderConfig) (Evaluator, error) {
	openAICfg := OpenAIConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Logger:      cfg.Logger,
		Client:      cfg.Client,
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderAnthropic, "":
		if openAICfg.BaseURL == "" {
			openAICfg.BaseURL = AnthropicBaseURL
		}
		if openAICfg.Model == "" {
			openAICfg.Model = DefaultAnthropicModel
		}
	case ProviderOpenAI:
	case ProviderOpenAICompatible:
		if openAICfg.BaseURL == "" && openAICfg.Client == nil {
			return nil, fmt.Errorf("base url is required for provider %q", cfg.Provider)
		}
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case ModeStructured, "":
		evaluator, err := NewOpenAIEvaluator(openAICfg)
		if err != nil {
			return nil, err
		}
		return evaluator, nil
	case ModeTools:
		evaluator, err := NewToolCallingEvaluator(openAICfg)
		if err != nil {
			return nil, err
		}
		return evaluator, nil
	default:
		return nil, fmt.Errorf("unsupported evaluation mode %q", cfg.Mode)
	}
}
