package autopilot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/harun/golem/pkg/command"
)

// BackendConfig selects and configures a decision backend.
type BackendConfig struct {
	Backend string
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewDecider creates the decider for the configured backend. An empty
// backend name selects Ollama.
func NewDecider(cfg BackendConfig, tools []command.Definition, log zerolog.Logger) (Decider, error) {
	switch cfg.Backend {
	case "", "ollama":
		return NewOllamaDecider(OllamaConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}, tools, log), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai backend requires an API key")
		}
		return NewOpenAIDecider(OpenAIConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		}, tools, log), nil
	case "anthropic":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic backend requires an API key")
		}
		return NewAnthropicDecider(AnthropicConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		}, tools, log), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}
}
