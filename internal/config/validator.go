package config

import (
	"fmt"
	"strings"
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateBackend validates a decision backend name
func (v *Validator) ValidateBackend(backend string) error {
	if backend == "" {
		return nil // Use default
	}

	validBackends := []string{"ollama", "openai", "anthropic"}
	for _, valid := range validBackends {
		if backend == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid autopilot backend: %s (must be one of: %s)", backend, strings.Join(validBackends, ", "))
}

// ValidateAPIKey validates an API key format
func (v *Validator) ValidateAPIKey(key string, backend string) error {
	if key == "" {
		return fmt.Errorf("%s API key cannot be empty", backend)
	}

	switch backend {
	case "anthropic":
		if !strings.HasPrefix(key, "sk-ant-") {
			return fmt.Errorf("invalid Anthropic API key format (should start with sk-ant-)")
		}
	case "openai":
		if !strings.HasPrefix(key, "sk-") {
			return fmt.Errorf("invalid OpenAI API key format (should start with sk-)")
		}
	}

	return nil
}

// ValidateModel validates a model name
func (v *Validator) ValidateModel(model string) error {
	if model == "" {
		return fmt.Errorf("model name cannot be empty")
	}

	// Check if it's a known model
	knownModels := []string{
		"llama3.2",
		"qwen2.5",
		"claude-sonnet-4",
		"claude-haiku-4",
		"gpt-4o",
		"gpt-4o-mini",
	}

	for _, known := range knownModels {
		if model == known {
			return nil
		}
	}

	// Allow custom models (just warn)
	return nil
}

// ValidatePort validates a TCP port number
func (v *Validator) ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %d (must be between 1 and 65535)", port)
	}
	return nil
}

// ValidateLogLevel validates log level
func (v *Validator) ValidateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateConfig performs comprehensive validation
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errors []error

	if err := v.ValidateBackend(cfg.Autopilot.Backend); err != nil {
		errors = append(errors, err)
	}

	// Hosted backends need a key; ollama runs local and does not
	switch cfg.Autopilot.Backend {
	case "openai", "anthropic":
		if err := v.ValidateAPIKey(cfg.Autopilot.APIKey, cfg.Autopilot.Backend); err != nil {
			errors = append(errors, err)
		}
	}

	if cfg.Autopilot.Model != "" {
		if err := v.ValidateModel(cfg.Autopilot.Model); err != nil {
			errors = append(errors, err)
		}
	}
	if cfg.Autopilot.MaxSteps < 1 {
		errors = append(errors, fmt.Errorf("autopilot.max_steps must be >= 1"))
	}
	if cfg.Autopilot.ActionPauseMs < 0 {
		errors = append(errors, fmt.Errorf("autopilot.action_pause_ms must be >= 0"))
	}
	if cfg.Autopilot.StepPauseMs < 0 {
		errors = append(errors, fmt.Errorf("autopilot.step_pause_ms must be >= 0"))
	}

	if cfg.Gateway.Enabled {
		if err := v.ValidatePort(cfg.Gateway.Port); err != nil {
			errors = append(errors, err)
		}
	}

	if cfg.Agent.LinearSpeed <= 0 {
		errors = append(errors, fmt.Errorf("agent.linear_speed must be positive"))
	}
	if cfg.Agent.AngularSpeed <= 0 {
		errors = append(errors, fmt.Errorf("agent.angular_speed must be positive"))
	}
	if cfg.World.InteractRange <= 0 {
		errors = append(errors, fmt.Errorf("world.interact_range must be positive"))
	}

	// Validate logging
	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		errors = append(errors, err)
	}

	return errors
}
