package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateBackend(t *testing.T) {
	v := NewValidator()

	t.Run("valid backends", func(t *testing.T) {
		backends := []string{"ollama", "openai", "anthropic"}
		for _, backend := range backends {
			err := v.ValidateBackend(backend)
			assert.NoError(t, err, "backend %s should be valid", backend)
		}
	})

	t.Run("empty backend", func(t *testing.T) {
		err := v.ValidateBackend("")
		assert.NoError(t, err) // Empty is allowed
	})

	t.Run("invalid backend", func(t *testing.T) {
		err := v.ValidateBackend("gemini")
		assert.Error(t, err)
	})
}

func TestValidateAPIKey(t *testing.T) {
	v := NewValidator()

	t.Run("valid anthropic key", func(t *testing.T) {
		err := v.ValidateAPIKey("sk-ant-test123", "anthropic")
		assert.NoError(t, err)
	})

	t.Run("invalid anthropic key", func(t *testing.T) {
		err := v.ValidateAPIKey("invalid-key", "anthropic")
		assert.Error(t, err)
	})

	t.Run("valid openai key", func(t *testing.T) {
		err := v.ValidateAPIKey("sk-test123", "openai")
		assert.NoError(t, err)
	})

	t.Run("invalid openai key", func(t *testing.T) {
		err := v.ValidateAPIKey("invalid-key", "openai")
		assert.Error(t, err)
	})

	t.Run("empty key", func(t *testing.T) {
		err := v.ValidateAPIKey("", "anthropic")
		assert.Error(t, err)
	})
}

func TestValidateModel(t *testing.T) {
	v := NewValidator()

	t.Run("known model", func(t *testing.T) {
		err := v.ValidateModel("llama3.2")
		assert.NoError(t, err)
	})

	t.Run("custom model", func(t *testing.T) {
		err := v.ValidateModel("custom-model")
		assert.NoError(t, err)
	})

	t.Run("empty model", func(t *testing.T) {
		err := v.ValidateModel("")
		assert.Error(t, err)
	})
}

func TestValidatePort(t *testing.T) {
	v := NewValidator()

	t.Run("valid port", func(t *testing.T) {
		err := v.ValidatePort(8080)
		assert.NoError(t, err)
	})

	t.Run("zero port", func(t *testing.T) {
		err := v.ValidatePort(0)
		assert.Error(t, err)
	})

	t.Run("negative port", func(t *testing.T) {
		err := v.ValidatePort(-1)
		assert.Error(t, err)
	})

	t.Run("port too large", func(t *testing.T) {
		err := v.ValidatePort(70000)
		assert.Error(t, err)
	})
}

func TestValidateLogLevel(t *testing.T) {
	v := NewValidator()

	t.Run("valid levels", func(t *testing.T) {
		levels := []string{"debug", "info", "warn", "error"}
		for _, level := range levels {
			err := v.ValidateLogLevel(level)
			assert.NoError(t, err, "level %s should be valid", level)
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		err := v.ValidateLogLevel("invalid")
		assert.Error(t, err)
	})
}

func TestValidateConfig(t *testing.T) {
	v := NewValidator()

	t.Run("valid config", func(t *testing.T) {
		cfg := DefaultConfig()

		errors := v.ValidateConfig(cfg)
		assert.Empty(t, errors)
	})

	t.Run("hosted backend needs a key", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Autopilot.Backend = "anthropic"
		cfg.Autopilot.APIKey = ""

		errors := v.ValidateConfig(cfg)
		assert.NotEmpty(t, errors)
	})

	t.Run("local backend needs no key", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Autopilot.Backend = "ollama"
		cfg.Autopilot.APIKey = ""

		errors := v.ValidateConfig(cfg)
		assert.Empty(t, errors)
	})

	t.Run("multiple errors", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Autopilot.Backend = "mystery"
		cfg.Agent.LinearSpeed = -1
		cfg.Logging.Level = "invalid"

		errors := v.ValidateConfig(cfg)
		assert.NotEmpty(t, errors)
		assert.GreaterOrEqual(t, len(errors), 3)
	})
}
