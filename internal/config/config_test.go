package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, 3.0, cfg.Agent.LinearSpeed)
	assert.Equal(t, 5.0, cfg.Agent.AngularSpeed)
	assert.Equal(t, 0.1, cfg.Agent.ArrivalThreshold)
	assert.Equal(t, 3.0, cfg.Agent.SpeechSeconds)
	assert.Equal(t, 50, cfg.Agent.FrameMs)
	assert.Equal(t, 3.0, cfg.World.InteractRange)
	assert.Equal(t, "ollama", cfg.Autopilot.Backend)
	assert.Equal(t, 20, cfg.Autopilot.MaxSteps)
	assert.Equal(t, 800, cfg.Autopilot.ActionPauseMs)
	assert.Equal(t, 500, cfg.Autopilot.StepPauseMs)
	assert.True(t, cfg.Gateway.Enabled)
	assert.Equal(t, "127.0.0.1", cfg.Gateway.Host)
	assert.Equal(t, 8080, cfg.Gateway.Port)
	assert.Equal(t, 100, cfg.Gateway.TickMs)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Redaction)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "golem", cfg.Tracing.ServiceName)
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := DefaultConfig()

		err := cfg.Validate()
		assert.NoError(t, err)
	})

	t.Run("invalid backend", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Autopilot.Backend = "mystery"

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "backend")
	})

	t.Run("malformed anthropic key", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Autopilot.Backend = "anthropic"
		cfg.Autopilot.APIKey = "not-a-key"

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "sk-ant-")
	})

	t.Run("zero linear speed", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Agent.LinearSpeed = 0

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "linear_speed")
	})

	t.Run("negative speech duration", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Agent.SpeechSeconds = -1

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "speech_seconds")
	})

	t.Run("zero interact range", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.World.InteractRange = 0

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "interact_range")
	})

	t.Run("zero max steps", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Autopilot.MaxSteps = 0

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "max_steps")
	})

	t.Run("invalid gateway port", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Gateway.Port = 99999

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "port")
	})

	t.Run("gateway port ignored when disabled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Gateway.Enabled = false
		cfg.Gateway.Port = 0

		err := cfg.Validate()
		assert.NoError(t, err)
	})

	t.Run("gateway tick too fast", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Gateway.TickMs = 5

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "tick_ms")
	})

	t.Run("invalid log level", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Logging.Level = "verbose"

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "log level")
	})
}

func TestConfigString(t *testing.T) {
	cfg := DefaultConfig()

	str := cfg.String()
	assert.NotEmpty(t, str)
	assert.Contains(t, str, "autopilot")
	assert.Contains(t, str, "interact_range")
}
