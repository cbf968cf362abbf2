package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWizardRun(t *testing.T) {
	t.Run("all defaults", func(t *testing.T) {
		// backend, model, gateway y/n, port, secret, scene, log level
		input := "\n\n\ny\n\n\n\n\n"
		w := NewWizardWithReader(strings.NewReader(input))

		cfg, err := w.Run()
		require.NoError(t, err)

		assert.Equal(t, "ollama", cfg.Autopilot.Backend)
		assert.Empty(t, cfg.Autopilot.APIKey)
		assert.True(t, cfg.Gateway.Enabled)
		assert.Equal(t, 8080, cfg.Gateway.Port)
		assert.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("anthropic backend", func(t *testing.T) {
		input := strings.Join([]string{
			"anthropic",
			"sk-ant-test-key",
			"claude-sonnet-4",
			"n",
			"",
			"debug",
		}, "\n") + "\n"
		w := NewWizardWithReader(strings.NewReader(input))

		cfg, err := w.Run()
		require.NoError(t, err)

		assert.Equal(t, "anthropic", cfg.Autopilot.Backend)
		assert.Equal(t, "sk-ant-test-key", cfg.Autopilot.APIKey)
		assert.Equal(t, "claude-sonnet-4", cfg.Autopilot.Model)
		assert.False(t, cfg.Gateway.Enabled)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("invalid backend retried", func(t *testing.T) {
		input := strings.Join([]string{
			"gemini",
			"ollama",
			"http://localhost:11434",
			"",
			"n",
			"",
			"",
		}, "\n") + "\n"
		w := NewWizardWithReader(strings.NewReader(input))

		cfg, err := w.Run()
		require.NoError(t, err)

		assert.Equal(t, "ollama", cfg.Autopilot.Backend)
	})

	t.Run("custom gateway port and secret", func(t *testing.T) {
		input := strings.Join([]string{
			"ollama",
			"",
			"",
			"y",
			"9090",
			"hush",
			"",
			"",
		}, "\n") + "\n"
		w := NewWizardWithReader(strings.NewReader(input))

		cfg, err := w.Run()
		require.NoError(t, err)

		assert.True(t, cfg.Gateway.Enabled)
		assert.Equal(t, 9090, cfg.Gateway.Port)
		assert.Equal(t, "hush", cfg.Gateway.Secret)
	})

	t.Run("invalid log level falls back", func(t *testing.T) {
		input := strings.Join([]string{
			"ollama",
			"",
			"",
			"n",
			"",
			"verbose",
		}, "\n") + "\n"
		w := NewWizardWithReader(strings.NewReader(input))

		cfg, err := w.Run()
		require.NoError(t, err)

		assert.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("truncated input errors", func(t *testing.T) {
		w := NewWizardWithReader(strings.NewReader("ollama\n"))

		_, err := w.Run()
		assert.Error(t, err)
	})
}
