package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopCommand(t *testing.T) {
	t.Run("command exists", func(t *testing.T) {
		cmd := GetRootCmd()
		stopCmd := cmd.Commands()

		found := false
		for _, c := range stopCmd {
			if c.Name() == "stop" {
				found = true
				break
			}
		}
		assert.True(t, found, "stop command should exist")
	})

	t.Run("help text", func(t *testing.T) {
		cmd := GetRootCmd()
		cmd.SetArgs([]string{"stop", "--help"})

		output := &bytes.Buffer{}
		cmd.SetOut(output)

		err := cmd.Execute()
		require.NoError(t, err)

		helpText := output.String()
		assert.Contains(t, helpText, "Stop the Golem daemon")
		assert.Contains(t, helpText, "timeout")
	})
}

func TestReadPID(t *testing.T) {
	t.Run("valid pid file", func(t *testing.T) {
		tmpDir := t.TempDir()
		pidFile := filepath.Join(tmpDir, "test.pid")
		require.NoError(t, os.WriteFile(pidFile, []byte("12345"), 0644))

		pid, err := readPID(pidFile)
		require.NoError(t, err)
		assert.Equal(t, 12345, pid)
	})

	t.Run("missing pid file", func(t *testing.T) {
		tmpDir := t.TempDir()

		_, err := readPID(filepath.Join(tmpDir, "nonexistent.pid"))
		assert.Error(t, err)
	})

	t.Run("invalid pid file", func(t *testing.T) {
		tmpDir := t.TempDir()
		pidFile := filepath.Join(tmpDir, "invalid.pid")
		require.NoError(t, os.WriteFile(pidFile, []byte("not-a-number"), 0644))

		_, err := readPID(pidFile)
		assert.Error(t, err)
	})
}

func TestProcessAlive(t *testing.T) {
	t.Run("own process", func(t *testing.T) {
		assert.True(t, processAlive(os.Getpid()))
	})

	t.Run("unlikely pid", func(t *testing.T) {
		assert.False(t, processAlive(99999999))
	})
}
