package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctorCommand(t *testing.T) {
	t.Run("command exists", func(t *testing.T) {
		cmd := GetRootCmd()
		doctorCmd := cmd.Commands()

		found := false
		for _, c := range doctorCmd {
			if c.Name() == "doctor" {
				found = true
				break
			}
		}
		assert.True(t, found, "doctor command should exist")
	})

	t.Run("help text", func(t *testing.T) {
		cmd := GetRootCmd()
		cmd.SetArgs([]string{"doctor", "--help"})

		output := &bytes.Buffer{}
		cmd.SetOut(output)

		err := cmd.Execute()
		require.NoError(t, err)

		helpText := output.String()
		assert.Contains(t, helpText, "backend")
		assert.Contains(t, helpText, "scene")
	})
}
