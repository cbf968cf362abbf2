package autopilot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/golem/pkg/agent"
	"github.com/harun/golem/pkg/command"
	"github.com/harun/golem/pkg/geo"
	"github.com/harun/golem/pkg/spatial"
)

func TestBuildContext(t *testing.T) {
	t.Run("should render the full envelope", func(t *testing.T) {
		req := DecisionRequest{
			Goal: "find the fountain",
			Step: 2,
			AgentState: agent.Snapshot{
				Position:    geo.Vec2{X: 1.5, Z: -3},
				RotationDeg: 90,
				State:       agent.StateIdle,
			},
			WorldState: spatial.ScanResult{
				Objects: []spatial.ScanObject{
					{ID: "crate", Type: "crate", Description: "A wooden crate", Position: geo.Vec2{X: 4, Z: 3}, Distance: 6.5, Interactable: true},
					{ID: "boulder", Type: "rock", Position: geo.Vec2{X: -12, Z: -6}, Distance: 13.81},
				},
			},
		}

		want := `Current Step: 2
Goal: find the fountain

Agent State:
- Position: (1.5, -3)
- Rotation: 90°
- Status: idle

World Scan (objects visible):
- crate (crate): A wooden crate at (4, 3), distance: 6.5 [interactable]
- boulder (rock): N/A at (-12, -6), distance: 13.81
`
		assert.Equal(t, want, buildContext(req))
	})

	t.Run("should render an empty scan", func(t *testing.T) {
		req := DecisionRequest{Goal: "wait", Step: 0}

		got := buildContext(req)
		assert.Contains(t, got, "Current Step: 0")
		assert.Contains(t, got, "World Scan (objects visible):\n")
	})
}

func TestDecisionFrom(t *testing.T) {
	t.Run("should map tool calls to actions in order", func(t *testing.T) {
		dec := decisionFrom("thinking", []toolCall{
			{Name: "turnTo", Arguments: map[string]any{"angleDeg": 90.0}},
			{Name: "moveForward", Arguments: map[string]any{"distance": 3.0}},
		})

		assert.Equal(t, "thinking", dec.Thought)
		assert.False(t, dec.Done)
		require.Len(t, dec.Actions, 2)
		assert.Equal(t, "turnTo", dec.Actions[0].Function)
		assert.Equal(t, "moveForward", dec.Actions[1].Function)
	})

	t.Run("should end the session on done and use its summary", func(t *testing.T) {
		dec := decisionFrom("", []toolCall{
			{Name: "say", Arguments: map[string]any{"text": "bye"}},
			{Name: "done", Arguments: map[string]any{"summary": "Waved goodbye"}},
		})

		assert.True(t, dec.Done)
		assert.Equal(t, "Waved goodbye", dec.Thought)
		require.Len(t, dec.Actions, 1)
		assert.Equal(t, "say", dec.Actions[0].Function)
	})

	t.Run("should fall back to a stock summary", func(t *testing.T) {
		dec := decisionFrom("", []toolCall{{Name: "done", Arguments: map[string]any{}}})

		assert.True(t, dec.Done)
		assert.Equal(t, "Goal accomplished", dec.Thought)
	})

	t.Run("should give actions an empty args map when none came", func(t *testing.T) {
		dec := decisionFrom("", []toolCall{{Name: "scan"}})

		require.Len(t, dec.Actions, 1)
		assert.NotNil(t, dec.Actions[0].Args)
	})
}

func TestToolset(t *testing.T) {
	t.Run("should advertise the verbs plus done but not the queries", func(t *testing.T) {
		d := command.NewDispatcher()
		for _, name := range []string{"moveTo", "say", "scan", "getState"} {
			require.NoError(t, d.Register(command.Definition{
				Name:        name,
				Description: "test verb",
				Handler:     func(map[string]any) command.Result { return command.Result{} },
			}))
		}

		tools := Toolset(d)

		var names []string
		for _, def := range tools {
			names = append(names, def.Name)
		}
		assert.Equal(t, []string{"moveTo", "say", "done"}, names)
	})

	t.Run("should declare a required summary on done", func(t *testing.T) {
		def := doneTool()

		props, required := schemaProperties(def)
		assert.Contains(t, props, "summary")
		assert.Equal(t, []string{"summary"}, required)
	})
}
