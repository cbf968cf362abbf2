package daemon

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/golem/pkg/autopilot"
)

type recordingSink struct {
	events []string
	data   []any
}

func (r *recordingSink) Broadcast(event string, data any) {
	r.events = append(r.events, event)
	r.data = append(r.data, data)
}

func TestGatewayBridgeBroadcast(t *testing.T) {
	sink := &recordingSink{}
	bridge := newGatewayBridge(sink, zerolog.Nop())

	sess := autopilot.Session{ID: "s-1", Phase: autopilot.PhaseRunning}
	bridge.Broadcast("session_started", sess)

	require.Len(t, sink.events, 1)
	assert.Equal(t, "session_started", sink.events[0])
	assert.Equal(t, sess, sink.data[0])
}

func TestGatewayBridgeSaid(t *testing.T) {
	sink := &recordingSink{}
	bridge := newGatewayBridge(sink, zerolog.Nop())

	bridge.Said("hello there")

	require.Len(t, sink.events, 1)
	assert.Equal(t, "agent_said", sink.events[0])
	assert.Equal(t, map[string]any{"text": "hello there"}, sink.data[0])
}

func TestGatewayBridgePulse(t *testing.T) {
	sink := &recordingSink{}
	bridge := newGatewayBridge(sink, zerolog.Nop())

	bridge.Pulse("couch-1")

	require.Len(t, sink.events, 1)
	assert.Equal(t, "object_pulse", sink.events[0])
	assert.Equal(t, map[string]any{"id": "couch-1"}, sink.data[0])
}
