package daemon

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/harun/golem/internal/tracing"
	"github.com/harun/golem/pkg/autopilot"
)

// broadcaster is the slice of the gateway server the bridge needs.
type broadcaster interface {
	Broadcast(event string, data any)
}

// gatewayBridge fans agent-side events out to gateway clients: autopilot
// lifecycle broadcasts, spoken lines, and interaction pulses. It satisfies
// autopilot.Events, verbs.Notifier, and spatial.Pulser.
type gatewayBridge struct {
	sink broadcaster
	log  zerolog.Logger
}

func newGatewayBridge(sink broadcaster, log zerolog.Logger) *gatewayBridge {
	return &gatewayBridge{
		sink: sink,
		log:  log.With().Str("component", "events").Logger(),
	}
}

// Broadcast forwards an autopilot event to every connected client. Session
// records additionally stamp the session ID onto the bridge's log line.
func (b *gatewayBridge) Broadcast(event string, data any) {
	if sess, ok := data.(autopilot.Session); ok {
		ctx := tracing.WithSessionID(context.Background(), sess.ID)
		log := tracing.LoggerFromContext(ctx, b.log)
		log.Debug().
			Str("event", event).
			Str("phase", string(sess.Phase)).
			Msg("Session event relayed")
	}
	b.sink.Broadcast(event, data)
}

// Said relays a spoken line so viewers can draw the speech bubble.
func (b *gatewayBridge) Said(text string) {
	b.sink.Broadcast("agent_said", map[string]any{"text": text})
}

// Pulse relays the visual acknowledgment of a successful interaction.
func (b *gatewayBridge) Pulse(entityID string) {
	b.sink.Broadcast("object_pulse", map[string]any{"id": entityID})
}
