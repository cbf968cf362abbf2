// Package agent owns the embodied agent's pose and motion/speech state.
// All mutation goes through Body's synchronous methods; the frame loop
// advances it with Tick and everything else observes via snapshots.
package agent

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/harun/golem/pkg/geo"
)

// State is the single externally reported agent state.
type State string

const (
	StateIdle    State = "idle"
	StateWalking State = "walking"
	StateTalking State = "talking"
)

// walkCycleHz is the stride frequency of the cosmetic walk animation.
const walkCycleHz = 2.0

// Params holds the motion tunables. Zero fields fall back to defaults.
type Params struct {
	// LinearSpeed is the maximum walking speed in units per second.
	LinearSpeed float64
	// AngularSpeed is the maximum turn rate in radians per second.
	AngularSpeed float64
	// ArrivalThreshold is the distance below which a move target counts
	// as reached and the body snaps onto it.
	ArrivalThreshold float64
	// SpeechDuration is how long a said line keeps the body talking,
	// measured in simulated tick time.
	SpeechDuration time.Duration
}

// DefaultParams returns the standard motion tunables.
func DefaultParams() Params {
	return Params{
		LinearSpeed:      3.0,
		AngularSpeed:     5.0,
		ArrivalThreshold: 0.1,
		SpeechDuration:   3 * time.Second,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.LinearSpeed <= 0 {
		p.LinearSpeed = d.LinearSpeed
	}
	if p.AngularSpeed <= 0 {
		p.AngularSpeed = d.AngularSpeed
	}
	if p.ArrivalThreshold <= 0 {
		p.ArrivalThreshold = d.ArrivalThreshold
	}
	if p.SpeechDuration <= 0 {
		p.SpeechDuration = d.SpeechDuration
	}
	return p
}

// Ack is the immediate acknowledgment returned by body commands.
type Ack struct {
	Status string    `json:"status"`
	Target *geo.Vec2 `json:"target,omitempty"`
}

// Snapshot is a presentation-stable view of the body: position rounded to
// two decimals, heading to one.
type Snapshot struct {
	Position    geo.Vec2 `json:"position"`
	RotationDeg float64  `json:"rotationDeg"`
	State       State    `json:"state"`
}

// Body is the agent's motion/speech state machine. Walking and talking are
// independent internal flags; the reported state gives walking priority
// when both are set.
type Body struct {
	mu     sync.Mutex
	params Params
	log    zerolog.Logger

	pos     geo.Vec2
	heading float64 // radians, normalized to (-pi, pi]

	walking bool
	target  geo.Vec2

	talking    bool
	speechLeft float64 // simulated seconds until speech ends

	walkPhase float64

	// settled is closed whenever the body is not walking; a new move
	// replaces it with an open channel.
	settled chan struct{}
}

// NewBody creates a body at the origin facing +Z.
func NewBody(params Params, log zerolog.Logger) *Body {
	settled := make(chan struct{})
	close(settled)
	return &Body{
		params:  params.withDefaults(),
		log:     log.With().Str("component", "body").Logger(),
		settled: settled,
	}
}

// Params returns the tunables the body was built with.
func (b *Body) Params() Params {
	return b.params
}

// MoveTo sets a walk target. The caller is responsible for clamping and
// type checking; the body itself accepts any finite coordinates.
func (b *Body) MoveTo(x, z float64) Ack {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.setTargetLocked(geo.Vec2{X: x, Z: z})
}

// MoveForward sets a walk target the given distance ahead along the
// current heading.
func (b *Body) MoveForward(distance float64) Ack {
	b.mu.Lock()
	defer b.mu.Unlock()
	target := geo.Vec2{
		X: b.pos.X + math.Sin(b.heading)*distance,
		Z: b.pos.Z + math.Cos(b.heading)*distance,
	}
	return b.setTargetLocked(target)
}

func (b *Body) setTargetLocked(target geo.Vec2) Ack {
	b.target = target
	if !b.walking {
		b.walking = true
		b.settled = make(chan struct{})
	}
	b.log.Debug().
		Float64("x", target.X).
		Float64("z", target.Z).
		Msg("Walk target set")
	t := target
	return Ack{Status: "moving", Target: &t}
}

// TurnTo sets the heading instantly. It does not affect walking.
func (b *Body) TurnTo(angleDeg float64) Ack {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.heading = geo.NormalizeAngle(geo.Radians(angleDeg))
	return Ack{Status: "done"}
}

// LookAtPosition turns the body instantly to face a point.
func (b *Body) LookAtPosition(x, z float64) Ack {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.heading = geo.Bearing(b.pos, geo.Vec2{X: x, Z: z})
	return Ack{Status: "done"}
}

// Say puts the body in the talking state and (re)starts the speech timer.
// Talking does not interrupt walking and vice versa.
func (b *Body) Say(text string) Ack {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.talking = true
	b.speechLeft = b.params.SpeechDuration.Seconds()
	b.log.Debug().Str("text", text).Msg("Agent speaking")
	return Ack{Status: "speaking"}
}

// Tick advances the machine by dt seconds of simulated time: walks toward
// the target (turning at most AngularSpeed*dt, advancing at most
// LinearSpeed*dt without overshooting), expires speech, and drives the
// cosmetic walk cycle.
func (b *Body) Tick(dt float64) {
	if dt <= 0 || math.IsNaN(dt) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.walking {
		to := b.target.Sub(b.pos)
		dist := to.Len()
		if dist < b.params.ArrivalThreshold {
			b.pos = b.target
			b.walking = false
			b.walkPhase = 0
			close(b.settled)
			b.log.Debug().
				Float64("x", b.pos.X).
				Float64("z", b.pos.Z).
				Msg("Arrived at target")
		} else {
			bearing := geo.Bearing(b.pos, b.target)
			diff := geo.NormalizeAngle(bearing - b.heading)
			maxTurn := b.params.AngularSpeed * dt
			if math.Abs(diff) <= maxTurn {
				b.heading = bearing
			} else {
				b.heading = geo.NormalizeAngle(b.heading + math.Copysign(maxTurn, diff))
			}
			step := b.params.LinearSpeed * dt
			if step > dist {
				step = dist
			}
			b.pos.X += to.X / dist * step
			b.pos.Z += to.Z / dist * step
			b.walkPhase += 2 * math.Pi * walkCycleHz * dt
		}
	}

	if b.talking {
		b.speechLeft -= dt
		if b.speechLeft <= 0 {
			b.talking = false
			b.speechLeft = 0
		}
	}
}

// Snapshot returns the rounded presentation view of the body.
func (b *Body) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		Position: geo.Vec2{
			X: geo.Round(b.pos.X, 2),
			Z: geo.Round(b.pos.Z, 2),
		},
		RotationDeg: geo.Round(geo.Degrees(b.heading), 1),
		State:       b.stateLocked(),
	}
}

// State reports the single surfaced state. Walking wins over talking when
// both flags are set.
func (b *Body) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

func (b *Body) stateLocked() State {
	switch {
	case b.walking:
		return StateWalking
	case b.talking:
		return StateTalking
	default:
		return StateIdle
	}
}

// Position returns the unrounded current position.
func (b *Body) Position() geo.Vec2 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pos
}

// Walking reports whether a move is in flight.
func (b *Body) Walking() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.walking
}

// WalkPhase returns the cosmetic walk-cycle phase in radians. It is zero
// whenever the body is not walking.
func (b *Body) WalkPhase() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.walkPhase
}

// WaitSettled blocks until the body is not walking, or until ctx is done.
// It returns immediately when no move is in flight.
func (b *Body) WaitSettled(ctx context.Context) error {
	b.mu.Lock()
	ch := b.settled
	b.mu.Unlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
