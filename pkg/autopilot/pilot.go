package autopilot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/harun/golem/internal/observability"
	"github.com/harun/golem/internal/tracing"
	"github.com/harun/golem/pkg/agent"
	"github.com/harun/golem/pkg/command"
	"github.com/harun/golem/pkg/spatial"
)

// Params holds the loop tunables. Zero fields fall back to defaults.
type Params struct {
	// MaxSteps caps the number of decision round trips per session.
	MaxSteps int
	// ActionPause is the real-time pause after each executed action.
	ActionPause time.Duration
	// StepPause is the real-time pause between decision steps.
	StepPause time.Duration
}

// DefaultParams returns the standard loop tunables.
func DefaultParams() Params {
	return Params{
		MaxSteps:    20,
		ActionPause: 800 * time.Millisecond,
		StepPause:   500 * time.Millisecond,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.MaxSteps <= 0 {
		p.MaxSteps = d.MaxSteps
	}
	if p.ActionPause <= 0 {
		p.ActionPause = d.ActionPause
	}
	if p.StepPause <= 0 {
		p.StepPause = d.StepPause
	}
	return p
}

// Events receives session lifecycle broadcasts. The gateway's event
// broadcaster satisfies it.
type Events interface {
	Broadcast(event string, data any)
}

type nopEvents struct{}

func (nopEvents) Broadcast(string, any) {}

// Options wires a pilot's collaborators.
type Options struct {
	Params     Params
	Decider    Decider
	Dispatcher *command.Dispatcher
	Body       *agent.Body
	Spatial    *spatial.Service
	// Events may stay nil when nothing listens.
	Events Events
	Logger zerolog.Logger
}

// Pilot owns the autonomous control loop. One session runs at a time; a
// finished session stays readable until the next one starts.
type Pilot struct {
	params     Params
	decider    Decider
	dispatcher *command.Dispatcher
	body       *agent.Body
	spatial    *spatial.Service
	events     Events
	log        zerolog.Logger

	mu     sync.Mutex
	sess   *Session
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a pilot.
func New(opts Options) (*Pilot, error) {
	if opts.Decider == nil {
		return nil, fmt.Errorf("decider is required")
	}
	if opts.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if opts.Body == nil {
		return nil, fmt.Errorf("body is required")
	}
	if opts.Spatial == nil {
		return nil, fmt.Errorf("spatial service is required")
	}
	if opts.Events == nil {
		opts.Events = nopEvents{}
	}

	observability.EnsureRegistered()

	return &Pilot{
		params:     opts.Params.withDefaults(),
		decider:    opts.Decider,
		dispatcher: opts.Dispatcher,
		body:       opts.Body,
		spatial:    opts.Spatial,
		events:     opts.Events,
		log:        opts.Logger.With().Str("component", "autopilot").Logger(),
	}, nil
}

// Start launches a session for the goal. It returns immediately with the
// session record; the loop runs on its own goroutine.
func (p *Pilot) Start(goal string) (Session, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return Session{}, ErrEmptyGoal
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sess != nil && p.sess.Phase == PhaseRunning {
		return Session{}, ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := &Session{
		ID:        uuid.New().String(),
		Goal:      goal,
		Phase:     PhaseRunning,
		StartedAt: time.Now(),
	}
	done := make(chan struct{})
	p.sess, p.cancel, p.done = sess, cancel, done

	p.log.Info().
		Str("session", sess.ID).
		Str("goal", goal).
		Str("backend", p.decider.Backend()).
		Msg("Session started")
	p.events.Broadcast("session_started", *sess)

	go p.run(ctx, sess, done)

	return *sess, nil
}

// Stop cancels the running session. It reports whether anything was
// running.
func (p *Pilot) Stop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sess == nil || p.sess.Phase != PhaseRunning || p.cancel == nil {
		return false
	}
	p.cancel()
	return true
}

// Session returns a copy of the most recent session.
func (p *Pilot) Session() (Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sess == nil {
		return Session{}, false
	}
	return *p.sess, true
}

// Wait blocks until the current session's goroutine exits or ctx ends.
func (p *Pilot) Wait(ctx context.Context) error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pilot) run(ctx context.Context, sess *Session, done chan struct{}) {
	defer close(done)

	ctx, span := tracing.StartSpan(ctx, "autopilot", "session",
		attribute.String("session.id", sess.ID),
		attribute.String("session.goal", sess.Goal),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Str("session", sess.ID).Msg("Session panicked")
			p.finish(ctx, sess, PhaseFailed, fmt.Sprintf("internal error: %v", r))
		}
	}()

	for step := 0; step < p.params.MaxSteps; step++ {
		p.setStep(sess, step)

		// Let motion from the previous step settle before scanning.
		if err := p.body.WaitSettled(ctx); err != nil {
			p.finish(ctx, sess, PhaseCancelled, "Session cancelled")
			return
		}

		req := DecisionRequest{
			Goal:       sess.Goal,
			WorldState: p.spatial.Scan(),
			AgentState: p.body.Snapshot(),
			Step:       step,
		}

		started := time.Now()
		dec, err := p.decider.Decide(ctx, req)
		observability.RecordDecision(p.decider.Backend(), time.Since(started), err == nil)
		if err != nil {
			if ctx.Err() != nil {
				p.finish(ctx, sess, PhaseCancelled, "Session cancelled")
				return
			}
			p.log.Error().Err(err).Str("session", sess.ID).Int("step", step).Msg("Decision failed")
			p.finish(ctx, sess, PhaseFailed, fmt.Sprintf("decision failed: %v", err))
			return
		}

		if dec.Thought != "" {
			p.log.Info().Str("session", sess.ID).Int("step", step).Str("thought", dec.Thought).Msg("Agent thought")
			p.events.Broadcast("agent_thought", map[string]any{
				"session": sess.ID,
				"step":    step,
				"thought": dec.Thought,
			})
			observability.RecordTranscript(ctx, observability.TranscriptEvent{
				Kind:    "thought",
				Session: sess.ID,
				Step:    step,
				Message: dec.Thought,
			})
		}

		for _, action := range dec.Actions {
			if ctx.Err() != nil {
				p.finish(ctx, sess, PhaseCancelled, "Session cancelled")
				return
			}

			res := p.dispatcher.Execute(action.Function, action.Args)
			status, msg := "ok", res.Message
			if res.Failed() {
				status, msg = "error", res.Error
			}

			p.log.Info().
				Str("session", sess.ID).
				Int("step", step).
				Str("function", action.Function).
				Str("status", status).
				Str("result", msg).
				Msg("Action executed")
			p.events.Broadcast("agent_action", map[string]any{
				"session":  sess.ID,
				"step":     step,
				"function": action.Function,
				"args":     action.Args,
				"status":   status,
				"message":  msg,
			})
			observability.RecordTranscript(ctx, observability.TranscriptEvent{
				Kind:     "action",
				Session:  sess.ID,
				Step:     step,
				Function: action.Function,
				Message:  msg,
				Status:   status,
				Metadata: action.Args,
			})

			if !sleepCtx(ctx, p.params.ActionPause) {
				p.finish(ctx, sess, PhaseCancelled, "Session cancelled")
				return
			}
			if err := p.body.WaitSettled(ctx); err != nil {
				p.finish(ctx, sess, PhaseCancelled, "Session cancelled")
				return
			}
		}

		if dec.Done {
			p.finish(ctx, sess, PhaseCompleted, dec.Thought)
			return
		}

		if !sleepCtx(ctx, p.params.StepPause) {
			p.finish(ctx, sess, PhaseCancelled, "Session cancelled")
			return
		}
	}

	p.mu.Lock()
	sess.BudgetExhausted = true
	p.mu.Unlock()
	p.finish(ctx, sess, PhaseCompleted, "Step budget exhausted")
}

func (p *Pilot) setStep(sess *Session, step int) {
	p.mu.Lock()
	sess.Step = step
	p.mu.Unlock()
}

func (p *Pilot) finish(ctx context.Context, sess *Session, phase Phase, summary string) {
	p.mu.Lock()
	sess.Phase = phase
	sess.Summary = summary
	sess.EndedAt = time.Now()
	snap := *sess
	p.mu.Unlock()

	p.log.Info().
		Str("session", snap.ID).
		Str("phase", string(phase)).
		Int("step", snap.Step).
		Str("summary", summary).
		Msg("Session ended")
	observability.RecordSessionEnd(string(phase), snap.Step+1)
	observability.RecordTranscript(ctx, observability.TranscriptEvent{
		Kind:    "phase",
		Session: snap.ID,
		Step:    snap.Step,
		Message: summary,
		Status:  string(phase),
	})
	p.events.Broadcast("session_ended", snap)
}

// sleepCtx pauses for d and reports false when ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
