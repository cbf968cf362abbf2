// Package autopilot runs goal-driven control sessions: it feeds the world
// and agent state to an LLM backend each step, executes the actions the
// model picks, and paces the loop so motion settles between decisions.
package autopilot

import (
	"context"
	"errors"
	"time"

	"github.com/harun/golem/pkg/agent"
	"github.com/harun/golem/pkg/spatial"
)

// Phase is the lifecycle state of an autopilot session.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhaseCompleted Phase = "completed"
	PhaseCancelled Phase = "cancelled"
	PhaseFailed    Phase = "failed"
)

var (
	// ErrEmptyGoal is returned when Start is given a blank goal.
	ErrEmptyGoal = errors.New("goal is empty")
	// ErrAlreadyRunning is returned when Start is called while a session
	// is still in flight.
	ErrAlreadyRunning = errors.New("a session is already running")
)

// Session is the record of one autopilot run.
type Session struct {
	ID              string    `json:"id"`
	Goal            string    `json:"goal"`
	Step            int       `json:"step"`
	Phase           Phase     `json:"phase"`
	StartedAt       time.Time `json:"startedAt"`
	EndedAt         time.Time `json:"endedAt,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	BudgetExhausted bool      `json:"budgetExhausted,omitempty"`
}

// DecisionRequest is the envelope handed to the backend each step.
type DecisionRequest struct {
	Goal       string             `json:"goal"`
	WorldState spatial.ScanResult `json:"world_state"`
	AgentState agent.Snapshot     `json:"agent_state"`
	Step       int                `json:"step"`
}

// Action is one function call the backend asked for.
type Action struct {
	Function string         `json:"function"`
	Args     map[string]any `json:"args"`
}

// Decision is the backend's answer for one step.
type Decision struct {
	Thought string   `json:"thought,omitempty"`
	Actions []Action `json:"actions,omitempty"`
	Done    bool     `json:"done"`
}

// Decider turns a state envelope into the next decision. Implementations
// keep per-session conversation history and reset it when Step is zero.
type Decider interface {
	Decide(ctx context.Context, req DecisionRequest) (*Decision, error)

	// Backend returns the backend name for logs and metrics.
	Backend() string
}

// HealthChecker is implemented by deciders that can probe their backend
// without starting a session.
type HealthChecker interface {
	Health(ctx context.Context) error
}
