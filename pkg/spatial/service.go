// Package spatial answers distance and visibility questions about the
// scene relative to the agent, and gates interactions on range.
package spatial

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/harun/golem/pkg/agent"
	"github.com/harun/golem/pkg/geo"
	"github.com/harun/golem/pkg/scene"
)

var (
	// ErrNotFound means the object ID is not in the registry.
	ErrNotFound = errors.New("object not found")
	// ErrNotInteractable means the object exists but cannot be interacted with.
	ErrNotInteractable = errors.New("object is not interactable")
	// ErrTooFar means the agent is outside the interact range.
	ErrTooFar = errors.New("object is too far away")
)

// TooFarError reports a failed interaction with the measured distance
// attached. It matches ErrTooFar under errors.Is.
type TooFarError struct {
	ID       string
	Distance float64
	Range    float64
}

func (e *TooFarError) Error() string {
	return fmt.Sprintf("%s is too far away: distance %.2f exceeds interact range %.1f", e.ID, e.Distance, e.Range)
}

func (e *TooFarError) Unwrap() error { return ErrTooFar }

// Params holds the spatial tunables. Zero fields fall back to defaults.
type Params struct {
	// InteractRange is the maximum planar distance for interactions.
	InteractRange float64
}

// DefaultParams returns the standard spatial tunables.
func DefaultParams() Params {
	return Params{InteractRange: 3.0}
}

// Pulser receives the transient visual acknowledgment fired when an
// interaction succeeds. Implementations must not block.
type Pulser interface {
	Pulse(entityID string)
}

// ScanObject is one entity as seen from the agent.
type ScanObject struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Description  string   `json:"description"`
	Position     geo.Vec2 `json:"position"`
	Distance     float64  `json:"distance"`
	Interactable bool     `json:"interactable"`
}

// ScanResult lists everything visible, nearest first.
type ScanResult struct {
	AgentPosition geo.Vec2     `json:"agentPosition"`
	Objects       []ScanObject `json:"objects"`
	Message       string       `json:"message"`
}

// Interaction describes the entity a successful interact touched.
type Interaction struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Service runs spatial queries over the scene registry and the agent body.
// It never mutates entities.
type Service struct {
	body   *agent.Body
	reg    *scene.Registry
	params Params
	pulser Pulser
	log    zerolog.Logger
}

// NewService creates a spatial query service.
func NewService(body *agent.Body, reg *scene.Registry, params Params, log zerolog.Logger) *Service {
	if params.InteractRange <= 0 {
		params.InteractRange = DefaultParams().InteractRange
	}
	return &Service{
		body:   body,
		reg:    reg,
		params: params,
		log:    log.With().Str("component", "spatial").Logger(),
	}
}

// SetPulser wires the interaction acknowledgment sink. May stay unset.
func (s *Service) SetPulser(p Pulser) {
	s.pulser = p
}

// Scan lists all non-structural entities with their planar distance from
// the agent, sorted ascending. Ties keep registry order. The result is
// deterministic for a fixed registry and agent pose.
func (s *Service) Scan() ScanResult {
	pos := s.body.Position()
	entities := s.reg.ListEntities()

	objects := make([]ScanObject, 0, len(entities))
	for _, e := range entities {
		if e.Structural {
			continue
		}
		objects = append(objects, ScanObject{
			ID:           e.ID,
			Type:         e.Type,
			Description:  e.Description,
			Position:     e.Position,
			Distance:     geo.Round(geo.Distance(pos, e.Position), 2),
			Interactable: e.Interactable,
		})
	}

	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].Distance < objects[j].Distance
	})

	return ScanResult{
		AgentPosition: geo.Vec2{X: geo.Round(pos.X, 2), Z: geo.Round(pos.Z, 2)},
		Objects:       objects,
		Message:       fmt.Sprintf("%d objects visible", len(objects)),
	}
}

// Interact checks that the object exists, is interactable, and is within
// range, then fires the visual acknowledgment and reports the entity.
func (s *Service) Interact(objectID string) (Interaction, error) {
	e, ok := s.reg.GetObject(objectID)
	if !ok {
		return Interaction{}, fmt.Errorf("%w: %q", ErrNotFound, objectID)
	}
	if !e.Interactable {
		return Interaction{}, fmt.Errorf("%w: %q", ErrNotInteractable, e.ID)
	}

	dist := geo.Distance(s.body.Position(), e.Position)
	if dist > s.params.InteractRange {
		return Interaction{}, &TooFarError{
			ID:       e.ID,
			Distance: geo.Round(dist, 2),
			Range:    s.params.InteractRange,
		}
	}

	if s.pulser != nil {
		s.pulser.Pulse(e.ID)
	}
	s.log.Debug().Str("object", e.ID).Float64("distance", dist).Msg("Interaction")

	return Interaction{ID: e.ID, Type: e.Type, Description: e.Description}, nil
}

// LookAt turns the agent to face the object with the given ID.
func (s *Service) LookAt(objectID string) (scene.Entity, error) {
	e, ok := s.reg.GetObject(objectID)
	if !ok {
		return scene.Entity{}, fmt.Errorf("%w: %q", ErrNotFound, objectID)
	}
	s.body.LookAtPosition(e.Position.X, e.Position.Z)
	return e, nil
}
