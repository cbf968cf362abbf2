// Package verbs registers the agent's command vocabulary against the
// dispatcher: movement, turning, looking, interaction, speech, and the
// two queries. This is the only place that binds function names to the
// body and the spatial service.
package verbs

import (
	"errors"
	"fmt"

	"github.com/harun/golem/pkg/agent"
	"github.com/harun/golem/pkg/command"
	"github.com/harun/golem/pkg/geo"
	"github.com/harun/golem/pkg/spatial"
)

// WorldBound is the half-extent of the walkable world; moveTo coordinates
// are clamped to [-WorldBound, WorldBound].
const WorldBound = 24.0

// Notifier receives the spoken lines so a presentation can render speech
// bubbles. Implementations must not block.
type Notifier interface {
	Said(text string)
}

// Deps are the collaborators the verbs route into.
type Deps struct {
	Body    *agent.Body
	Spatial *spatial.Service
	// Notify may stay nil when no presentation cares about speech.
	Notify Notifier
}

// Register adds all eight agent verbs to the dispatcher.
func Register(d *command.Dispatcher, deps Deps) error {
	if deps.Body == nil {
		return errors.New("body is required")
	}
	if deps.Spatial == nil {
		return errors.New("spatial service is required")
	}

	defs := []command.Definition{
		moveToVerb(deps),
		moveForwardVerb(deps),
		turnToVerb(deps),
		lookAtVerb(deps),
		interactVerb(deps),
		sayVerb(deps),
		scanVerb(deps),
		getStateVerb(deps),
	}

	for _, def := range defs {
		if err := d.Register(def); err != nil {
			return fmt.Errorf("failed to register verb %s: %w", def.Name, err)
		}
	}
	return nil
}

func moveToVerb(deps Deps) command.Definition {
	return command.Definition{
		Name:        "moveTo",
		Description: "Move the agent to specific world coordinates (x, z). The world ranges from roughly -24 to 24.",
		Parameters: []command.Parameter{
			{Name: "x", Type: command.KindNumber, Description: "X coordinate"},
			{Name: "z", Type: command.KindNumber, Description: "Z coordinate"},
		},
		Handler: func(args map[string]any) command.Result {
			x := geo.Clamp(num(args, "x"), -WorldBound, WorldBound)
			z := geo.Clamp(num(args, "z"), -WorldBound, WorldBound)
			ack := deps.Body.MoveTo(x, z)
			return command.OK(
				fmt.Sprintf("Moving to (%.2f, %.2f)", x, z),
				ackData(ack),
			)
		},
	}
}

func moveForwardVerb(deps Deps) command.Definition {
	return command.Definition{
		Name:        "moveForward",
		Description: "Move the agent forward by a given distance in the direction it's currently facing.",
		Parameters: []command.Parameter{
			{Name: "distance", Type: command.KindNumber, Description: "Distance to move forward"},
		},
		Handler: func(args map[string]any) command.Result {
			distance := num(args, "distance")
			ack := deps.Body.MoveForward(distance)
			return command.OK(
				fmt.Sprintf("Moving forward %.2f units to (%.2f, %.2f)", distance, ack.Target.X, ack.Target.Z),
				ackData(ack),
			)
		},
	}
}

func turnToVerb(deps Deps) command.Definition {
	return command.Definition{
		Name:        "turnTo",
		Description: "Rotate the agent to face a specific angle in degrees (0=north, 90=east, 180=south, 270=west).",
		Parameters: []command.Parameter{
			{Name: "angleDeg", Type: command.KindNumber, Description: "Angle in degrees"},
		},
		Handler: func(args map[string]any) command.Result {
			angle := num(args, "angleDeg")
			ack := deps.Body.TurnTo(angle)
			return command.OK(
				fmt.Sprintf("Turned to face %.1f degrees", angle),
				ackData(ack),
			)
		},
	}
}

func lookAtVerb(deps Deps) command.Definition {
	return command.Definition{
		Name:        "lookAt",
		Description: "Turn the agent to face a specific object by its ID.",
		Parameters: []command.Parameter{
			{Name: "objectId", Type: command.KindString, Description: "The object ID to look at"},
		},
		Handler: func(args map[string]any) command.Result {
			e, err := deps.Spatial.LookAt(str(args, "objectId"))
			if err != nil {
				return command.Fail(err)
			}
			return command.OK(
				fmt.Sprintf("Looking at %s", e.ID),
				map[string]any{"status": "done"},
			)
		},
	}
}

func interactVerb(deps Deps) command.Definition {
	return command.Definition{
		Name:        "interact",
		Description: "Interact with a nearby object by its ID. Must be within 3 units distance.",
		Parameters: []command.Parameter{
			{Name: "objectId", Type: command.KindString, Description: "The object ID to interact with"},
		},
		Handler: func(args map[string]any) command.Result {
			got, err := deps.Spatial.Interact(str(args, "objectId"))
			if err != nil {
				return command.Fail(err)
			}
			return command.OK(
				fmt.Sprintf("Interacted with %s (%s): %s", got.ID, got.Type, got.Description),
				map[string]any{
					"id":          got.ID,
					"type":        got.Type,
					"description": got.Description,
				},
			)
		},
	}
}

func sayVerb(deps Deps) command.Definition {
	return command.Definition{
		Name:        "say",
		Description: "Make the agent say something. A speech bubble will appear above the agent.",
		Parameters: []command.Parameter{
			{Name: "text", Type: command.KindString, Description: "The text to say"},
		},
		Handler: func(args map[string]any) command.Result {
			text := str(args, "text")
			ack := deps.Body.Say(text)
			if deps.Notify != nil {
				deps.Notify.Said(text)
			}
			return command.OK(
				fmt.Sprintf("Agent says: %s", text),
				ackData(ack),
			)
		},
	}
}

func scanVerb(deps Deps) command.Definition {
	return command.Definition{
		Name:        "scan",
		Description: "Scan the surroundings and list all visible objects with their distances.",
		Handler: func(args map[string]any) command.Result {
			result := deps.Spatial.Scan()
			return command.OK(result.Message, map[string]any{
				"agentPosition": result.AgentPosition,
				"objects":       result.Objects,
			})
		},
	}
}

func getStateVerb(deps Deps) command.Definition {
	return command.Definition{
		Name:        "getState",
		Description: "Report the agent's current position, heading, and state.",
		Handler: func(args map[string]any) command.Result {
			snap := deps.Body.Snapshot()
			return command.OK(
				fmt.Sprintf("At (%.2f, %.2f) facing %.1f degrees, %s",
					snap.Position.X, snap.Position.Z, snap.RotationDeg, snap.State),
				map[string]any{
					"position":    snap.Position,
					"rotationDeg": snap.RotationDeg,
					"state":       snap.State,
				},
			)
		},
	}
}

func ackData(ack agent.Ack) map[string]any {
	data := map[string]any{"status": ack.Status}
	if ack.Target != nil {
		data["target"] = *ack.Target
	}
	return data
}

// num reads a validated number argument. Validation has already rejected
// non-numeric values; Go callers may still hand in ints.
func num(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func str(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}
