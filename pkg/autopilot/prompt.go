package autopilot

import (
	"strconv"
	"strings"

	"github.com/harun/golem/pkg/command"
)

// systemPrompt frames every session. The state envelope arrives as a user
// message each step, so the model never has to query for it.
const systemPrompt = `You are an AI agent inside a 3D virtual world. You have a physical body and can move, look around, interact with objects, and speak.

Your current state and what you can see will be provided to you. Use the available functions to accomplish the given goal.

Rules:
- You can only interact with objects within 3 units distance. Move closer first if needed.
- The world coordinates range from -24 to 24 on both X and Z axes.
- You start at position (0, 0).
- Call the 'done' function when you have accomplished your goal.
- Be efficient. Don't take unnecessary steps.
- You can call multiple functions in a single turn.`

// doneToolName is the pseudo-function the model calls to end the session.
// It is advertised to the backend but never dispatched.
const doneToolName = "done"

func doneTool() command.Definition {
	return command.Definition{
		Name:        doneToolName,
		Description: "Call this when the goal has been fully accomplished.",
		Parameters: []command.Parameter{
			{Name: "summary", Type: command.KindString, Description: "Summary of what was accomplished"},
		},
	}
}

// envelopeCovered names the verbs whose results already travel in the
// state envelope, so advertising them to the model is pure noise.
var envelopeCovered = map[string]bool{
	"scan":     true,
	"getState": true,
}

// Toolset returns the function definitions a backend should advertise:
// every dispatcher verb not covered by the envelope, plus the done
// pseudo-function.
func Toolset(d *command.Dispatcher) []command.Definition {
	var tools []command.Definition
	for _, def := range d.Definitions() {
		if envelopeCovered[def.Name] {
			continue
		}
		tools = append(tools, def)
	}
	return append(tools, doneTool())
}

// schemaProperties flattens a definition's parameters into JSON Schema
// properties plus the required name list.
func schemaProperties(def command.Definition) (map[string]any, []string) {
	props := make(map[string]any, len(def.Parameters))
	required := make([]string, 0, len(def.Parameters))
	for _, p := range def.Parameters {
		props[p.Name] = map[string]any{
			"type":        string(p.Type),
			"description": p.Description,
		}
		required = append(required, p.Name)
	}
	return props, required
}

// buildContext renders the state envelope as the per-step user message.
func buildContext(req DecisionRequest) string {
	var b strings.Builder

	b.WriteString("Current Step: ")
	b.WriteString(strconv.Itoa(req.Step))
	b.WriteString("\nGoal: ")
	b.WriteString(req.Goal)
	b.WriteString("\n\nAgent State:\n- Position: (")
	b.WriteString(formatNum(req.AgentState.Position.X))
	b.WriteString(", ")
	b.WriteString(formatNum(req.AgentState.Position.Z))
	b.WriteString(")\n- Rotation: ")
	b.WriteString(formatNum(req.AgentState.RotationDeg))
	b.WriteString("°\n- Status: ")
	b.WriteString(string(req.AgentState.State))
	b.WriteString("\n\nWorld Scan (objects visible):\n")

	for _, obj := range req.WorldState.Objects {
		desc := obj.Description
		if desc == "" {
			desc = "N/A"
		}
		b.WriteString("- ")
		b.WriteString(obj.ID)
		b.WriteString(" (")
		b.WriteString(obj.Type)
		b.WriteString("): ")
		b.WriteString(desc)
		b.WriteString(" at (")
		b.WriteString(formatNum(obj.Position.X))
		b.WriteString(", ")
		b.WriteString(formatNum(obj.Position.Z))
		b.WriteString("), distance: ")
		b.WriteString(formatNum(obj.Distance))
		if obj.Interactable {
			b.WriteString(" [interactable]")
		}
		b.WriteString("\n")
	}

	return b.String()
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// toolCall is one function invocation in a backend-neutral form.
type toolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// chatMessage is one turn of conversation in a backend-neutral form.
type chatMessage struct {
	Role      string
	Content   string
	ToolCalls []toolCall
}

// conversation is the per-session chat history. Deciders reset it on step
// zero and append the envelope and the model's reply each round trip. Not
// safe for concurrent use; the pilot keeps one round trip in flight.
type conversation struct {
	messages []chatMessage
}

func (c *conversation) reset() {
	c.messages = nil
}

func (c *conversation) addUser(content string) {
	c.messages = append(c.messages, chatMessage{Role: "user", Content: content})
}

func (c *conversation) addAssistant(content string, calls []toolCall) {
	c.messages = append(c.messages, chatMessage{Role: "assistant", Content: content, ToolCalls: calls})
}

// decisionFrom maps the model's reply to a Decision: a done call ends the
// session and its summary replaces the thought, every other call becomes
// an action in order.
func decisionFrom(content string, calls []toolCall) *Decision {
	dec := &Decision{Thought: content}
	for _, tc := range calls {
		if tc.Name == doneToolName {
			dec.Done = true
			if summary, ok := tc.Arguments["summary"].(string); ok && summary != "" {
				dec.Thought = summary
			} else if dec.Thought == "" {
				dec.Thought = "Goal accomplished"
			}
			continue
		}
		args := tc.Arguments
		if args == nil {
			args = map[string]any{}
		}
		dec.Actions = append(dec.Actions, Action{Function: tc.Name, Args: args})
	}
	return dec
}
