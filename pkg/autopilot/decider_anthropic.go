package autopilot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/harun/golem/pkg/command"
)

const (
	defaultAnthropicModel = "claude-sonnet-4-0"

	// maxDecisionTokens bounds one decision; a thought plus a handful of
	// tool calls fits comfortably.
	maxDecisionTokens = 1024
)

// AnthropicConfig configures the Anthropic backend.
type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// AnthropicDecider runs decisions through the Anthropic messages API.
type AnthropicDecider struct {
	client anthropic.Client
	model  string
	tools  []anthropic.ToolUnionParam
	conv   conversation
	log    zerolog.Logger
}

// NewAnthropicDecider creates an Anthropic-backed decider.
func NewAnthropicDecider(cfg AnthropicConfig, tools []command.Definition, log zerolog.Logger) *AnthropicDecider {
	if cfg.Model == "" {
		cfg.Model = defaultAnthropicModel
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	native := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, def := range tools {
		props, required := schemaProperties(def)
		native = append(native, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        def.Name,
				Description: anthropic.String(def.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: props,
					Required:   required,
				},
			},
		})
	}

	return &AnthropicDecider{
		client: anthropic.NewClient(opts...),
		model:  cfg.Model,
		tools:  native,
		log:    log.With().Str("component", "autopilot").Str("backend", "anthropic").Logger(),
	}
}

// Backend returns the backend name.
func (d *AnthropicDecider) Backend() string {
	return "anthropic"
}

// Decide sends the state envelope to Anthropic and maps the reply to a
// decision.
func (d *AnthropicDecider) Decide(ctx context.Context, req DecisionRequest) (*Decision, error) {
	if req.Step == 0 {
		d.conv.reset()
	}
	d.conv.addUser(buildContext(req))

	messages := make([]anthropic.MessageParam, 0, len(d.conv.messages))
	for _, msg := range d.conv.messages {
		switch msg.Role {
		case "user":
			messages = append(messages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		case "assistant":
			blocks := []anthropic.ContentBlockParamUnion{}
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, tc.Arguments, tc.Name))
			}
			messages = append(messages, anthropic.MessageParam{
				Role:    anthropic.MessageParamRoleAssistant,
				Content: blocks,
			})

			// The API requires a result for every replayed tool use;
			// the real outcome travels in the next state envelope.
			if len(msg.ToolCalls) > 0 {
				results := make([]anthropic.ContentBlockParamUnion, 0, len(msg.ToolCalls))
				for _, tc := range msg.ToolCalls {
					results = append(results, anthropic.NewToolResultBlock(tc.ID, "ok", false))
				}
				messages = append(messages, anthropic.NewUserMessage(results...))
			}
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(d.model),
		Messages:  messages,
		MaxTokens: maxDecisionTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Tools: d.tools,
	}

	response, err := d.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic call failed: %w", err)
	}

	content := ""
	calls := []toolCall{}
	for _, block := range response.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			content += b.Text
		case anthropic.ToolUseBlock:
			var args map[string]any
			if err := json.Unmarshal([]byte(b.JSON.Input.Raw()), &args); err != nil {
				return nil, fmt.Errorf("failed to parse tool input: %w", err)
			}
			calls = append(calls, toolCall{ID: b.ID, Name: b.Name, Arguments: args})
		}
	}
	d.conv.addAssistant(content, calls)

	d.log.Debug().
		Int("step", req.Step).
		Int("tool_calls", len(calls)).
		Msg("Decision received")

	return decisionFrom(content, calls), nil
}
