package autopilot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"

	"github.com/harun/golem/pkg/command"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIConfig configures the OpenAI backend.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// OpenAIDecider runs decisions through the OpenAI chat completions API.
type OpenAIDecider struct {
	client openai.Client
	model  string
	tools  []openai.ChatCompletionToolParam
	conv   conversation
	log    zerolog.Logger
}

// NewOpenAIDecider creates an OpenAI-backed decider.
func NewOpenAIDecider(cfg OpenAIConfig, tools []command.Definition, log zerolog.Logger) *OpenAIDecider {
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	native := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, def := range tools {
		props, required := schemaProperties(def)
		native = append(native, openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters: openai.FunctionParameters(map[string]any{
					"type":       "object",
					"properties": props,
					"required":   required,
				}),
			},
		})
	}

	return &OpenAIDecider{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		tools:  native,
		log:    log.With().Str("component", "autopilot").Str("backend", "openai").Logger(),
	}
}

// Backend returns the backend name.
func (d *OpenAIDecider) Backend() string {
	return "openai"
}

// Decide sends the state envelope to OpenAI and maps the reply to a
// decision.
func (d *OpenAIDecider) Decide(ctx context.Context, req DecisionRequest) (*Decision, error) {
	if req.Step == 0 {
		d.conv.reset()
	}
	d.conv.addUser(buildContext(req))

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
	}

	for _, msg := range d.conv.messages {
		switch msg.Role {
		case "user":
			messages = append(messages, openai.UserMessage(msg.Content))
		case "assistant":
			if len(msg.ToolCalls) == 0 {
				messages = append(messages, openai.AssistantMessage(msg.Content))
				continue
			}

			toolCalls := make([]openai.ChatCompletionMessageToolCall, 0, len(msg.ToolCalls))
			for _, tc := range msg.ToolCalls {
				argsJSON, err := json.Marshal(tc.Arguments)
				if err != nil {
					return nil, fmt.Errorf("failed to marshal tool arguments: %w", err)
				}
				toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCall{
					ID:   tc.ID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunction{
						Name:      tc.Name,
						Arguments: string(argsJSON),
					},
				})
			}
			assistantMsg := openai.ChatCompletionMessage{
				Role:      "assistant",
				Content:   msg.Content,
				ToolCalls: toolCalls,
			}
			messages = append(messages, assistantMsg.ToParam())

			// The API requires a result for every replayed tool call;
			// the real outcome travels in the next state envelope.
			for _, tc := range msg.ToolCalls {
				messages = append(messages, openai.ToolMessage("ok", tc.ID))
			}
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(d.model),
		Messages: messages,
		Tools:    d.tools,
	}

	response, err := d.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai call failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	message := response.Choices[0].Message

	calls := make([]toolCall, 0, len(message.ToolCalls))
	for _, tc := range message.ToolCalls {
		var args map[string]any
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			return nil, fmt.Errorf("failed to parse tool arguments: %w", err)
		}
		calls = append(calls, toolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: args})
	}
	d.conv.addAssistant(message.Content, calls)

	d.log.Debug().
		Int("step", req.Step).
		Int("tool_calls", len(calls)).
		Msg("Decision received")

	return decisionFrom(message.Content, calls), nil
}
