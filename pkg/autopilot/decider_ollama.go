package autopilot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/harun/golem/pkg/command"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "qwen3:8b"
	defaultOllamaTimeout = 120 * time.Second
)

// OllamaConfig configures the Ollama backend.
type OllamaConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OllamaDecider talks to a local Ollama server over its native chat API.
type OllamaDecider struct {
	cfg    OllamaConfig
	client *http.Client
	tools  []ollamaTool
	conv   conversation
	log    zerolog.Logger
}

// Ollama native /api/chat shapes. Arguments arrive as a JSON object, not
// an encoded string.
type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Tools    []ollamaTool    `json:"tools,omitempty"`
	Stream   bool            `json:"stream"`
}

type ollamaMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	ToolCalls []ollamaToolCall `json:"tool_calls,omitempty"`
}

type ollamaTool struct {
	Type     string         `json:"type"`
	Function ollamaFunction `json:"function"`
}

type ollamaFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type ollamaToolCall struct {
	Function ollamaFunctionCall `json:"function"`
}

type ollamaFunctionCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewOllamaDecider creates an Ollama-backed decider. Zero config fields
// fall back to a local server running qwen3:8b.
func NewOllamaDecider(cfg OllamaConfig, tools []command.Definition, log zerolog.Logger) *OllamaDecider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOllamaBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultOllamaModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultOllamaTimeout
	}

	native := make([]ollamaTool, 0, len(tools))
	for _, def := range tools {
		props, required := schemaProperties(def)
		native = append(native, ollamaTool{
			Type: "function",
			Function: ollamaFunction{
				Name:        def.Name,
				Description: def.Description,
				Parameters: map[string]any{
					"type":       "object",
					"properties": props,
					"required":   required,
				},
			},
		})
	}

	return &OllamaDecider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		tools:  native,
		log:    log.With().Str("component", "autopilot").Str("backend", "ollama").Logger(),
	}
}

// Backend returns the backend name.
func (d *OllamaDecider) Backend() string {
	return "ollama"
}

// Decide sends the state envelope to Ollama and maps the reply to a
// decision.
func (d *OllamaDecider) Decide(ctx context.Context, req DecisionRequest) (*Decision, error) {
	if req.Step == 0 {
		d.conv.reset()
	}
	d.conv.addUser(buildContext(req))

	messages := make([]ollamaMessage, 0, len(d.conv.messages)+1)
	messages = append(messages, ollamaMessage{Role: "system", Content: systemPrompt})
	for _, msg := range d.conv.messages {
		om := ollamaMessage{Role: msg.Role, Content: msg.Content}
		for _, tc := range msg.ToolCalls {
			om.ToolCalls = append(om.ToolCalls, ollamaToolCall{
				Function: ollamaFunctionCall{Name: tc.Name, Arguments: tc.Arguments},
			})
		}
		messages = append(messages, om)
	}

	chatReq := ollamaChatRequest{
		Model:    d.cfg.Model,
		Messages: messages,
		Tools:    d.tools,
		Stream:   false,
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, detail)
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode ollama response: %w", err)
	}

	calls := make([]toolCall, 0, len(chatResp.Message.ToolCalls))
	for _, tc := range chatResp.Message.ToolCalls {
		calls = append(calls, toolCall{Name: tc.Function.Name, Arguments: tc.Function.Arguments})
	}
	d.conv.addAssistant(chatResp.Message.Content, calls)

	d.log.Debug().
		Int("step", req.Step).
		Int("tool_calls", len(calls)).
		Msg("Decision received")

	return decisionFrom(chatResp.Message.Content, calls), nil
}

// Health verifies the server is reachable and the configured model is
// installed.
func (d *OllamaDecider) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, d.cfg.BaseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("cannot connect to ollama at %s (is 'ollama serve' running?): %w", d.cfg.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("failed to decode tags response: %w", err)
	}

	for _, m := range tags.Models {
		if m.Name == d.cfg.Model {
			return nil
		}
	}
	return fmt.Errorf("model %q not installed (run: ollama pull %s)", d.cfg.Model, d.cfg.Model)
}
