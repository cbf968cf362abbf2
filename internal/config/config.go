package config

import (
	"encoding/json"
	"fmt"
)

// Config represents the main golem configuration
type Config struct {
	// Agent motion tunables
	Agent AgentConfig `json:"agent" mapstructure:"agent"`

	// World and scene
	World WorldConfig `json:"world" mapstructure:"world"`

	// Autopilot decision backend
	Autopilot AutopilotConfig `json:"autopilot" mapstructure:"autopilot"`

	// Gateway server
	Gateway GatewayConfig `json:"gateway" mapstructure:"gateway"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Tracing
	Tracing TracingConfig `json:"tracing" mapstructure:"tracing"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// AgentConfig holds the body motion tunables
type AgentConfig struct {
	LinearSpeed      float64 `json:"linear_speed" mapstructure:"linear_speed"`           // units per second
	AngularSpeed     float64 `json:"angular_speed" mapstructure:"angular_speed"`         // radians per second
	ArrivalThreshold float64 `json:"arrival_threshold" mapstructure:"arrival_threshold"` // snap distance
	SpeechSeconds    float64 `json:"speech_seconds" mapstructure:"speech_seconds"`       // talking indicator duration
	FrameMs          int     `json:"frame_ms" mapstructure:"frame_ms"`                   // simulation tick interval
}

// WorldConfig holds scene configuration
type WorldConfig struct {
	// ScenePath points at a scene JSON file. Empty loads the built-in
	// default scene.
	ScenePath     string  `json:"scene_path" mapstructure:"scene_path"`
	Watch         bool    `json:"watch" mapstructure:"watch"` // hot-reload the scene file on change
	InteractRange float64 `json:"interact_range" mapstructure:"interact_range"`
}

// AutopilotConfig holds decision backend configuration
type AutopilotConfig struct {
	Backend        string `json:"backend" mapstructure:"backend"` // ollama, openai, anthropic
	Model          string `json:"model" mapstructure:"model"`
	BaseURL        string `json:"base_url" mapstructure:"base_url"`
	APIKey         string `json:"api_key" mapstructure:"api_key"`
	MaxSteps       int    `json:"max_steps" mapstructure:"max_steps"`
	ActionPauseMs  int    `json:"action_pause_ms" mapstructure:"action_pause_ms"`
	StepPauseMs    int    `json:"step_pause_ms" mapstructure:"step_pause_ms"`
	TimeoutSeconds int    `json:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// GatewayConfig holds gateway server configuration
type GatewayConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Host    string `json:"host" mapstructure:"host"`
	Port    int    `json:"port" mapstructure:"port"`
	Secret  string `json:"secret" mapstructure:"secret"`
	TickMs  int    `json:"tick_ms" mapstructure:"tick_ms"` // snapshot stream interval
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `json:"level" mapstructure:"level"`
	File       string `json:"file" mapstructure:"file"`
	MaxSize    int    `json:"max_size" mapstructure:"max_size"` // MB
	MaxAge     int    `json:"max_age" mapstructure:"max_age"`   // days
	Compress   bool   `json:"compress" mapstructure:"compress"`
	Redaction  bool   `json:"redaction" mapstructure:"redaction"`
	Transcript string `json:"transcript" mapstructure:"transcript"` // session transcript JSONL path
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled     bool   `json:"enabled" mapstructure:"enabled"`
	ServiceName string `json:"service_name" mapstructure:"service_name"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			LinearSpeed:      3.0,
			AngularSpeed:     5.0,
			ArrivalThreshold: 0.1,
			SpeechSeconds:    3.0,
			FrameMs:          50,
		},
		World: WorldConfig{
			ScenePath:     "",
			Watch:         false,
			InteractRange: 3.0,
		},
		Autopilot: AutopilotConfig{
			Backend:        "ollama",
			Model:          "",
			BaseURL:        "",
			APIKey:         "",
			MaxSteps:       20,
			ActionPauseMs:  800,
			StepPauseMs:    500,
			TimeoutSeconds: 120,
		},
		Gateway: GatewayConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8080,
			Secret:  "",
			TickMs:  100,
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSize:   100,
			MaxAge:    7,
			Compress:  true,
			Redaction: true,
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "golem",
		},
		DataDir: "",
	}
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	v := NewValidator()

	if c.Agent.LinearSpeed <= 0 {
		return fmt.Errorf("agent.linear_speed must be positive, got %v", c.Agent.LinearSpeed)
	}
	if c.Agent.AngularSpeed <= 0 {
		return fmt.Errorf("agent.angular_speed must be positive, got %v", c.Agent.AngularSpeed)
	}
	if c.Agent.ArrivalThreshold <= 0 {
		return fmt.Errorf("agent.arrival_threshold must be positive, got %v", c.Agent.ArrivalThreshold)
	}
	if c.Agent.SpeechSeconds < 0 {
		return fmt.Errorf("agent.speech_seconds must not be negative, got %v", c.Agent.SpeechSeconds)
	}
	if c.Agent.FrameMs < 1 {
		return fmt.Errorf("agent.frame_ms must be at least 1, got %d", c.Agent.FrameMs)
	}

	if c.World.InteractRange <= 0 {
		return fmt.Errorf("world.interact_range must be positive, got %v", c.World.InteractRange)
	}

	if err := v.ValidateBackend(c.Autopilot.Backend); err != nil {
		return err
	}
	if c.Autopilot.APIKey != "" {
		if err := v.ValidateAPIKey(c.Autopilot.APIKey, c.Autopilot.Backend); err != nil {
			return err
		}
	}
	if c.Autopilot.MaxSteps < 1 {
		return fmt.Errorf("autopilot.max_steps must be at least 1, got %d", c.Autopilot.MaxSteps)
	}
	if c.Autopilot.ActionPauseMs < 0 || c.Autopilot.StepPauseMs < 0 {
		return fmt.Errorf("autopilot pauses must not be negative")
	}
	if c.Autopilot.TimeoutSeconds < 1 {
		return fmt.Errorf("autopilot.timeout_seconds must be at least 1, got %d", c.Autopilot.TimeoutSeconds)
	}

	if c.Gateway.Enabled {
		if err := v.ValidatePort(c.Gateway.Port); err != nil {
			return err
		}
		if c.Gateway.TickMs < 10 {
			return fmt.Errorf("gateway.tick_ms must be at least 10, got %d", c.Gateway.TickMs)
		}
	}

	if err := v.ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}

	return nil
}
