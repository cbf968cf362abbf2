package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Wizard provides an interactive configuration wizard
type Wizard struct {
	reader *bufio.Reader
}

// NewWizard creates a new configuration wizard
func NewWizard() *Wizard {
	return &Wizard{
		reader: bufio.NewReader(os.Stdin),
	}
}

// NewWizardWithReader creates a wizard reading answers from r
func NewWizardWithReader(r io.Reader) *Wizard {
	return &Wizard{
		reader: bufio.NewReader(r),
	}
}

// Run runs the interactive configuration wizard
func (w *Wizard) Run() (*Config, error) {
	fmt.Println("=== Golem Configuration Wizard ===")
	fmt.Println()

	cfg := DefaultConfig()
	validator := NewValidator()

	// Decision backend
	fmt.Println("Autopilot backend options:")
	fmt.Println("  ollama    - Local Ollama server (default)")
	fmt.Println("  openai    - OpenAI hosted API")
	fmt.Println("  anthropic - Anthropic hosted API")
	for {
		fmt.Print("Backend [ollama]: ")
		backend, err := w.readLine()
		if err != nil {
			return nil, err
		}

		if backend == "" {
			backend = "ollama"
		}

		if err := validator.ValidateBackend(backend); err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}

		cfg.Autopilot.Backend = backend
		break
	}

	// API key only matters for hosted backends
	if cfg.Autopilot.Backend == "openai" || cfg.Autopilot.Backend == "anthropic" {
		for {
			fmt.Printf("%s API Key: ", cfg.Autopilot.Backend)
			key, err := w.readLine()
			if err != nil {
				return nil, err
			}

			if err := validator.ValidateAPIKey(key, cfg.Autopilot.Backend); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}

			cfg.Autopilot.APIKey = key
			break
		}
	} else {
		fmt.Print("Ollama base URL (press Enter for http://localhost:11434): ")
		baseURL, err := w.readLine()
		if err != nil {
			return nil, err
		}
		if baseURL != "" {
			cfg.Autopilot.BaseURL = baseURL
		}
	}

	// Model
	fmt.Println()
	fmt.Print("Model name (press Enter for backend default): ")
	model, err := w.readLine()
	if err != nil {
		return nil, err
	}

	if model != "" {
		cfg.Autopilot.Model = model
	}

	fmt.Println()

	// Gateway
	fmt.Println("Gateway (WebSocket viewer server):")
	fmt.Print("Enable gateway? (y/n) [y]: ")
	enable, err := w.readLine()
	if err != nil {
		return nil, err
	}

	if enable == "" || strings.ToLower(enable) == "y" {
		cfg.Gateway.Enabled = true

		for {
			fmt.Printf("Gateway port [%d]: ", cfg.Gateway.Port)
			portStr, err := w.readLine()
			if err != nil {
				return nil, err
			}

			if portStr == "" {
				break
			}

			port, err := strconv.Atoi(portStr)
			if err != nil {
				fmt.Println("Error: port must be a number")
				continue
			}
			if err := validator.ValidatePort(port); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}

			cfg.Gateway.Port = port
			break
		}

		fmt.Print("Gateway shared secret (press Enter for open viewer mode): ")
		secret, err := w.readLine()
		if err != nil {
			return nil, err
		}
		cfg.Gateway.Secret = secret
	} else {
		cfg.Gateway.Enabled = false
	}

	fmt.Println()

	// Scene
	fmt.Println("World:")
	fmt.Print("Scene file path (press Enter for the built-in scene): ")
	scenePath, err := w.readLine()
	if err != nil {
		return nil, err
	}

	if scenePath != "" {
		cfg.World.ScenePath = scenePath
	}

	fmt.Println()

	// Log Level
	fmt.Println("Logging:")
	fmt.Print("Log level (debug/info/warn/error) [info]: ")
	level, err := w.readLine()
	if err != nil {
		return nil, err
	}

	if level != "" {
		if err := validator.ValidateLogLevel(level); err != nil {
			fmt.Printf("Warning: %v, using default (info)\n", err)
		} else {
			cfg.Logging.Level = level
		}
	}

	fmt.Println()
	fmt.Println("Configuration complete!")

	return cfg, nil
}

func (w *Wizard) readLine() (string, error) {
	line, err := w.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
