package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/harun/golem/internal/config"
	"github.com/harun/golem/pkg/autopilot"
	"github.com/harun/golem/pkg/scene"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the configuration and backend health",
	Long: `Check that the configuration is valid, the scene file loads, and the
configured decision backend is reachable.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	failed := false
	report := func(name string, err error) {
		if err != nil {
			failed = true
			fmt.Printf("[FAIL] %s: %v\n", name, err)
			return
		}
		fmt.Printf("[ OK ] %s\n", name)
	}

	report("configuration", cfg.Validate())

	if cfg.World.ScenePath == "" {
		fmt.Printf("[ OK ] scene (built-in, %d entities)\n", len(scene.DefaultScene()))
	} else {
		entities, err := scene.Load(cfg.World.ScenePath)
		if err != nil {
			failed = true
			fmt.Printf("[FAIL] scene: %v\n", err)
		} else {
			fmt.Printf("[ OK ] scene (%s, %d entities)\n", cfg.World.ScenePath, len(entities))
		}
	}

	decider, err := autopilot.NewDecider(autopilot.BackendConfig{
		Backend: cfg.Autopilot.Backend,
		Model:   cfg.Autopilot.Model,
		APIKey:  cfg.Autopilot.APIKey,
		BaseURL: cfg.Autopilot.BaseURL,
		Timeout: 10 * time.Second,
	}, nil, zerolog.Nop())
	switch {
	case err != nil:
		failed = true
		fmt.Printf("[FAIL] backend: %v\n", err)
	default:
		if hc, ok := decider.(autopilot.HealthChecker); ok {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			report(fmt.Sprintf("backend (%s)", decider.Backend()), hc.Health(ctx))
			cancel()
		} else {
			// Hosted backends have no cheap probe; key format was already
			// checked by the configuration step.
			fmt.Printf("[SKIP] backend (%s): no health probe\n", decider.Backend())
		}
	}

	if failed {
		return fmt.Errorf("doctor found problems")
	}
	fmt.Println("\nAll checks passed.")
	return nil
}
