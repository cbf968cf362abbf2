package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harun/golem/internal/config"
	"github.com/harun/golem/internal/daemon"
	"github.com/harun/golem/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Golem daemon",
	Long: `Run the Golem daemon in the foreground.
The daemon simulates the agent body, accepts commands over JSON-RPC, and
streams the world to connected viewers until interrupted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// --log-level beats the configured level when given explicitly
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Check if daemon is already running
	pidFile := getPIDFilePath()
	if isRunning(pidFile) {
		return fmt.Errorf("daemon is already running (PID file: %s)", pidFile)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		Console:    true,
		Pretty:     true,
		Redaction:  cfg.Logging.Redaction,
		MaxSizeMB:  cfg.Logging.MaxSize,
		MaxAgeDays: cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Close()

	d, err := daemon.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	if err := d.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	if cfg.Gateway.Enabled {
		fmt.Printf("Gateway listening on %s:%d\n", cfg.Gateway.Host, cfg.Gateway.Port)
	}
	fmt.Println("Golem daemon running. Press Ctrl+C to stop.")

	// Block until SIGINT or SIGTERM, then shut down
	d.Wait()

	return nil
}

// getPIDFilePath resolves the PID file from the configured data directory,
// falling back to the default location.
func getPIDFilePath() string {
	if cfg, err := config.Load(cfgFile); err == nil && cfg.DataDir != "" {
		return filepath.Join(cfg.DataDir, "golem.pid")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/golem.pid"
	}
	return filepath.Join(home, ".golem", "golem.pid")
}

func isRunning(pidFile string) bool {
	if _, err := os.Stat(pidFile); os.IsNotExist(err) {
		return false
	}

	// Read PID and check if process exists
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return false
	}

	var pid int
	_, err = fmt.Sscanf(string(data), "%d", &pid)
	if err != nil {
		return false
	}

	return processAlive(pid)
}
