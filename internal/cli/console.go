package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harun/golem/internal/config"
	"github.com/harun/golem/internal/logger"
	"github.com/harun/golem/pkg/agent"
	"github.com/harun/golem/pkg/autopilot"
	"github.com/harun/golem/pkg/command"
	"github.com/harun/golem/pkg/scene"
	"github.com/harun/golem/pkg/spatial"
	"github.com/harun/golem/pkg/verbs"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive agent console",
	Long: `Start an interactive console with an in-process agent.
Type commands like agent.scan() or agent.moveTo(3, 2) directly. Use
"auto <goal>" to hand control to the autopilot and "auto stop" to take it
back. The console runs its own world; it does not attach to a daemon.`,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

// consoleSession is the in-process agent stack behind the REPL.
type consoleSession struct {
	body       *agent.Body
	dispatcher *command.Dispatcher
	parser     *command.Parser
	pilot      *autopilot.Pilot
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Keep log output out of the prompt unless asked for
	level := "error"
	if cmd.Flags().Changed("log-level") {
		level = logLevel
	}

	sess, cleanup, err := newConsoleSession(cfg, level)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Println("Golem console. Type \"help\" for commands, \"quit\" to leave.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		sess.eval(line)
	}
	return scanner.Err()
}

func newConsoleSession(cfg *config.Config, logLevel string) (*consoleSession, func(), error) {
	log, err := logger.New(logger.Config{Level: logLevel, Console: true, Pretty: true})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zl := log.Zerolog()

	entities := scene.DefaultScene()
	if cfg.World.ScenePath != "" {
		entities, err = scene.Load(cfg.World.ScenePath)
		if err != nil {
			log.Close()
			return nil, nil, err
		}
	}
	registry := scene.NewRegistry(entities, zl)

	body := agent.NewBody(agent.Params{
		LinearSpeed:      cfg.Agent.LinearSpeed,
		AngularSpeed:     cfg.Agent.AngularSpeed,
		ArrivalThreshold: cfg.Agent.ArrivalThreshold,
		SpeechDuration:   time.Duration(cfg.Agent.SpeechSeconds * float64(time.Second)),
	}, zl)
	spatialSvc := spatial.NewService(body, registry, spatial.Params{
		InteractRange: cfg.World.InteractRange,
	}, zl)

	dispatcher := command.NewDispatcher()
	parser := command.NewParser(dispatcher)
	if err := verbs.Register(dispatcher, verbs.Deps{Body: body, Spatial: spatialSvc}); err != nil {
		log.Close()
		return nil, nil, fmt.Errorf("failed to register agent verbs: %w", err)
	}

	decider, err := autopilot.NewDecider(autopilot.BackendConfig{
		Backend: cfg.Autopilot.Backend,
		Model:   cfg.Autopilot.Model,
		APIKey:  cfg.Autopilot.APIKey,
		BaseURL: cfg.Autopilot.BaseURL,
		Timeout: time.Duration(cfg.Autopilot.TimeoutSeconds) * time.Second,
	}, dispatcher.Definitions(), zl)
	if err != nil {
		log.Close()
		return nil, nil, fmt.Errorf("failed to create decision backend: %w", err)
	}

	pilot, err := autopilot.New(autopilot.Options{
		Params: autopilot.Params{
			MaxSteps:    cfg.Autopilot.MaxSteps,
			ActionPause: time.Duration(cfg.Autopilot.ActionPauseMs) * time.Millisecond,
			StepPause:   time.Duration(cfg.Autopilot.StepPauseMs) * time.Millisecond,
		},
		Decider:    decider,
		Dispatcher: dispatcher,
		Body:       body,
		Spatial:    spatialSvc,
		Events:     consoleEvents{},
		Logger:     zl,
	})
	if err != nil {
		log.Close()
		return nil, nil, fmt.Errorf("failed to create autopilot: %w", err)
	}

	// Frame ticker keeps the body moving while the REPL blocks on stdin
	interval := time.Duration(cfg.Agent.FrameMs) * time.Millisecond
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		last := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				body.Tick(now.Sub(last).Seconds())
				last = now
			}
		}
	}()

	cleanup := func() {
		if pilot.Stop() {
			waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
			pilot.Wait(waitCtx)
			waitCancel()
		}
		cancel()
		log.Close()
	}

	return &consoleSession{
		body:       body,
		dispatcher: dispatcher,
		parser:     parser,
		pilot:      pilot,
	}, cleanup, nil
}

func (s *consoleSession) eval(line string) {
	switch {
	case line == "help":
		fmt.Println("Commands:")
		for _, def := range s.dispatcher.Definitions() {
			fmt.Printf("  agent.%s - %s\n", def.Name, def.Description)
		}
		fmt.Println("  auto <goal> - start the autopilot")
		fmt.Println("  auto status - show the autopilot session")
		fmt.Println("  auto stop - stop the autopilot")
		fmt.Println("  quit - leave the console")

	case line == "auto stop":
		if s.pilot.Stop() {
			fmt.Println("Autopilot stopping.")
		} else {
			fmt.Println("Autopilot is not running.")
		}

	case line == "auto status":
		if sess, ok := s.pilot.Session(); ok {
			fmt.Printf("Session %s: %s (goal: %s, step %d)\n", sess.ID, sess.Phase, sess.Goal, sess.Step)
		} else {
			fmt.Println("Autopilot is idle.")
		}

	case strings.HasPrefix(line, "auto "):
		goal := strings.TrimSpace(strings.TrimPrefix(line, "auto "))
		sess, err := s.pilot.Start(goal)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("Autopilot session %s started.\n", sess.ID)

	default:
		req, err := s.parser.Parse(line)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		res := s.dispatcher.Execute(req.Function, req.Args)
		if res.Error != "" {
			fmt.Printf("Error: %s\n", res.Error)
			return
		}
		fmt.Println(res.Message)
	}
}

// consoleEvents prints autopilot progress between prompts.
type consoleEvents struct{}

func (consoleEvents) Broadcast(event string, data any) {
	switch event {
	case "agent_thought":
		if m, ok := data.(map[string]any); ok {
			fmt.Printf("\n[think] %v\n> ", m["thought"])
		}
	case "agent_action":
		if m, ok := data.(map[string]any); ok {
			fmt.Printf("\n[%v] %v\n> ", m["status"], m["message"])
		}
	case "session_ended":
		if sess, ok := data.(autopilot.Session); ok {
			fmt.Printf("\nAutopilot %s: %s\n> ", sess.Phase, sess.Summary)
		}
	}
}
