package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/harun/golem/internal/config"
	"github.com/harun/golem/internal/logger"
	"github.com/harun/golem/internal/observability"
	"github.com/harun/golem/internal/tracing"
	"github.com/harun/golem/pkg/agent"
	"github.com/harun/golem/pkg/autopilot"
	"github.com/harun/golem/pkg/command"
	"github.com/harun/golem/pkg/gateway"
	"github.com/harun/golem/pkg/scene"
	"github.com/harun/golem/pkg/spatial"
	"github.com/harun/golem/pkg/verbs"
)

// Daemon hosts the embodied agent runtime: the simulated body, the scene,
// spatial queries, the command dispatcher, the autopilot, and the gateway
// that presents all of it to viewers.
type Daemon struct {
	config *config.Config
	logger *logger.Logger

	// Core modules
	body       *agent.Body
	registry   *scene.Registry
	spatial    *spatial.Service
	dispatcher *command.Dispatcher
	parser     *command.Parser
	pilot      *autopilot.Pilot

	// Services
	gatewayServer *gateway.Server
	sceneWatcher  *scene.Watcher

	// Internal
	frameLoop *FrameLoop
	lifecycle *LifecycleManager

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	startTime time.Time
	running   bool
	mu        sync.RWMutex

	tracingEnabled bool
}

// New creates a new daemon instance
func New(cfg *config.Config, log *logger.Logger) (*Daemon, error) {
	ctx, cancel := context.WithCancel(context.Background())

	observability.EnsureRegistered()
	tracingEnabled := false
	if cfg.Tracing.Enabled {
		if err := tracing.InitOpenTelemetry(cfg.Tracing.ServiceName); err != nil {
			log.Warn().Err(err).Msg("Failed to initialize tracing, continuing without distributed tracing")
		} else {
			log.Info().Msg("Tracing initialized successfully")
			tracingEnabled = true
		}
	}

	d := &Daemon{
		config:         cfg,
		logger:         log,
		ctx:            ctx,
		cancel:         cancel,
		tracingEnabled: tracingEnabled,
	}

	// Initialize core modules in dependency order
	if err := d.initializeCoreModules(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize core modules: %w", err)
	}

	// Initialize services
	if err := d.initializeServices(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Create internal components
	d.frameLoop = NewFrameLoop(d)
	d.lifecycle = NewLifecycleManager(d)

	return d, nil
}

// initializeCoreModules initializes all core modules
func (d *Daemon) initializeCoreModules() error {
	entities, source, err := d.loadScene()
	if err != nil {
		return err
	}
	d.registry = scene.NewRegistry(entities, d.logger.Zerolog())
	d.logger.Info().Str("source", source).Int("entities", len(entities)).Msg("Scene loaded")

	d.body = agent.NewBody(agent.Params{
		LinearSpeed:      d.config.Agent.LinearSpeed,
		AngularSpeed:     d.config.Agent.AngularSpeed,
		ArrivalThreshold: d.config.Agent.ArrivalThreshold,
		SpeechDuration:   time.Duration(d.config.Agent.SpeechSeconds * float64(time.Second)),
	}, d.logger.Zerolog())
	d.logger.Info().Msg("Agent body initialized")

	d.spatial = spatial.NewService(d.body, d.registry, spatial.Params{
		InteractRange: d.config.World.InteractRange,
	}, d.logger.Zerolog())
	d.logger.Info().Msg("Spatial service initialized")

	d.dispatcher = command.NewDispatcher()
	d.parser = command.NewParser(d.dispatcher)
	d.logger.Info().Msg("Command dispatcher initialized")

	return nil
}

// initializeServices initializes outward-facing services and wires the
// command vocabulary and autopilot on top of the core modules.
func (d *Daemon) initializeServices() error {
	if d.config.Logging.Transcript != "" {
		if err := observability.InitTranscript(d.config.Logging.Transcript); err != nil {
			d.logger.Warn().Err(err).Msg("Failed to initialize session transcript")
		} else {
			d.logger.Info().Str("path", d.config.Logging.Transcript).Msg("Session transcript initialized")
		}
	}

	var bridge *gatewayBridge
	if d.config.Gateway.Enabled {
		server, err := gateway.NewServer(gateway.Config{
			Host:         d.config.Gateway.Host,
			Port:         d.config.Gateway.Port,
			Secret:       d.config.Gateway.Secret,
			TickInterval: time.Duration(d.config.Gateway.TickMs) * time.Millisecond,
			Body:         d.body,
			Logger:       d.logger.Zerolog(),
		})
		if err != nil {
			return fmt.Errorf("failed to create gateway server: %w", err)
		}
		d.gatewayServer = server
		bridge = newGatewayBridge(server, d.logger.Zerolog())
		d.spatial.SetPulser(bridge)
		d.logger.Info().Msg("Gateway server initialized")
	}

	deps := verbs.Deps{Body: d.body, Spatial: d.spatial}
	if bridge != nil {
		deps.Notify = bridge
	}
	if err := verbs.Register(d.dispatcher, deps); err != nil {
		return fmt.Errorf("failed to register agent verbs: %w", err)
	}
	d.logger.Info().Int("functions", len(d.dispatcher.Definitions())).Msg("Agent verbs registered")

	decider, err := autopilot.NewDecider(autopilot.BackendConfig{
		Backend: d.config.Autopilot.Backend,
		Model:   d.config.Autopilot.Model,
		APIKey:  d.config.Autopilot.APIKey,
		BaseURL: d.config.Autopilot.BaseURL,
		Timeout: time.Duration(d.config.Autopilot.TimeoutSeconds) * time.Second,
	}, d.dispatcher.Definitions(), d.logger.Zerolog())
	if err != nil {
		return fmt.Errorf("failed to create decision backend: %w", err)
	}

	opts := autopilot.Options{
		Params: autopilot.Params{
			MaxSteps:    d.config.Autopilot.MaxSteps,
			ActionPause: time.Duration(d.config.Autopilot.ActionPauseMs) * time.Millisecond,
			StepPause:   time.Duration(d.config.Autopilot.StepPauseMs) * time.Millisecond,
		},
		Decider:    decider,
		Dispatcher: d.dispatcher,
		Body:       d.body,
		Spatial:    d.spatial,
		Logger:     d.logger.Zerolog(),
	}
	if bridge != nil {
		opts.Events = bridge
	}
	pilot, err := autopilot.New(opts)
	if err != nil {
		return fmt.Errorf("failed to create autopilot: %w", err)
	}
	d.pilot = pilot
	d.logger.Info().Str("backend", decider.Backend()).Msg("Autopilot initialized")

	if d.config.World.Watch && d.config.World.ScenePath != "" {
		watcher, err := scene.NewWatcher(d.config.World.ScenePath, 0, d.handleSceneReload, d.logger.Zerolog())
		if err != nil {
			d.logger.Warn().Err(err).Msg("Failed to start scene watcher, hot reload disabled")
		} else {
			d.sceneWatcher = watcher
			d.logger.Info().Str("path", d.config.World.ScenePath).Msg("Scene watcher started")
		}
	}

	if d.gatewayServer != nil {
		if err := d.registerRPCMethods(); err != nil {
			return fmt.Errorf("failed to register RPC methods: %w", err)
		}
	}

	return nil
}

// loadScene reads the configured scene file, falling back to the built-in
// scene when none is configured.
func (d *Daemon) loadScene() ([]scene.Entity, string, error) {
	if d.config.World.ScenePath == "" {
		return scene.DefaultScene(), "builtin", nil
	}
	entities, err := scene.Load(d.config.World.ScenePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load scene: %w", err)
	}
	return entities, d.config.World.ScenePath, nil
}

// handleSceneReload re-reads the scene file and swaps the registry. A
// broken file keeps the previous scene.
func (d *Daemon) handleSceneReload() {
	entities, err := scene.Load(d.config.World.ScenePath)
	if err != nil {
		d.logger.Warn().Err(err).Msg("Scene reload failed, keeping previous scene")
		return
	}

	d.registry.Replace(entities)
	d.logger.Info().Int("entities", len(entities)).Msg("Scene reloaded")

	if d.gatewayServer != nil {
		d.gatewayServer.Broadcast("scene_reloaded", map[string]any{
			"entities": len(entities),
		})
	}
}

// Start starts the daemon service
func (d *Daemon) Start() error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon is already running")
	}
	d.running = true
	d.startTime = time.Now()
	d.mu.Unlock()

	traceID := tracing.NewTraceID()
	logger := d.logger.Zerolog().With().Str("trace_id", traceID).Logger()
	logger.Info().Msg("Starting golem daemon")

	// Start lifecycle manager
	if err := d.lifecycle.Start(); err != nil {
		return fmt.Errorf("failed to start lifecycle manager: %w", err)
	}

	// Start gateway server
	if d.gatewayServer != nil {
		if err := d.gatewayServer.Start(); err != nil {
			return fmt.Errorf("failed to start gateway server: %w", err)
		}
		logger.Info().
			Str("host", d.config.Gateway.Host).
			Int("port", d.config.Gateway.Port).
			Msg("Gateway server started")
	}

	// Start frame loop
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.frameLoop.Run(d.ctx)
	}()

	logger.Info().Msg("Daemon started successfully - all core modules active")

	return nil
}

// Stop stops the daemon service gracefully
func (d *Daemon) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon is not running")
	}
	d.running = false
	d.mu.Unlock()

	traceID := tracing.NewTraceID()
	logger := d.logger.Zerolog().With().Str("trace_id", traceID).Logger()
	logger.Info().Msg("Stopping golem daemon")

	// Cancel a running autopilot session and wait for its goroutine
	if d.pilot.Stop() {
		waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.pilot.Wait(waitCtx); err != nil {
			logger.Warn().Msg("Timeout waiting for autopilot session to stop")
		}
		cancel()
	}

	// Stop scene watcher
	if d.sceneWatcher != nil {
		if err := d.sceneWatcher.Stop(); err != nil {
			logger.Error().Err(err).Msg("Failed to stop scene watcher")
		}
	}

	// Stop gateway server
	if d.gatewayServer != nil {
		if err := d.gatewayServer.Stop(); err != nil {
			logger.Error().Err(err).Msg("Failed to stop gateway server")
		}
	}

	// Cancel context, stopping the frame loop
	d.cancel()

	// Wait for goroutines to finish (with timeout)
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info().Msg("All goroutines stopped")
	case <-time.After(5 * time.Second):
		logger.Warn().Msg("Timeout waiting for goroutines to stop")
	}

	// Stop lifecycle manager
	if err := d.lifecycle.Stop(); err != nil {
		logger.Error().Err(err).Msg("Failed to stop lifecycle manager")
	}

	// Close session transcript
	if err := observability.GetTranscript().Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close session transcript")
	}

	if d.tracingEnabled {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := tracing.ShutdownOpenTelemetry(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Failed to shutdown tracing")
		}
		cancel()
		d.tracingEnabled = false
	}

	logger.Info().Msg("Daemon stopped successfully")

	return nil
}

// Status holds a point-in-time view of the daemon lifecycle.
type Status struct {
	Running   bool
	Uptime    time.Duration
	StartTime time.Time
}

// Status returns the daemon status
func (d *Daemon) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()

	status := Status{
		Running: d.running,
	}

	if d.running {
		status.Uptime = time.Since(d.startTime)
		status.StartTime = d.startTime
	}

	return status
}

// Wait blocks until a termination signal arrives, then stops the daemon.
func (d *Daemon) Wait() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	d.logger.Info().Str("signal", sig.String()).Msg("Received signal")

	if err := d.Stop(); err != nil {
		d.logger.Error().Err(err).Msg("Failed to stop daemon")
	}
}

// GetConfig returns the daemon configuration
func (d *Daemon) GetConfig() *config.Config {
	return d.config
}

// GetLogger returns the daemon logger
func (d *Daemon) GetLogger() *logger.Logger {
	return d.logger
}

// GetBody returns the agent body
func (d *Daemon) GetBody() *agent.Body {
	return d.body
}

// GetRegistry returns the scene registry
func (d *Daemon) GetRegistry() *scene.Registry {
	return d.registry
}

// GetSpatial returns the spatial query service
func (d *Daemon) GetSpatial() *spatial.Service {
	return d.spatial
}

// GetDispatcher returns the command dispatcher
func (d *Daemon) GetDispatcher() *command.Dispatcher {
	return d.dispatcher
}

// GetParser returns the command text parser
func (d *Daemon) GetParser() *command.Parser {
	return d.parser
}

// GetPilot returns the autopilot
func (d *Daemon) GetPilot() *autopilot.Pilot {
	return d.pilot
}

// GetGatewayServer returns the gateway server, nil when disabled
func (d *Daemon) GetGatewayServer() *gateway.Server {
	return d.gatewayServer
}
