package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harun/golem/internal/config"
	"github.com/harun/golem/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestDaemon creates a daemon for testing with the gateway disabled
// so tests never bind a port.
func createTestDaemon(t *testing.T) (*Daemon, *logger.Logger) {
	tmpDir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.DataDir = tmpDir
	cfg.Gateway.Enabled = false

	logCfg := logger.Config{
		Level:   "info",
		Console: false,
	}
	log, err := logger.New(logCfg)
	require.NoError(t, err)

	daemon, err := New(cfg, log)
	require.NoError(t, err)

	return daemon, log
}

func TestNew(t *testing.T) {
	daemon, log := createTestDaemon(t)
	defer log.Close()

	assert.NotNil(t, daemon)
	assert.NotNil(t, daemon.body)
	assert.NotNil(t, daemon.registry)
	assert.NotNil(t, daemon.spatial)
	assert.NotNil(t, daemon.dispatcher)
	assert.NotNil(t, daemon.parser)
	assert.NotNil(t, daemon.pilot)
	assert.NotNil(t, daemon.frameLoop)
	assert.NotNil(t, daemon.lifecycle)

	// Gateway disabled means no server and no bridge wiring
	assert.Nil(t, daemon.gatewayServer)

	// The full command vocabulary is registered
	assert.Len(t, daemon.dispatcher.Definitions(), 8)
}

func TestNewLoadsBuiltinScene(t *testing.T) {
	daemon, log := createTestDaemon(t)
	defer log.Close()

	// No scene path configured falls back to the built-in scene
	assert.Greater(t, daemon.registry.Len(), 0)
}

func TestDaemonStartStop(t *testing.T) {
	daemon, log := createTestDaemon(t)
	defer log.Close()

	// Start daemon
	err := daemon.Start()
	require.NoError(t, err)

	// Check status
	status := daemon.Status()
	assert.True(t, status.Running)

	// Double start is rejected
	err = daemon.Start()
	assert.Error(t, err)

	// Wait a bit
	time.Sleep(100 * time.Millisecond)

	// Stop daemon
	err = daemon.Stop()
	require.NoError(t, err)

	// Check status
	status = daemon.Status()
	assert.False(t, status.Running)
}

func TestDaemonStatus(t *testing.T) {
	daemon, log := createTestDaemon(t)
	defer log.Close()

	// Status before start
	status := daemon.Status()
	assert.False(t, status.Running)
	assert.Equal(t, time.Duration(0), status.Uptime)

	// Start daemon
	err := daemon.Start()
	require.NoError(t, err)
	defer daemon.Stop()

	// Status after start
	time.Sleep(100 * time.Millisecond)
	status = daemon.Status()
	assert.True(t, status.Running)
	assert.Greater(t, status.Uptime, time.Duration(0))
}

func TestDaemonSceneReload(t *testing.T) {
	tmpDir := t.TempDir()
	scenePath := filepath.Join(tmpDir, "scene.json")
	writeScene := func(body string) {
		require.NoError(t, os.WriteFile(scenePath, []byte(body), 0644))
	}
	writeScene(`{"entities": [
		{"id": "lamp-1", "type": "lamp", "description": "A floor lamp", "interactable": true, "position": {"x": 1, "z": 2}}
	]}`)

	cfg := config.DefaultConfig()
	cfg.DataDir = tmpDir
	cfg.Gateway.Enabled = false
	cfg.World.ScenePath = scenePath

	log, err := logger.New(logger.Config{Level: "info"})
	require.NoError(t, err)
	defer log.Close()

	daemon, err := New(cfg, log)
	require.NoError(t, err)
	require.Equal(t, 1, daemon.registry.Len())

	// A rewritten file swaps the registry contents
	writeScene(`{"entities": [
		{"id": "lamp-1", "type": "lamp", "description": "A floor lamp", "interactable": true, "position": {"x": 1, "z": 2}},
		{"id": "door-1", "type": "door", "description": "A wooden door", "interactable": true, "position": {"x": 3, "z": 4}}
	]}`)
	daemon.handleSceneReload()
	assert.Equal(t, 2, daemon.registry.Len())

	// A broken file keeps the previous scene
	writeScene(`{"entities": [`)
	daemon.handleSceneReload()
	assert.Equal(t, 2, daemon.registry.Len())
}

func TestDaemonGetters(t *testing.T) {
	daemon, log := createTestDaemon(t)
	defer log.Close()

	assert.NotNil(t, daemon.GetConfig())
	assert.NotNil(t, daemon.GetLogger())
	assert.NotNil(t, daemon.GetBody())
	assert.NotNil(t, daemon.GetRegistry())
	assert.NotNil(t, daemon.GetSpatial())
	assert.NotNil(t, daemon.GetDispatcher())
	assert.NotNil(t, daemon.GetParser())
	assert.NotNil(t, daemon.GetPilot())
	assert.Nil(t, daemon.GetGatewayServer())
}
