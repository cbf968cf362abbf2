package daemon

import (
	"context"
	"time"

	"github.com/harun/golem/internal/observability"
)

// FrameLoop drives the body's simulation clock.
type FrameLoop struct {
	daemon   *Daemon
	interval time.Duration
}

// NewFrameLoop creates a frame loop at the configured tick interval.
func NewFrameLoop(d *Daemon) *FrameLoop {
	interval := time.Duration(d.config.Agent.FrameMs) * time.Millisecond
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &FrameLoop{
		daemon:   d,
		interval: interval,
	}
}

// Run ticks the body until ctx ends. Each tick advances the simulation by
// the measured wall-clock delta, so a late tick does not slow the agent.
func (f *FrameLoop) Run(ctx context.Context) {
	f.daemon.logger.Info().Dur("interval", f.interval).Msg("Frame loop started")

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			f.daemon.logger.Info().Msg("Frame loop stopping")
			return

		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			f.daemon.body.Tick(dt)
			observability.SetAgentWalking(f.daemon.body.Walking())
		}
	}
}
