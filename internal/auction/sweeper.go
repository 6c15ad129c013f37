package auction

import (
	"context"
	"time"
)

// Sweeper runs the engine's status sweep on a fixed interval so
// transitions are not bounded only by list-read frequency.  It uses the
// same transition predicates as the lazy sweep and therefore cannot
// regress a status.
type Sweeper struct {
	engine   *Engine
	interval time.Duration
}

// NewSweeper builds a Sweeper; intervals below one second are clamped.
func NewSweeper(engine *Engine, interval time.Duration) *Sweeper {
	if interval < time.Second {
		interval = time.Second
	}
	return &Sweeper{engine: engine, interval: interval}
}

// Run blocks, sweeping every interval until ctx is cancelled.  Sweep
// failures are logged by the engine's store layer callers; the loop
// keeps going since the next tick retries from scratch.
func (s *Sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.engine.Sweep(ctx); err != nil {
				s.engine.log.WithError(err).Warn("background status sweep failed")
			}
		}
	}
}
