package health

import (
	"context"
	"sync/atomic"
)

// Gate is a readiness flag flipped once a startup step completes,
// typically when the route table has been warmed.
type Gate struct {
	open atomic.Bool
}

// Open marks the gate ready.
func (g *Gate) Open() { g.open.Store(true) }

// Close marks the gate not ready, e.g. while draining.
func (g *Gate) Close() { g.open.Store(false) }

// Ready reports the current state.
func (g *Gate) Ready() bool { return g.open.Load() }

// Check returns a CheckFunc failing with ErrNotReady while the gate is closed.
func (g *Gate) Check() CheckFunc {
	return func(context.Context) error {
		if !g.open.Load() {
			return ErrNotReady
		}
		return nil
	}
}
