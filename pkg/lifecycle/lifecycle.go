// Package lifecycle runs named startup and shutdown hooks for the service.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Hook is a startup or shutdown step. Startup hooks receive a context that
// is cancelled when any sibling fails; shutdown hooks receive one bounded by
// the shutdown timeout.
type Hook func(ctx context.Context) error

type namedHook struct {
	name string
	fn   Hook
}

// Coordinator tracks readiness and owns the service context.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc

	startup    *errgroup.Group
	startupCtx context.Context

	mu       sync.Mutex
	shutdown []namedHook
	ready    atomic.Bool
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	return &Coordinator{
		ctx:        ctx,
		cancel:     cancel,
		startup:    g,
		startupCtx: gctx,
	}
}

// Context returns the service context, cancelled when Shutdown begins.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup starts fn immediately; WaitForStartup reports its result.
func (c *Coordinator) OnStartup(name string, fn Hook) {
	c.startup.Go(func() error {
		if err := fn(c.startupCtx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	})
}

// OnShutdown registers fn to run during Shutdown. Hooks run one at a time
// in reverse registration order.
func (c *Coordinator) OnShutdown(name string, fn Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdown = append(c.shutdown, namedHook{name: name, fn: fn})
}

// Ready reports whether startup succeeded and shutdown has not begun.
func (c *Coordinator) Ready() bool {
	return c.ready.Load()
}

// WaitForStartup blocks until every startup hook returns. The coordinator
// becomes ready only if all of them succeeded.
func (c *Coordinator) WaitForStartup() error {
	if err := c.startup.Wait(); err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	c.ready.Store(true)
	return nil
}

// Shutdown cancels the service context and runs the shutdown hooks within
// timeout. Every hook runs even when an earlier one fails.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.ready.Store(false)
	c.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	c.mu.Lock()
	hooks := c.shutdown
	c.shutdown = nil
	c.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i].fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", hooks[i].name, err))
		}
	}
	if ctx.Err() != nil {
		errs = append(errs, fmt.Errorf("shutdown timeout after %v", timeout))
	}
	return errors.Join(errs...)
}
