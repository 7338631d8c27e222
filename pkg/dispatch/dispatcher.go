package dispatch

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Dispatcher runs named handlers asynchronously with error capture.
// All methods are safe for concurrent use.
type Dispatcher struct {
	logger *slog.Logger
	wg     sync.WaitGroup
	mu     sync.Mutex // serializes Go against Close's closed+WaitGroup check
	closed atomic.Bool
}

// Option is a functional option for configuring a dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for handler failure records.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New creates a dispatcher. Without options it logs through slog.Default.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Go runs fn on its own goroutine. A returned error or a panic is
// logged with the handler name and swallowed; nothing is ever
// propagated to the caller. Submissions after Close are dropped with a
// debug log entry.
func (d *Dispatcher) Go(name string, fn func() error) {
	d.mu.Lock()
	if d.closed.Load() {
		d.mu.Unlock()
		d.logger.Debug("dispatcher closed, dropping handler", slog.String("handler", name))
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()

		if err := d.invoke(name, fn); err != nil {
			d.logger.Error("handler failed",
				slog.String("handler", name),
				slog.String("error", err.Error()))
		}
	}()
}

// invoke executes fn, converting a panic into an error.
func (d *Dispatcher) invoke(name string, fn func() error) (retErr error) {
	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("panic in handler %s: %v", name, r)
		}
	}()
	return fn()
}

// Wait blocks until every handler submitted so far has finished. It
// does not prevent new submissions; use Close for terminal shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close stops accepting new handlers and waits for in-flight ones to
// finish. Safe to call multiple times.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed.Store(true)
	d.mu.Unlock()

	d.wg.Wait()
}
