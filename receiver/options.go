package receiver

import (
	"log/slog"

	"github.com/logtap/logtap/pkg/dispatch"
)

// Option is a functional option for configuring a receiver.
type Option func(*Receiver)

// WithLogger sets the logger for lifecycle and failure records.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Receiver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDispatcher sets the dispatcher running the asynchronous request
// handlers. The receiver closes it on Close. Mainly useful for tests
// that need to drain in-flight handlers deterministically.
func WithDispatcher(d *dispatch.Dispatcher) Option {
	return func(r *Receiver) {
		if d != nil {
			r.dispatcher = d
		}
	}
}

// WithConfig overrides the default receiver settings.
func WithConfig(cfg Config) Option {
	return func(r *Receiver) {
		if cfg.ProbeTimeout > 0 {
			r.probeTimeout = cfg.ProbeTimeout
		}
	}
}

// WithConsumer sets the initial consumer callback. Equivalent to
// calling SetConsumer after construction.
func WithConsumer(fn Consumer) Option {
	return func(r *Receiver) {
		r.consumer.Replace(fn)
	}
}

// WithObserver sets the initial connection observer. Equivalent to
// calling SetObserver after construction; the same reentrancy caveat
// applies.
func WithObserver(fn Observer) Option {
	return func(r *Receiver) {
		r.setObserver(fn)
	}
}
