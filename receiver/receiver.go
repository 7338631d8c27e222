package receiver

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/logtap/logtap/pkg/delivery"
	"github.com/logtap/logtap/pkg/dispatch"
	"github.com/logtap/logtap/transport"
)

// Consumer receives produced log lines, one invocation per line, never
// concurrently.
type Consumer func(Line)

// Observer is invoked after every successful connect or disconnect
// with the affected session id and the number of currently connected
// sessions.
type Observer func(sessionID string, connected int)

// Receiver is the public-facing log aggregation service. It owns the
// session registry, the transport handle, and the delivery gate, and
// dispatches every inbound request on an independent asynchronous
// execution path so no caller thread blocks.
//
// A Receiver is constructed once and torn down with Close; it is not
// reusable afterward.
type Receiver struct {
	handle       transport.Handle
	dispatcher   *dispatch.Dispatcher
	logger       *slog.Logger
	probeTimeout time.Duration

	// mu serializes each handler's read-modify-write over the registry
	// and the readersEnabled flag. Handlers for different owners still
	// contend here; the critical sections are short and never block on
	// I/O beyond the transport teardown call.
	mu       sync.Mutex
	sessions *Registry

	readersEnabled atomic.Bool
	closed         atomic.Bool

	consumer *delivery.Serializer[Line]
	observer atomic.Pointer[Observer]
}

// New creates a receiver over the given transport handle. Panics when
// handle is nil: a receiver without a transport cannot serve anything,
// so misconfiguration fails fast at startup.
func New(handle transport.Handle, opts ...Option) *Receiver {
	if handle == nil {
		panic("receiver: transport handle is required")
	}
	r := newReceiver(opts...)
	r.handle = handle
	return r
}

// NewTCP creates a receiver backed by a TCP line-stream transport,
// wired to the receiver's delivery sink.
func NewTCP(cfg transport.Config, opts ...Option) *Receiver {
	r := newReceiver(opts...)
	r.handle = transport.NewTCPHandle(r.Deliver,
		transport.WithTCPConfig(cfg),
		transport.WithTCPLogger(r.logger))
	return r
}

// NewWS creates a receiver backed by a WebSocket transport, wired to
// the receiver's delivery sink.
func NewWS(cfg transport.Config, opts ...Option) *Receiver {
	r := newReceiver(opts...)
	r.handle = transport.NewWSHandle(r.Deliver,
		transport.WithWSConfig(cfg),
		transport.WithWSLogger(r.logger))
	return r
}

func newReceiver(opts ...Option) *Receiver {
	r := &Receiver{
		logger:       slog.Default(),
		probeTimeout: DefaultConfig().ProbeTimeout,
		sessions:     NewRegistry(),
		consumer:     delivery.New[Line](nil),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.dispatcher == nil {
		r.dispatcher = dispatch.New(dispatch.WithLogger(r.logger))
	}
	return r
}

// AcceptSenders begins listening for producer connections. Idempotent:
// a running handle is left untouched. Returns ErrClosed after Close.
func (r *Receiver) AcceptSenders() error {
	if r.closed.Load() {
		return ErrClosed
	}
	if r.handle.Running() {
		return nil
	}
	if err := r.handle.Start(); err != nil {
		// A concurrent AcceptSenders may have won the start; the
		// listener is up either way, which is all the caller asked for.
		if errors.Is(err, transport.ErrAlreadyRunning) {
			return nil
		}
		return fmt.Errorf("start transport: %w", err)
	}
	r.logger.Info("accepting senders", slog.Int("port", r.handle.CurrentPort()))
	return nil
}

// Ping is an observability no-op; it always succeeds.
func (r *Receiver) Ping() {
	r.dispatcher.Go("ping", func() error {
		r.logger.Debug("ping")
		return nil
	})
}

// Connect registers a producer session. Fire-and-forget: the request
// is processed asynchronously and any failure is logged, never
// returned.
//
// While the transport has not been started the request is dropped
// silently (no session, no observer notification); the producer must
// re-initiate. A connect for an owner that already has a session
// replaces it: the prior session's transport resources are torn down
// and its remote endpoint, if still live, is notified of the
// disconnection first.
func (r *Receiver) Connect(c Candidate) {
	r.dispatcher.Go("connect", func() error {
		return r.handleConnect(c)
	})
}

func (r *Receiver) handleConnect(c Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	port := r.handle.CurrentPort()
	if port == transport.PortNotReady {
		r.logger.Warn("connect dropped, transport not ready",
			slog.String("owner", c.Owner),
			slog.String("session_id", c.ID))
		return nil
	}

	if prior := r.sessions.Get(c.Owner); prior != nil {
		r.handle.Teardown(prior.ID)
		if prior.alive(r.probeTimeout) {
			prior.peer.NotifyDisconnect()
		}
		r.logger.Info("replaced session",
			slog.String("owner", c.Owner),
			slog.String("old_session_id", prior.ID),
			slog.String("new_session_id", c.ID))
	}

	sess := newSession(c, port)
	r.sessions.Put(sess)

	var activationErr error
	if r.readersEnabled.Load() {
		activationErr = r.activate(sess)
	}

	r.notifyObserver(c.ID, r.sessions.Size())
	return activationErr
}

// Disconnect removes the owner's session and releases the transport
// resources held for sessionID. Fire-and-forget. A disconnect for an
// unknown owner is a benign race (the session may have been replaced
// or closed concurrently) and is logged as a warning.
func (r *Receiver) Disconnect(owner, sessionID string) {
	r.dispatcher.Go("disconnect", func() error {
		return r.handleDisconnect(owner, sessionID)
	})
}

func (r *Receiver) handleDisconnect(owner, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handle.CurrentPort() == transport.PortNotReady {
		r.logger.Warn("disconnect dropped, transport not ready",
			slog.String("owner", owner))
		return nil
	}

	if r.sessions.Get(owner) == nil {
		r.logger.Warn("disconnect for unknown owner",
			slog.String("owner", owner),
			slog.String("session_id", sessionID))
		return nil
	}

	r.handle.Teardown(sessionID)
	r.sessions.Remove(owner)
	r.notifyObserver(sessionID, r.sessions.Size())
	return nil
}

// StartReaders enables line production. Every session connecting from
// now on is activated at connect time; sessions already connected are
// activated by an asynchronous sweep. The flag is monotonic — calling
// StartReaders again only re-runs the (now empty) sweep.
func (r *Receiver) StartReaders() {
	r.readersEnabled.Store(true)

	r.dispatcher.Go("startReaders", func() error {
		r.mu.Lock()
		defer r.mu.Unlock()

		var sweepErr error
		for _, sess := range r.sessions.Pending() {
			if err := r.activate(sess); err != nil && sweepErr == nil {
				sweepErr = err
			}
		}
		return sweepErr
	})
}

// activate tells the session's remote endpoint to begin producing on
// its bound port. The per-session started flag makes connect-time
// activation and the StartReaders sweep mutually exclusive: exactly
// one of them performs the call.
func (r *Receiver) activate(sess *Session) error {
	won, err := sess.activate()
	if !won {
		return nil
	}
	if err != nil {
		return fmt.Errorf("activate session %s (owner %s): %w", sess.ID, sess.Owner, err)
	}
	r.logger.Debug("session activated",
		slog.String("owner", sess.Owner),
		slog.String("session_id", sess.ID),
		slog.Int("port", sess.Port))
	return nil
}

// SetConsumer installs or replaces the consumer callback. The swap is
// serialized with in-flight deliveries: no delivery is ever split
// between the old and the new consumer. A nil consumer drops lines.
func (r *Receiver) SetConsumer(fn Consumer) {
	if fn == nil {
		r.consumer.Clear()
		return
	}
	r.consumer.Replace(func(line Line) { fn(line) })
}

// SetObserver installs or replaces the connection observer. Nil
// removes it. The observer runs on the connect/disconnect handler's
// execution path while internal state is locked, so it must return
// promptly and must not call back into the receiver (Close in
// particular would deadlock); hand off to another goroutine for
// anything heavier than recording the counts.
func (r *Receiver) SetObserver(fn Observer) {
	r.setObserver(fn)
}

func (r *Receiver) setObserver(fn Observer) {
	if fn == nil {
		r.observer.Store(nil)
		return
	}
	r.observer.Store(&fn)
}

func (r *Receiver) notifyObserver(sessionID string, connected int) {
	if fn := r.observer.Load(); fn != nil {
		(*fn)(sessionID, connected)
	}
}

// Deliver pushes one produced log line through the serialized consumer
// gate. It is the transport.Sink for handles built by NewTCP/NewWS and
// may block behind a slow consumer, but never corrupts a concurrent
// delivery.
func (r *Receiver) Deliver(sessionID, text string) {
	line := Line{SessionID: sessionID, Text: text}
	if sess := r.sessions.ByID(sessionID); sess != nil {
		line.Owner = sess.Owner
	}
	r.consumer.Deliver(line)
}

// Sessions returns the number of currently connected sessions.
func (r *Receiver) Sessions() int {
	return r.sessions.Size()
}

// Close tears the receiver down: stops the transport handle (which
// releases every session's transport resources), clears the registry,
// unsets the consumer and observer, and drains in-flight handlers.
// Idempotent; a second call returns nil. The receiver is not reusable
// afterward.
//
// Connected remote endpoints are not notified of the shutdown; they
// observe it through their torn-down transport resources.
func (r *Receiver) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}

	r.mu.Lock()
	var err error
	if r.handle.Running() {
		err = r.handle.Stop()
	}
	r.sessions.Clear()
	r.mu.Unlock()

	// Drain outside the handler lock: in-flight handlers acquire it.
	r.dispatcher.Close()

	r.consumer.Clear()
	r.observer.Store(nil)

	r.logger.Info("receiver closed")
	return err
}
