package transport

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"strings"
	"sync"
)

// TCPHandle accepts producer connections over TCP and streams
// newline-delimited log lines into a Sink. The first line of each
// connection announces the producer's session id; every following line
// is one log line.
//
// This is the development and same-host transport. It requires direct
// TCP reachability from the producer processes.
type TCPHandle struct {
	cfg    Config
	sink   Sink
	logger *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[string]net.Conn
	// live tracks every accepted connection from the moment of accept,
	// including ones that have not announced a session id yet, so Stop
	// can unblock their readers.
	live map[net.Conn]struct{}
	wg   sync.WaitGroup
}

// TCPOption configures a TCPHandle.
type TCPOption func(*TCPHandle)

// WithTCPConfig overrides the default listener settings.
func WithTCPConfig(cfg Config) TCPOption {
	return func(h *TCPHandle) {
		if cfg.Addr != "" {
			h.cfg.Addr = cfg.Addr
		}
		if cfg.MaxLineBytes > 0 {
			h.cfg.MaxLineBytes = cfg.MaxLineBytes
		}
	}
}

// WithTCPLogger sets the logger for connection lifecycle records.
func WithTCPLogger(logger *slog.Logger) TCPOption {
	return func(h *TCPHandle) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewTCPHandle creates a stopped TCP handle delivering lines to sink.
func NewTCPHandle(sink Sink, opts ...TCPOption) *TCPHandle {
	h := &TCPHandle{
		cfg:    DefaultConfig(),
		sink:   sink,
		logger: slog.Default(),
		conns:  make(map[string]net.Conn),
		live:   make(map[net.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TCPHandle) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.listener != nil {
		return ErrAlreadyRunning
	}

	listener, err := net.Listen("tcp", h.cfg.Addr)
	if err != nil {
		return err
	}
	h.listener = listener

	h.wg.Add(1)
	go h.acceptLoop(listener)

	h.logger.Info("transport listening", slog.String("addr", listener.Addr().String()))
	return nil
}

func (h *TCPHandle) Stop() error {
	h.mu.Lock()
	listener := h.listener
	if listener == nil {
		h.mu.Unlock()
		return ErrNotRunning
	}
	h.listener = nil
	// Close every accepted connection, announced or not; this unblocks
	// readers still waiting for a session id.
	for conn := range h.live {
		_ = conn.Close()
	}
	clear(h.live)
	clear(h.conns)
	h.mu.Unlock()

	err := listener.Close()
	h.wg.Wait()
	return err
}

func (h *TCPHandle) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.listener != nil
}

func (h *TCPHandle) CurrentPort() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.listener == nil {
		return PortNotReady
	}
	return h.listener.Addr().(*net.TCPAddr).Port
}

func (h *TCPHandle) Teardown(sessionID string) {
	h.mu.Lock()
	conn, ok := h.conns[sessionID]
	if ok {
		delete(h.conns, sessionID)
	}
	h.mu.Unlock()

	if ok {
		_ = conn.Close()
	}
}

func (h *TCPHandle) acceptLoop(listener net.Listener) {
	defer h.wg.Done()

	for {
		conn, err := listener.Accept()
		if err != nil {
			// Listener closed during Stop is the normal exit path.
			if !errors.Is(err, net.ErrClosed) {
				h.logger.Error("accept failed", slog.String("error", err.Error()))
			}
			return
		}

		h.mu.Lock()
		if h.listener == nil {
			// Stop raced the accept; it will not see this connection,
			// so release it here.
			h.mu.Unlock()
			_ = conn.Close()
			return
		}
		h.live[conn] = struct{}{}
		h.wg.Add(1)
		h.mu.Unlock()

		go h.readLoop(conn)
	}
}

// readLoop consumes one producer connection: the announced session id
// first, then log lines until the connection ends.
func (h *TCPHandle) readLoop(conn net.Conn) {
	defer h.wg.Done()
	defer func() {
		h.mu.Lock()
		delete(h.live, conn)
		h.mu.Unlock()
		_ = conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), h.cfg.MaxLineBytes)

	if !scanner.Scan() {
		return
	}
	sessionID := strings.TrimSpace(scanner.Text())
	if sessionID == "" {
		h.logger.Warn("producer sent empty session id, dropping connection",
			slog.String("remote", conn.RemoteAddr().String()))
		return
	}

	h.mu.Lock()
	if h.listener == nil {
		// Stopped while the producer was announcing itself.
		h.mu.Unlock()
		return
	}
	// A same-id reconnect replaces the previous connection.
	if prior, ok := h.conns[sessionID]; ok {
		_ = prior.Close()
	}
	h.conns[sessionID] = conn
	h.mu.Unlock()

	h.logger.Debug("producer connected",
		slog.String("session_id", sessionID),
		slog.String("remote", conn.RemoteAddr().String()))

	for scanner.Scan() {
		h.sink(sessionID, scanner.Text())
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		h.logger.Debug("producer stream ended",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
	}

	h.mu.Lock()
	// Only forget the connection if it is still ours; a reconnect may
	// have replaced it already.
	if current, ok := h.conns[sessionID]; ok && current == conn {
		delete(h.conns, sessionID)
	}
	h.mu.Unlock()
}
