package transport

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// WSHandle accepts producer connections over WebSocket. Producers
// connect to /stream with their session id in the "session" query
// parameter and send one text message per log line.
//
// Useful when producers sit behind an HTTP-only path (browsers,
// sidecars, proxies) where a raw TCP stream is not available.
type WSHandle struct {
	cfg    Config
	sink   Sink
	logger *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
	conns    map[string]*websocket.Conn
	wg       sync.WaitGroup
}

// WSOption configures a WSHandle.
type WSOption func(*WSHandle)

// WithWSConfig overrides the default listener settings.
func WithWSConfig(cfg Config) WSOption {
	return func(h *WSHandle) {
		if cfg.Addr != "" {
			h.cfg.Addr = cfg.Addr
		}
		if cfg.MaxLineBytes > 0 {
			h.cfg.MaxLineBytes = cfg.MaxLineBytes
		}
	}
}

// WithWSLogger sets the logger for connection lifecycle records.
func WithWSLogger(logger *slog.Logger) WSOption {
	return func(h *WSHandle) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewWSHandle creates a stopped WebSocket handle delivering lines to sink.
func NewWSHandle(sink Sink, opts ...WSOption) *WSHandle {
	h := &WSHandle{
		cfg:    DefaultConfig(),
		sink:   sink,
		logger: slog.Default(),
		conns:  make(map[string]*websocket.Conn),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *WSHandle) Start() error {
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

	mux := http.NewServeMux()
	mux.HandleFunc("/stream", h.handleStream)
	server := &http.Server{Handler: mux}
	h.server = server

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			h.logger.Error("websocket server failed", slog.String("error", serveErr.Error()))
		}
	}()

	h.logger.Info("transport listening", slog.String("addr", listener.Addr().String()))
	return nil
}

func (h *WSHandle) Stop() error {
	h.mu.Lock()
	server := h.server
	if server == nil {
		h.mu.Unlock()
		return ErrNotRunning
	}
	h.server = nil
	h.listener = nil
	for id, conn := range h.conns {
		_ = conn.Close()
		delete(h.conns, id)
	}
	h.mu.Unlock()

	err := server.Close()
	h.wg.Wait()
	return err
}

func (h *WSHandle) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.server != nil
}

func (h *WSHandle) CurrentPort() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.listener == nil {
		return PortNotReady
	}
	return h.listener.Addr().(*net.TCPAddr).Port
}

func (h *WSHandle) Teardown(sessionID string) {
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

func (h *WSHandle) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "missing session parameter", http.StatusBadRequest)
		return
	}

	upgrader := websocket.Upgrader{
		// Producers are trusted local/intranet processes.
		CheckOrigin: func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	conn.SetReadLimit(int64(h.cfg.MaxLineBytes))

	h.mu.Lock()
	if h.server == nil {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	if prior, ok := h.conns[sessionID]; ok {
		_ = prior.Close()
	}
	h.conns[sessionID] = conn
	// Add under the lock so Stop cannot slip between the running check
	// and the reader registration.
	h.wg.Add(1)
	h.mu.Unlock()

	h.logger.Debug("producer connected",
		slog.String("session_id", sessionID),
		slog.String("remote", r.RemoteAddr))

	go h.readLoop(sessionID, conn)
}

func (h *WSHandle) readLoop(sessionID string, conn *websocket.Conn) {
	defer h.wg.Done()

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}
		h.sink(sessionID, string(payload))
	}

	h.mu.Lock()
	if current, ok := h.conns[sessionID]; ok && current == conn {
		delete(h.conns, sessionID)
	}
	h.mu.Unlock()
	_ = conn.Close()
}
