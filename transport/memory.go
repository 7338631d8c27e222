package transport

import "sync"

// MemoryHandle is an in-process Handle for tests and embedders that
// feed lines into the receiver directly. It binds no real socket; Push
// stands in for a producer connection.
type MemoryHandle struct {
	mu        sync.Mutex
	running   bool
	port      int
	sink      Sink
	sessions  map[string]struct{}
	teardowns []string

	// StartErr, when set, is returned by Start. Lets tests exercise
	// the receiver's handling of a transport that fails to come up.
	StartErr error
}

// NewMemoryHandle creates a stopped in-memory handle that will report
// the given port once started.
func NewMemoryHandle(port int) *MemoryHandle {
	return &MemoryHandle{
		port:     port,
		sessions: make(map[string]struct{}),
	}
}

// SetSink installs the line sink. Must be called before Push.
func (h *MemoryHandle) SetSink(sink Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sink = sink
}

func (h *MemoryHandle) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.StartErr != nil {
		return h.StartErr
	}
	if h.running {
		return ErrAlreadyRunning
	}
	h.running = true
	return nil
}

func (h *MemoryHandle) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return ErrNotRunning
	}
	for id := range h.sessions {
		h.teardowns = append(h.teardowns, id)
	}
	clear(h.sessions)
	h.running = false
	return nil
}

func (h *MemoryHandle) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

func (h *MemoryHandle) CurrentPort() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return PortNotReady
	}
	return h.port
}

func (h *MemoryHandle) Teardown(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.sessions, sessionID)
	h.teardowns = append(h.teardowns, sessionID)
}

// Register records a producer "connection" for the session id, so that
// Stop reports it torn down.
func (h *MemoryHandle) Register(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[sessionID] = struct{}{}
}

// Push delivers one line on behalf of the session, as a real transport
// would from its reader loop.
func (h *MemoryHandle) Push(sessionID, line string) {
	h.mu.Lock()
	sink := h.sink
	h.mu.Unlock()

	if sink != nil {
		sink(sessionID, line)
	}
}

// Teardowns returns the session ids torn down so far, in order.
func (h *MemoryHandle) Teardowns() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, len(h.teardowns))
	copy(out, h.teardowns)
	return out
}
