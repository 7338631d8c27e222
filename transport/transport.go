package transport

// PortNotReady is returned by Handle.CurrentPort before the handle has
// been started. Callers must treat it as "reject the operation", never
// as a usable port.
const PortNotReady = -1

// Sink receives one log line produced by the session with the given id.
// Handles call it from their per-connection reader goroutines, so
// implementations must be safe for concurrent use.
type Sink func(sessionID, line string)

// Handle owns a listening endpoint for inbound producer connections.
// Implementations must be safe for concurrent use.
type Handle interface {
	// Start brings the handle to running and binds a port. Callers use
	// Running to make Start idempotent.
	Start() error

	// Stop releases the listening resource and tears down all
	// sessions' transport resources.
	Stop() error

	// Running reports whether Start has completed and Stop has not.
	Running() bool

	// CurrentPort returns the bound port once running, or PortNotReady.
	CurrentPort() int

	// Teardown releases any transport resource associated with the
	// session id. Unknown ids are a no-op.
	Teardown(sessionID string)
}

// Peer is the capability surface of one remote producer process,
// supplied alongside its connect request.
type Peer interface {
	// StartReader tells the remote endpoint to begin producing log
	// lines on the given port.
	StartReader(port int) error

	// Alive reports whether the remote endpoint is still responsive.
	// The answer is authoritative only at call time.
	Alive() bool

	// NotifyDisconnect tells the remote endpoint its session has been
	// disconnected. Best effort; failures are ignored.
	NotifyDisconnect()
}
