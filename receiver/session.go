package receiver

import (
	"sync/atomic"
	"time"

	"github.com/logtap/logtap/transport"
)

// Candidate describes a remote producer asking to connect.
type Candidate struct {
	// ID is an opaque identity token, stable for the lifetime of one
	// connection, supplied by the producer.
	ID string

	// Owner is the producer's logical identity (e.g. the owning
	// application name). It is the registry's uniqueness key.
	Owner string

	// PID is the producer's process id.
	PID int32

	// Peer is the capability surface used to activate the producer,
	// probe its liveness, and notify it of disconnection.
	Peer transport.Peer
}

// Line is one delivered log line.
type Line struct {
	// SessionID identifies the producing session.
	SessionID string

	// Owner is the producing application, resolved through the
	// registry. Empty when the session is not (or no longer)
	// registered.
	Owner string

	// Text is the log line itself. Its format is owned by the
	// producer; the receiver treats it as opaque.
	Text string
}

// Session represents one connected remote producer. Identity fields
// are fixed at connect time; only the activation flag changes, and it
// flips exactly once.
type Session struct {
	ID    string
	Owner string
	PID   int32

	// Port is the transport port the session was bound to at connect
	// time.
	Port int

	peer    transport.Peer
	started atomic.Bool
}

func newSession(c Candidate, port int) *Session {
	return &Session{
		ID:    c.ID,
		Owner: c.Owner,
		PID:   c.PID,
		Port:  port,
		peer:  c.Peer,
	}
}

// Started reports whether the session has been told to begin producing
// lines. Monotonic: once true it never reverts.
func (s *Session) Started() bool {
	return s.started.Load()
}

// activate flips the started flag. Exactly one caller wins the flip
// and performs the StartReader call; every other caller is a no-op.
func (s *Session) activate() (won bool, err error) {
	if !s.started.CompareAndSwap(false, true) {
		return false, nil
	}
	if s.peer == nil {
		return true, nil
	}
	return true, s.peer.StartReader(s.Port)
}

// alive probes the remote endpoint with a time bound. Authoritative
// only at call time.
func (s *Session) alive(timeout time.Duration) bool {
	return transport.ProbeAlive(s.peer, timeout)
}
