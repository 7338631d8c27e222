package transport

import (
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// DefaultProbeTimeout bounds a liveness probe against a remote peer.
const DefaultProbeTimeout = 2 * time.Second

// ProbeAlive queries p.Alive with a time bound. A probe that exceeds
// the timeout or panics counts as "not live": the remote endpoint is a
// foreign process and its liveness callback may hang or fail.
//
// A probe that eventually returns after the timeout is discarded; its
// goroutine exits on its own.
func ProbeAlive(p Peer, timeout time.Duration) bool {
	if p == nil {
		return false
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	result := make(chan bool, 1)
	go func() {
		defer func() {
			if recover() != nil {
				result <- false
			}
		}()
		result <- p.Alive()
	}()

	select {
	case alive := <-result:
		return alive
	case <-time.After(timeout):
		return false
	}
}

// ProcessPeer wraps a Peer with an OS-level existence check on the
// producer's pid. Alive reports false as soon as the process is gone,
// even if the wrapped peer's channel has not noticed yet.
type ProcessPeer struct {
	Peer
	PID int32
}

func (p ProcessPeer) Alive() bool {
	exists, err := process.PidExists(p.PID)
	if err != nil || !exists {
		return false
	}
	return p.Peer.Alive()
}
