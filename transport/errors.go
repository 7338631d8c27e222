package transport

import "errors"

var (
	// ErrAlreadyRunning is returned by Start on a running handle.
	ErrAlreadyRunning = errors.New("transport: handle already running")

	// ErrNotRunning is returned by Stop on a handle that was never
	// started or has already stopped.
	ErrNotRunning = errors.New("transport: handle not running")
)
