package receiver

import "errors"

var (
	// ErrClosed is returned by embedder-facing calls after Close.
	ErrClosed = errors.New("receiver: closed")
)
