// Package dispatch provides fire-and-forget execution of named handlers
// with error capture. Each submitted handler runs on its own goroutine;
// failures and panics are caught at the dispatch boundary and logged
// with the handler's name, never propagated to the submitter.
//
// This is the execution model for request handlers that have no
// synchronous response channel: the remote caller has already received
// its transport-level acknowledgement, so the only useful thing to do
// with a failure is to record it.
//
// Basic usage:
//
//	d := dispatch.New(dispatch.WithLogger(logger))
//
//	d.Go("connect", func() error {
//		return handleConnect(candidate)
//	})
//
//	// During shutdown, wait for in-flight handlers to drain.
//	d.Close()
package dispatch
