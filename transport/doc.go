// Package transport defines the boundary between the receiver core and
// the inter-process channel that carries log lines, and ships three
// implementations of that boundary.
//
// The core depends on two small contracts:
//
//   - Handle owns the listening endpoint: it is started and stopped by
//     the receiver, reports the bound port (or PortNotReady before
//     startup), and can forcibly release the transport resources of a
//     single session by id.
//   - Peer is the capability surface of one remote producer process:
//     it can be told to begin producing lines on a port, probed for
//     liveness, and notified of its disconnection.
//
// Implementations:
//
//   - TCPHandle: newline-delimited log lines over a loopback (or LAN)
//     TCP listener. The first line of each producer connection carries
//     the session id; every following line is delivered to the Sink.
//   - WSHandle: one WebSocket connection per producer, session id in
//     the query string, one text message per line.
//   - MemoryHandle: an in-process fake for tests, with recorded
//     teardowns and an injectable start error.
//
// Liveness probing of a remote peer may itself hang; ProbeAlive bounds
// the probe in time and treats a timeout or panic as "not live".
package transport
