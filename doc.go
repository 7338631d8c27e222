// Package logtap is a process-local log aggregation receiver: a single
// long-lived service that accepts connections from multiple remote
// producer processes, manages a per-connection session for each, and
// funnels every produced log line into one serialized consumer
// callback.
//
// The module is organized as small focused packages:
//
//   - receiver: the connection lifecycle, session registry, and
//     delivery-serialization core.
//   - transport: the boundary to the inter-process channel, with TCP,
//     WebSocket and in-memory implementations.
//   - pkg/delivery: the generic serialized single-consumer gate.
//   - pkg/dispatch: fire-and-forget handler execution with error capture.
//   - pkg/config: environment-based configuration loading.
//   - pkg/logger: slog factory.
//
// See the receiver package for usage.
package logtap
