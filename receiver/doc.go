// Package receiver implements a process-local log aggregation receiver:
// one long-lived service object that accepts connections from multiple
// independent remote producer processes, coordinates each into a
// per-connection session, and funnels every produced log line into a
// single serialized consumer callback.
//
// The receiver owns the connection lifecycle and the session registry;
// the inter-process channel itself lives behind the transport.Handle
// and transport.Peer contracts. Inbound requests (ping, connect,
// disconnect) are fire-and-forget: each runs on an asynchronous
// execution path, failures are logged with the handler's name and never
// surface to the remote caller.
//
// # Lifecycle
//
// A session is created on Connect, activated (told to begin producing
// lines on the bound port) either immediately when readers are enabled
// or retroactively by StartReaders, and destroyed on Disconnect, on
// replacement by a same-owner reconnect, or on Close. At most one
// session per owner exists at any time; a reconnect tears down the
// prior session's transport resources and, when the prior remote
// endpoint is still live, notifies it of its disconnection first.
//
// # Usage
//
//	var rcv *receiver.Receiver
//	rcv = receiver.NewTCP(transport.DefaultConfig(),
//		receiver.WithConsumer(func(line receiver.Line) {
//			fmt.Printf("%s: %s\n", line.Owner, line.Text)
//		}),
//	)
//
//	if err := rcv.AcceptSenders(); err != nil {
//		// handle error
//	}
//	rcv.StartReaders()
//	defer rcv.Close()
//
// Guarantees: the consumer is never entered concurrently (per-line
// atomicity of delivery), but no ordering is promised across different
// producers' sessions, nothing is persisted, and failed deliveries are
// not retried.
package receiver
