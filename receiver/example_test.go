package receiver_test

import (
	"fmt"

	"github.com/logtap/logtap/receiver"
	"github.com/logtap/logtap/transport"
)

func ExampleReceiver() {
	handle := transport.NewMemoryHandle(9400)

	rcv := receiver.New(handle,
		receiver.WithConsumer(func(line receiver.Line) {
			fmt.Printf("%s: %s\n", line.Owner, line.Text)
		}),
		receiver.WithObserver(func(sessionID string, connected int) {
			fmt.Printf("observer: %s, %d connected\n", sessionID, connected)
		}),
	)
	defer rcv.Close()

	if err := rcv.AcceptSenders(); err != nil {
		fmt.Println("accept senders:", err)
		return
	}
	rcv.StartReaders()

	rcv.Connect(receiver.Candidate{ID: "session-1", Owner: "app.example", PID: 4242})

	// In production the transport's reader loops call Deliver; the
	// memory handle lets us stand in for them here.
	handle.SetSink(rcv.Deliver)
	handle.Push("session-1", "service started")
}
