package transport_test

import (
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logtap/logtap/transport"
)

// lineRecorder is a concurrency-safe Sink that collects delivered lines.
type lineRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *lineRecorder) sink(sessionID, line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, sessionID+"|"+line)
}

func (r *lineRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

func (r *lineRecorder) waitFor(t *testing.T, want int) []string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := r.snapshot(); len(got) >= want {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d lines, have %v", want, r.snapshot())
	return nil
}

func dialProducer(t *testing.T, port int, sessionID string) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	require.NoError(t, err)
	_, err = fmt.Fprintf(conn, "%s\n", sessionID)
	require.NoError(t, err)
	return conn
}

func TestTCPHandle_Lifecycle(t *testing.T) {
	t.Parallel()

	rec := &lineRecorder{}
	h := transport.NewTCPHandle(rec.sink)

	assert.False(t, h.Running())
	assert.Equal(t, transport.PortNotReady, h.CurrentPort())

	require.NoError(t, h.Start())
	assert.True(t, h.Running())
	assert.Greater(t, h.CurrentPort(), 0)

	assert.ErrorIs(t, h.Start(), transport.ErrAlreadyRunning)

	require.NoError(t, h.Stop())
	assert.False(t, h.Running())
	assert.Equal(t, transport.PortNotReady, h.CurrentPort())
	assert.ErrorIs(t, h.Stop(), transport.ErrNotRunning)
}

func TestTCPHandle_StreamsLines(t *testing.T) {
	t.Parallel()

	rec := &lineRecorder{}
	h := transport.NewTCPHandle(rec.sink)
	require.NoError(t, h.Start())
	defer func() { _ = h.Stop() }()

	conn := dialProducer(t, h.CurrentPort(), "sess-1")
	defer conn.Close()

	_, err := fmt.Fprintf(conn, "first line\nsecond line\n")
	require.NoError(t, err)

	got := rec.waitFor(t, 2)
	assert.Equal(t, []string{"sess-1|first line", "sess-1|second line"}, got[:2])
}

func TestTCPHandle_MultipleProducers(t *testing.T) {
	t.Parallel()

	rec := &lineRecorder{}
	h := transport.NewTCPHandle(rec.sink)
	require.NoError(t, h.Start())
	defer func() { _ = h.Stop() }()

	a := dialProducer(t, h.CurrentPort(), "sess-a")
	defer a.Close()
	b := dialProducer(t, h.CurrentPort(), "sess-b")
	defer b.Close()

	_, err := fmt.Fprintf(a, "from a\n")
	require.NoError(t, err)
	_, err = fmt.Fprintf(b, "from b\n")
	require.NoError(t, err)

	got := rec.waitFor(t, 2)
	assert.ElementsMatch(t, []string{"sess-a|from a", "sess-b|from b"}, got[:2])
}

func TestTCPHandle_Teardown(t *testing.T) {
	t.Parallel()

	rec := &lineRecorder{}
	h := transport.NewTCPHandle(rec.sink)
	require.NoError(t, h.Start())
	defer func() { _ = h.Stop() }()

	conn := dialProducer(t, h.CurrentPort(), "sess-td")
	defer conn.Close()

	_, err := fmt.Fprintf(conn, "before teardown\n")
	require.NoError(t, err)
	rec.waitFor(t, 1)

	h.Teardown("sess-td")

	// The producer's connection is closed: writes eventually fail.
	require.NoError(t, conn.SetWriteDeadline(time.Now().Add(2*time.Second)))
	var writeErr error
	for i := 0; i < 50 && writeErr == nil; i++ {
		_, writeErr = fmt.Fprintf(conn, "after teardown\n")
		time.Sleep(10 * time.Millisecond)
	}
	assert.Error(t, writeErr)

	// Unknown ids are a no-op.
	assert.NotPanics(t, func() { h.Teardown("no-such-session") })
}

// Stop must tear down every accepted connection, including one whose
// producer never announced a session id; its reader would otherwise
// keep Stop waiting until the remote goes away.
func TestTCPHandle_StopClosesUnannouncedConn(t *testing.T) {
	t.Parallel()

	rec := &lineRecorder{}
	h := transport.NewTCPHandle(rec.sink)
	require.NoError(t, h.Start())

	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", h.CurrentPort()))
	require.NoError(t, err)
	defer conn.Close()

	// Send nothing: the reader is parked waiting for the session id.
	// Give the accept loop a moment to hand the connection off.
	time.Sleep(50 * time.Millisecond)

	stopped := make(chan error, 1)
	go func() { stopped <- h.Stop() }()

	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return while an unannounced connection was open")
	}

	// The producer side observes the teardown.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 1)
	_, readErr := conn.Read(buf)
	assert.Error(t, readErr)
}

// Stop must also unblock readers of announced, mid-stream producers.
func TestTCPHandle_StopClosesActiveConn(t *testing.T) {
	t.Parallel()

	rec := &lineRecorder{}
	h := transport.NewTCPHandle(rec.sink)
	require.NoError(t, h.Start())

	conn := dialProducer(t, h.CurrentPort(), "sess-stop")
	defer conn.Close()
	_, err := fmt.Fprintf(conn, "still streaming\n")
	require.NoError(t, err)
	rec.waitFor(t, 1)

	stopped := make(chan error, 1)
	go func() { stopped <- h.Stop() }()

	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return while a producer was streaming")
	}
}
