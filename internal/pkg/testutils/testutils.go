// Package testutils holds helpers shared by tests.
package testutils

import (
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"rudpchat/internal/pkg/transport"

	"github.com/stretchr/testify/require"
)

// FastTransport keeps retransmission quick enough for tests.
var FastTransport = []transport.Cfg{
	transport.WithRetransmitTimeout(20 * time.Millisecond),
	transport.WithMaxRetries(100),
}

// ListenConn opens a loopback transport.Conn that is closed when the test ends.
func ListenConn(t *testing.T, cfgs ...transport.Cfg) *transport.Conn {
	t.Helper()
	conn, err := transport.Listen("127.0.0.1:0", append(append([]transport.Cfg{}, FastTransport...), cfgs...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// FreePort returns a loopback UDP port that was free a moment ago.
func FreePort(t *testing.T) uint16 {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()
	return uint16(pc.LocalAddr().(*net.UDPAddr).Port)
}

// LineWriter collects written output and emits it line by line.
type LineWriter struct {
	mu      sync.Mutex
	pending string
	lines   chan string
}

// NewLineWriter creates a LineWriter.
func NewLineWriter() *LineWriter {
	return &LineWriter{lines: make(chan string, 256)}
}

func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending += string(p)
	for {
		i := strings.IndexByte(w.pending, '\n')
		if i < 0 {
			break
		}
		w.lines <- w.pending[:i]
		w.pending = w.pending[i+1:]
	}
	return len(p), nil
}

// Next returns the next complete line, failing the test after timeout.
func (w *LineWriter) Next(t *testing.T, timeout time.Duration) string {
	t.Helper()
	select {
	case line := <-w.lines:
		return line
	case <-time.After(timeout):
		t.Fatalf("no output line within %s", timeout)
		return ""
	}
}

// Expect reads lines until want appears, failing the test after timeout.
func (w *LineWriter) Expect(t *testing.T, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case line := <-w.lines:
			if line == want {
				return
			}
		case <-deadline:
			t.Fatalf("output %q not seen within %s", want, timeout)
			return
		}
	}
}
