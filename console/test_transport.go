package console

import (
	"io"
	"sync"
)

// TestTransport is a test helper that simulates a blocking serial
// connection using channels. This is needed because the relay loop's
// pump goroutine continuously reads from the transport, and reads must
// block until data is available (like a real serial port would). Every
// write is recorded so tests can inspect what reached the wire.
type TestTransport struct {
	mu        sync.Mutex
	readChan  chan []byte
	writeChan chan []byte
	closed    bool
}

// NewTestTransport creates a new test transport.
// Exported for use in tests.
func NewTestTransport() *TestTransport {
	return &TestTransport{
		readChan:  make(chan []byte, 10),
		writeChan: make(chan []byte, 10),
	}
}

func (t *TestTransport) Read(p []byte) (n int, err error) {
	data, ok := <-t.readChan
	if !ok {
		return 0, io.EOF
	}
	return copy(p, data), nil
}

func (t *TestTransport) Write(p []byte) (n int, err error) {
	data := make([]byte, len(p))
	copy(data, p)
	t.writeChan <- data
	return len(p), nil
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.readChan)
	return nil
}

// SendData queues data to be read from the transport. This simulates
// bytes arriving from the remote device.
func (t *TestTransport) SendData(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.readChan <- []byte(data)
	}
}

// Writes exposes the recorded writes in arrival order.
func (t *TestTransport) Writes() <-chan []byte {
	return t.writeChan
}
