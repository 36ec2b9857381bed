package serial

import (
	"io"
	"sync"

	"rangefinder/protocol"
)

// Line is an in-memory serial line. Bytes written by the transmitting
// side are buffered in a FIFO until read; when the FIFO is full further
// bytes are lost, as on a real UART with nobody reading.
type Line struct {
	mu     sync.Mutex
	fifo   *protocol.FifoBuffer
	lost   int
	closed bool
}

// NewLine creates a line buffering up to capacity bytes
func NewLine(capacity int) *Line {
	return &Line{fifo: protocol.NewFifoBuffer(capacity)}
}

// Write queues p on the line
func (l *Line) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, io.ErrClosedPipe
	}
	n := l.fifo.Write(p)
	l.lost += len(p) - n
	return len(p), nil
}

// Read returns buffered bytes. An empty line returns 0 bytes, like a
// timed-out read on a native port; a closed and drained line returns io.EOF.
func (l *Line) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fifo.IsEmpty() && l.closed {
		return 0, io.EOF
	}
	return l.fifo.Read(p), nil
}

// Close marks the end of the stream
func (l *Line) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

// Flush drops buffered bytes
func (l *Line) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fifo.Reset()
	return nil
}

// Buffered returns the number of bytes waiting to be read
func (l *Line) Buffered() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fifo.Available()
}

// Lost returns the number of bytes dropped because the FIFO was full
func (l *Line) Lost() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lost
}
