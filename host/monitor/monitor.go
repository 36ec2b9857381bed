// Package monitor reads the rangefinder's serial stream and dispatches
// decoded distances to sinks.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"rangefinder/protocol"
)

// Sample is one decoded distance
type Sample struct {
	Seq        uint64
	DistanceMM uint32
	Time       time.Time
}

// Sink receives every decoded sample
type Sink interface {
	Handle(s Sample) error
}

// SinkFunc adapts a function to Sink
type SinkFunc func(s Sample) error

// Handle calls f(s)
func (f SinkFunc) Handle(s Sample) error {
	return f(s)
}

// Monitor turns a serial byte stream into samples
type Monitor struct {
	port    io.Reader
	decoder *protocol.Decoder
	sinks   []Sink
	now     func() time.Time

	seq        uint64
	badBytes   atomic.Uint32
	sinkErrors atomic.Uint32

	// OnError, when set, is told about stream and sink errors
	OnError func(err error)
}

// New creates a monitor reading from port
func New(port io.Reader, sinks ...Sink) *Monitor {
	return &Monitor{
		port:    port,
		decoder: protocol.NewDecoder(),
		sinks:   sinks,
		now:     time.Now,
	}
}

// AddSink registers another sink
func (m *Monitor) AddSink(s Sink) {
	m.sinks = append(m.sinks, s)
}

// Run reads until ctx is cancelled or the port reports EOF. A read that
// returns no data means the line went idle between bursts, which closes
// the frame in progress.
func (m *Monitor) Run(ctx context.Context) error {
	buffer := make([]byte, 256)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := m.port.Read(buffer)
		if n > 0 {
			m.Process(buffer[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				m.Idle()
				return nil
			}
			return fmt.Errorf("read serial: %w", err)
		}
		if n == 0 {
			m.Idle()
			// Ports without a read timeout never get here; in-memory
			// lines return immediately, so avoid spinning
			time.Sleep(5 * time.Millisecond)
		}
	}
}

// Process decodes p and dispatches every completed frame
func (m *Monitor) Process(p []byte) {
	for _, b := range p {
		value, ok, err := m.decoder.Feed(b)
		if err != nil {
			m.badBytes.Add(1)
			m.report(err)
		}
		if ok {
			m.dispatch(value)
		}
	}
}

// Idle closes the frame in progress
func (m *Monitor) Idle() {
	if value, ok := m.decoder.Flush(); ok {
		m.dispatch(value)
	}
}

// Count returns the number of samples dispatched
func (m *Monitor) Count() uint64 {
	return m.seq
}

// BadBytes returns the number of stream errors
func (m *Monitor) BadBytes() uint32 {
	return m.badBytes.Load()
}

// SinkErrors returns the number of failed sink calls
func (m *Monitor) SinkErrors() uint32 {
	return m.sinkErrors.Load()
}

func (m *Monitor) dispatch(value uint32) {
	s := Sample{Seq: m.seq, DistanceMM: value, Time: m.now()}
	m.seq++
	for _, sink := range m.sinks {
		if err := sink.Handle(s); err != nil {
			m.sinkErrors.Add(1)
			m.report(fmt.Errorf("sink: %w", err))
		}
	}
}

func (m *Monitor) report(err error) {
	if m.OnError != nil {
		m.OnError(err)
	}
}
