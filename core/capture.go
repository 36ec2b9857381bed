// Echo pulse-width capture
// Timestamps both edges of the echo line against a free-running counter
package core

import "sync/atomic"

// CaptureState is the echo capture engine state
type CaptureState uint8

const (
	AwaitingRising CaptureState = iota
	AwaitingFalling
)

func (s CaptureState) String() string {
	switch s {
	case AwaitingRising:
		return "awaiting-rising"
	case AwaitingFalling:
		return "awaiting-falling"
	default:
		return "unknown"
	}
}

// EchoCapture measures how long the echo line stays asserted, once per
// trigger cycle. Edge runs in interrupt context and only touches its
// own fields and atomics.
type EchoCapture struct {
	echo    EchoDriver
	counter CaptureCounter
	cell    *MeasurementCell
	max     uint16

	state CaptureState
	start uint16 // counter value at the rising edge

	orphans atomic.Uint32 // falling edges with no rising edge
}

// NewEchoCapture creates a capture engine publishing into cell.
// counterMax is the value the counter wraps after.
func NewEchoCapture(echo EchoDriver, counter CaptureCounter, counterMax uint16, cell *MeasurementCell) *EchoCapture {
	return &EchoCapture{
		echo:    echo,
		counter: counter,
		cell:    cell,
		max:     counterMax,
		state:   AwaitingRising,
	}
}

// HandleInterrupt is the capture interrupt entry point. The echo level
// read here decides which edge is processed, not the edge that raised
// the interrupt.
func (e *EchoCapture) HandleInterrupt() {
	level := e.echo.ReadEcho()
	e.Edge(level, e.counter.Read())
}

// Edge processes one captured edge
// level: echo level sampled at interrupt time
// now: counter value at interrupt time
func (e *EchoCapture) Edge(level bool, now uint16) {
	now &= e.max

	if level {
		// Rising edge: a repeated rising edge restarts the measurement
		e.start = now
		e.state = AwaitingFalling
		RecordTiming(EvtEchoRising, uint32(now), 0, 0)
		return
	}

	if e.state != AwaitingFalling {
		e.orphans.Add(1)
		RecordTiming(EvtEchoOrphan, uint32(now), 0, 0)
		return
	}

	elapsed := ElapsedTicks(e.start, now, e.max)
	e.state = AwaitingRising
	RecordTiming(EvtEchoFalling, uint32(now), uint32(e.start), elapsed)
	e.cell.Publish(elapsed)
}

// State returns the current capture state
func (e *EchoCapture) State() CaptureState {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return e.state
}

// Reset abandons a half-captured pulse, e.g. after a measurement timeout
// left the engine waiting for a falling edge that never came.
func (e *EchoCapture) Reset() {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	e.state = AwaitingRising
	e.start = 0
}

// Orphans returns the number of ignored falling edges
func (e *EchoCapture) Orphans() uint32 {
	return e.orphans.Load()
}

// ElapsedTicks returns the ticks from start to end on a counter that
// wraps after max, allowing for at most one wrap.
func ElapsedTicks(start, end, max uint16) uint32 {
	if end > start {
		return uint32(end - start)
	}
	return uint32(max-start) + uint32(end) + 1
}
