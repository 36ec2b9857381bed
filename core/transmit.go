// Interrupt-driven distance transmitter
// Drains a DigitBuffer one byte per TX-ready event, most significant digit first
package core

import "sync/atomic"

// TxState is the transmitter state
type TxState uint8

const (
	TxIdle     TxState = iota // cursor == 0, nothing pending
	TxDraining                // cursor > 0, one byte per ready event
)

func (s TxState) String() string {
	if s == TxDraining {
		return "draining"
	}
	return "idle"
}

// Transmitter owns the digit buffer and cursor shared between the main
// loop (Arm) and the TX-ready interrupt (OnReady).
type Transmitter struct {
	serial SerialDriver

	buf    DigitBuffer
	cursor int // remaining digits, decremented before each send

	sent      atomic.Uint32
	abandoned atomic.Uint32
}

// NewTransmitter creates an idle transmitter writing to serial
func NewTransmitter(serial SerialDriver) *Transmitter {
	return &Transmitter{serial: serial}
}

// Arm hands a freshly encoded buffer to the transmitter and writes the
// separator straight into the TX register to start the drain sequence.
//
// The buffer is copied with interrupts disabled, so a late ready event
// can never observe a half-filled buffer. Digits still pending from the
// previous cycle (a lost ready event, or a cycle shorter than the line
// time) are dropped and counted; nothing is retried.
func (t *Transmitter) Arm(buf DigitBuffer) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if t.cursor > 0 {
		t.abandoned.Add(uint32(t.cursor))
		RecordTiming(EvtTxAbandon, 0, uint32(t.cursor), 0)
	}

	t.buf = buf
	t.cursor = buf.Count
	RecordTiming(EvtTxArm, 0, uint32(buf.Count), 0)

	// Kick-start: the separator goes out as-is, it is already ASCII
	t.serial.WriteTx(t.buf.Slots[t.cursor])
	t.sent.Add(1)
}

// OnReady is the TX-ready interrupt handler. With digits pending it
// sends the next one as ASCII; otherwise it does nothing and the ready
// condition stays unacknowledged until the next Arm.
func (t *Transmitter) OnReady() {
	if t.cursor == 0 {
		return
	}
	t.cursor--
	t.serial.WriteTx(t.buf.Slots[t.cursor] + DigitOffset)
	t.sent.Add(1)
}

// State returns the transmitter state
func (t *Transmitter) State() TxState {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	if t.cursor > 0 {
		return TxDraining
	}
	return TxIdle
}

// Pending returns the number of digits not yet sent
func (t *Transmitter) Pending() int {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return t.cursor
}

// Sent returns the number of bytes written to the TX register
func (t *Transmitter) Sent() uint32 {
	return t.sent.Load()
}

// Abandoned returns the number of digits dropped by re-arming
func (t *Transmitter) Abandoned() uint32 {
	return t.abandoned.Load()
}
