//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWL = timerBase + 0x0C // Raw timer low word
)

// CaptureHz is the rate of the RP2040 microsecond timer the echo edges
// are timestamped against
const CaptureHz = 1000000

var timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))

// TimerCounter exposes the low 16 bits of the free-running microsecond
// timer as the capture counter. Reset moves the zero point instead of
// touching the timer, which the runtime also uses.
type TimerCounter struct {
	base volatile.Register32
	mask uint16
}

// NewTimerCounter creates a counter wrapping after mask
func NewTimerCounter(mask uint16) *TimerCounter {
	c := &TimerCounter{mask: mask}
	c.Reset()
	return c
}

// Read implements core.CaptureCounter
func (c *TimerCounter) Read() uint16 {
	return uint16(timerRAWL.Get()-c.base.Get()) & c.mask
}

// Reset implements core.CaptureCounter
func (c *TimerCounter) Reset() {
	c.base.Set(timerRAWL.Get())
}
