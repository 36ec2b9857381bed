package core

import (
	"context"
	"fmt"
	"sync/atomic"
)

// readyBit marks a published, unconsumed measurement in MeasurementCell.slot
const readyBit = uint64(1) << 32

// MeasurementCell hands one echo measurement from the capture interrupt
// to the main loop. Value and ready flag share a single atomic word so
// the consumer never observes a half-updated measurement, and taking a
// value clears the flag in the same step.
type MeasurementCell struct {
	slot        atomic.Uint64
	overwritten atomic.Uint32
	notify      chan struct{}
}

// NewMeasurementCell creates an empty cell
func NewMeasurementCell() *MeasurementCell {
	return &MeasurementCell{notify: make(chan struct{}, 1)}
}

// Publish stores a completed measurement and sets the ready flag.
// Safe to call from interrupt context. An unconsumed measurement is
// replaced, keeping at most one in flight.
func (c *MeasurementCell) Publish(ticks uint32) {
	old := c.slot.Swap(uint64(ticks) | readyBit)
	if old&readyBit != 0 {
		c.overwritten.Add(1)
	}
	c.signal()
}

// Ready reports whether a measurement is waiting
func (c *MeasurementCell) Ready() bool {
	return c.slot.Load()&readyBit != 0
}

// TryTake consumes the pending measurement, if any
func (c *MeasurementCell) TryTake() (uint32, bool) {
	for {
		v := c.slot.Load()
		if v&readyBit == 0 {
			return 0, false
		}
		if c.slot.CompareAndSwap(v, v&^readyBit) {
			return uint32(v), true
		}
	}
}

// Wait blocks until a measurement is published and consumes it. When
// ctx expires first the error wraps ErrMeasurementTimeout; cancellation
// returns ctx.Err() unchanged.
func (c *MeasurementCell) Wait(ctx context.Context) (uint32, error) {
	for {
		if ticks, ok := c.TryTake(); ok {
			return ticks, nil
		}
		if err := c.await(ctx); err != nil {
			if err == context.DeadlineExceeded {
				return 0, fmt.Errorf("%w: %v", ErrMeasurementTimeout, err)
			}
			return 0, err
		}
	}
}

// Clear drops a pending measurement without reading it
func (c *MeasurementCell) Clear() {
	c.TryTake()
}

// Overwritten returns how many measurements were replaced before the
// main loop consumed them
func (c *MeasurementCell) Overwritten() uint32 {
	return c.overwritten.Load()
}
