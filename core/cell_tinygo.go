//go:build tinygo

package core

import (
	"context"
	"time"
)

// pollInterval bounds the latency between the capture interrupt and the
// main loop noticing the measurement
const pollInterval = 200 * time.Microsecond

// signal is a no-op on TinyGo: Publish runs in interrupt context where
// channel operations are not allowed, so the consumer polls instead.
func (c *MeasurementCell) signal() {}

// await sleeps one poll interval, leaving interrupts serviceable
func (c *MeasurementCell) await(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	time.Sleep(pollInterval)
	return nil
}
