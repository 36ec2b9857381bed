//go:build rp2040

package main

import (
	"context"
	"machine"
	"time"

	"tinygo.org/x/drivers/hcsr04"

	"rangefinder/core"
)

// PolledSensor measures echo pulses in software and publishes them to
// the ranger's measurement cell, standing in for the capture interrupt
type PolledSensor struct {
	dev    hcsr04.Device
	timing core.Timing
	period time.Duration
}

// NewPolledSensor creates a polled sensor on the trigger and echo pins
func NewPolledSensor(trigger, echo machine.Pin, timing core.Timing) *PolledSensor {
	dev := hcsr04.New(trigger, echo)
	dev.Configure()
	return &PolledSensor{
		dev:    dev,
		timing: timing,
		period: timing.Trigger().Period(),
	}
}

// Run measures once per trigger period until ctx is done. A pulse the
// driver gives up on is not published; the ranger's timeout covers it.
func (p *PolledSensor) Run(ctx context.Context, cell *core.MeasurementCell) {
	for ctx.Err() == nil {
		start := time.Now()
		if us := p.dev.ReadPulse(); us > 0 {
			cell.Publish(p.timing.CaptureFromUS(uint32(us)))
		}
		if rest := p.period - time.Since(start); rest > 0 {
			time.Sleep(rest)
		}
	}
}
