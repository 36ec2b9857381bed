//go:build rp2040

package main

import (
	"errors"
	"machine"
	"runtime/volatile"
	"time"

	"rangefinder/core"
)

// LEDBlinker drives both proximity LEDs: lit for the fixed on-time at the
// start of every period, dark for the rest of it.
//
// The longest blink period is ~2s. A PWM slice tops out near 268ms even
// at its slowest divider, so the cycle is timed by the scheduler and the
// pins are plain outputs.
type LEDBlinker struct {
	pins [2]machine.Pin

	clockHz uint32
	onTicks uint32
	period  volatile.Register32 // LED ticks, picked up at the next cycle

	running bool
}

// NewLEDBlinker creates the LED driver on two distinct pins
func NewLEDBlinker(ledA, ledB machine.Pin) (*LEDBlinker, error) {
	if ledA == ledB {
		return nil, errors.New("LED pins must differ")
	}
	return &LEDBlinker{pins: [2]machine.Pin{ledA, ledB}}, nil
}

// ConfigureLEDs implements core.LEDDriver and starts the blink loop
func (d *LEDBlinker) ConfigureLEDs(clockHz, onTicks, periodTicks uint32) error {
	blink := core.Blink{ClockHz: clockHz, OnTicks: onTicks, PeriodTicks: periodTicks}
	if err := blink.Validate(); err != nil {
		return err
	}

	for _, pin := range d.pins {
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		pin.Low()
	}

	d.clockHz = clockHz
	d.onTicks = onTicks
	d.period.Set(periodTicks)

	if !d.running {
		d.running = true
		go d.run()
	}
	return nil
}

// SetLEDPeriod implements core.LEDDriver. Every period with an off phase
// is accepted; nothing is clipped.
func (d *LEDBlinker) SetLEDPeriod(periodTicks uint32) error {
	blink := core.Blink{ClockHz: d.clockHz, OnTicks: d.onTicks, PeriodTicks: periodTicks}
	if err := blink.Validate(); err != nil {
		return err
	}
	d.period.Set(periodTicks)
	return nil
}

func (d *LEDBlinker) run() {
	for {
		blink := core.Blink{ClockHz: d.clockHz, OnTicks: d.onTicks, PeriodTicks: d.period.Get()}
		d.set(true)
		time.Sleep(blink.On())
		d.set(false)
		time.Sleep(blink.Off())
	}
}

func (d *LEDBlinker) set(on bool) {
	for _, pin := range d.pins {
		pin.Set(on)
	}
}
