package core

import (
	"fmt"
	"time"
)

// LEDDriver is the abstract interface for the two proximity LEDs. Both
// LEDs share one timer: a fixed on-time and a period that follows the
// measured distance.
type LEDDriver interface {
	// ConfigureLEDs starts both LED outputs in reset/set mode
	// clockHz: timer clock the tick values are expressed in
	ConfigureLEDs(clockHz, onTicks, periodTicks uint32) error

	// SetLEDPeriod updates the shared period register
	SetLEDPeriod(periodTicks uint32) error
}

// Global singleton used by core code.
var ledDriver LEDDriver

// SetLEDDriver is called by target-specific code to register its driver.
func SetLEDDriver(d LEDDriver) {
	ledDriver = d
}

// MustLED returns the configured driver or panics if missing.
func MustLED() LEDDriver {
	if ledDriver == nil {
		panic("LED driver not configured")
	}
	return ledDriver
}

// Blink describes one LED cycle: lit for OnTicks at the start of every
// PeriodTicks cycle of a ClockHz timer.
type Blink struct {
	ClockHz     uint32
	OnTicks     uint32
	PeriodTicks uint32
}

// Validate rejects cycles without an off phase
func (b Blink) Validate() error {
	if b.ClockHz == 0 || b.PeriodTicks <= b.OnTicks {
		return fmt.Errorf("%w: period %d, on %d", ErrLEDPeriod, b.PeriodTicks, b.OnTicks)
	}
	return nil
}

// On returns how long the LEDs stay lit each cycle
func (b Blink) On() time.Duration {
	return ticksToDuration(b.OnTicks, b.ClockHz)
}

// Off returns the dark remainder of the cycle
func (b Blink) Off() time.Duration {
	return ticksToDuration(b.PeriodTicks, b.ClockHz) - b.On()
}
