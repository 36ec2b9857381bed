package pio

import (
	"errors"

	"rangefinder/core"
)

// triggerOversample is the PIO clock relative to the trigger timer clock.
// It leaves room for the fixed instruction overhead inside a 1-tick pulse
// while the low phase still fits a 16-bit loop counter.
const triggerOversample = 16

// Fixed cycles per phase outside the delay loops (see buildTriggerProgram)
const (
	highOverhead = 3
	lowOverhead  = 6
)

// TriggerWord packs a trigger configuration into the program's config
// word. Both phases are counted in PIO cycles at ClockHz*triggerOversample.
func TriggerWord(cfg core.TriggerConfig) (uint32, error) {
	high := cfg.HighTicks * triggerOversample
	low := cfg.LowTicks() * triggerOversample
	if high <= highOverhead || low <= lowOverhead {
		return 0, errors.New("trigger pulse too short for PIO program")
	}
	highLoops := high - highOverhead
	lowLoops := low - lowOverhead
	if highLoops > 0xFFFF || lowLoops > 0xFFFF {
		return 0, errors.New("trigger period too long for PIO program")
	}
	return highLoops | lowLoops<<16, nil
}

// clkDiv returns the integer and fractional (1/256) divider taking the
// system clock down to pioHz
func clkDiv(sysHz, pioHz uint32) (uint16, uint8, error) {
	div := uint64(sysHz) * 256 / uint64(pioHz)
	whole := div >> 8
	if whole == 0 || whole > 0xFFFF {
		return 0, 0, errors.New("PIO clock divider out of range")
	}
	return uint16(whole), uint8(div & 0xFF), nil
}
