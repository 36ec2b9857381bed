//go:build rp2040

package main

// ModeConfig determines how echo pulses are measured
type ModeConfig struct {
	// Set to false to capture both echo edges in the GPIO interrupt
	// against the microsecond timer, with the trigger driven by PIO.
	// Set to true to trigger and time the echo in software with the
	// hcsr04 driver; coarser, but needs no PIO or interrupt.
	Polled bool
}

// GetMode returns the current mode configuration
// This can be modified at compile time
func GetMode() ModeConfig {
	return ModeConfig{
		Polled: false,
	}
}
