//go:build rp2040

package main

import (
	"machine"
)

// EchoPin is the echo input. Both edges raise the GPIO interrupt, which
// hands over to the capture engine.
type EchoPin struct {
	pin     machine.Pin
	handler func()
}

// NewEchoPin creates the echo driver on pin
func NewEchoPin(pin machine.Pin) *EchoPin {
	return &EchoPin{pin: pin}
}

// OnEdge sets the function called from the edge interrupt. Must be set
// before ConfigureEcho.
func (e *EchoPin) OnEdge(handler func()) {
	e.handler = handler
}

// ConfigureEcho implements core.EchoDriver
func (e *EchoPin) ConfigureEcho() error {
	e.pin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	if e.handler == nil {
		return nil
	}
	return e.pin.SetInterrupt(machine.PinRising|machine.PinFalling, func(machine.Pin) {
		e.handler()
	})
}

// ReadEcho implements core.EchoDriver
func (e *EchoPin) ReadEcho() bool {
	return e.pin.Get()
}
