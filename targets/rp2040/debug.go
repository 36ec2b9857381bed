//go:build rp2040

package main

import (
	"machine"

	"rangefinder/core"
)

// InitDebug routes core debug output to USB CDC. UART0 carries the
// distance stream, so nothing else may write to it.
func InitDebug() {
	// Configure machine.Serial (which is USB CDC on RP2040)
	if err := machine.Serial.Configure(machine.UARTConfig{}); err != nil {
		return
	}

	core.SetDebugWriter(func(s string) {
		machine.Serial.Write([]byte(s))
		machine.Serial.Write([]byte("\r\n"))
	})
	core.InitAsyncDebug()
}
