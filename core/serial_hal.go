package core

// SerialDriver is the transmit side of the UART. Writing the TX
// register starts a byte; the platform calls Transmitter.OnReady once
// the register can accept the next one.
type SerialDriver interface {
	WriteTx(b byte)
}

// Global singleton used by core code.
var serialDriver SerialDriver

// SetSerialDriver is called by target-specific code to register its driver.
func SetSerialDriver(d SerialDriver) {
	serialDriver = d
}

// MustSerial returns the configured driver or panics if missing.
func MustSerial() SerialDriver {
	if serialDriver == nil {
		panic("serial driver not configured")
	}
	return serialDriver
}
