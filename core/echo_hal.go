package core

// EchoDriver is the abstract echo input that the capture engine samples.
// Platform-specific implementations handle pin muxing and the dual-edge
// interrupt that calls HandleCaptureInterrupt.
type EchoDriver interface {
	// ConfigureEcho configures the echo pin as an input capturing both edges
	ConfigureEcho() error

	// ReadEcho reads the current echo level (true while the echo is asserted)
	ReadEcho() bool
}

// Global singleton used by core code.
var echoDriver EchoDriver

// SetEchoDriver is called by target-specific code to register its driver.
func SetEchoDriver(d EchoDriver) {
	echoDriver = d
}

// MustEcho returns the configured driver or panics if missing.
func MustEcho() EchoDriver {
	if echoDriver == nil {
		panic("echo driver not configured")
	}
	return echoDriver
}
