package core

// CaptureCounter is the free-running counter the echo edges are
// timestamped against. It wraps at Timing.CounterMax.
type CaptureCounter interface {
	// Read returns the current counter value
	Read() uint16

	// Reset sets the counter back to zero
	Reset()
}

// Global singleton used by core code.
var captureCounter CaptureCounter

// SetCaptureCounter is called by target-specific code to register its counter.
func SetCaptureCounter(c CaptureCounter) {
	captureCounter = c
}

// MustCounter returns the configured counter or panics if missing.
func MustCounter() CaptureCounter {
	if captureCounter == nil {
		panic("capture counter not configured")
	}
	return captureCounter
}
