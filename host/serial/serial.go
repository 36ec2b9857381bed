package serial

import (
	"io"

	"rangefinder/protocol"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - In-memory lines (for the simulator and tests)
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string `json:"device"`

	// Baud rate (the firmware transmits at 9600 8N1)
	Baud int `json:"baud"`

	// Read timeout in milliseconds (0 = blocking)
	// The monitor treats a timed-out read as an idle line
	ReadTimeout int `json:"read_timeout_ms"`
}

// DefaultConfig returns the configuration matching the firmware UART
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        protocol.BaudRate,
		ReadTimeout: 50, // shorter than the ~100ms measurement cycle
	}
}
