package core

import (
	"errors"
	"fmt"
)

var (
	// ErrMeasurementTimeout is returned when no echo completes within
	// the measurement timeout, e.g. a disconnected or stuck echo line.
	ErrMeasurementTimeout = errors.New("measurement timeout")

	// ErrDigitOverflow is returned when a distance has more decimal
	// digits than the digit buffer holds.
	ErrDigitOverflow = errors.New("distance exceeds digit buffer capacity")

	// ErrLEDPeriod is returned for an LED period that leaves no off
	// time after the fixed on-time.
	ErrLEDPeriod = errors.New("LED period not above on-time")

	// ErrInvalidTiming wraps every TimingError
	ErrInvalidTiming = errors.New("invalid timing configuration")
)

// TimingError reports an inconsistent timing constant
type TimingError struct {
	Field  string
	Reason string
}

func (e *TimingError) Error() string {
	return fmt.Sprintf("invalid timing configuration: %s %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidTiming
func (e *TimingError) Unwrap() error {
	return ErrInvalidTiming
}

// DigitOverflowError carries the distance that did not fit
type DigitOverflowError struct {
	Distance uint32
}

func (e *DigitOverflowError) Error() string {
	return fmt.Sprintf("distance %d exceeds %d digits", e.Distance, DigitCapacity)
}

func (e *DigitOverflowError) Unwrap() error {
	return ErrDigitOverflow
}
