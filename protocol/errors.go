package protocol

import (
	"errors"
	"fmt"
)

// ErrFrameTooLong is returned when a frame carries more than MaxDigits digits
var ErrFrameTooLong = errors.New("frame exceeds maximum digit count")

// UnexpectedByteError reports a byte that is neither a digit nor the separator
type UnexpectedByteError struct {
	Byte   byte
	Offset int64 // position in the stream since the decoder was created
}

func (e *UnexpectedByteError) Error() string {
	return fmt.Sprintf("unexpected byte 0x%02X at offset %d", e.Byte, e.Offset)
}

// IsUnexpectedByte returns true if the error is an UnexpectedByteError.
func IsUnexpectedByte(err error) bool {
	var ube *UnexpectedByteError
	return errors.As(err, &ube)
}
