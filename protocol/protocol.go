// Package protocol implements the rangefinder serial stream format.
//
// Every measurement cycle the firmware sends one ASCII space followed by
// the distance in millimetres as ASCII decimal digits, most significant
// first. A zero distance is sent as the space alone. There is no line
// terminator and no checksum: " 810 8 2593".
package protocol

// Version represents the stream format version
const Version = "1"

// Stream constants
const (
	BaudRate  = 9600 // 8N1
	Separator = ' '
	MaxDigits = 5 // digits per frame, 99999mm
)

// AppendFrame appends the wire form of one distance to dst
func AppendFrame(dst []byte, distance uint32) []byte {
	dst = append(dst, Separator)
	if distance == 0 {
		return dst
	}
	var digits [10]byte
	n := 0
	for distance > 0 {
		digits[n] = byte('0' + distance%10)
		distance /= 10
		n++
	}
	for n > 0 {
		n--
		dst = append(dst, digits[n])
	}
	return dst
}
