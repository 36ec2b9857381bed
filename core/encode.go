package core

// Digit buffer layout
const (
	DigitCapacity = 5   // decimal digits
	Separator     = ' ' // sent first on every cycle
	DigitOffset   = '0'

	// MaxEncodable is the largest distance that fits the digit buffer
	MaxEncodable = 99999
)

// DigitBuffer holds one distance as decimal digit values (0-9),
// least significant first, with the separator at Slots[Count].
type DigitBuffer struct {
	Slots [DigitCapacity + 1]byte
	Count int // number of digits, also the transmit cursor start
}

// Encode fills a DigitBuffer with the digits of distance. A zero
// distance produces no digits, only the separator.
func Encode(distance uint32) (DigitBuffer, error) {
	var buf DigitBuffer
	if distance > MaxEncodable {
		buf.Slots[0] = Separator
		return buf, &DigitOverflowError{Distance: distance}
	}

	for distance > 0 {
		buf.Slots[buf.Count] = byte(distance % 10)
		distance /= 10
		buf.Count++
	}
	buf.Slots[buf.Count] = Separator
	return buf, nil
}

// Digits returns the digit values in buffer order (LSD first)
func (b *DigitBuffer) Digits() []byte {
	return b.Slots[:b.Count]
}

// Len returns digits plus separator
func (b *DigitBuffer) Len() int {
	return b.Count + 1
}

// Wire returns the bytes in the order the transmitter sends them: the
// separator kick-start, then the digits most significant first as ASCII.
func (b *DigitBuffer) Wire() []byte {
	out := make([]byte, 0, b.Len())
	out = append(out, b.Slots[b.Count])
	for i := b.Count - 1; i >= 0; i-- {
		out = append(out, b.Slots[i]+DigitOffset)
	}
	return out
}
