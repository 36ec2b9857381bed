package protocol

// Decoder turns the byte stream back into distances. A separator opens
// a frame and closes the previous one, so a value is emitted when the
// next frame starts or on Flush. Digits seen before the first separator
// belong to a frame whose start was missed and are discarded.
type Decoder struct {
	value   uint32
	digits  int
	inFrame bool
	offset  int64
}

// NewDecoder creates a decoder waiting for the first separator
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed processes one byte. ok reports that a complete frame was closed
// and value holds its distance. On error the decoder drops the current
// frame and resynchronises on the next separator.
func (d *Decoder) Feed(b byte) (value uint32, ok bool, err error) {
	offset := d.offset
	d.offset++

	switch {
	case b == Separator:
		value, ok = d.value, d.inFrame
		d.startFrame()
		return value, ok, nil

	case b >= '0' && b <= '9':
		if !d.inFrame {
			return 0, false, nil
		}
		if d.digits == MaxDigits {
			d.inFrame = false
			return 0, false, ErrFrameTooLong
		}
		d.value = d.value*10 + uint32(b-'0')
		d.digits++
		return 0, false, nil

	default:
		d.inFrame = false
		return 0, false, &UnexpectedByteError{Byte: b, Offset: offset}
	}
}

// Decode feeds every byte of p and returns the closed frames. Decoding
// continues past bad bytes; the first error is returned.
func (d *Decoder) Decode(p []byte) ([]uint32, error) {
	var values []uint32
	var firstErr error
	for _, b := range p {
		value, ok, err := d.Feed(b)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if ok {
			values = append(values, value)
		}
	}
	return values, firstErr
}

// Flush closes the open frame, e.g. when the line has gone idle after a
// burst. The decoder then waits for the next separator.
func (d *Decoder) Flush() (uint32, bool) {
	if !d.inFrame {
		return 0, false
	}
	value := d.value
	d.inFrame = false
	d.value = 0
	d.digits = 0
	return value, true
}

func (d *Decoder) startFrame() {
	d.value = 0
	d.digits = 0
	d.inFrame = true
}
