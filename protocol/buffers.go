package protocol

// FifoBuffer is a fixed-size byte ring between the transmitting and the
// receiving end of a serial line. Writes that do not fit are cut short;
// the caller decides whether the remainder is lost.
type FifoBuffer struct {
	buf   []byte
	head  int // next byte to read
	count int
}

// NewFifoBuffer creates a FIFO holding up to size bytes
func NewFifoBuffer(size int) *FifoBuffer {
	if size < 1 {
		size = 1
	}
	return &FifoBuffer{buf: make([]byte, size)}
}

// Write appends as much of data as fits and returns the count written
func (f *FifoBuffer) Write(data []byte) int {
	n := min(len(data), len(f.buf)-f.count)
	tail := (f.head + f.count) % len(f.buf)
	first := copy(f.buf[tail:], data[:n])
	copy(f.buf, data[first:n])
	f.count += n
	return n
}

// Read moves up to len(p) bytes into p, oldest first
func (f *FifoBuffer) Read(p []byte) int {
	n := min(len(p), f.count)
	first := copy(p[:n], f.buf[f.head:])
	copy(p[first:n], f.buf)
	f.head = (f.head + n) % len(f.buf)
	f.count -= n
	return n
}

// Available returns the number of buffered bytes
func (f *FifoBuffer) Available() int {
	return f.count
}

// IsEmpty reports whether nothing is buffered
func (f *FifoBuffer) IsEmpty() bool {
	return f.count == 0
}

// Reset drops everything buffered
func (f *FifoBuffer) Reset() {
	f.head = 0
	f.count = 0
}
