package protocol

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestFifoBuffer(t *testing.T) {
	c := qt.New(t)
	fifo := NewFifoBuffer(8)

	c.Assert(fifo.IsEmpty(), qt.IsTrue)

	c.Assert(fifo.Write([]byte(" 810")), qt.Equals, 4)
	c.Assert(fifo.Available(), qt.Equals, 4)

	readBuf := make([]byte, 2)
	c.Assert(fifo.Read(readBuf), qt.Equals, 2)
	c.Assert(string(readBuf), qt.Equals, " 8")
	c.Assert(fifo.Available(), qt.Equals, 2)

	// Full capacity is usable
	fifo.Reset()
	c.Assert(fifo.IsEmpty(), qt.IsTrue)
	c.Assert(fifo.Write(make([]byte, 12)), qt.Equals, 8)
	c.Assert(fifo.Write([]byte{1}), qt.Equals, 0)
}

func TestFifoBufferWrapAround(t *testing.T) {
	c := qt.New(t)
	fifo := NewFifoBuffer(5)

	fifo.Write([]byte{1, 2, 3, 4})
	fifo.Read(make([]byte, 3))

	// Tail wraps past the end of the ring
	c.Assert(fifo.Write([]byte{5, 6, 7, 8}), qt.Equals, 4)
	c.Assert(fifo.Available(), qt.Equals, 5)

	allData := make([]byte, 8)
	c.Assert(fifo.Read(allData), qt.Equals, 5)
	c.Assert(allData[:5], qt.DeepEquals, []byte{4, 5, 6, 7, 8})
	c.Assert(fifo.IsEmpty(), qt.IsTrue)
	c.Assert(fifo.Read(allData), qt.Equals, 0)
}
