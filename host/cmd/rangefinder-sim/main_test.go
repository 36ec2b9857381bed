package main

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"rangefinder/core"
)

func TestCompareFrames(t *testing.T) {
	c := qt.New(t)
	c.Assert(compareFrames([]uint32{810, 8}, []uint32{810, 8}), qt.Equals, 0)
	c.Assert(compareFrames([]uint32{810, 8}, []uint32{810, 9}), qt.Equals, 1)
	c.Assert(compareFrames([]uint32{810, 8, 2593}, []uint32{810}), qt.Equals, 2)
	c.Assert(compareFrames([]uint32{810}, []uint32{810, 8}), qt.Equals, 1)
}

func TestReported(t *testing.T) {
	c := qt.New(t)
	r := core.Reading{Conversion: core.Conversion{DistanceMM: 113000}, Overflow: true}
	c.Assert(reported(r), qt.Equals, uint32(core.MaxEncodable))

	r = core.Reading{Conversion: core.Conversion{DistanceMM: 972}, LEDError: errors.New("rejected")}
	c.Assert(reported(r), qt.Equals, uint32(972))
}
