package monitor

import (
	"fmt"
	"io"
)

// PrintSink writes one line per sample
type PrintSink struct {
	w       io.Writer
	verbose bool
}

// NewPrintSink creates a sink writing to w. Verbose lines carry the
// sequence number and timestamp.
func NewPrintSink(w io.Writer, verbose bool) *PrintSink {
	return &PrintSink{w: w, verbose: verbose}
}

// Handle prints s
func (p *PrintSink) Handle(s Sample) error {
	var err error
	if p.verbose {
		_, err = fmt.Fprintf(p.w, "%6d %s %5d mm\n", s.Seq, s.Time.Format("15:04:05.000"), s.DistanceMM)
	} else {
		_, err = fmt.Fprintf(p.w, "%d mm\n", s.DistanceMM)
	}
	return err
}
