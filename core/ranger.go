// Ranging main loop
// Waits for each echo measurement, updates the LEDs and streams the distance
package core

import (
	"context"
	"errors"
	"fmt"
)

// Reading is the outcome of one ranging cycle
type Reading struct {
	Cycle uint32
	Conversion
	Buffer   DigitBuffer
	TimedOut bool  // no echo arrived, MaxTicks was reported instead
	Overflow bool  // distance saturated at MaxEncodable
	LEDError error // LED period update failed, the distance was still sent
}

// Stats counts abnormal events since start
type Stats struct {
	Cycles      uint32
	Timeouts    uint32
	Overflows   uint32
	LEDErrors   uint32 // rejected LED period updates
	Overwritten uint32 // measurements replaced before the loop read them
	Orphans     uint32 // falling edges without a rising edge
	Sent        uint32 // bytes written to the TX register
	Abandoned   uint32 // digits dropped by re-arming the transmitter
}

// Ranger orchestrates one sensor: capture engine, converter, encoder,
// transmitter and LED feedback.
type Ranger struct {
	timing  Timing
	board   Board
	cell    *MeasurementCell
	capture *EchoCapture
	tx      *Transmitter

	cycles    uint32
	timeouts  uint32
	overflows uint32
	ledErrors uint32
}

// NewRanger validates timing and wires the pipeline to board.
// board.Echo and board.Trigger may be nil when measurements are
// published into Cell by another source.
func NewRanger(timing Timing, board Board) (*Ranger, error) {
	if err := timing.Validate(); err != nil {
		return nil, err
	}
	if board.LEDs == nil || board.Serial == nil {
		return nil, errors.New("ranger needs LED and serial drivers")
	}

	r := &Ranger{
		timing: timing,
		board:  board,
		cell:   NewMeasurementCell(),
		tx:     NewTransmitter(board.Serial),
	}
	if board.Echo != nil && board.Counter != nil {
		r.capture = NewEchoCapture(board.Echo, board.Counter, timing.CounterMax(), r.cell)
	}
	return r, nil
}

// Start configures the peripherals: echo input, LED timer with its
// initial period, and the free-running trigger output.
func (r *Ranger) Start() error {
	if r.board.Echo != nil {
		if err := r.board.Echo.ConfigureEcho(); err != nil {
			return fmt.Errorf("configure echo: %w", err)
		}
	}

	if err := r.board.LEDs.ConfigureLEDs(r.timing.LEDHz, r.timing.LEDOnTicks, r.timing.InitialLEDPeriod); err != nil {
		return fmt.Errorf("configure LEDs: %w", err)
	}

	if r.board.Trigger != nil {
		if err := r.board.Trigger.StartTrigger(r.timing.Trigger()); err != nil {
			return fmt.Errorf("start trigger: %w", err)
		}
	}

	DebugPrintln("[RANGER] started")
	return nil
}

// Capture returns the capture engine the echo interrupt must call, or
// nil when the board has no echo input
func (r *Ranger) Capture() *EchoCapture {
	return r.capture
}

// Transmitter returns the transmitter the TX-ready interrupt must call
func (r *Ranger) Transmitter() *Transmitter {
	return r.tx
}

// Cell returns the measurement cell
func (r *Ranger) Cell() *MeasurementCell {
	return r.cell
}

// Timing returns the active timing constants
func (r *Ranger) Timing() Timing {
	return r.timing
}

// Cycle runs one iteration of the main loop. It blocks until a
// measurement arrives or the measurement timeout expires; on timeout the
// maximum distance is reported and the capture engine is reset.
func (r *Ranger) Cycle(ctx context.Context) (Reading, error) {
	reading := Reading{Cycle: r.cycles}

	ticks, err := r.wait(ctx)
	if err != nil {
		if ctx.Err() != nil || !errors.Is(err, ErrMeasurementTimeout) {
			return reading, err
		}
		ticks = r.timing.MaxTicks
		reading.TimedOut = true
		r.timeouts++
		if r.capture != nil {
			r.capture.Reset()
		}
		RecordTiming(EvtTimeout, r.cycles, 0, 0)
		DebugAsync("[RANGER] no echo, reporting max distance")
	}

	reading.Conversion = r.timing.Convert(ticks)

	// A failed LED update must not cost the distance report
	if err := r.board.LEDs.SetLEDPeriod(reading.LEDPeriod); err != nil {
		reading.LEDError = err
		r.ledErrors++
		RecordTiming(EvtLEDError, r.cycles, reading.LEDPeriod, 0)
		DebugAsync("[RANGER] set LED period: " + err.Error())
	}

	if r.board.Counter != nil {
		r.board.Counter.Reset()
	}

	buf, err := Encode(reading.DistanceMM)
	if err != nil {
		reading.Overflow = true
		r.overflows++
		RecordTiming(EvtOverflow, r.cycles, reading.DistanceMM, 0)
		buf, _ = Encode(MaxEncodable)
	}
	reading.Buffer = buf

	r.tx.Arm(buf)

	RecordTiming(EvtMeasure, r.cycles, ticks, reading.DistanceMM)
	r.cycles++
	return reading, nil
}

// Run loops Cycle until ctx is cancelled, passing every reading to
// observe when it is non-nil.
func (r *Ranger) Run(ctx context.Context, observe func(Reading)) error {
	for {
		reading, err := r.Cycle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if observe != nil {
			observe(reading)
		}
	}
}

// Stats returns the event counters
func (r *Ranger) Stats() Stats {
	s := Stats{
		Cycles:      r.cycles,
		Timeouts:    r.timeouts,
		Overflows:   r.overflows,
		LEDErrors:   r.ledErrors,
		Overwritten: r.cell.Overwritten(),
		Sent:        r.tx.Sent(),
		Abandoned:   r.tx.Abandoned(),
	}
	if r.capture != nil {
		s.Orphans = r.capture.Orphans()
	}
	return s
}

// wait takes the next measurement, bounded by the measurement timeout
func (r *Ranger) wait(ctx context.Context) (uint32, error) {
	timeout := r.timing.MeasurementTimeout()
	if timeout <= 0 {
		return r.cell.Wait(ctx)
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return r.cell.Wait(waitCtx)
}
