// Package sim runs the ranging pipeline on a simulated board. Echo
// pulses, trigger pulses and UART ready events are timers on a virtual
// timeline measured in capture ticks.
package sim

import (
	"context"
	"errors"
	"fmt"
	"io"

	"rangefinder/core"
	"rangefinder/protocol"
)

// EchoLead is the delay from a trigger pulse to the echo rising edge,
// about the length of the sensor's ultrasonic burst
const EchoLead = 480

// Options configures a simulated board
type Options struct {
	Timing core.Timing
	Baud   uint32    // UART baud rate, sets the TX byte time
	Out    io.Writer // optional receiving end, gets each frame once sent
}

// Board is a virtual rangefinder: capture counter, echo pin, LED timer,
// trigger output and UART, all wired to a real core.Ranger.
type Board struct {
	sched  Scheduler
	timing core.Timing
	ranger *core.Ranger
	out    io.Writer

	counterBase uint64
	counterMax  uint16
	echo        bool

	ledClock    uint32
	ledOn       uint32
	ledPeriods  []uint32
	trigger     core.TriggerConfig
	triggerTick uint64 // capture ticks between trigger pulses
	nextTrigger uint64
	pulses      uint32

	byteTicks uint64
	wire      []byte
	frame     []byte // bytes sent this cycle, not yet passed to out
	txBusy    bool
	writeErr  error
}

// New builds a board and starts its ranging pipeline
func New(opts Options) (*Board, error) {
	if opts.Baud == 0 {
		opts.Baud = protocol.BaudRate
	}
	if opts.Timing.TimeoutMillis == 0 {
		return nil, errors.New("sim: measurement timeout must be set")
	}

	b := &Board{
		timing:     opts.Timing,
		out:        opts.Out,
		counterMax: opts.Timing.CounterMax(),
		// start bit, 8 data bits, stop bit
		byteTicks: uint64(opts.Timing.CaptureHz) * 10 / uint64(opts.Baud),
	}

	ranger, err := core.NewRanger(opts.Timing, core.Board{
		Echo:    b,
		Counter: b,
		LEDs:    b,
		Serial:  b,
		Trigger: b,
	})
	if err != nil {
		return nil, err
	}
	b.ranger = ranger

	if err := ranger.Start(); err != nil {
		return nil, err
	}
	return b, nil
}

// Ranger returns the pipeline running on the board
func (b *Board) Ranger() *core.Ranger {
	return b.ranger
}

// Now returns the virtual time in capture ticks
func (b *Board) Now() uint64 {
	return b.sched.Now()
}

// Echo simulates one echo pulse of ticks length after the next trigger
// pulse and runs the resulting cycle to completion.
func (b *Board) Echo(ctx context.Context, ticks uint32) (core.Reading, error) {
	rising := b.awaitTrigger() + EchoLead
	b.pulse(rising, ticks)
	return b.cycle(ctx)
}

// EchoAcrossWrap is Echo with the capture counter reading start at the
// rising edge, so long pulses wrap the counter.
func (b *Board) EchoAcrossWrap(ctx context.Context, start uint16, ticks uint32) (core.Reading, error) {
	rising := b.awaitTrigger() + EchoLead
	b.counterBase = rising - uint64(start&b.counterMax)
	b.pulse(rising, ticks)
	return b.cycle(ctx)
}

// Silence lets a trigger period pass without any echo. The cycle ends
// on the measurement timeout.
func (b *Board) Silence(ctx context.Context) (core.Reading, error) {
	timeout := uint64(b.timing.CaptureFromUS(b.timing.TimeoutMillis * 1000))
	b.sched.RunUntil(b.awaitTrigger() + timeout)
	return b.cycle(ctx)
}

// Orphan raises a falling edge on the echo line without a rising edge
func (b *Board) Orphan() {
	at := b.sched.Now() + 1
	b.sched.ScheduleTimer(&Timer{WakeTime: at, Handler: b.edge(false)})
	b.sched.RunUntil(at)
}

// Wire returns every byte transmitted so far
func (b *Board) Wire() []byte {
	return b.wire
}

// LEDPeriods returns every LED period programmed, starting with the
// initial one
func (b *Board) LEDPeriods() []uint32 {
	return b.ledPeriods
}

// TriggerPulses returns the number of trigger pulses emitted
func (b *Board) TriggerPulses() uint32 {
	return b.pulses
}

// WriteErr returns the first error writing to Options.Out
func (b *Board) WriteErr() error {
	return b.writeErr
}

// awaitTrigger advances to the next trigger pulse and returns its time
func (b *Board) awaitTrigger() uint64 {
	at := b.nextTrigger
	if at < b.sched.Now() {
		at = b.sched.Now()
	}
	b.sched.RunUntil(at)
	return at
}

func (b *Board) pulse(rising uint64, ticks uint32) {
	falling := rising + uint64(ticks)
	b.sched.ScheduleTimer(&Timer{WakeTime: rising, Handler: b.edge(true)})
	b.sched.ScheduleTimer(&Timer{WakeTime: falling, Handler: b.edge(false)})
	b.sched.RunUntil(falling)
}

// edge returns a timer handler driving the echo line to level and
// raising the capture interrupt
func (b *Board) edge(level bool) func(*Timer) uint8 {
	return func(*Timer) uint8 {
		b.echo = level
		if capture := b.ranger.Capture(); capture != nil {
			capture.HandleInterrupt()
		}
		return SF_DONE
	}
}

// cycle runs one main-loop iteration and lets the transmitter drain
func (b *Board) cycle(ctx context.Context) (core.Reading, error) {
	reading, err := b.ranger.Cycle(ctx)
	if err != nil {
		return reading, err
	}
	for b.txBusy {
		wake, ok := b.sched.NextWake()
		if !ok {
			break
		}
		b.sched.RunUntil(wake)
	}
	b.deliver()
	return reading, nil
}

// deliver passes the bytes sent this cycle to out in one write, so a
// reader polling out never sees half a frame
func (b *Board) deliver() {
	frame := b.frame
	b.frame = b.frame[:0]
	if b.out == nil || b.writeErr != nil || len(frame) == 0 {
		return
	}
	if _, err := b.out.Write(frame); err != nil {
		b.writeErr = err
	}
}

// Read implements core.CaptureCounter
func (b *Board) Read() uint16 {
	return uint16(b.sched.Now()-b.counterBase) & b.counterMax
}

// Reset implements core.CaptureCounter
func (b *Board) Reset() {
	b.counterBase = b.sched.Now()
}

// ConfigureEcho implements core.EchoDriver
func (b *Board) ConfigureEcho() error {
	b.echo = false
	return nil
}

// ReadEcho implements core.EchoDriver
func (b *Board) ReadEcho() bool {
	return b.echo
}

// ConfigureLEDs implements core.LEDDriver
func (b *Board) ConfigureLEDs(clockHz, onTicks, periodTicks uint32) error {
	if err := (core.Blink{ClockHz: clockHz, OnTicks: onTicks, PeriodTicks: periodTicks}).Validate(); err != nil {
		return fmt.Errorf("sim: %w", err)
	}
	b.ledClock = clockHz
	b.ledOn = onTicks
	b.ledPeriods = append(b.ledPeriods, periodTicks)
	return nil
}

// SetLEDPeriod implements core.LEDDriver
func (b *Board) SetLEDPeriod(periodTicks uint32) error {
	if err := (core.Blink{ClockHz: b.ledClock, OnTicks: b.ledOn, PeriodTicks: periodTicks}).Validate(); err != nil {
		return fmt.Errorf("sim: %w", err)
	}
	b.ledPeriods = append(b.ledPeriods, periodTicks)
	return nil
}

// StartTrigger implements core.TriggerDriver. The first pulse fires
// immediately, then once per period.
func (b *Board) StartTrigger(cfg core.TriggerConfig) error {
	if cfg.ClockHz == 0 || cfg.PeriodTicks == 0 {
		return errors.New("sim: invalid trigger configuration")
	}
	b.trigger = cfg
	b.triggerTick = uint64(cfg.PeriodTicks) * uint64(b.timing.CaptureHz) / uint64(cfg.ClockHz)
	b.nextTrigger = b.sched.Now()

	b.sched.ScheduleTimer(&Timer{
		WakeTime: b.nextTrigger,
		Handler: func(t *Timer) uint8 {
			b.pulses++
			t.WakeTime += b.triggerTick
			b.nextTrigger = t.WakeTime
			return SF_RESCHEDULE
		},
	})
	return nil
}

// WriteTx implements core.SerialDriver. The ready event follows one
// byte time later.
func (b *Board) WriteTx(c byte) {
	b.wire = append(b.wire, c)
	b.frame = append(b.frame, c)

	b.txBusy = true
	b.sched.ScheduleTimer(&Timer{
		WakeTime: b.sched.Now() + b.byteTicks,
		Handler: func(*Timer) uint8 {
			b.txBusy = false
			// OnReady may write the next byte, marking the line busy again
			b.ranger.Transmitter().OnReady()
			return SF_DONE
		},
	})
}
