package core

import "errors"

// mockEcho is a test implementation of EchoDriver
type mockEcho struct {
	level      bool
	configured bool
}

func (m *mockEcho) ConfigureEcho() error {
	m.configured = true
	return nil
}

func (m *mockEcho) ReadEcho() bool {
	return m.level
}

// mockCounter is a test implementation of CaptureCounter
type mockCounter struct {
	value  uint16
	resets int
}

func (m *mockCounter) Read() uint16 {
	return m.value
}

func (m *mockCounter) Reset() {
	m.value = 0
	m.resets++
}

var errBadLEDPeriod = errors.New("LED period out of range")

// mockLEDs records every LED period written. A non-zero maxPeriod
// rejects longer periods the way a hardware PWM with a short counter does.
type mockLEDs struct {
	clockHz   uint32
	onTicks   uint32
	periods   []uint32
	maxPeriod uint32
	rejected  int
}

func (m *mockLEDs) ConfigureLEDs(clockHz, onTicks, periodTicks uint32) error {
	m.clockHz = clockHz
	m.onTicks = onTicks
	m.periods = append(m.periods, periodTicks)
	return nil
}

func (m *mockLEDs) SetLEDPeriod(periodTicks uint32) error {
	if m.maxPeriod != 0 && periodTicks > m.maxPeriod {
		m.rejected++
		return errBadLEDPeriod
	}
	m.periods = append(m.periods, periodTicks)
	return nil
}

func (m *mockLEDs) last() uint32 {
	if len(m.periods) == 0 {
		return 0
	}
	return m.periods[len(m.periods)-1]
}

// mockSerial records every byte written to the TX register
type mockSerial struct {
	bytes []byte
}

func (m *mockSerial) WriteTx(b byte) {
	m.bytes = append(m.bytes, b)
}

// mockTrigger records the trigger configuration
type mockTrigger struct {
	cfg     TriggerConfig
	started bool
}

func (m *mockTrigger) StartTrigger(cfg TriggerConfig) error {
	m.cfg = cfg
	m.started = true
	return nil
}

type mockBoard struct {
	echo    *mockEcho
	counter *mockCounter
	leds    *mockLEDs
	serial  *mockSerial
	trigger *mockTrigger
}

func newMockBoard() *mockBoard {
	return &mockBoard{
		echo:    &mockEcho{},
		counter: &mockCounter{},
		leds:    &mockLEDs{},
		serial:  &mockSerial{},
		trigger: &mockTrigger{},
	}
}

func (m *mockBoard) board() Board {
	return Board{
		Echo:    m.echo,
		Counter: m.counter,
		LEDs:    m.leds,
		Serial:  m.serial,
		Trigger: m.trigger,
	}
}

// pulse drives one echo pulse of ticks length through the capture
// interrupt, starting at counter value start
func (m *mockBoard) pulse(capture *EchoCapture, start uint16, ticks uint32) {
	m.counter.value = start
	m.echo.level = true
	capture.HandleInterrupt()

	m.counter.value = start + uint16(ticks)
	m.echo.level = false
	capture.HandleInterrupt()
}

// drain delivers TX-ready events until the transmitter is idle
func drain(tx *Transmitter) {
	for i := 0; i <= DigitCapacity && tx.Pending() > 0; i++ {
		tx.OnReady()
	}
}
