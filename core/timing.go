package core

import "time"

// Reference clock domains
const (
	CaptureFreq = 1048576 // SMCLK, echo capture counter
	LEDFreq     = 32768   // ACLK, LED and trigger timers
)

// Default conversion constants for the reference clocks
const (
	DefaultMinTicks         = 124   // ~118.25us, ~2cm
	DefaultMaxTicks         = 15994 // ~15.25ms, ~2.59m
	DefaultLEDScale         = 4
	DefaultLEDOffset        = 1557  // minimum blink period, ~47.5ms
	DefaultDistanceConstant = 170000 // mm/s, speed of sound halved for the round trip
	DefaultLEDOnTicks       = 328    // ~10ms
	DefaultLEDPeriod        = 3300   // ~100.7ms until the first measurement lands
	DefaultTriggerPeriod    = 3300   // ~100.7ms
	DefaultCounterBits      = 16
	DefaultTimeoutMillis    = 250
)

// Timing holds every clock-domain dependent constant used by the
// measurement pipeline. Tick values are expressed in the clock named
// by the field comment.
type Timing struct {
	CaptureHz uint32 `json:"capture_hz"` // echo capture counter frequency
	LEDHz     uint32 `json:"led_hz"`     // LED/trigger timer frequency

	MinTicks uint32 `json:"min_ticks"` // capture ticks
	MaxTicks uint32 `json:"max_ticks"` // capture ticks

	// LED period = clamped * LEDScale / LEDScaleDiv + LEDOffset (LED ticks)
	LEDScale    uint32 `json:"led_scale"`
	LEDScaleDiv uint32 `json:"led_scale_div"`
	LEDOffset   uint32 `json:"led_offset"`

	DistanceConstant uint32 `json:"distance_constant"` // mm per second of one-way flight

	LEDOnTicks       uint32 `json:"led_on_ticks"`       // LED ticks
	InitialLEDPeriod uint32 `json:"initial_led_period"` // LED ticks

	TriggerPeriod uint32 `json:"trigger_period"` // LED ticks
	TriggerHigh   uint32 `json:"trigger_high"`   // LED ticks

	CounterBits uint8 `json:"counter_bits"`

	TimeoutMillis uint32 `json:"measurement_timeout_ms"`
}

// Conversion is the result of converting one echo measurement
type Conversion struct {
	Ticks      uint32 // raw measurement
	Clamped    uint32 // measurement clamped to [MinTicks, MaxTicks]
	DistanceMM uint32 // derived from the raw measurement
	LEDPeriod  uint32 // derived from the clamped measurement
}

// TriggerConfig describes the free-running trigger output: high for
// HighTicks at the start of every PeriodTicks cycle.
type TriggerConfig struct {
	ClockHz     uint32
	PeriodTicks uint32
	HighTicks   uint32
}

// DefaultTiming returns the constants for the reference board clocks
func DefaultTiming() Timing {
	return Timing{
		CaptureHz:        CaptureFreq,
		LEDHz:            LEDFreq,
		MinTicks:         DefaultMinTicks,
		MaxTicks:         DefaultMaxTicks,
		LEDScale:         DefaultLEDScale,
		LEDScaleDiv:      1,
		LEDOffset:        DefaultLEDOffset,
		DistanceConstant: DefaultDistanceConstant,
		LEDOnTicks:       DefaultLEDOnTicks,
		InitialLEDPeriod: DefaultLEDPeriod,
		TriggerPeriod:    DefaultTriggerPeriod,
		TriggerHigh:      DefaultTriggerPeriod >> 11,
		CounterBits:      DefaultCounterBits,
		TimeoutMillis:    DefaultTimeoutMillis,
	}
}

// Validate checks the constants for internal consistency
func (t Timing) Validate() error {
	switch {
	case t.CaptureHz == 0:
		return &TimingError{Field: "capture_hz", Reason: "must be non-zero"}
	case t.LEDHz == 0:
		return &TimingError{Field: "led_hz", Reason: "must be non-zero"}
	case t.LEDScaleDiv == 0:
		return &TimingError{Field: "led_scale_div", Reason: "must be non-zero"}
	case t.MinTicks > t.MaxTicks:
		return &TimingError{Field: "min_ticks", Reason: "exceeds max_ticks"}
	case t.CounterBits == 0 || t.CounterBits > 16:
		return &TimingError{Field: "counter_bits", Reason: "must be between 1 and 16"}
	case t.TriggerPeriod == 0:
		return &TimingError{Field: "trigger_period", Reason: "must be non-zero"}
	case t.TriggerHigh == 0 || t.TriggerHigh >= t.TriggerPeriod:
		return &TimingError{Field: "trigger_high", Reason: "must be between 1 and trigger_period-1"}
	case t.LEDOnTicks >= t.LEDPeriod(t.MinTicks):
		return &TimingError{Field: "led_on_ticks", Reason: "must be shorter than the minimum LED period"}
	}
	return nil
}

// Clamp restricts ticks to [MinTicks, MaxTicks]
func (t Timing) Clamp(ticks uint32) uint32 {
	if ticks < t.MinTicks {
		return t.MinTicks
	}
	if ticks > t.MaxTicks {
		return t.MaxTicks
	}
	return ticks
}

// LEDPeriod maps clamped capture ticks to an LED timer period
func (t Timing) LEDPeriod(clamped uint32) uint32 {
	return uint32(uint64(clamped)*uint64(t.LEDScale)/uint64(t.LEDScaleDiv)) + t.LEDOffset
}

// DistanceMM converts raw capture ticks to millimetres. The float
// intermediate keeps ticks*DistanceConstant from overflowing 32 bits.
func (t Timing) DistanceMM(ticks uint32) uint32 {
	return uint32(float64(ticks) * float64(t.DistanceConstant) / float64(t.CaptureHz))
}

// Convert maps an echo measurement to a distance and LED period.
// Only the LED period is bounded; the distance uses the raw ticks.
func (t Timing) Convert(ticks uint32) Conversion {
	clamped := t.Clamp(ticks)
	return Conversion{
		Ticks:      ticks,
		Clamped:    clamped,
		DistanceMM: t.DistanceMM(ticks),
		LEDPeriod:  t.LEDPeriod(clamped),
	}
}

// Trigger returns the trigger output configuration
func (t Timing) Trigger() TriggerConfig {
	return TriggerConfig{
		ClockHz:     t.LEDHz,
		PeriodTicks: t.TriggerPeriod,
		HighTicks:   t.TriggerHigh,
	}
}

// CounterMax returns the largest value of the capture counter
func (t Timing) CounterMax() uint16 {
	return uint16(uint32(1)<<t.CounterBits - 1)
}

// MeasurementTimeout is the longest the main loop waits for an echo
func (t Timing) MeasurementTimeout() time.Duration {
	return time.Duration(t.TimeoutMillis) * time.Millisecond
}

// CaptureFromUS converts microseconds to capture ticks
func (t Timing) CaptureFromUS(us uint32) uint32 {
	return uint32(uint64(us) * uint64(t.CaptureHz) / 1000000)
}

// CaptureToUS converts capture ticks to microseconds
func (t Timing) CaptureToUS(ticks uint32) uint32 {
	return uint32(uint64(ticks) * 1000000 / uint64(t.CaptureHz))
}

// Rescale returns a copy of t for a capture counter running at
// captureHz. Capture-tick bounds are scaled proportionally and the LED
// scale ratio is adjusted so the LED period for a given physical echo
// time is unchanged.
func (t Timing) Rescale(captureHz uint32) Timing {
	if captureHz == 0 || captureHz == t.CaptureHz {
		return t
	}
	out := t
	out.CaptureHz = captureHz
	out.MinTicks = scaleTicks(t.MinTicks, captureHz, t.CaptureHz)
	out.MaxTicks = scaleTicks(t.MaxTicks, captureHz, t.CaptureHz)

	num := uint64(t.LEDScale) * uint64(t.CaptureHz)
	div := uint64(t.LEDScaleDiv) * uint64(captureHz)
	g := gcd(num, div)
	out.LEDScale = uint32(num / g)
	out.LEDScaleDiv = uint32(div / g)
	return out
}

// scaleTicks rounds ticks*to/from to the nearest integer
func scaleTicks(ticks, to, from uint32) uint32 {
	return uint32((uint64(ticks)*uint64(to) + uint64(from)/2) / uint64(from))
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}
