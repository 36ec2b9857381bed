package core

import (
	"errors"
	"testing"
	"time"
)

func TestConvertClamp(t *testing.T) {
	timing := DefaultTiming()

	testCases := []struct {
		ticks   uint32
		clamped uint32
	}{
		{0, 124},
		{50, 124},
		{123, 124},
		{124, 124},
		{125, 125},
		{5000, 5000},
		{15994, 15994},
		{15995, 15994},
		{65535, 15994},
		{1 << 31, 15994},
	}

	for _, tc := range testCases {
		got := timing.Convert(tc.ticks)
		if got.Clamped != tc.clamped {
			t.Errorf("Convert(%d).Clamped = %d, expected %d", tc.ticks, got.Clamped, tc.clamped)
		}
		if got.Clamped < timing.MinTicks || got.Clamped > timing.MaxTicks {
			t.Errorf("Convert(%d).Clamped = %d outside [%d, %d]", tc.ticks, got.Clamped, timing.MinTicks, timing.MaxTicks)
		}
		if got.Ticks != tc.ticks {
			t.Errorf("Convert(%d).Ticks = %d", tc.ticks, got.Ticks)
		}
	}
}

func TestConvertLEDPeriod(t *testing.T) {
	timing := DefaultTiming()

	for ticks := uint32(0); ticks < 20000; ticks += 37 {
		got := timing.Convert(ticks)
		expected := timing.Clamp(ticks)*4 + 1557
		if got.LEDPeriod != expected {
			t.Fatalf("Convert(%d).LEDPeriod = %d, expected %d", ticks, got.LEDPeriod, expected)
		}
	}
}

func TestConvertUsesUnclampedTicks(t *testing.T) {
	timing := DefaultTiming()

	atMax := timing.Convert(timing.MaxTicks)
	beyond := timing.Convert(50000)

	if beyond.DistanceMM != 8106 {
		t.Errorf("Expected 8106mm for 50000 ticks, got %d", beyond.DistanceMM)
	}
	if beyond.DistanceMM <= atMax.DistanceMM {
		t.Errorf("Distance pinned at clamp boundary: %d <= %d", beyond.DistanceMM, atMax.DistanceMM)
	}
	if beyond.LEDPeriod != atMax.LEDPeriod {
		t.Errorf("LED period should saturate: %d != %d", beyond.LEDPeriod, atMax.LEDPeriod)
	}
}

func TestConvertScenarios(t *testing.T) {
	timing := DefaultTiming()

	testCases := []struct {
		name      string
		ticks     uint32
		distance  uint32
		ledPeriod uint32
	}{
		{"in range", 5000, 810, 21557},
		{"below minimum", 50, 8, 2053},
		{"zero", 0, 0, 2053},
		{"maximum", 15994, 2593, 65533},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := timing.Convert(tc.ticks)
			if got.DistanceMM != tc.distance {
				t.Errorf("DistanceMM = %d, expected %d", got.DistanceMM, tc.distance)
			}
			if got.LEDPeriod != tc.ledPeriod {
				t.Errorf("LEDPeriod = %d, expected %d", got.LEDPeriod, tc.ledPeriod)
			}
		})
	}
}

func TestConvertIdempotent(t *testing.T) {
	timing := DefaultTiming()
	for _, ticks := range []uint32{0, 50, 5000, 15994, 40000} {
		if a, b := timing.Convert(ticks), timing.Convert(ticks); a != b {
			t.Errorf("Convert(%d) not idempotent: %+v != %+v", ticks, a, b)
		}
	}
}

func TestTimingValidate(t *testing.T) {
	if err := DefaultTiming().Validate(); err != nil {
		t.Fatalf("Default timing invalid: %v", err)
	}

	testCases := []struct {
		name   string
		mutate func(*Timing)
	}{
		{"zero capture clock", func(t *Timing) { t.CaptureHz = 0 }},
		{"zero LED clock", func(t *Timing) { t.LEDHz = 0 }},
		{"zero scale divisor", func(t *Timing) { t.LEDScaleDiv = 0 }},
		{"inverted bounds", func(t *Timing) { t.MinTicks = t.MaxTicks + 1 }},
		{"wide counter", func(t *Timing) { t.CounterBits = 17 }},
		{"trigger always high", func(t *Timing) { t.TriggerHigh = t.TriggerPeriod }},
		{"LED always on", func(t *Timing) { t.LEDOnTicks = 5000 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			timing := DefaultTiming()
			tc.mutate(&timing)
			err := timing.Validate()
			if !errors.Is(err, ErrInvalidTiming) {
				t.Errorf("Expected ErrInvalidTiming, got %v", err)
			}
		})
	}
}

func TestTimingRescale(t *testing.T) {
	timing := DefaultTiming()
	rescaled := timing.Rescale(1000000)

	if rescaled.CaptureHz != 1000000 {
		t.Fatalf("Expected CaptureHz 1000000, got %d", rescaled.CaptureHz)
	}
	if rescaled.MinTicks != 118 || rescaled.MaxTicks != 15253 {
		t.Errorf("Expected bounds [118, 15253], got [%d, %d]", rescaled.MinTicks, rescaled.MaxTicks)
	}
	if err := rescaled.Validate(); err != nil {
		t.Errorf("Rescaled timing invalid: %v", err)
	}

	// The same physical echo must give (nearly) the same outputs
	ref := timing.Convert(5000)
	got := rescaled.Convert(rescaled.CaptureFromUS(timing.CaptureToUS(5000)))
	if got.DistanceMM != ref.DistanceMM {
		t.Errorf("Distance changed by rescale: %d != %d", got.DistanceMM, ref.DistanceMM)
	}
	diff := int(got.LEDPeriod) - int(ref.LEDPeriod)
	if diff < -5 || diff > 5 {
		t.Errorf("LED period drifted by %d ticks (%d vs %d)", diff, got.LEDPeriod, ref.LEDPeriod)
	}

	if same := timing.Rescale(CaptureFreq); same != timing {
		t.Errorf("Rescale to the same clock changed timing: %+v", same)
	}
}

func TestTriggerConfig(t *testing.T) {
	timing := DefaultTiming()
	cfg := timing.Trigger()

	if cfg.ClockHz != LEDFreq || cfg.PeriodTicks != 3300 || cfg.HighTicks != 1 {
		t.Fatalf("Unexpected trigger config %+v", cfg)
	}
	if cfg.LowTicks() != 3299 {
		t.Errorf("Expected 3299 low ticks, got %d", cfg.LowTicks())
	}
	if cfg.Period() != 100708007*time.Nanosecond {
		t.Errorf("Unexpected trigger period %v", cfg.Period())
	}
	if cfg.High() < 10*time.Microsecond {
		t.Errorf("Trigger pulse %v shorter than the sensor minimum", cfg.High())
	}
}

func TestBlinkCoversLEDRange(t *testing.T) {
	timing := DefaultTiming()

	for _, ticks := range []uint32{0, 6000, timing.MaxTicks, 1 << 20} {
		period := timing.Convert(ticks).LEDPeriod
		blink := Blink{ClockHz: timing.LEDHz, OnTicks: timing.LEDOnTicks, PeriodTicks: period}
		if err := blink.Validate(); err != nil {
			t.Fatalf("Period %d rejected: %v", period, err)
		}
		if blink.On() != 10009765*time.Nanosecond {
			t.Errorf("Unexpected on time %v", blink.On())
		}
		if blink.On()+blink.Off() != ticksToDuration(period, LEDFreq) {
			t.Errorf("On %v + off %v does not add up to period %d", blink.On(), blink.Off(), period)
		}
	}

	longest := Blink{ClockHz: LEDFreq, OnTicks: DefaultLEDOnTicks, PeriodTicks: timing.LEDPeriod(timing.MaxTicks)}
	if longest.PeriodTicks != 65533 || longest.Off() < 1980*time.Millisecond {
		t.Errorf("Longest blink period %d, off %v", longest.PeriodTicks, longest.Off())
	}

	for _, bad := range []Blink{
		{ClockHz: LEDFreq, OnTicks: 328, PeriodTicks: 328},
		{ClockHz: LEDFreq, OnTicks: 328, PeriodTicks: 100},
		{ClockHz: 0, OnTicks: 328, PeriodTicks: 3300},
	} {
		if err := bad.Validate(); !errors.Is(err, ErrLEDPeriod) {
			t.Errorf("Expected ErrLEDPeriod for %+v, got %v", bad, err)
		}
	}
}

func TestCounterMax(t *testing.T) {
	timing := DefaultTiming()
	if timing.CounterMax() != 0xFFFF {
		t.Errorf("Expected 0xFFFF, got 0x%X", timing.CounterMax())
	}
	timing.CounterBits = 12
	if timing.CounterMax() != 0x0FFF {
		t.Errorf("Expected 0x0FFF, got 0x%X", timing.CounterMax())
	}
}
