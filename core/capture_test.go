package core

import "testing"

func TestElapsedTicks(t *testing.T) {
	testCases := []struct {
		name     string
		start    uint16
		end      uint16
		expected uint32
	}{
		{"no wrap", 100, 600, 500},
		{"wrap near top", 65000, 100, 636},
		{"wrap from max", 65535, 0, 1},
		{"end at zero", 1000, 0, 64536},
		{"full period", 4000, 4000, 65536},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ElapsedTicks(tc.start, tc.end, 0xFFFF)
			if got != tc.expected {
				t.Errorf("ElapsedTicks(%d, %d) = %d, expected %d", tc.start, tc.end, got, tc.expected)
			}
			if tc.end <= tc.start {
				if linear := uint32(0xFFFF+1-uint32(tc.start)) + uint32(tc.end); got != linear {
					t.Errorf("Wrapped elapsed %d != %d", got, linear)
				}
			}
		})
	}
}

func TestEchoCaptureMeasures(t *testing.T) {
	mock := newMockBoard()
	cell := NewMeasurementCell()
	capture := NewEchoCapture(mock.echo, mock.counter, 0xFFFF, cell)

	if capture.State() != AwaitingRising {
		t.Fatalf("Expected initial state %v, got %v", AwaitingRising, capture.State())
	}

	mock.counter.value = 1000
	mock.echo.level = true
	capture.HandleInterrupt()

	if capture.State() != AwaitingFalling {
		t.Errorf("Expected %v after rising edge, got %v", AwaitingFalling, capture.State())
	}
	if cell.Ready() {
		t.Error("Ready set before the falling edge")
	}

	mock.counter.value = 6000
	mock.echo.level = false
	capture.HandleInterrupt()

	if capture.State() != AwaitingRising {
		t.Errorf("Expected %v after falling edge, got %v", AwaitingRising, capture.State())
	}
	ticks, ok := cell.TryTake()
	if !ok || ticks != 5000 {
		t.Errorf("Expected 5000 ticks, got %d (ready=%v)", ticks, ok)
	}
}

func TestEchoCaptureAcrossWrap(t *testing.T) {
	mock := newMockBoard()
	cell := NewMeasurementCell()
	capture := NewEchoCapture(mock.echo, mock.counter, 0xFFFF, cell)

	mock.pulse(capture, 65000, 3000)

	ticks, ok := cell.TryTake()
	if !ok || ticks != 3000 {
		t.Errorf("Expected 3000 ticks across wrap, got %d (ready=%v)", ticks, ok)
	}
}

func TestEchoCaptureOrphanFalling(t *testing.T) {
	mock := newMockBoard()
	cell := NewMeasurementCell()
	capture := NewEchoCapture(mock.echo, mock.counter, 0xFFFF, cell)

	capture.Edge(false, 500)
	if cell.Ready() {
		t.Error("Orphan falling edge published a measurement")
	}
	if capture.Orphans() != 1 {
		t.Errorf("Expected 1 orphan, got %d", capture.Orphans())
	}
}

func TestEchoCaptureRepeatedRising(t *testing.T) {
	cell := NewMeasurementCell()
	capture := NewEchoCapture(&mockEcho{}, &mockCounter{}, 0xFFFF, cell)

	capture.Edge(true, 100)
	capture.Edge(true, 400) // level sampling wins, restart
	capture.Edge(false, 900)

	ticks, ok := cell.TryTake()
	if !ok || ticks != 500 {
		t.Errorf("Expected 500 ticks, got %d (ready=%v)", ticks, ok)
	}
}

func TestEchoCaptureNarrowCounter(t *testing.T) {
	cell := NewMeasurementCell()
	capture := NewEchoCapture(&mockEcho{}, &mockCounter{}, 0x0FFF, cell)

	// Counter values above 12 bits are masked
	capture.Edge(true, 0x1F00)
	capture.Edge(false, 0x0010)

	ticks, _ := cell.TryTake()
	if expected := ElapsedTicks(0x0F00, 0x0010, 0x0FFF); ticks != expected {
		t.Errorf("Expected %d ticks, got %d", expected, ticks)
	}
}

func TestEchoCaptureReset(t *testing.T) {
	cell := NewMeasurementCell()
	capture := NewEchoCapture(&mockEcho{}, &mockCounter{}, 0xFFFF, cell)

	capture.Edge(true, 100)
	capture.Reset()

	if capture.State() != AwaitingRising {
		t.Errorf("Expected %v after reset, got %v", AwaitingRising, capture.State())
	}
	capture.Edge(false, 200)
	if cell.Ready() {
		t.Error("Falling edge after reset published a measurement")
	}
}
