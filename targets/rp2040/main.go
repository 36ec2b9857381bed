//go:build rp2040

package main

import (
	"context"
	"machine"
	"time"

	"rangefinder/core"
	"rangefinder/protocol"
	"rangefinder/targets/pio"
)

// Board wiring
const (
	triggerPin = machine.GPIO2
	echoPin    = machine.GPIO3
	ledPinA    = machine.GPIO14
	ledPinB    = machine.GPIO15
	uartTxPin  = machine.GPIO0
	uartRxPin  = machine.GPIO1
)

func main() {
	// CRITICAL: Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitDebug()

	// The microsecond timer is the capture clock on this chip
	timing := core.DefaultTiming().Rescale(CaptureHz)
	mode := GetMode()

	leds, err := NewLEDBlinker(ledPinA, ledPinB)
	if err != nil {
		halt(err)
	}
	core.SetLEDDriver(leds)

	tx, err := NewUARTTx(machine.UART0, uartTxPin, uartRxPin, protocol.BaudRate)
	if err != nil {
		halt(err)
	}
	core.SetSerialDriver(tx)

	board := core.Board{LEDs: core.MustLED(), Serial: core.MustSerial()}

	var echo *EchoPin
	if !mode.Polled {
		echo = NewEchoPin(echoPin)
		core.SetEchoDriver(echo)
		core.SetCaptureCounter(NewTimerCounter(timing.CounterMax()))

		trigger, err := pio.NewTriggerPIO(triggerPin)
		if err != nil {
			halt(err)
		}
		core.SetTriggerDriver(trigger)

		board = core.RegisteredBoard()
	}

	ranger, err := core.NewRanger(timing, board)
	if err != nil {
		halt(err)
	}
	if echo != nil {
		echo.OnEdge(ranger.Capture().HandleInterrupt)
	}

	if err := ranger.Start(); err != nil {
		halt(err)
	}

	go tx.Pump(ranger.Transmitter())

	ctx := context.Background()
	if mode.Polled {
		sensor := NewPolledSensor(triggerPin, echoPin, timing)
		go sensor.Run(ctx, ranger.Cell())
	}

	// Main loop
	for {
		func() {
			// Recover from panics in the main loop to prevent a firmware crash
			defer func() {
				if r := recover(); r != nil {
					core.DumpTimingRing()
				}
			}()

			if err := ranger.Run(ctx, nil); err != nil {
				core.DebugPrintln("[MAIN] ranger stopped: " + err.Error())
				core.DumpTimingRing()
			}
		}()
		time.Sleep(time.Millisecond)
	}
}

// halt reports a fatal setup error and blinks the on-board LED
func halt(err error) {
	core.DebugPrintln("[MAIN] " + err.Error())
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
