//go:build rp2040

package main

import (
	"machine"
	"runtime/volatile"
	"time"

	"rangefinder/core"
)

// UARTTx is the distance stream output. WriteTx hands the byte to the
// UART FIFO and raises a ready flag; the pump turns each ready flag into
// a Transmitter.OnReady call, which is the TX-ready event.
type UARTTx struct {
	uart  *machine.UART
	ready volatile.Register8
}

// NewUARTTx configures uart at baud, 8N1
func NewUARTTx(uart *machine.UART, tx, rx machine.Pin, baud uint32) (*UARTTx, error) {
	err := uart.Configure(machine.UARTConfig{
		BaudRate: baud,
		TX:       tx,
		RX:       rx,
	})
	if err != nil {
		return nil, err
	}
	return &UARTTx{uart: uart}, nil
}

// WriteTx implements core.SerialDriver
func (u *UARTTx) WriteTx(b byte) {
	u.uart.WriteByte(b)
	u.ready.Set(1)
}

// Pump delivers ready events to tx forever
func (u *UARTTx) Pump(tx *core.Transmitter) {
	for {
		if u.ready.Get() != 0 {
			u.ready.Set(0)
			tx.OnReady()
			continue
		}
		// One byte takes ~1ms at 9600 baud
		time.Sleep(100 * time.Microsecond)
	}
}
