//go:build rp2040

package pio

// PIO trigger backend using tinygo-org/pio
// Generates the sensor trigger pulse train without CPU involvement

import (
	"errors"
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"rangefinder/core"
)

// buildTriggerProgram creates the trigger PIO program.
// Config word format (pushed once, kept in X afterwards):
//
//	Bits 0-15:  high phase loop count
//	Bits 16-31: low phase loop count
//
// Program flow:
//  1. Reload OSR from the FIFO, or from X when the FIFO is empty
//  2. Save the word in X, then reload OSR from X
//  3. Drive the pin high for the high loop count
//  4. Drive the pin low for the low loop count
func buildTriggerProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, false).Encode(),          // 0: pull noblock
		asm.Out(rp2pio.OutDestX, 32).Encode(),    // 1: out x, 32
		asm.Pull(false, false).Encode(),          // 2: pull noblock (OSR = X)
		asm.Out(rp2pio.OutDestY, 16).Encode(),    // 3: out y, 16 (high count)
		asm.Set(rp2pio.SetDestPins, 1).Encode(),  // 4: set pins, 1
		asm.Jmp(5, rp2pio.JmpYNZeroDec).Encode(), // 5: jmp y--, 5
		asm.Out(rp2pio.OutDestY, 16).Encode(),    // 6: out y, 16 (low count)
		asm.Set(rp2pio.SetDestPins, 0).Encode(),  // 7: set pins, 0
		asm.Jmp(8, rp2pio.JmpYNZeroDec).Encode(), // 8: jmp y--, 8
		// .wrap
	}
}

const triggerPIOOrigin = 0 // Load at offset 0 for correct jump addresses

// TriggerPIO drives the trigger pin from a PIO state machine and
// implements core.TriggerDriver
type TriggerPIO struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	pin    machine.Pin
	offset uint8
	pioNum uint8
	smNum  uint8
}

// NewTriggerPIO claims a free state machine for the trigger on pin
func NewTriggerPIO(pin machine.Pin) (*TriggerPIO, error) {
	pioNum, smNum, ok := allocatePIO()
	if !ok {
		return nil, errors.New("no free PIO state machine")
	}

	pioHW := rp2pio.PIO0
	if pioNum == 1 {
		pioHW = rp2pio.PIO1
	}

	return &TriggerPIO{
		pio:    pioHW,
		sm:     pioHW.StateMachine(smNum),
		pin:    pin,
		pioNum: pioNum,
		smNum:  smNum,
	}, nil
}

// StartTrigger loads the program and starts the pulse train
func (t *TriggerPIO) StartTrigger(cfg core.TriggerConfig) error {
	word, err := TriggerWord(cfg)
	if err != nil {
		return err
	}
	whole, frac, err := clkDiv(machine.CPUFrequency(), cfg.ClockHz*triggerOversample)
	if err != nil {
		return err
	}

	// CRITICAL: Claim the state machine first!
	t.sm.TryClaim()

	program := buildTriggerProgram()
	offset, err := t.pio.AddProgram(program, triggerPIOOrigin)
	if err != nil {
		releasePIO(t.pioNum, t.smNum)
		return err
	}
	t.offset = offset

	t.pin.Configure(machine.PinConfig{Mode: t.pio.PinMode()})

	smCfg := rp2pio.DefaultStateMachineConfig()
	smCfg.SetSetPins(t.pin, 1)
	// Shift right so the high count comes out first, no autopull
	smCfg.SetOutShift(true, false, 32)
	smCfg.SetWrap(offset+uint8(len(program))-1, offset)
	smCfg.SetClkDivIntFrac(whole, frac)

	// Initialize state machine FIRST
	t.sm.Init(offset, smCfg)

	// THEN set pin direction (must be after Init!)
	t.sm.SetPindirsConsecutive(t.pin, 1, true)
	t.sm.SetPinsConsecutive(t.pin, 1, false)

	// The first pull must find the word in the FIFO
	t.sm.TxPut(word)
	t.sm.SetEnabled(true)

	core.DebugPrintln("[TRIGGER] PIO running")
	return nil
}

// Stop halts the pulse train and releases the state machine
func (t *TriggerPIO) Stop() {
	t.sm.SetEnabled(false)
	t.sm.ClearFIFOs()
	t.sm.Restart()
	releasePIO(t.pioNum, t.smNum)
}
