package sim

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"rangefinder/core"
)

// Op is a scenario step
type Op uint8

const (
	OpEcho    Op = iota // echo TICKS
	OpWrap              // wrap START TICKS
	OpSilence           // silence
	OpOrphan            // orphan
)

var opNames = map[string]Op{
	"echo":    OpEcho,
	"wrap":    OpWrap,
	"silence": OpSilence,
	"orphan":  OpOrphan,
}

var opArgs = map[Op]int{
	OpEcho:    1,
	OpWrap:    2,
	OpSilence: 0,
	OpOrphan:  0,
}

// Step is one scenario line, already expanded from repeat
type Step struct {
	Op    Op
	Ticks uint32
	Start uint16
	Line  int
}

// Script is a parsed scenario
type Script []Step

// ScriptError reports a bad scenario line
type ScriptError struct {
	Line int
	Msg  string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("scenario line %d: %s", e.Line, e.Msg)
}

// ParseScript reads a scenario, one step per line:
//
//	echo 5000           # pulse of 5000 capture ticks
//	wrap 65000 3000     # pulse starting at counter 65000
//	silence             # no echo, cycle ends on the timeout
//	orphan              # stray falling edge
//	repeat 3 echo 50    # any step, repeated
func ParseScript(r io.Reader) (Script, error) {
	var script Script
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields, err := shlex.Split(scanner.Text())
		if err != nil {
			return nil, &ScriptError{Line: lineNo, Msg: err.Error()}
		}
		if len(fields) == 0 {
			continue
		}

		count := 1
		if fields[0] == "repeat" {
			if len(fields) < 3 {
				return nil, &ScriptError{Line: lineNo, Msg: "repeat needs a count and a step"}
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 1 {
				return nil, &ScriptError{Line: lineNo, Msg: fmt.Sprintf("bad repeat count %q", fields[1])}
			}
			count = n
			fields = fields[2:]
		}

		step, err := parseStep(fields, lineNo)
		if err != nil {
			return nil, err
		}
		for i := 0; i < count; i++ {
			script = append(script, step)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return script, nil
}

// ParseScriptString is ParseScript over a string
func ParseScriptString(s string) (Script, error) {
	return ParseScript(strings.NewReader(s))
}

func parseStep(fields []string, lineNo int) (Step, error) {
	op, ok := opNames[fields[0]]
	if !ok {
		return Step{}, &ScriptError{Line: lineNo, Msg: fmt.Sprintf("unknown step %q", fields[0])}
	}
	args := fields[1:]
	if len(args) != opArgs[op] {
		return Step{}, &ScriptError{Line: lineNo, Msg: fmt.Sprintf("%s takes %d arguments", fields[0], opArgs[op])}
	}

	step := Step{Op: op, Line: lineNo}
	switch op {
	case OpEcho:
		ticks, err := strconv.ParseUint(args[0], 0, 32)
		if err != nil || ticks == 0 {
			return Step{}, &ScriptError{Line: lineNo, Msg: fmt.Sprintf("bad echo length %q", args[0])}
		}
		step.Ticks = uint32(ticks)
	case OpWrap:
		start, err := strconv.ParseUint(args[0], 0, 16)
		if err != nil {
			return Step{}, &ScriptError{Line: lineNo, Msg: fmt.Sprintf("bad counter start %q", args[0])}
		}
		ticks, err := strconv.ParseUint(args[1], 0, 32)
		if err != nil || ticks == 0 {
			return Step{}, &ScriptError{Line: lineNo, Msg: fmt.Sprintf("bad echo length %q", args[1])}
		}
		step.Start = uint16(start)
		step.Ticks = uint32(ticks)
	}
	return step, nil
}

// DefaultScript sweeps the measurable range, then exercises the counter
// wrap and the timeout fallback
func DefaultScript(t core.Timing) Script {
	return Script{
		{Op: OpEcho, Ticks: t.MinTicks},
		{Op: OpEcho, Ticks: 1000},
		{Op: OpEcho, Ticks: 5000},
		{Op: OpEcho, Ticks: 10000},
		{Op: OpEcho, Ticks: t.MaxTicks},
		{Op: OpWrap, Start: 65000, Ticks: 3000},
		{Op: OpSilence},
	}
}

// Run executes script on the board, passing each reading to observe.
// Orphan steps produce no reading.
func (b *Board) Run(ctx context.Context, script Script, observe func(Step, core.Reading)) error {
	for _, step := range script {
		if err := ctx.Err(); err != nil {
			return err
		}

		var (
			reading core.Reading
			err     error
		)
		switch step.Op {
		case OpEcho:
			reading, err = b.Echo(ctx, step.Ticks)
		case OpWrap:
			reading, err = b.EchoAcrossWrap(ctx, step.Start, step.Ticks)
		case OpSilence:
			reading, err = b.Silence(ctx)
		case OpOrphan:
			b.Orphan()
			continue
		}
		if err != nil {
			return fmt.Errorf("scenario line %d: %w", step.Line, err)
		}
		if observe != nil {
			observe(step, reading)
		}
	}
	return nil
}
