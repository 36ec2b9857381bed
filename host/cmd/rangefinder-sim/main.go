package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rangefinder/core"
	"rangefinder/host/config"
	"rangefinder/host/monitor"
	"rangefinder/host/serial"
	"rangefinder/host/sim"
)

var (
	configPath = flag.String("config", "", "JSON config file")
	scenario   = flag.String("scenario", "", "Scenario script (default: built-in sweep)")
	device     = flag.String("device", "", "Also write the stream to this serial device")
	lineSize   = flag.Int("line-buffer", 4096, "Bytes buffered on the simulated serial line")
	cycles     = flag.Int("cycles", 0, "Run the scenario this many times (0 = once)")
	realtime   = flag.Bool("realtime", false, "Pace cycles at the trigger period")
	verbose    = flag.Bool("verbose", false, "Enable verbose output")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load config: %v\n", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scenario":
			cfg.Sim.Scenario = *scenario
		case "device":
			cfg.Serial.Device = *device
		case "cycles":
			cfg.Sim.Cycles = *cycles
		case "realtime":
			cfg.Sim.Realtime = *realtime
		case "verbose":
			cfg.Verbose = *verbose
		}
	})

	core.SetDebugWriter(func(msg string) {
		fmt.Fprintln(os.Stderr, msg)
	})
	core.SetDebugEnabled(cfg.Verbose)

	script, err := loadScript(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The stream is decoded back by a monitor on the far end of an
	// in-memory line, checking every frame against the reading it came from
	line := serial.NewLine(*lineSize)
	opts := sim.Options{Timing: cfg.Timing, Baud: uint32(cfg.Serial.Baud), Out: line}
	if cfg.Serial.Device != "" {
		port, err := serial.Open(&cfg.Serial)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to open port: %v\n", err)
			os.Exit(1)
		}
		defer port.Close()
		opts.Out = io.MultiWriter(line, port)
	}

	board, err := sim.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var decoded []uint32
	m := monitor.New(line, monitor.SinkFunc(func(s monitor.Sample) error {
		decoded = append(decoded, s.DistanceMM)
		return nil
	}))
	m.OnError = func(err error) {
		core.DebugPrintln("[MONITOR] " + err.Error())
	}
	monitorDone := make(chan error, 1)
	go func() {
		monitorDone <- m.Run(context.Background())
	}()

	var sent []uint32
	period := cfg.Timing.Trigger().Period()
	observe := func(step sim.Step, r core.Reading) {
		sent = append(sent, reported(r))
		printReading(os.Stdout, r, cfg.Verbose)
		if cfg.Sim.Realtime {
			time.Sleep(period)
		}
	}

	runs := cfg.Sim.Cycles
	if runs < 1 {
		runs = 1
	}
	for i := 0; i < runs; i++ {
		if err := board.Run(ctx, script, observe); err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if err := board.WriteErr(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: serial write failed: %v\n", err)
		os.Exit(1)
	}

	line.Close()
	if err := <-monitorDone; err != nil {
		fmt.Fprintf(os.Stderr, "Error: monitor: %v\n", err)
		os.Exit(1)
	}

	stats := board.Ranger().Stats()
	fmt.Printf("\n%d cycles, %d timeouts, %d overflows, %d LED errors, %d orphan edges, %d bytes sent\n",
		stats.Cycles, stats.Timeouts, stats.Overflows, stats.LEDErrors, stats.Orphans, stats.Sent)
	fmt.Printf("wire: %q\n", board.Wire())

	mismatches := compareFrames(sent, decoded)
	fmt.Printf("monitor: %d of %d frames decoded, %d bad bytes, %d bytes lost, %d mismatches\n",
		len(decoded), len(sent), m.BadBytes(), line.Lost(), mismatches)
	if mismatches > 0 && line.Lost() == 0 {
		fmt.Fprintln(os.Stderr, "Error: decoded stream does not match the readings")
		os.Exit(1)
	}

	if cfg.Verbose {
		core.DumpTimingRing()
	}
}

func loadScript(cfg *config.Config) (sim.Script, error) {
	if cfg.Sim.Scenario == "" {
		return sim.DefaultScript(cfg.Timing), nil
	}
	f, err := os.Open(cfg.Sim.Scenario)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return sim.ParseScript(f)
}

// reported returns the value a reading puts on the wire
func reported(r core.Reading) uint32 {
	if r.Overflow {
		return core.MaxEncodable
	}
	return r.DistanceMM
}

// compareFrames counts decoded frames that differ from what was sent,
// plus frames missing at the end
func compareFrames(sent, decoded []uint32) int {
	mismatches := 0
	for i, v := range sent {
		if i >= len(decoded) || decoded[i] != v {
			mismatches++
		}
	}
	if len(decoded) > len(sent) {
		mismatches += len(decoded) - len(sent)
	}
	return mismatches
}

func printReading(w io.Writer, r core.Reading, verbose bool) {
	note := ""
	switch {
	case r.TimedOut:
		note = " (no echo)"
	case r.Overflow:
		note = " (overflow)"
	case r.LEDError != nil:
		note = " (LED error)"
	}
	if verbose {
		fmt.Fprintf(w, "%4d ticks=%-5d clamped=%-5d led=%-5d %5d mm%s\n",
			r.Cycle, r.Ticks, r.Clamped, r.LEDPeriod, r.DistanceMM, note)
		return
	}
	fmt.Fprintf(w, "%d mm%s\n", r.DistanceMM, note)
}
