package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rangefinder/host/config"
	"rangefinder/host/monitor"
	"rangefinder/host/publish"
	"rangefinder/host/serial"
	"rangefinder/protocol"
)

var (
	configPath = flag.String("config", "", "JSON config file")
	device     = flag.String("device", "/dev/ttyUSB0", "Serial device path")
	baud       = flag.Int("baud", protocol.BaudRate, "Baud rate")
	broker     = flag.String("mqtt", "", "MQTT broker URL, e.g. tcp://localhost:1883 (empty disables publishing)")
	topic      = flag.String("topic", "", "MQTT topic")
	verbose    = flag.Bool("verbose", false, "Enable verbose output")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load config: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)

	fmt.Printf("Rangefinder Monitor (stream format v%s)\n", protocol.Version)
	fmt.Println("===================")
	fmt.Println()

	fmt.Printf("Opening %s at %d baud...\n", cfg.Serial.Device, cfg.Serial.Baud)
	port, err := serial.Open(&cfg.Serial)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open port: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()

	// Drop whatever arrived before we started listening
	if err := port.Flush(); err != nil && cfg.Verbose {
		fmt.Fprintf(os.Stderr, "Warning: flush failed: %v\n", err)
	}

	m := monitor.New(port, monitor.NewPrintSink(os.Stdout, cfg.Verbose))
	m.OnError = func(err error) {
		if cfg.Verbose {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	if cfg.MQTT.Enabled() {
		fmt.Printf("Publishing to %s on %s\n", cfg.MQTT.Topic, cfg.MQTT.Broker)
		pub, err := publish.Connect(cfg.MQTT)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer pub.Close()
		m.AddSink(pub)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := m.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n%d readings, %d bad bytes, %d sink errors\n", m.Count(), m.BadBytes(), m.SinkErrors())
}

// applyFlags lets explicitly set flags override the config file
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "device":
			cfg.Serial.Device = *device
		case "baud":
			cfg.Serial.Baud = *baud
		case "mqtt":
			cfg.MQTT.Broker = *broker
		case "topic":
			cfg.MQTT.Topic = *topic
		case "verbose":
			cfg.Verbose = *verbose
		}
	})
	if cfg.Serial.Device == "" {
		cfg.Serial.Device = *device
	}
}
