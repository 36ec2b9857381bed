// Package config loads the host tools' JSON configuration
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"rangefinder/core"
	"rangefinder/host/publish"
	"rangefinder/host/serial"
)

// Config is shared by rangefinder-monitor and rangefinder-sim
type Config struct {
	Serial  serial.Config  `json:"serial"`
	MQTT    publish.Config `json:"mqtt"`
	Timing  core.Timing    `json:"timing"`
	Sim     SimConfig      `json:"sim"`
	Verbose bool           `json:"verbose"`
}

// SimConfig drives the simulated board
type SimConfig struct {
	Scenario string `json:"scenario"` // script file, empty runs the built-in sweep
	Cycles   int    `json:"cycles"`   // 0 runs the scenario once
	Realtime bool   `json:"realtime"` // pace output at the trigger period
}

// LoadConfig parses JSON configuration and fills in defaults
func LoadConfig(jsonData []byte) (*Config, error) {
	var config Config

	if err := json.Unmarshal(jsonData, &config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&config)

	if err := config.Timing.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadFile reads and parses a config file. An empty path returns the
// defaults.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadConfig(data)
}

// Default returns the configuration used without a config file
func Default() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// applyDefaults fills in missing configuration values
func applyDefaults(config *Config) {
	serialDefaults := serial.DefaultConfig("")
	if config.Serial.Baud == 0 {
		config.Serial.Baud = serialDefaults.Baud
	}
	if config.Serial.ReadTimeout == 0 {
		config.Serial.ReadTimeout = serialDefaults.ReadTimeout
	}

	mqttDefaults := publish.DefaultConfig()
	if config.MQTT.ClientID == "" {
		config.MQTT.ClientID = mqttDefaults.ClientID
	}
	if config.MQTT.Topic == "" {
		config.MQTT.Topic = mqttDefaults.Topic
	}
	if config.MQTT.TimeoutMillis == 0 {
		config.MQTT.TimeoutMillis = mqttDefaults.TimeoutMillis
	}

	// Timing fields left at zero take the reference board's values
	timing := core.DefaultTiming()
	t := &config.Timing
	if t.CaptureHz == 0 {
		t.CaptureHz = timing.CaptureHz
	}
	if t.LEDHz == 0 {
		t.LEDHz = timing.LEDHz
	}
	if t.MinTicks == 0 {
		t.MinTicks = timing.MinTicks
	}
	if t.MaxTicks == 0 {
		t.MaxTicks = timing.MaxTicks
	}
	if t.LEDScale == 0 {
		t.LEDScale = timing.LEDScale
	}
	if t.LEDScaleDiv == 0 {
		t.LEDScaleDiv = timing.LEDScaleDiv
	}
	if t.LEDOffset == 0 {
		t.LEDOffset = timing.LEDOffset
	}
	if t.DistanceConstant == 0 {
		t.DistanceConstant = timing.DistanceConstant
	}
	if t.LEDOnTicks == 0 {
		t.LEDOnTicks = timing.LEDOnTicks
	}
	if t.InitialLEDPeriod == 0 {
		t.InitialLEDPeriod = timing.InitialLEDPeriod
	}
	if t.TriggerPeriod == 0 {
		t.TriggerPeriod = timing.TriggerPeriod
	}
	if t.TriggerHigh == 0 {
		t.TriggerHigh = timing.TriggerHigh
	}
	if t.CounterBits == 0 {
		t.CounterBits = timing.CounterBits
	}
	if t.TimeoutMillis == 0 {
		t.TimeoutMillis = timing.TimeoutMillis
	}
}
