package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"rangefinder/core"
)

func TestLoadConfigDefaults(t *testing.T) {
	c := qt.New(t)

	config, err := LoadConfig([]byte(`{"serial": {"device": "/dev/ttyUSB0"}}`))
	c.Assert(err, qt.IsNil)

	c.Assert(config.Serial.Device, qt.Equals, "/dev/ttyUSB0")
	c.Assert(config.Serial.Baud, qt.Equals, 9600)
	c.Assert(config.MQTT.Enabled(), qt.IsFalse)
	c.Assert(config.MQTT.Topic, qt.Equals, "rangefinder/distance")
	c.Assert(config.Timing, qt.DeepEquals, core.DefaultTiming())
}

func TestLoadConfigOverrides(t *testing.T) {
	c := qt.New(t)

	config, err := LoadConfig([]byte(`{
		"mqtt": {"broker": "tcp://localhost:1883", "topic": "lab/range"},
		"timing": {"max_ticks": 12000, "measurement_timeout_ms": 100},
		"sim": {"cycles": 3},
		"verbose": true
	}`))
	c.Assert(err, qt.IsNil)

	c.Assert(config.MQTT.Enabled(), qt.IsTrue)
	c.Assert(config.MQTT.Topic, qt.Equals, "lab/range")
	c.Assert(config.MQTT.ClientID, qt.Equals, "rangefinder-monitor")
	c.Assert(config.Timing.MaxTicks, qt.Equals, uint32(12000))
	c.Assert(config.Timing.MinTicks, qt.Equals, uint32(core.DefaultMinTicks))
	c.Assert(config.Timing.TimeoutMillis, qt.Equals, uint32(100))
	c.Assert(config.Sim.Cycles, qt.Equals, 3)
	c.Assert(config.Verbose, qt.IsTrue)
}

func TestLoadConfigRejectsBadTiming(t *testing.T) {
	c := qt.New(t)

	// Bounds inverted
	_, err := LoadConfig([]byte(`{"timing": {"min_ticks": 20000}}`))
	c.Assert(errors.Is(err, core.ErrInvalidTiming), qt.IsTrue)

	_, err = LoadConfig([]byte(`{"timing": `))
	c.Assert(err, qt.ErrorMatches, "parse config: .*")
}

func TestLoadFile(t *testing.T) {
	c := qt.New(t)

	config, err := LoadFile("")
	c.Assert(err, qt.IsNil)
	c.Assert(config, qt.DeepEquals, Default())

	path := filepath.Join(c.TempDir(), "rangefinder.json")
	c.Assert(os.WriteFile(path, []byte(`{"sim": {"scenario": "sweep.txt"}}`), 0o644), qt.IsNil)

	config, err = LoadFile(path)
	c.Assert(err, qt.IsNil)
	c.Assert(config.Sim.Scenario, qt.Equals, "sweep.txt")

	_, err = LoadFile(filepath.Join(c.TempDir(), "missing.json"))
	c.Assert(err, qt.Not(qt.IsNil))
}
