// Package publish forwards distance samples to an MQTT broker
package publish

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"rangefinder/host/monitor"
)

// Config selects the broker and topic
type Config struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Topic    string `json:"topic"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	QoS      byte   `json:"qos"`
	Retain   bool   `json:"retain"`
	// TimeoutMillis bounds connect and publish acknowledgements
	TimeoutMillis int `json:"timeout_ms"`
}

// DefaultConfig returns a config with an empty broker (publishing off)
func DefaultConfig() Config {
	return Config{
		ClientID:      "rangefinder-monitor",
		Topic:         "rangefinder/distance",
		TimeoutMillis: 2000,
	}
}

// Enabled reports whether a broker is configured
func (c Config) Enabled() bool {
	return c.Broker != ""
}

func (c Config) timeout() time.Duration {
	if c.TimeoutMillis <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.TimeoutMillis) * time.Millisecond
}

// Payload is the JSON message published per sample
type Payload struct {
	Seq        uint64 `json:"seq"`
	DistanceMM uint32 `json:"distance_mm"`
	Time       string `json:"time"`
}

// ErrTimeout is returned when the broker does not acknowledge in time
var ErrTimeout = errors.New("mqtt: timed out")

// Publisher is a monitor.Sink publishing every sample
type Publisher struct {
	cfg    Config
	client mqtt.Client
}

// Connect dials the broker described by cfg
func Connect(cfg Config) (*Publisher, error) {
	if !cfg.Enabled() {
		return nil, errors.New("mqtt: no broker given")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(cfg.timeout()).
		SetAutoReconnect(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if err := wait(client.Connect(), cfg.timeout()); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, err)
	}
	return newPublisher(cfg, client), nil
}

func newPublisher(cfg Config, client mqtt.Client) *Publisher {
	return &Publisher{cfg: cfg, client: client}
}

// Handle publishes s as JSON
func (p *Publisher) Handle(s monitor.Sample) error {
	payload, err := json.Marshal(Payload{
		Seq:        s.Seq,
		DistanceMM: s.DistanceMM,
		Time:       s.Time.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	token := p.client.Publish(p.cfg.Topic, p.cfg.QoS, p.cfg.Retain, payload)
	return wait(token, p.cfg.timeout())
}

// Close disconnects, waiting briefly for in-flight messages
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

func wait(token mqtt.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return ErrTimeout
	}
	return token.Error()
}
