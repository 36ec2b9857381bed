package publish

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	qt "github.com/frankban/quicktest"

	"rangefinder/host/monitor"
)

// fakeToken completes immediately with err
type fakeToken struct {
	err  error
	done chan struct{}
}

func newToken(err error) *fakeToken {
	t := &fakeToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient records publishes; embedded interface covers the rest
type fakeClient struct {
	mqtt.Client
	sent         []published
	err          error
	disconnected uint
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, published{topic, qos, retained, payload.([]byte)})
	return newToken(c.err)
}

func (c *fakeClient) Disconnect(quiesce uint) {
	c.disconnected = quiesce
}

func TestPublisherHandle(t *testing.T) {
	c := qt.New(t)

	cfg := DefaultConfig()
	cfg.QoS = 1
	cfg.Retain = true
	client := &fakeClient{}
	p := newPublisher(cfg, client)

	ts := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	c.Assert(p.Handle(monitor.Sample{Seq: 3, DistanceMM: 810, Time: ts}), qt.IsNil)

	c.Assert(client.sent, qt.HasLen, 1)
	msg := client.sent[0]
	c.Assert(msg.topic, qt.Equals, "rangefinder/distance")
	c.Assert(msg.qos, qt.Equals, byte(1))
	c.Assert(msg.retained, qt.IsTrue)

	var got Payload
	c.Assert(json.Unmarshal(msg.payload, &got), qt.IsNil)
	c.Assert(got, qt.DeepEquals, Payload{Seq: 3, DistanceMM: 810, Time: "2024-03-01T08:00:00Z"})

	p.Close()
	c.Assert(client.disconnected, qt.Equals, uint(250))
}

func TestPublisherError(t *testing.T) {
	c := qt.New(t)

	client := &fakeClient{err: errors.New("not connected")}
	p := newPublisher(DefaultConfig(), client)
	c.Assert(p.Handle(monitor.Sample{DistanceMM: 1}), qt.ErrorMatches, "not connected")
}

func TestConnectNeedsBroker(t *testing.T) {
	c := qt.New(t)

	cfg := DefaultConfig()
	c.Assert(cfg.Enabled(), qt.IsFalse)
	_, err := Connect(cfg)
	c.Assert(err, qt.ErrorMatches, "mqtt: no broker given")
}
