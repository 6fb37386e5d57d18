package mqtt

import (
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

func TestBrokerAddress(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"mqtt://broker:1883", "tcp://broker:1883"},
		{" mqtts://broker:8883 ", "ssl://broker:8883"},
		{"tcp://broker:1883", "tcp://broker:1883"},
		{"ws://broker:9001/mqtt", "ws://broker:9001/mqtt"},
		{"broker:1883", "tcp://broker:1883"},
	}

	for _, tt := range tests {
		if got := BrokerAddress(tt.in); got != tt.want {
			t.Errorf("BrokerAddress(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }

func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type fakePaho struct {
	paho.Client

	connected bool
	subErr    error
	topics    []string
	handlers  map[string]paho.MessageHandler
}

func (f *fakePaho) IsConnected() bool { return f.connected }

func (f *fakePaho) Subscribe(topic string, _ byte, cb paho.MessageHandler) paho.Token {
	if f.subErr != nil {
		return doneToken{err: f.subErr}
	}
	if f.handlers == nil {
		f.handlers = make(map[string]paho.MessageHandler)
	}
	f.topics = append(f.topics, topic)
	f.handlers[topic] = cb
	return doneToken{}
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 7 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func TestSubscribeWhileDisconnectedWaitsForConnect(t *testing.T) {
	fp := &fakePaho{}
	c := &Client{client: fp}

	var got []string
	if err := c.Subscribe("sensors", 1, func(m Message) { got = append(got, string(m.Payload())) }); err != nil {
		t.Fatalf("Subscribe() unexpected error: %v", err)
	}
	if len(fp.topics) != 0 {
		t.Fatalf("subscribed before connect: %v", fp.topics)
	}

	fp.connected = true
	c.resubscribe(fp)
	if len(fp.topics) != 1 || fp.topics[0] != "sensors" {
		t.Fatalf("topics after connect = %v, want [sensors]", fp.topics)
	}

	fp.handlers["sensors"](fp, fakeMessage{topic: "sensors", payload: []byte("hello")})
	if len(got) != 1 || got[0] != "hello" {
		t.Errorf("handler received %v, want [hello]", got)
	}
}

func TestSubscribeWhileConnected(t *testing.T) {
	fp := &fakePaho{connected: true}
	c := &Client{client: fp}

	if err := c.Subscribe("ispu", 1, func(Message) {}); err != nil {
		t.Fatalf("Subscribe() unexpected error: %v", err)
	}
	if len(fp.topics) != 1 {
		t.Fatalf("topics = %v, want one immediate subscription", fp.topics)
	}

	fp.subErr = errors.New("not authorized")
	if err := c.Subscribe("other", 1, func(Message) {}); !errors.Is(err, fp.subErr) {
		t.Errorf("Subscribe() error = %v, want %v", err, fp.subErr)
	}
}

func TestResubscribeRestoresEverySubscription(t *testing.T) {
	fp := &fakePaho{}
	c := &Client{client: fp}
	for _, topic := range []string{"sensors", "ispu"} {
		if err := c.Subscribe(topic, 1, func(Message) {}); err != nil {
			t.Fatalf("Subscribe(%q) unexpected error: %v", topic, err)
		}
	}

	fp.connected = true
	c.resubscribe(fp)
	c.resubscribe(fp)

	want := []string{"sensors", "ispu", "sensors", "ispu"}
	if len(fp.topics) != len(want) {
		t.Fatalf("topics = %v, want %v", fp.topics, want)
	}
	for i := range want {
		if fp.topics[i] != want[i] {
			t.Errorf("topics[%d] = %q, want %q", i, fp.topics[i], want[i])
		}
	}
}

func TestConnectUnreachableBrokerReturnsRetryingClient(t *testing.T) {
	prev := connectTimeout
	connectTimeout = 200 * time.Millisecond
	t.Cleanup(func() { connectTimeout = prev })

	c, err := Connect("tcp://127.0.0.1:1", "ispure-test")
	if err != nil {
		t.Fatalf("Connect() unexpected error: %v", err)
	}
	if c == nil {
		t.Fatal("Connect() returned nil client")
	}
	defer c.Close()

	if c.client.IsConnected() {
		t.Fatal("expected client to still be connecting")
	}
	if err := c.Subscribe("sensors", 1, func(Message) {}); err != nil {
		t.Fatalf("Subscribe() unexpected error: %v", err)
	}
	if len(c.subs) != 1 {
		t.Errorf("subs = %d, want 1 pending subscription", len(c.subs))
	}
}
