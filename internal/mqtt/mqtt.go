// Package mqtt is a thin wrapper over the paho client that reconnects on
// its own and resubscribes after every reconnect.
package mqtt

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	subscribeTimeout  = 10 * time.Second
	disconnectQuiesce = 1000 // ms
)

var connectTimeout = 15 * time.Second

var ErrTimeout = errors.New("mqtt operation timed out")

// Message is a received MQTT message.
type Message interface {
	Topic() string
	Payload() []byte
	Retained() bool
	Qos() byte
	MessageID() uint16
}

type subscription struct {
	topic   string
	qos     byte
	handler func(Message)
}

// Client is a connected MQTT client.
type Client struct {
	client paho.Client

	mu   sync.Mutex
	subs []subscription
}

// BrokerAddress normalizes a broker URL for paho, which expects tcp://,
// ssl:// or ws:// schemes. A bare host:port is treated as tcp.
func BrokerAddress(raw string) string {
	url := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(url, "mqtt://"):
		return "tcp://" + strings.TrimPrefix(url, "mqtt://")
	case strings.HasPrefix(url, "mqtts://"):
		return "ssl://" + strings.TrimPrefix(url, "mqtts://")
	case !strings.Contains(url, "://"):
		return "tcp://" + url
	}
	return url
}

// Connect dials the broker and waits up to connectTimeout for the first
// connection. A broker that is not up yet is not an error: the client keeps
// retrying in the background and applies subscriptions once connected.
func Connect(brokerURL, clientID string) (*Client, error) {
	c := &Client{}

	opts := paho.NewClientOptions()
	opts.AddBroker(BrokerAddress(brokerURL))
	if strings.TrimSpace(clientID) == "" {
		clientID = "ispure-api-" + time.Now().Format("150405.000")
	}
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(true)

	opts.OnConnectionLost = func(_ paho.Client, err error) {
		slog.Warn("mqtt connection lost", "error", err)
	}
	opts.OnConnect = func(pc paho.Client) {
		slog.Info("mqtt connected", "broker", BrokerAddress(brokerURL))
		c.resubscribe(pc)
	}

	c.client = paho.NewClient(opts)
	tok := c.client.Connect()
	if !tok.WaitTimeout(connectTimeout) {
		slog.Warn("mqtt broker not reachable yet, retrying in background", "broker", BrokerAddress(brokerURL))
		return c, nil
	}
	if err := tok.Error(); err != nil {
		c.client.Disconnect(0)
		return nil, err
	}
	return c, nil
}

// Subscribe registers handler for topic. The subscription is applied now if
// the client is connected and restored after every (re)connect.
func (c *Client) Subscribe(topic string, qos byte, handler func(Message)) error {
	sub := subscription{topic: topic, qos: qos, handler: handler}

	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()

	if !c.client.IsConnected() {
		return nil
	}
	return subscribe(c.client, sub)
}

func (c *Client) resubscribe(pc paho.Client) {
	c.mu.Lock()
	subs := append([]subscription(nil), c.subs...)
	c.mu.Unlock()

	for _, sub := range subs {
		if err := subscribe(pc, sub); err != nil {
			slog.Error("mqtt resubscribe failed", "topic", sub.topic, "error", err)
		}
	}
}

func subscribe(pc paho.Client, sub subscription) error {
	tok := pc.Subscribe(sub.topic, sub.qos, func(_ paho.Client, msg paho.Message) {
		sub.handler(msg)
	})
	if !tok.WaitTimeout(subscribeTimeout) {
		return ErrTimeout
	}
	return tok.Error()
}

// Close disconnects after letting in-flight work finish.
func (c *Client) Close() {
	if c == nil || c.client == nil {
		return
	}
	c.client.Disconnect(disconnectQuiesce)
}
