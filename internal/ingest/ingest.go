// Package ingest stores readings published by monitoring stations over MQTT.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/ispure/ispure-go/internal/metrics"
	"github.com/ispure/ispure-go/internal/model"
	"github.com/ispure/ispure-go/internal/service"
)

var ErrUnknownTopic = errors.New("topic is not an ingest topic")

// Kind is the collection a topic feeds.
type Kind string

const (
	KindSensor Kind = "sensor"
	KindIspu   Kind = "ispu"
)

// Store persists validated readings.
type Store interface {
	AddSensor(ctx context.Context, r *model.SensorReading, receivedAt time.Time) error
	AddIspu(ctx context.Context, r *model.IspuReading, receivedAt time.Time) error
}

// MQTTMessage is the part of a received message the ingestor reads.
type MQTTMessage interface {
	Topic() string
	Payload() []byte
	Retained() bool
	Qos() byte
	MessageID() uint16
}

// Ingestor routes messages by topic to the sensor or ISPU collection.
type Ingestor struct {
	Store        Store
	SensorTopic  string
	IspuTopic    string
	AllowRetains bool
}

// Route returns the kind of reading published on topic.
func (i *Ingestor) Route(topic string) (Kind, error) {
	switch {
	case topic != "" && topic == i.SensorTopic:
		return KindSensor, nil
	case topic != "" && topic == i.IspuTopic:
		return KindIspu, nil
	}
	return "", ErrUnknownTopic
}

// HandleMessage decodes and stores one message. Failures are logged and
// counted; a bad message never stops the subscription.
func (i *Ingestor) HandleMessage(ctx context.Context, msg MQTTMessage, receivedAt time.Time) {
	topic := msg.Topic()

	kind, err := i.Route(topic)
	if err != nil {
		slog.Debug("ingest ignoring topic", "topic", topic)
		return
	}

	if msg.Retained() && !i.AllowRetains {
		slog.Debug("ingest ignoring retained", "topic", topic)
		count(kind, "skipped")
		return
	}

	payload := msg.Payload()
	if len(payload) == 0 {
		count(kind, "invalid")
		return
	}

	var msgID string
	if id := msg.MessageID(); id != 0 {
		msgID = strconv.Itoa(int(id))
	}

	var store func() error
	switch kind {
	case KindSensor:
		r := &model.SensorReading{Topic: topic, QoS: int(msg.Qos()), Retain: msg.Retained(), MsgID: msgID}
		err = json.Unmarshal(payload, &r.Payload)
		store = func() error { return i.Store.AddSensor(ctx, r, receivedAt) }
	case KindIspu:
		r := &model.IspuReading{Topic: topic, QoS: int(msg.Qos()), Retain: msg.Retained(), MsgID: msgID}
		err = json.Unmarshal(payload, &r.Payload)
		store = func() error { return i.Store.AddIspu(ctx, r, receivedAt) }
	}
	if err != nil {
		slog.Warn("ingest invalid json", "topic", topic, "error", err)
		count(kind, "invalid")
		return
	}

	if err := store(); err != nil {
		if errors.Is(err, service.ErrInvalidReading) {
			slog.Warn("ingest rejected reading", "topic", topic, "error", err)
			count(kind, "invalid")
			return
		}
		slog.Error("ingest store failed", "topic", topic, "error", err)
		count(kind, "error")
		return
	}

	count(kind, "stored")
	slog.Debug("ingest reading stored", "topic", topic, "kind", kind)
}

func count(kind Kind, result string) {
	metrics.IngestMessagesTotal.WithLabelValues(string(kind), result).Inc()
}
