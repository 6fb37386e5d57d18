package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ispure/ispure-go/internal/metrics"
	"github.com/ispure/ispure-go/internal/model"
	"github.com/ispure/ispure-go/internal/service"
)

type fakeMsg struct {
	topic    string
	payload  []byte
	retained bool
	qos      byte
	id       uint16
}

func (m fakeMsg) Topic() string     { return m.topic }
func (m fakeMsg) Payload() []byte   { return m.payload }
func (m fakeMsg) Retained() bool    { return m.retained }
func (m fakeMsg) Qos() byte         { return m.qos }
func (m fakeMsg) MessageID() uint16 { return m.id }

type fakeStore struct {
	sensors    []*model.SensorReading
	ispus      []*model.IspuReading
	receivedAt []time.Time
	err        error
}

func (f *fakeStore) AddSensor(_ context.Context, r *model.SensorReading, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	if r.Payload.Location == "" {
		return fmt.Errorf("%w: loc is required", service.ErrInvalidReading)
	}
	f.sensors = append(f.sensors, r)
	f.receivedAt = append(f.receivedAt, at)
	return nil
}

func (f *fakeStore) AddIspu(_ context.Context, r *model.IspuReading, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.ispus = append(f.ispus, r)
	f.receivedAt = append(f.receivedAt, at)
	return nil
}

func newIngestor(store Store) *Ingestor {
	return &Ingestor{Store: store, SensorTopic: "ispure/sensor", IspuTopic: "ispure/ispu"}
}

var received = time.Date(2025, 5, 20, 2, 0, 0, 0, time.UTC)

func TestRoute(t *testing.T) {
	ing := newIngestor(nil)

	kind, err := ing.Route("ispure/sensor")
	require.NoError(t, err)
	assert.Equal(t, KindSensor, kind)

	kind, err = ing.Route("ispure/ispu")
	require.NoError(t, err)
	assert.Equal(t, KindIspu, kind)

	_, err = ing.Route("ispure/other")
	assert.ErrorIs(t, err, ErrUnknownTopic)

	_, err = (&Ingestor{}).Route("")
	assert.ErrorIs(t, err, ErrUnknownTopic)
}

func TestHandleMessageStoresSensor(t *testing.T) {
	store := &fakeStore{}
	ing := newIngestor(store)
	stored := metrics.IngestMessagesTotal.WithLabelValues("sensor", "stored")
	before := testutil.ToFloat64(stored)

	msg := fakeMsg{
		topic:   "ispure/sensor",
		payload: []byte(`{"pm25":"35.2","co":1.1,"temp":"29","hum":70,"loc":"Jakarta"}`),
		qos:     1,
		id:      42,
	}
	ing.HandleMessage(context.Background(), msg, received)

	require.Len(t, store.sensors, 1)
	r := store.sensors[0]
	assert.Equal(t, "ispure/sensor", r.Topic)
	assert.Equal(t, 1, r.QoS)
	assert.False(t, r.Retain)
	assert.Equal(t, "42", r.MsgID)
	assert.Equal(t, model.NewMeasure(35.2), r.Payload.PM25)
	assert.Equal(t, model.NewMeasure(29), r.Payload.Temp)
	assert.False(t, r.Payload.NO2.Valid)
	assert.Equal(t, received, store.receivedAt[0])
	assert.Equal(t, 1.0, testutil.ToFloat64(stored)-before)
}

func TestHandleMessageStoresIspu(t *testing.T) {
	store := &fakeStore{}
	ing := newIngestor(store)

	msg := fakeMsg{
		topic:   "ispure/ispu",
		payload: []byte(`{"pm25":80,"co":12,"no2":5,"o3":40,"loc":"Bandung","dateTime":"2025-05-19T23:00:00Z"}`),
	}
	ing.HandleMessage(context.Background(), msg, received)

	require.Len(t, store.ispus, 1)
	r := store.ispus[0]
	assert.Empty(t, r.MsgID, "zero message id is left for the store to fill")
	assert.Equal(t, time.Date(2025, 5, 19, 23, 0, 0, 0, time.UTC), r.Payload.DateTime)
}

func TestHandleMessageSkips(t *testing.T) {
	tests := []struct {
		name string
		msg  fakeMsg
	}{
		{"unknown topic", fakeMsg{topic: "other", payload: []byte(`{"loc":"Jakarta"}`)}},
		{"retained", fakeMsg{topic: "ispure/sensor", payload: []byte(`{"loc":"Jakarta"}`), retained: true}},
		{"empty payload", fakeMsg{topic: "ispure/sensor"}},
		{"invalid json", fakeMsg{topic: "ispure/sensor", payload: []byte(`{not-json}`)}},
		{"unparsable value", fakeMsg{topic: "ispure/sensor", payload: []byte(`{"pm25":"abc","loc":"Jakarta"}`)}},
		{"missing loc", fakeMsg{topic: "ispure/sensor", payload: []byte(`{"pm25":1}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			newIngestor(store).HandleMessage(context.Background(), tt.msg, received)
			assert.Empty(t, store.sensors)
			assert.Empty(t, store.ispus)
		})
	}
}

func TestHandleMessageRetainedAllowed(t *testing.T) {
	store := &fakeStore{}
	ing := newIngestor(store)
	ing.AllowRetains = true

	ing.HandleMessage(context.Background(), fakeMsg{topic: "ispure/sensor", payload: []byte(`{"loc":"Jakarta"}`), retained: true}, received)

	require.Len(t, store.sensors, 1)
	assert.True(t, store.sensors[0].Retain)
}

func TestHandleMessageStoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	failed := metrics.IngestMessagesTotal.WithLabelValues("ispu", "error")
	before := testutil.ToFloat64(failed)

	assert.NotPanics(t, func() {
		newIngestor(store).HandleMessage(context.Background(), fakeMsg{topic: "ispure/ispu", payload: []byte(`{"loc":"Jakarta"}`)}, received)
	})
	assert.Equal(t, 1.0, testutil.ToFloat64(failed)-before)
}
