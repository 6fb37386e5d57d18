package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ispure/ispure-go/internal/model"
	"github.com/ispure/ispure-go/internal/service"
)

// httpTopic is the topic recorded for readings posted over HTTP.
const httpTopic = "http"

// Readings is the aggregation logic behind the sensor, ISPU and merge
// endpoints.
type Readings interface {
	LatestSensor(ctx context.Context) (model.FormattedSensor, error)
	LatestIspu(ctx context.Context) (model.FormattedIspu, error)
	ListSensors(ctx context.Context) ([]model.FormattedSensor, error)
	ListIspu(ctx context.Context) ([]model.FormattedIspu, error)
	DetailByType(ctx context.Context, typ string, now time.Time) (*model.SensorDetail, error)
	DetailAll(ctx context.Context) (*model.HomeSummary, error)
	AddSensor(ctx context.Context, r *model.SensorReading, receivedAt time.Time) error
	AddIspu(ctx context.Context, r *model.IspuReading, receivedAt time.Time) error
}

// ReadingHandler handles HTTP requests for sensor and ISPU readings.
type ReadingHandler struct {
	service Readings
	now     func() time.Time
}

// NewReadingHandler creates a new ReadingHandler.
func NewReadingHandler(svc Readings) *ReadingHandler {
	return &ReadingHandler{service: svc, now: time.Now}
}

// readingError maps aggregation errors to responses.
func readingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidType), errors.Is(err, service.ErrInvalidReading):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNoSensorData), errors.Is(err, service.ErrNoIspuData):
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
	default:
		serverError(w, r, err)
	}
}

// HandleListSensors handles GET /api/sensors requests.
func (h *ReadingHandler) HandleListSensors(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ListSensors(r.Context())
	if err != nil {
		readingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleLatestSensor handles GET /api/sensors/lastest requests.
func (h *ReadingHandler) HandleLatestSensor(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.LatestSensor(r.Context())
	if err != nil {
		readingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleCreateSensor handles POST /api/sensors requests.
func (h *ReadingHandler) HandleCreateSensor(w http.ResponseWriter, r *http.Request) {
	var payload model.SensorPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	reading := &model.SensorReading{Topic: httpTopic, Payload: payload}
	if err := h.service.AddSensor(r.Context(), reading, h.now()); err != nil {
		readingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reading)
}

// HandleListIspu handles GET /api/ispu requests.
func (h *ReadingHandler) HandleListIspu(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ListIspu(r.Context())
	if err != nil {
		readingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleLatestIspu handles GET /api/ispu/lastest requests.
func (h *ReadingHandler) HandleLatestIspu(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.LatestIspu(r.Context())
	if err != nil {
		readingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleCreateIspu handles POST /api/ispu requests.
func (h *ReadingHandler) HandleCreateIspu(w http.ResponseWriter, r *http.Request) {
	var payload model.IspuPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	reading := &model.IspuReading{Topic: httpTopic, Payload: payload}
	if err := h.service.AddIspu(r.Context(), reading, h.now()); err != nil {
		readingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reading)
}

// HandleHome handles GET /api/merge/home requests.
func (h *ReadingHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.DetailAll(r.Context())
	if err != nil {
		readingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleDetail handles GET /api/merge/detail/{type} requests.
func (h *ReadingHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.DetailByType(r.Context(), chi.URLParam(r, "type"), h.now())
	if err != nil {
		readingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
