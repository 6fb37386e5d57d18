package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/ispure/ispure-go/internal/airquality"
	"github.com/ispure/ispure-go/internal/model"
	"github.com/ispure/ispure-go/internal/repository"
	"github.com/ispure/ispure-go/internal/validate"
)

var (
	ErrInvalidType    = airquality.ErrUnknownPollutant
	ErrNoSensorData   = errors.New("no sensor data found")
	ErrNoIspuData     = errors.New("no ISPU data found")
	ErrInvalidReading = errors.New("invalid reading")
)

// HistoryDays is how many days before today the detail history reaches back.
const HistoryDays = 30

const dateLayout = "2006-01-02"

// ReadingStore is the persistence of one reading collection.
type ReadingStore[T any] interface {
	Latest(ctx context.Context) (*T, error)
	List(ctx context.Context) ([]T, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]T, error)
	Insert(ctx context.Context, doc *T) (bson.ObjectID, error)
}

// ReadingService answers the dashboard queries over sensor and ISPU
// readings and stores new readings.
type ReadingService struct {
	sensors ReadingStore[model.SensorReading]
	ispus   ReadingStore[model.IspuReading]
}

// NewReadingService creates a new ReadingService.
func NewReadingService(sensors ReadingStore[model.SensorReading], ispus ReadingStore[model.IspuReading]) *ReadingService {
	return &ReadingService{sensors: sensors, ispus: ispus}
}

func (s *ReadingService) latestSensor(ctx context.Context) (*model.SensorReading, error) {
	r, err := s.sensors.Latest(ctx)
	if errors.Is(err, repository.ErrNoReadings) {
		return nil, ErrNoSensorData
	}
	return r, err
}

func (s *ReadingService) latestIspu(ctx context.Context) (*model.IspuReading, error) {
	r, err := s.ispus.Latest(ctx)
	if errors.Is(err, repository.ErrNoReadings) {
		return nil, ErrNoIspuData
	}
	return r, err
}

// LatestSensor returns the most recent sensor reading.
func (s *ReadingService) LatestSensor(ctx context.Context) (model.FormattedSensor, error) {
	r, err := s.latestSensor(ctx)
	if err != nil {
		return model.FormattedSensor{}, err
	}
	return model.FormatSensor(*r), nil
}

// LatestIspu returns the most recent ISPU reading.
func (s *ReadingService) LatestIspu(ctx context.Context) (model.FormattedIspu, error) {
	r, err := s.latestIspu(ctx)
	if err != nil {
		return model.FormattedIspu{}, err
	}
	return model.FormatIspu(*r), nil
}

// ListSensors returns every sensor reading, newest first.
func (s *ReadingService) ListSensors(ctx context.Context) ([]model.FormattedSensor, error) {
	readings, err := s.sensors.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, ErrNoSensorData
	}

	out := make([]model.FormattedSensor, 0, len(readings))
	for _, r := range readings {
		out = append(out, model.FormatSensor(r))
	}
	return out, nil
}

// ListIspu returns every ISPU reading, newest first.
func (s *ReadingService) ListIspu(ctx context.Context) ([]model.FormattedIspu, error) {
	readings, err := s.ispus.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, ErrNoIspuData
	}

	out := make([]model.FormattedIspu, 0, len(readings))
	for _, r := range readings {
		out = append(out, model.FormatIspu(r))
	}
	return out, nil
}

// DetailByType builds the detail view of one quantity: its latest value,
// the latest ISPU index where one exists and daily averages over the
// trailing window ending on now's UTC date.
func (s *ReadingService) DetailByType(ctx context.Context, typ string, now time.Time) (*model.SensorDetail, error) {
	p, err := airquality.ParsePollutant(typ)
	if err != nil {
		return nil, ErrInvalidType
	}

	latest, err := s.latestSensor(ctx)
	if err != nil {
		return nil, err
	}

	from, to := TrailingWindow(now, HistoryDays)

	history, err := s.sensors.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	value, _ := latest.Measure(p)
	detail := &model.SensorDetail{
		Name:        p.Code(),
		SensorValue: value,
		DateTime:    airquality.FormatLocal(latest.Timestamp(), latest.Location()),
		Location:    latest.Location(),
		Unit:        p.Unit(),
		Historical:  DailyAverages(history, p),
	}

	if !p.HasIspu() {
		return detail, nil
	}

	ispu, err := s.latestIspu(ctx)
	switch {
	case errors.Is(err, ErrNoIspuData):
	case err != nil:
		return nil, err
	default:
		if m, _ := ispu.Measure(p); m.Valid {
			cat := airquality.CategoryOf(m.Value)
			detail.IspuValue = m.Ptr()
			detail.Category = &cat
		}
	}

	ispuHistory, err := s.ispus.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	detail.IspuHistorical = DailyAverages(ispuHistory, p)

	return detail, nil
}

// DetailAll builds the home summary from the latest sensor and ISPU
// readings. Without ISPU data the pollutant cards have null index values
// and no worst pollutant is reported.
func (s *ReadingService) DetailAll(ctx context.Context) (*model.HomeSummary, error) {
	sensor, err := s.latestSensor(ctx)
	if err != nil {
		return nil, err
	}

	ispu, err := s.latestIspu(ctx)
	if err != nil && !errors.Is(err, ErrNoIspuData) {
		return nil, err
	}

	var indexes []airquality.IndexValue
	pollutant := func(p airquality.Pollutant) model.PollutantSummary {
		value, _ := sensor.Measure(p)
		card := model.PollutantSummary{
			Name:  p.DisplayName(),
			Value: value,
			Unit:  p.Unit(),
		}
		if ispu == nil {
			return card
		}
		if m, _ := ispu.Measure(p); m.Valid {
			cat := airquality.CategoryOf(m.Value)
			card.IspuValue = m.Ptr()
			card.Category = &cat
			indexes = append(indexes, airquality.IndexValue{Pollutant: p, Value: m.Value})
		}
		return card
	}
	climate := func(p airquality.Pollutant) model.ClimateSummary {
		value, _ := sensor.Measure(p)
		return model.ClimateSummary{Name: p.DisplayName(), Value: value, Unit: p.Unit()}
	}

	summary := &model.HomeSummary{
		DateTime: airquality.FormatLocal(sensor.Timestamp(), sensor.Location()),
		Location: sensor.Location(),
		Sensors: model.HomeSensors{
			CO:   pollutant(airquality.CO),
			PM25: pollutant(airquality.PM25),
			NO2:  pollutant(airquality.NO2),
			O3:   pollutant(airquality.O3),
			Temp: climate(airquality.Temperature),
			Hum:  climate(airquality.Humidity),
		},
	}

	if worst, ok := airquality.Worst(indexes); ok {
		summary.Worst = &model.WorstPollutant{
			Type:      worst.Pollutant,
			Name:      worst.Pollutant.DisplayName(),
			IspuValue: worst.Value,
			Category:  airquality.CategoryOf(worst.Value),
		}
	}

	return summary, nil
}

// AddSensor validates and stores a sensor reading. A missing timestamp
// defaults to receivedAt and a missing message id to a random UUID.
func (s *ReadingService) AddSensor(ctx context.Context, r *model.SensorReading, receivedAt time.Time) error {
	if err := prepare(&r.Payload, &r.Payload.DateTime, &r.MsgID, receivedAt); err != nil {
		return err
	}
	id, err := s.sensors.Insert(ctx, r)
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

// AddIspu validates and stores an ISPU reading like AddSensor.
func (s *ReadingService) AddIspu(ctx context.Context, r *model.IspuReading, receivedAt time.Time) error {
	if err := prepare(&r.Payload, &r.Payload.DateTime, &r.MsgID, receivedAt); err != nil {
		return err
	}
	id, err := s.ispus.Insert(ctx, r)
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

func prepare(payload any, dateTime *time.Time, msgID *string, receivedAt time.Time) error {
	if err := validate.Struct(payload); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidReading, err)
	}
	if dateTime.IsZero() {
		*dateTime = receivedAt
	}
	*dateTime = dateTime.UTC()
	if *msgID == "" {
		*msgID = uuid.NewString()
	}
	return nil
}

// TrailingWindow returns the half-open range [from, to) covering the UTC
// calendar dates from days before now's date through now's date.
func TrailingWindow(now time.Time, days int) (from, to time.Time) {
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -days), today.AddDate(0, 0, 1)
}

// DailyAverages groups readings by UTC calendar date and averages the value
// of p, rounded to two decimals. Readings without a valid value are skipped
// and days left empty are dropped. The result is ordered by date and never
// nil.
func DailyAverages[R model.Reading](readings []R, p airquality.Pollutant) []model.DailyAverage {
	type acc struct {
		sum   float64
		count int
	}
	days := make(map[string]*acc)

	for _, r := range readings {
		m, ok := r.Measure(p)
		if !ok || !m.Valid {
			continue
		}
		key := r.Timestamp().UTC().Format(dateLayout)
		a, ok := days[key]
		if !ok {
			a = &acc{}
			days[key] = a
		}
		a.sum += m.Value
		a.count++
	}

	out := make([]model.DailyAverage, 0, len(days))
	for date, a := range days {
		out = append(out, model.DailyAverage{Date: date, Value: round2(a.sum / float64(a.count))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
