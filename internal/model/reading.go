package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/ispure/ispure-go/internal/airquality"
)

// Reading is the part of a stored reading the aggregation code needs.
type Reading interface {
	Timestamp() time.Time
	Location() string
	Measure(p airquality.Pollutant) (Measure, bool)
}

// SensorPayload holds the raw concentrations and climate values published by
// a monitoring station.
type SensorPayload struct {
	CO       Measure   `bson:"co" json:"co"`
	PM25     Measure   `bson:"pm25" json:"pm25"`
	NO2      Measure   `bson:"no2" json:"no2"`
	O3       Measure   `bson:"o3" json:"o3"`
	Temp     Measure   `bson:"temp" json:"temp"`
	Hum      Measure   `bson:"hum" json:"hum"`
	Location string    `bson:"loc" json:"loc" validate:"required"`
	DateTime time.Time `bson:"dateTime" json:"dateTime"`
}

// SensorReading is one append-only document of the sensors collection.
type SensorReading struct {
	ID      bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Topic   string        `bson:"topic" json:"topic"`
	Payload SensorPayload `bson:"payload" json:"payload"`
	QoS     int           `bson:"qos" json:"qos"`
	Retain  bool          `bson:"retain" json:"retain"`
	MsgID   string        `bson:"_msgid" json:"msgId"`
}

func (r SensorReading) Timestamp() time.Time { return r.Payload.DateTime }
func (r SensorReading) Location() string     { return r.Payload.Location }

// Measure returns the value of p. ok is false for quantities the payload
// does not carry.
func (r SensorReading) Measure(p airquality.Pollutant) (Measure, bool) {
	switch p {
	case airquality.CO:
		return r.Payload.CO, true
	case airquality.PM25:
		return r.Payload.PM25, true
	case airquality.NO2:
		return r.Payload.NO2, true
	case airquality.O3:
		return r.Payload.O3, true
	case airquality.Temperature:
		return r.Payload.Temp, true
	case airquality.Humidity:
		return r.Payload.Hum, true
	}
	return Measure{}, false
}

// IspuPayload holds the index values computed for the four ISPU pollutants.
type IspuPayload struct {
	PM25     Measure   `bson:"pm25" json:"pm25"`
	CO       Measure   `bson:"co" json:"co"`
	NO2      Measure   `bson:"no2" json:"no2"`
	O3       Measure   `bson:"o3" json:"o3"`
	Location string    `bson:"loc" json:"loc" validate:"required"`
	DateTime time.Time `bson:"dateTime" json:"dateTime"`
}

// IspuReading is one append-only document of the ispus collection.
type IspuReading struct {
	ID      bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Topic   string        `bson:"topic" json:"topic"`
	Payload IspuPayload   `bson:"payload" json:"payload"`
	QoS     int           `bson:"qos" json:"qos"`
	Retain  bool          `bson:"retain" json:"retain"`
	MsgID   string        `bson:"_msgid" json:"msgId"`
}

func (r IspuReading) Timestamp() time.Time { return r.Payload.DateTime }
func (r IspuReading) Location() string     { return r.Payload.Location }

func (r IspuReading) Measure(p airquality.Pollutant) (Measure, bool) {
	switch p {
	case airquality.CO:
		return r.Payload.CO, true
	case airquality.PM25:
		return r.Payload.PM25, true
	case airquality.NO2:
		return r.Payload.NO2, true
	case airquality.O3:
		return r.Payload.O3, true
	}
	return Measure{}, false
}

// FormattedSensor is a sensor reading with its timestamp rendered in the
// station's local time.
type FormattedSensor struct {
	PM25     Measure `json:"pm25"`
	CO       Measure `json:"co"`
	NO2      Measure `json:"no2"`
	O3       Measure `json:"o3"`
	Temp     Measure `json:"temp"`
	Hum      Measure `json:"hum"`
	Location string  `json:"loc"`
	DateTime string  `json:"dateTime"`
}

// FormatSensor converts r for the listing endpoints.
func FormatSensor(r SensorReading) FormattedSensor {
	p := r.Payload
	return FormattedSensor{
		PM25:     p.PM25,
		CO:       p.CO,
		NO2:      p.NO2,
		O3:       p.O3,
		Temp:     p.Temp,
		Hum:      p.Hum,
		Location: p.Location,
		DateTime: airquality.FormatLocal(p.DateTime, p.Location),
	}
}

// FormattedIspu is an ISPU reading with a localized timestamp.
type FormattedIspu struct {
	PM25     Measure `json:"pm25"`
	CO       Measure `json:"co"`
	NO2      Measure `json:"no2"`
	O3       Measure `json:"o3"`
	DateTime string  `json:"dateTime"`
}

// FormatIspu converts r for the listing endpoints.
func FormatIspu(r IspuReading) FormattedIspu {
	p := r.Payload
	return FormattedIspu{
		PM25:     p.PM25,
		CO:       p.CO,
		NO2:      p.NO2,
		O3:       p.O3,
		DateTime: airquality.FormatLocal(p.DateTime, p.Location),
	}
}
