// Package airquality holds the fixed lookup tables of the monitoring domain:
// measured quantities and their units, ISPU severity categories, and the
// time zone used to display readings from each location.
package airquality

import (
	"errors"
	"strings"
)

var ErrUnknownPollutant = errors.New("invalid sensor type. Valid types: co, pm25, no2, o3, temp, hum")

// Pollutant identifies one measured quantity of a sensor reading. Temperature
// and humidity are not pollutants in the strict sense but share the type
// because every endpoint treats the six quantities uniformly.
type Pollutant string

const (
	CO          Pollutant = "co"
	PM25        Pollutant = "pm25"
	NO2         Pollutant = "no2"
	O3          Pollutant = "o3"
	Temperature Pollutant = "temp"
	Humidity    Pollutant = "hum"
)

// All lists the six quantities in the order the dashboard renders them.
var All = []Pollutant{CO, PM25, NO2, O3, Temperature, Humidity}

// IspuCovered lists the quantities that have an ISPU index.
var IspuCovered = []Pollutant{CO, PM25, NO2, O3}

type pollutantInfo struct {
	name string
	unit string
	ispu bool
}

var pollutants = map[Pollutant]pollutantInfo{
	CO:          {name: "CO", unit: "µg/m³", ispu: true},
	PM25:        {name: "PM2.5", unit: "µg/m³", ispu: true},
	NO2:         {name: "NO2", unit: "µg/m³", ispu: true},
	O3:          {name: "O3", unit: "µg/m³", ispu: true},
	Temperature: {name: "Temperature", unit: "°C"},
	Humidity:    {name: "Humidity", unit: "%"},
}

// ParsePollutant validates a type parameter against the closed set of
// quantities. Matching is exact: "PM25" is rejected like any unknown value.
func ParsePollutant(s string) (Pollutant, error) {
	p := Pollutant(s)
	if _, ok := pollutants[p]; !ok {
		return "", ErrUnknownPollutant
	}
	return p, nil
}

// Valid reports whether p is one of the six known quantities.
func (p Pollutant) Valid() bool {
	_, ok := pollutants[p]
	return ok
}

// Unit returns the display unit, or "" for unknown quantities.
func (p Pollutant) Unit() string {
	return pollutants[p].unit
}

// DisplayName returns the human readable label used on the home summary.
func (p Pollutant) DisplayName() string {
	return pollutants[p].name
}

// Code returns the upper-cased identifier used as the detail view title.
func (p Pollutant) Code() string {
	return strings.ToUpper(string(p))
}

// HasIspu reports whether an ISPU index exists for p.
func (p Pollutant) HasIspu() bool {
	return pollutants[p].ispu
}
