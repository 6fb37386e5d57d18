package model

import "github.com/ispure/ispure-go/internal/airquality"

// DailyAverage is the mean of one quantity over a UTC calendar day.
type DailyAverage struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// SensorDetail is the body of GET /api/merge/detail/{type}.
type SensorDetail struct {
	Name           string               `json:"name"`
	SensorValue    Measure              `json:"sensorValue"`
	IspuValue      *float64             `json:"ispuValue"`
	Category       *airquality.Category `json:"category,omitempty"`
	DateTime       string               `json:"dateTime"`
	Location       string               `json:"location"`
	Unit           string               `json:"unit"`
	Historical     []DailyAverage       `json:"historical"`
	IspuHistorical []DailyAverage       `json:"ispuHistorical,omitempty"`
}

// PollutantSummary is a home card for a quantity with an ISPU index.
type PollutantSummary struct {
	Name      string               `json:"name"`
	Value     Measure              `json:"value"`
	Unit      string               `json:"unit"`
	IspuValue *float64             `json:"ispuValue"`
	Category  *airquality.Category `json:"category"`
}

// ClimateSummary is a home card for temperature or humidity. It has no
// ispuValue field at all.
type ClimateSummary struct {
	Name  string  `json:"name"`
	Value Measure `json:"value"`
	Unit  string  `json:"unit"`
}

// HomeSensors holds the six home cards.
type HomeSensors struct {
	CO   PollutantSummary `json:"co"`
	PM25 PollutantSummary `json:"pm25"`
	NO2  PollutantSummary `json:"no2"`
	O3   PollutantSummary `json:"o3"`
	Temp ClimateSummary   `json:"temp"`
	Hum  ClimateSummary   `json:"hum"`
}

// WorstPollutant names the pollutant driving the overall air quality.
type WorstPollutant struct {
	Type      airquality.Pollutant `json:"type"`
	Name      string               `json:"name"`
	IspuValue float64              `json:"ispuValue"`
	Category  airquality.Category  `json:"category"`
}

// HomeSummary is the body of GET /api/merge/home.
type HomeSummary struct {
	DateTime string          `json:"dateTime"`
	Location string          `json:"location"`
	Sensors  HomeSensors     `json:"sensors"`
	Worst    *WorstPollutant `json:"worst,omitempty"`
}
