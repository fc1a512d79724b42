package aemet

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/devskill-org/aemet/sun"
	"github.com/devskill-org/aemet/utils"
)

// GeneratedTime parses the "elaborado" timestamp in loc
func (f *Forecast) GeneratedTime(loc *time.Location) (time.Time, error) {
	if f == nil {
		return time.Time{}, fmt.Errorf("nil forecast")
	}
	return utils.ParseLocalTimestamp(f.GeneratedAt, loc)
}

// DayAt returns the daily entry for the calendar day of date
func (f *Forecast) DayAt(date time.Time) *DailyEntry {
	if f == nil {
		return nil
	}
	for i := range f.Daily {
		if entryOnDay(f.Daily[i].Date, date) {
			return &f.Daily[i]
		}
	}
	return nil
}

// HourlyAt returns the hourly entry for the calendar day of date
func (f *Forecast) HourlyAt(date time.Time) *HourlyEntry {
	if f == nil {
		return nil
	}
	for i := range f.Hourly {
		if entryOnDay(f.Hourly[i].Date, date) {
			return &f.Hourly[i]
		}
	}
	return nil
}

// Len returns the number of entries at the forecast's resolution
func (f *Forecast) Len() int {
	if f == nil {
		return 0
	}
	if f.Resolution == Hourly {
		return len(f.Hourly)
	}
	return len(f.Daily)
}

func entryOnDay(fecha string, date time.Time) bool {
	t, err := utils.ParseLocalTimestamp(fecha, date.Location())
	if err != nil {
		return strings.HasPrefix(fecha, date.Format("2006-01-02"))
	}
	return utils.SameDay(t, date)
}

// Temperatures decodes the hourly temperature series
func (e *HourlyEntry) Temperatures() ([]PeriodValue, error) {
	return decodeSeries("temperatura", e.Temperature)
}

// SkyStates decodes the hourly sky-state series
func (e *HourlyEntry) SkyStates() ([]PeriodValue, error) {
	return decodeSeries("estadoCielo", e.SkyState)
}

// Precipitations decodes the hourly precipitation series (mm)
func (e *HourlyEntry) Precipitations() ([]PeriodValue, error) {
	return decodeSeries("precipitacion", e.Precipitation)
}

// StormProbabilities decodes the storm probability series (%)
func (e *HourlyEntry) StormProbabilities() ([]PeriodValue, error) {
	return decodeSeries("probTormenta", e.StormProbability)
}

// HasPrecipitation checks if any period expects precipitation. "Ip"
// (inappreciable) counts as precipitation.
func (e *HourlyEntry) HasPrecipitation() bool {
	values, err := e.Precipitations()
	if err != nil {
		return false
	}
	for _, v := range values {
		if v.Value == "Ip" {
			return true
		}
		if f, ok := v.Value.Float(); ok && f > 0 {
			return true
		}
	}
	return false
}

// TemperatureRange decodes the daily temperature object
func (e *DailyEntry) TemperatureRange() (*TemperatureRange, error) {
	var r TemperatureRange
	if err := json.Unmarshal(e.Temperature, &r); err != nil {
		return nil, &DataError{Context: "temperatura", Err: err}
	}
	return &r, nil
}

// PrecipitationProbabilities decodes the daily precipitation probability series
func (e *DailyEntry) PrecipitationProbabilities() ([]PeriodValue, error) {
	return decodeSeries("probPrecipitacion", e.PrecipitationProbability)
}

// Winds decodes the daily wind series
func (e *DailyEntry) Winds() ([]WindValue, error) {
	var winds []WindValue
	if err := json.Unmarshal(e.Wind, &winds); err != nil {
		return nil, &DataError{Context: "viento", Err: err}
	}
	return winds, nil
}

func decodeSeries(context string, raw json.RawMessage) ([]PeriodValue, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var values []PeriodValue
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, &DataError{Context: context, Err: err}
	}
	return values, nil
}

// IsNight checks if a sky-state code is the night variant ("12n")
func (p PeriodValue) IsNight() bool {
	return strings.HasSuffix(string(p.Value), "n")
}

// Code returns the municipality code used by FetchForecast ("id44001" -> "44001")
func (m MunicipalityLocation) Code() string {
	return strings.TrimPrefix(m.ID, "id")
}

// Coordinates returns the decimal latitude and longitude
func (m MunicipalityLocation) Coordinates() (lat, lon float64, err error) {
	lat, ok := m.Latitude.Float()
	if !ok || lat < -90 || lat > 90 {
		return 0, 0, &ValidationError{Field: "latitud_dec", Message: fmt.Sprintf("invalid latitude %q", m.Latitude)}
	}
	lon, ok = m.Longitude.Float()
	if !ok || lon < -180 || lon > 180 {
		return 0, 0, &ValidationError{Field: "longitud_dec", Message: fmt.Sprintf("invalid longitude %q", m.Longitude)}
	}
	return lat, lon, nil
}

// SunTimes returns the astronomical sunrise and sunset at the municipality,
// for comparison with the forecast's "orto" and "ocaso"
func (m MunicipalityLocation) SunTimes(date time.Time) (sun.Times, error) {
	lat, lon, err := m.Coordinates()
	if err != nil {
		return sun.Times{}, err
	}
	return sun.TimesAt(date, lat, lon), nil
}

// FlexStringPtr is a helper function to get a pointer to a FlexString value
func FlexStringPtr(s string) *FlexString {
	v := FlexString(s)
	return &v
}
