package aemet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/charmap"
)

var (
	forecastFields = []string{"provincia", "version", "id", "origen", "elaborado", "nombre", "prediccion"}

	// uvMax and estadoCielo are not sent for every day
	dailyFields = []string{
		"rachaMax", "fecha", "sensTermica", "humedadRelativa", "temperatura",
		"cotaNieveProv", "viento", "probPrecipitacion",
	}

	hourlyFields = []string{
		"estadoCielo", "precipitacion", "vientoAndRachaMax", "ocaso", "probTormenta",
		"probPrecipitacion", "orto", "humedadRelativa", "nieve", "probNieve",
		"fecha", "temperatura", "sensTermica",
	}
)

// decodeForecast maps the first element of a forecast payload into a
// Forecast. It also reports how many hourly entries were dropped.
func decodeForecast(data []byte, res Resolution) (*Forecast, int, error) {
	fields, err := decodeObject("forecast", data)
	if err != nil {
		return nil, 0, err
	}
	if err := requireFields("forecast", fields, forecastFields); err != nil {
		return nil, 0, err
	}

	forecast := &Forecast{Resolution: res}
	if err := json.Unmarshal(data, forecast); err != nil {
		return nil, 0, &DataError{Context: "forecast", Err: err}
	}

	prediction, err := decodeObject("prediccion", fields["prediccion"])
	if err != nil {
		return nil, 0, err
	}
	if err := requireFields("prediccion", prediction, []string{"dia"}); err != nil {
		return nil, 0, err
	}
	var days []json.RawMessage
	if err := json.Unmarshal(prediction["dia"], &days); err != nil {
		return nil, 0, &DataError{Context: "prediccion", Err: err}
	}

	dropped := 0
	switch res {
	case Daily:
		forecast.Daily, err = decodeDaily(days)
	case Hourly:
		forecast.Hourly, dropped = decodeHourly(days)
	default:
		err = fmt.Errorf("unsupported resolution %s", res)
	}
	if err != nil {
		return nil, 0, err
	}
	return forecast, dropped, nil
}

func decodeDaily(days []json.RawMessage) ([]DailyEntry, error) {
	entries := make([]DailyEntry, 0, len(days))
	for i, raw := range days {
		context := fmt.Sprintf("dia[%d]", i)
		fields, err := decodeObject(context, raw)
		if err != nil {
			return nil, err
		}
		if err := requireFields(context, fields, dailyFields); err != nil {
			return nil, err
		}
		var entry DailyEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, &DataError{Context: context, Err: err}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// decodeHourly keeps the complete entries in order and counts the rest
func decodeHourly(days []json.RawMessage) ([]HourlyEntry, int) {
	entries := make([]HourlyEntry, 0, len(days))
	dropped := 0
	for i, raw := range days {
		context := fmt.Sprintf("dia[%d]", i)
		fields, err := decodeObject(context, raw)
		if err != nil || requireFields(context, fields, hourlyFields) != nil {
			dropped++
			continue
		}
		var entry HourlyEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			dropped++
			continue
		}
		entries = append(entries, entry)
	}
	return entries, dropped
}

func decodeObject(context string, data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &DataError{Context: context, Err: err}
	}
	if fields == nil {
		return nil, &DataError{Context: context, Err: fmt.Errorf("expected object, got null")}
	}
	return fields, nil
}

func requireFields(context string, fields map[string]json.RawMessage, names []string) error {
	for _, name := range names {
		if _, ok := fields[name]; !ok {
			return &DataError{Context: context, Field: name}
		}
	}
	return nil
}

// firstElement returns element 0 of a JSON array payload
func firstElement(data []byte) (json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &DataError{Context: "payload", Err: err}
	}
	if len(items) == 0 {
		return nil, &DataError{Context: "payload", Field: "[0]"}
	}
	return items[0], nil
}

// toUTF8 converts a response body to UTF-8. The declared charset wins;
// undeclared bodies that are not valid UTF-8 are read as ISO-8859-15,
// which is what the data hop serves.
func toUTF8(body []byte, contentType string) ([]byte, error) {
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if name, ok := params["charset"]; ok {
			enc, canonical := charset.Lookup(name)
			if enc == nil {
				return nil, fmt.Errorf("unsupported charset %q", name)
			}
			if canonical == "utf-8" {
				return body, nil
			}
			return io.ReadAll(enc.NewDecoder().Reader(bytes.NewReader(body)))
		}
	}
	if utf8.Valid(body) {
		return body, nil
	}
	return charmap.ISO8859_15.NewDecoder().Bytes(body)
}
