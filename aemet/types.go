package aemet

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Resolution selects the forecast product requested for a municipality
type Resolution int

const (
	// Daily is the weekly product: one entry per calendar day
	Daily Resolution = iota
	// Hourly is the short-range product: one entry per period of the day
	Hourly
)

func (r Resolution) String() string {
	switch r {
	case Daily:
		return "daily"
	case Hourly:
		return "hourly"
	default:
		return fmt.Sprintf("Resolution(%d)", int(r))
	}
}

// API path templates, relative to the base URL
const (
	municipalitySearchPath = "maestro/municipios/"
	dailyForecastPath      = "prediccion/especifica/municipio/diaria/%s"
	hourlyForecastPath     = "prediccion/especifica/municipio/horaria/%s"
	estimatedFireRiskPath  = "incendios/mapasriesgo/estimado/area/%s"
	predictedFireRiskPath  = "incendios/mapasriesgo/previsto/dia/%d/area/%s"
)

// FlexString holds a scalar that upstream sends either as a JSON string or
// as a bare number. Numbers keep their literal text.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (s *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	*s = FlexString(data)
	return nil
}

func (s FlexString) String() string {
	return string(s)
}

// Float parses the value as a decimal number. AEMET occasionally uses a
// comma as decimal separator; both are accepted.
func (s FlexString) Float() (float64, bool) {
	v := strings.TrimSpace(strings.Replace(string(s), ",", ".", 1))
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Source describes who produced a forecast (the "origen" object)
type Source struct {
	Producer  string `json:"productor"`
	Web       string `json:"web"`
	Link      string `json:"enlace"`
	Language  string `json:"language"`
	Copyright string `json:"copyright"`
	LegalNote string `json:"notaLegal"`
}

// Forecast is the envelope shared by both forecast resolutions. Exactly one
// of Daily and Hourly is populated, matching Resolution.
type Forecast struct {
	Province    string     `json:"provincia"`
	Version     FlexString `json:"version"`
	ID          FlexString `json:"id"`
	Source      Source     `json:"origen"`
	GeneratedAt string     `json:"elaborado"`
	Name        string     `json:"nombre"`

	Resolution Resolution    `json:"-"`
	Daily      []DailyEntry  `json:"-"`
	Hourly     []HourlyEntry `json:"-"`
}

// DailyEntry is one calendar day of the weekly forecast. Series fields are
// kept as the upstream JSON; see the accessor methods for typed views.
type DailyEntry struct {
	UVMax                    *FlexString     `json:"uvMax,omitempty"`
	MaxGust                  json.RawMessage `json:"rachaMax"`
	Date                     string          `json:"fecha"`
	ThermalSensation         json.RawMessage `json:"sensTermica"`
	RelativeHumidity         json.RawMessage `json:"humedadRelativa"`
	Temperature              json.RawMessage `json:"temperatura"`
	SkyState                 json.RawMessage `json:"estadoCielo,omitempty"`
	SnowLevel                json.RawMessage `json:"cotaNieveProv"`
	Wind                     json.RawMessage `json:"viento"`
	PrecipitationProbability json.RawMessage `json:"probPrecipitacion"`
}

// HourlyEntry is one entry of the hourly forecast
type HourlyEntry struct {
	SkyState                 json.RawMessage `json:"estadoCielo"`
	Precipitation            json.RawMessage `json:"precipitacion"`
	WindAndMaxGust           json.RawMessage `json:"vientoAndRachaMax"`
	Sunset                   string          `json:"ocaso"`
	StormProbability         json.RawMessage `json:"probTormenta"`
	PrecipitationProbability json.RawMessage `json:"probPrecipitacion"`
	Sunrise                  string          `json:"orto"`
	RelativeHumidity         json.RawMessage `json:"humedadRelativa"`
	Snow                     json.RawMessage `json:"nieve"`
	SnowProbability          json.RawMessage `json:"probNieve"`
	Date                     string          `json:"fecha"`
	Temperature              json.RawMessage `json:"temperatura"`
	ThermalSensation         json.RawMessage `json:"sensTermica"`
}

// PeriodValue is the common shape of a series element: a value valid for a
// period ("periodo") or hour ("hora"), with an optional description.
type PeriodValue struct {
	Value       FlexString `json:"value"`
	Period      string     `json:"periodo,omitempty"`
	Hour        FlexString `json:"hora,omitempty"`
	Description string     `json:"descripcion,omitempty"`
}

// TemperatureRange is the daily shape of temperature-like series
type TemperatureRange struct {
	Max    FlexString    `json:"maxima"`
	Min    FlexString    `json:"minima"`
	Values []PeriodValue `json:"dato"`
}

// WindValue is one element of a daily wind series
type WindValue struct {
	Direction string     `json:"direccion"`
	Speed     FlexString `json:"velocidad"`
	Period    string     `json:"periodo,omitempty"`
}

// MunicipalityLocation is one entry of the municipality master data
type MunicipalityLocation struct {
	ID         string     `json:"id"`
	Name       string     `json:"nombre"`
	Capital    string     `json:"capital"`
	Latitude   FlexString `json:"latitud_dec"`
	Longitude  FlexString `json:"longitud_dec"`
	Altitude   FlexString `json:"altitud"`
	Population FlexString `json:"num_hab"`
	URL        string     `json:"url"`
}

// envelope is the first-hop response
type envelope struct {
	Description string `json:"descripcion"`
	Status      int    `json:"estado"`
	DataURL     string `json:"datos"`
	MetadataURL string `json:"metadatos"`
}
