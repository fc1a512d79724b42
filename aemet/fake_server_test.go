package aemet

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

const testAPIKey = "test-key"

// fakeAEMET serves the pointer hop under /api/ and the payload under /datos/
type fakeAEMET struct {
	t      *testing.T
	server *httptest.Server

	pointerHits atomic.Int32
	dataHits    atomic.Int32

	mu          sync.Mutex
	lastPointer *url.URL

	// pointer hop overrides; zero status means a normal envelope
	pointerStatus int
	pointerBody   string

	dataStatus      int
	dataBody        []byte
	dataContentType string
}

func newFakeAEMET(t *testing.T, payload []byte, contentType string) *fakeAEMET {
	t.Helper()

	f := &fakeAEMET{
		t:               t,
		dataStatus:      http.StatusOK,
		dataBody:        payload,
		dataContentType: contentType,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/", f.handlePointer)
	mux.HandleFunc("/datos/", f.handleData)
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	return f
}

func (f *fakeAEMET) handlePointer(w http.ResponseWriter, r *http.Request) {
	f.pointerHits.Add(1)

	f.mu.Lock()
	u := *r.URL
	f.lastPointer = &u
	f.mu.Unlock()

	if got := r.URL.Query().Get("api_key"); got != testAPIKey {
		f.t.Errorf("Expected api_key %q on pointer hop, got %q", testAPIKey, got)
	}

	if f.pointerStatus != 0 {
		w.WriteHeader(f.pointerStatus)
		w.Write([]byte(f.pointerBody))
		return
	}
	if f.pointerBody != "" {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(f.pointerBody))
		return
	}

	w.Header().Set("Content-Type", "application/json;charset=ISO-8859-15")
	json.NewEncoder(w).Encode(map[string]any{
		"descripcion": "exito",
		"estado":      200,
		"datos":       f.server.URL + "/datos/sh/5d8e2a1c",
		"metadatos":   f.server.URL + "/datos/sh/meta",
	})
}

func (f *fakeAEMET) handleData(w http.ResponseWriter, r *http.Request) {
	f.dataHits.Add(1)

	if r.URL.Query().Has("api_key") {
		f.t.Errorf("Expected no api_key on data hop, got %q", r.URL.RawQuery)
	}

	if f.dataContentType != "" {
		w.Header().Set("Content-Type", f.dataContentType)
	}
	w.WriteHeader(f.dataStatus)
	w.Write(f.dataBody)
}

func (f *fakeAEMET) client() *Client {
	client := NewClientWithHTTPClient(f.server.Client(), testAPIKey)
	client.SetBaseURL(f.server.URL + "/api/")
	return client
}

func (f *fakeAEMET) pointerPath() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lastPointer == nil {
		return ""
	}
	return f.lastPointer.Path
}

// Fixture builders. Series are compact JSON so decoded RawMessages can be
// compared with the literals directly.

var hourlySeries = []struct{ key, value string }{
	{"estadoCielo", `[{"value":"12n","periodo":"07","descripcion":"Poco nuboso"},{"value":"11","periodo":"08","descripcion":"Despejado"}]`},
	{"precipitacion", `[{"value":"0","periodo":"07"},{"value":"Ip","periodo":"08"}]`},
	{"probPrecipitacion", `[{"value":"10","periodo":"0814"}]`},
	{"probTormenta", `[{"value":"5","periodo":"0814"}]`},
	{"nieve", `[{"value":"0","periodo":"07"}]`},
	{"probNieve", `[{"value":"0","periodo":"0814"}]`},
	{"temperatura", `[{"value":"17","periodo":"07"},{"value":"19","periodo":"08"}]`},
	{"sensTermica", `[{"value":"16","periodo":"07"},{"value":"19","periodo":"08"}]`},
	{"humedadRelativa", `[{"value":"72","periodo":"07"},{"value":"65","periodo":"08"}]`},
	{"vientoAndRachaMax", `[{"direccion":["NO"],"velocidad":["9"],"periodo":"07"},{"value":"22","periodo":"07"}]`},
}

func seriesValue(key string) string {
	for _, s := range hourlySeries {
		if s.key == key {
			return s.value
		}
	}
	return ""
}

// hourlyDay builds one hourly entry, leaving out the field named omit
func hourlyDay(fecha, orto, ocaso, omit string) string {
	var parts []string
	for _, s := range hourlySeries {
		if s.key != omit {
			parts = append(parts, `"`+s.key+`":`+s.value)
		}
	}
	scalars := []struct{ key, value string }{
		{"fecha", fecha},
		{"orto", orto},
		{"ocaso", ocaso},
	}
	for _, s := range scalars {
		if s.key != omit {
			parts = append(parts, `"`+s.key+`":"`+s.value+`"`)
		}
	}
	return "{" + strings.Join(parts, ",") + "}"
}

var dailySeries = []struct{ key, value string }{
	{"probPrecipitacion", `[{"value":0,"periodo":"00-24"},{"value":15,"periodo":"12-24"}]`},
	{"cotaNieveProv", `[{"value":"","periodo":"00-24"}]`},
	{"estadoCielo", `[{"value":"12","periodo":"00-24","descripcion":"Poco nuboso"}]`},
	{"viento", `[{"direccion":"NO","velocidad":15,"periodo":"00-24"}]`},
	{"rachaMax", `[{"value":"35","periodo":"00-24"}]`},
	{"temperatura", `{"maxima":31,"minima":14,"dato":[{"value":15,"hora":6},{"value":29,"hora":12}]}`},
	{"sensTermica", `{"maxima":30,"minima":14,"dato":[{"value":15,"hora":6}]}`},
	{"humedadRelativa", `{"maxima":85,"minima":30,"dato":[{"value":80,"hora":6}]}`},
}

func dailySeriesValue(key string) string {
	for _, s := range dailySeries {
		if s.key == key {
			return s.value
		}
	}
	return ""
}

// dailyDay builds one daily entry; uvMax is left out when empty
func dailyDay(fecha, uvMax, omit string) string {
	var parts []string
	for _, s := range dailySeries {
		if s.key != omit {
			parts = append(parts, `"`+s.key+`":`+s.value)
		}
	}
	if uvMax != "" {
		parts = append(parts, `"uvMax":`+uvMax)
	}
	if omit != "fecha" {
		parts = append(parts, `"fecha":"`+fecha+`"`)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// forecastPayload wraps entries in the data-hop array, leaving out the
// envelope field named omit
func forecastPayload(name string, days []string, omit string) []byte {
	fields := []struct{ key, value string }{
		{"origen", `{"productor":"Agencia Estatal de Meteorología - AEMET. Gobierno de España","web":"https://www.aemet.es","language":"es","copyright":"© AEMET","notaLegal":"https://www.aemet.es/es/nota_legal"}`},
		{"elaborado", `"2024-08-17T09:30:21"`},
		{"nombre", `"` + name + `"`},
		{"provincia", `"La Rioja"`},
		{"prediccion", `{"dia":[` + strings.Join(days, ",") + `]}`},
		{"id", `"26064"`},
		{"version", `"1.0"`},
	}
	var parts []string
	for _, f := range fields {
		if f.key != omit {
			parts = append(parts, `"`+f.key+`":`+f.value)
		}
	}
	return []byte("[{" + strings.Join(parts, ",") + "}]")
}
