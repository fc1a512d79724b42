// Package municipio loads the static municipality dataset and resolves
// names to the codes expected by the forecast endpoints.
package municipio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Municipality is one record of the national municipality register
type Municipality struct {
	AutonomousCommunityCode string
	ProvinceCode            string
	MunicipalityCode        string
	CheckDigit              string
	Name                    string
}

// Code returns the province code followed by the municipality code. No
// padding is added beyond what the dataset provides.
func (m Municipality) Code() string {
	return m.ProvinceCode + m.MunicipalityCode
}

func (m Municipality) String() string {
	return fmt.Sprintf("%s (%s)", m.Name, m.Code())
}

// NotFoundError is returned when no municipality matches a query
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no municipality matched %q", e.Query)
}

// Directory is a read-only, in-memory municipality table. It is safe for
// concurrent use.
type Directory struct {
	records []Municipality
}

// dataset keys, in the order they map to Municipality fields
var datasetKeys = []string{"CODAUTO", "CPRO", "CMUN", "DC", "NOMBRE"}

// LoadFile loads the dataset from a JSON file
func LoadFile(filename string) (*Directory, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open municipality dataset: %w", err)
	}
	defer file.Close()

	return Load(file)
}

// Load parses a JSON array of municipality objects
func Load(reader io.Reader) (*Directory, error) {
	var raw []map[string]json.RawMessage
	if err := json.NewDecoder(reader).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode municipality dataset: %w", err)
	}

	records := make([]Municipality, 0, len(raw))
	for i, item := range raw {
		values := make([]string, len(datasetKeys))
		for k, key := range datasetKeys {
			value, ok := item[key]
			if !ok {
				return nil, fmt.Errorf("municipality record %d: missing field %s", i, key)
			}
			s, err := scalar(value)
			if err != nil {
				return nil, fmt.Errorf("municipality record %d: field %s: %w", i, key, err)
			}
			values[k] = s
		}
		records = append(records, Municipality{
			AutonomousCommunityCode: values[0],
			ProvinceCode:            values[1],
			MunicipalityCode:        values[2],
			CheckDigit:              values[3],
			Name:                    values[4],
		})
	}

	return &Directory{records: records}, nil
}

// scalar returns a JSON string's contents or a number's literal text
func scalar(value json.RawMessage) (string, error) {
	if len(value) > 0 && value[0] == '"' {
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(value, &n); err != nil {
		return "", fmt.Errorf("expected string or number, got %s", value)
	}
	return n.String(), nil
}

// FindByName returns the first municipality, in dataset order, whose name
// contains query. Matching is case-sensitive.
func (d *Directory) FindByName(query string) (Municipality, error) {
	for _, m := range d.records {
		if strings.Contains(m.Name, query) {
			return m, nil
		}
	}
	return Municipality{}, &NotFoundError{Query: query}
}

// Len returns the number of municipalities loaded
func (d *Directory) Len() int {
	return len(d.records)
}

// All returns a copy of every municipality in dataset order
func (d *Directory) All() []Municipality {
	out := make([]Municipality, len(d.records))
	copy(out, d.records)
	return out
}
