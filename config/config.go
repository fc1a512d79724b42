// Package config loads the settings shared by the AEMET CLI and client.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // forecast timestamps are Europe/Madrid local time

	"github.com/joho/godotenv"
)

// Environment variables overlaid on top of the configuration file
const (
	EnvAPIKey     = "AEMET_API_KEY"
	EnvAPIKeyFile = "AEMET_API_KEY_FILE"
	EnvBaseURL    = "AEMET_BASE_URL"
)

// Config represents the configuration for the AEMET client
type Config struct {
	// API settings
	APIKey             string        `json:"api_key"`              // AEMET OpenData API key
	APIKeyFile         string        `json:"api_key_file"`         // File holding the API key, read when api_key is empty
	BaseURL            string        `json:"base_url"`             // API base URL
	APITimeout         time.Duration `json:"api_timeout"`          // Timeout for each HTTP request
	UserAgent          string        `json:"user_agent"`           // User agent for API requests
	InsecureSkipVerify bool          `json:"insecure_skip_verify"` // Skip TLS verification (AEMET certificate issues)

	// Data settings
	MunicipalitiesFile string `json:"municipalities_file"` // Static municipality dataset (JSON)
	OutputDir          string `json:"output_dir"`          // Directory for downloaded maps

	// Timezone used to interpret forecast timestamps
	Location string `json:"location"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		APIKeyFile:         "data/api.key",
		BaseURL:            "https://opendata.aemet.es/opendata/api/",
		APITimeout:         30 * time.Second,
		UserAgent:          "aemet-go-client/1.0",
		InsecureSkipVerify: false,
		MunicipalitiesFile: "data/municipios.json",
		OutputDir:          ".",
		Location:           "Europe/Madrid",
	}
}

// LoadConfig loads configuration from a JSON file. An empty filename
// yields the defaults. Environment overrides and the API key file are
// applied before validation.
func LoadConfig(filename string) (*Config, error) {
	if filename == "" {
		return finish(DefaultConfig())
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	config := DefaultConfig()

	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config JSON: %w", err)
	}

	return finish(config)
}

func finish(config *Config) (*Config, error) {
	config.ApplyEnv()

	if config.APIKey == "" && config.APIKeyFile != "" {
		key, err := LoadAPIKey(config.APIKeyFile)
		if err != nil {
			return nil, err
		}
		config.APIKey = key
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadDotEnv loads variables from .env files into the process environment
// without overriding variables that are already set. Missing files are
// ignored.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
	}
	return nil
}

// ApplyEnv overlays AEMET_* environment variables on the configuration
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvAPIKeyFile); v != "" {
		c.APIKeyFile = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
}

// LoadAPIKey reads the API key secret from a file, trimming whitespace
func LoadAPIKey(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read API key file: %w", err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("API key file %s is empty", filename)
	}
	return key, nil
}

// TimeLocation returns the configured timezone
func (c *Config) TimeLocation() (*time.Location, error) {
	return time.LoadLocation(c.Location)
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api_key cannot be empty (set api_key, api_key_file or %s)", EnvAPIKey)
	}

	if err := ValidateAPIURL(c.BaseURL); err != nil {
		return fmt.Errorf("base_url: %w", err)
	}

	if c.APITimeout <= 0 {
		return fmt.Errorf("api_timeout must be greater than 0, got: %s", c.APITimeout)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user_agent cannot be empty")
	}

	if c.OutputDir == "" {
		return fmt.Errorf("output_dir cannot be empty")
	}

	if _, err := c.TimeLocation(); err != nil {
		return fmt.Errorf("invalid location: %s: %w", c.Location, err)
	}

	return nil
}

// ValidateAPIURL performs basic validation on the API URL
func ValidateAPIURL(apiURL string) error {
	if apiURL == "" {
		return fmt.Errorf("API URL cannot be empty")
	}

	if !strings.HasPrefix(apiURL, "http://") && !strings.HasPrefix(apiURL, "https://") {
		return fmt.Errorf("API URL must start with http:// or https://")
	}

	return nil
}
