package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvAPIKeyFile, "")
	t.Setenv(EnvBaseURL, "")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.BaseURL != "https://opendata.aemet.es/opendata/api/" {
		t.Errorf("Expected default base URL, got %q", config.BaseURL)
	}
	if config.APITimeout != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %s", config.APITimeout)
	}
	if config.InsecureSkipVerify {
		t.Error("Expected TLS verification to be enabled by default")
	}

	// the key is the only thing defaults cannot provide
	if err := config.Validate(); err == nil {
		t.Error("Expected validation error without API key")
	}
	config.APIKey = "key"
	if err := config.Validate(); err != nil {
		t.Errorf("Expected defaults with a key to be valid, got: %v", err)
	}
}

func TestLoadConfigFromReader(t *testing.T) {
	clearEnv(t)

	input := `{
		"api_key": "secret",
		"base_url": "http://localhost:8080/api/",
		"api_timeout": 5000000000,
		"output_dir": "/tmp/maps"
	}`

	config, err := LoadConfigFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadConfigFromReader returned error: %v", err)
	}

	if config.APIKey != "secret" {
		t.Errorf("Expected api key 'secret', got %q", config.APIKey)
	}
	if config.BaseURL != "http://localhost:8080/api/" {
		t.Errorf("Expected custom base URL, got %q", config.BaseURL)
	}
	if config.APITimeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %s", config.APITimeout)
	}
	if config.OutputDir != "/tmp/maps" {
		t.Errorf("Expected output dir /tmp/maps, got %q", config.OutputDir)
	}
	// untouched fields keep their defaults
	if config.UserAgent != "aemet-go-client/1.0" {
		t.Errorf("Expected default user agent, got %q", config.UserAgent)
	}
}

func TestLoadConfigFromReader_APIKeyFile(t *testing.T) {
	clearEnv(t)
	keyFile := writeFile(t, "api.key", "  from-file\n")

	input := `{"api_key_file": "` + filepath.ToSlash(keyFile) + `"}`
	config, err := LoadConfigFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadConfigFromReader returned error: %v", err)
	}
	if config.APIKey != "from-file" {
		t.Errorf("Expected key from file, got %q", config.APIKey)
	}
}

func TestLoadConfigFromReader_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		input   string
		errPart string
	}{
		{"invalid JSON", `{`, "failed to decode"},
		{"missing key file", `{"api_key_file": "/nonexistent/api.key"}`, "failed to read API key file"},
		{"no key at all", `{"api_key_file": ""}`, "api_key cannot be empty"},
		{"bad base URL", `{"api_key": "k", "base_url": "ftp://example.com"}`, "base_url"},
		{"zero timeout", `{"api_key": "k", "api_timeout": 0}`, "api_timeout"},
		{"unknown timezone", `{"api_key": "k", "location": "Mars/Olympus"}`, "invalid location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFromReader(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("Expected error containing %q, got %q", tt.errPart, err.Error())
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvBaseURL, "http://env.example.com/")

	config, err := LoadConfigFromReader(strings.NewReader(`{"api_key": "file-key"}`))
	if err != nil {
		t.Fatalf("LoadConfigFromReader returned error: %v", err)
	}
	if config.APIKey != "env-key" {
		t.Errorf("Expected environment key to win, got %q", config.APIKey)
	}
	if config.BaseURL != "http://env.example.com/" {
		t.Errorf("Expected environment base URL, got %q", config.BaseURL)
	}
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.json", `{"api_key": "k"}`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if config.APIKey != "k" {
		t.Errorf("Expected key 'k', got %q", config.APIKey)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing config file")
	}

	t.Setenv(EnvAPIKey, "env-only")
	config, err = LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\") returned error: %v", err)
	}
	if config.APIKey != "env-only" {
		t.Errorf("Expected key from environment, got %q", config.APIKey)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv(EnvAPIKey)

	path := writeFile(t, ".env", EnvAPIKey+"=dotenv-key\n")
	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv returned error: %v", err)
	}
	if got := os.Getenv(EnvAPIKey); got != "dotenv-key" {
		t.Errorf("Expected %s from .env, got %q", EnvAPIKey, got)
	}

	// existing variables are not overridden
	t.Setenv(EnvAPIKey, "already-set")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv returned error: %v", err)
	}
	if got := os.Getenv(EnvAPIKey); got != "already-set" {
		t.Errorf("Expected existing value to be kept, got %q", got)
	}
}

func TestLoadAPIKey(t *testing.T) {
	if _, err := LoadAPIKey(writeFile(t, "empty.key", " \n")); err == nil {
		t.Error("Expected error for empty key file")
	}

	key, err := LoadAPIKey(writeFile(t, "api.key", "eyJhbGciOiJIUzI1NiJ9.payload\n"))
	if err != nil {
		t.Fatalf("LoadAPIKey returned error: %v", err)
	}
	if key != "eyJhbGciOiJIUzI1NiJ9.payload" {
		t.Errorf("Expected trimmed key, got %q", key)
	}
}

func TestValidateAPIURL(t *testing.T) {
	tests := []struct {
		url         string
		expectError bool
	}{
		{"https://opendata.aemet.es/opendata/api/", false},
		{"http://127.0.0.1:8080", false},
		{"", true},
		{"opendata.aemet.es", true},
	}

	for _, tt := range tests {
		err := ValidateAPIURL(tt.url)
		if tt.expectError && err == nil {
			t.Errorf("ValidateAPIURL(%q): expected error, got nil", tt.url)
		}
		if !tt.expectError && err != nil {
			t.Errorf("ValidateAPIURL(%q): unexpected error: %v", tt.url, err)
		}
	}
}
