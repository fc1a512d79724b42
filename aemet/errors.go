package aemet

import "fmt"

// APIError represents an error status returned by the AEMET API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// ValidationError represents a validation error for input parameters
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NetworkError represents a network-related error
type NetworkError struct {
	Operation string
	Err       error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DataError reports a successful response whose payload lacks an expected
// field or cannot be decoded.
type DataError struct {
	Context string
	Field   string
	Err     error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s data: %v", e.Context, e.Err)
	}
	return fmt.Sprintf("missing field '%s' in %s data", e.Field, e.Context)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// FileError wraps a failure writing a downloaded payload to disk
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
