package aemet

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the production AEMET OpenData endpoint
const DefaultBaseURL = "https://opendata.aemet.es/opendata/api/"

// DefaultTimeout bounds every request made by a client built with NewClient
const DefaultTimeout = 30 * time.Second

// Client represents a client for the AEMET OpenData API
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
	logger     *log.Logger
}

// NewClient creates a new client for the AEMET OpenData API
func NewClient(apiKey string) *Client {
	return NewClientWithHTTPClient(NewHTTPClient(DefaultTimeout, false), apiKey)
}

// NewClientWithHTTPClient creates a new client with a custom HTTP client
func NewClientWithHTTPClient(httpClient *http.Client, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		userAgent:  "aemet-go-client/1.0",
		logger:     log.New(io.Discard, "", 0),
	}
}

// NewHTTPClient returns an HTTP client with the given timeout. AEMET's
// certificate chain has been broken in the past; insecure disables
// verification for those periods.
func NewHTTPClient(timeout time.Duration, insecure bool) *http.Client {
	client := &http.Client{Timeout: timeout}
	if insecure {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via config
		client.Transport = transport
	}
	return client
}

// SetBaseURL sets the base URL for the API (useful for testing)
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// SetUserAgent sets a custom user agent for the API client
func (c *Client) SetUserAgent(userAgent string) {
	c.userAgent = userAgent
}

// SetLogger sets the logger used for download progress and dropped entries
func (c *Client) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	c.logger = logger
}

// FetchForecast retrieves the municipality forecast at the given resolution.
// code is the province code followed by the municipality code.
func (c *Client) FetchForecast(ctx context.Context, code string, res Resolution) (*Forecast, error) {
	if code == "" {
		return nil, &ValidationError{Field: "code", Message: "municipality code is required"}
	}

	var path string
	switch res {
	case Daily:
		path = fmt.Sprintf(dailyForecastPath, code)
	case Hourly:
		path = fmt.Sprintf(hourlyForecastPath, code)
	default:
		return nil, &ValidationError{Field: "resolution", Message: fmt.Sprintf("unsupported resolution %d", int(res))}
	}

	data, err := c.fetchData(ctx, path)
	if err != nil {
		return nil, err
	}

	forecast, dropped, err := decodeForecast(data, res)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		c.logger.Printf("Dropped %d incomplete hourly entries for municipality %s", dropped, code)
	}
	return forecast, nil
}

// SearchMunicipality returns the municipality master data response as sent
// by the API, transcoded to UTF-8. It is a single request with no data hop.
func (c *Client) SearchMunicipality(ctx context.Context, name string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("nombre", name)

	reqURL, err := c.buildURL(municipalitySearchPath, query)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	resp, err := c.get(ctx, "municipality search", reqURL, "application/json")
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, &APIError{StatusCode: resp.status, Message: string(resp.body)}
	}

	body, err := toUTF8(resp.body, resp.contentType)
	if err != nil {
		return nil, &DataError{Context: "municipality search", Err: err}
	}
	return json.RawMessage(body), nil
}

// SearchMunicipalityLocations decodes the municipality master data response
func (c *Client) SearchMunicipalityLocations(ctx context.Context, name string) ([]MunicipalityLocation, error) {
	body, err := c.SearchMunicipality(ctx, name)
	if err != nil {
		return nil, err
	}

	var locations []MunicipalityLocation
	if err := json.Unmarshal(body, &locations); err != nil {
		return nil, &DataError{Context: "municipality search", Err: err}
	}
	return locations, nil
}

// fetchData performs both hops and returns element 0 of the JSON payload
func (c *Client) fetchData(ctx context.Context, path string) (json.RawMessage, error) {
	env, err := c.resolve(ctx, path)
	if err != nil {
		return nil, err
	}

	resp, err := c.fetchPayload(ctx, env.DataURL, "application/json")
	if err != nil {
		return nil, err
	}

	body, err := toUTF8(resp.body, resp.contentType)
	if err != nil {
		return nil, &DataError{Context: "payload", Err: err}
	}
	return firstElement(body)
}

// resolve performs the first hop and returns the envelope pointing at the
// payload. Failures carry the envelope's "estado" when the body has one.
func (c *Client) resolve(ctx context.Context, path string) (*envelope, error) {
	reqURL, err := c.buildURL(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	resp, err := c.get(ctx, "pointer request", reqURL, "application/json")
	if err != nil {
		return nil, err
	}

	var env envelope
	decodeErr := json.Unmarshal(resp.body, &env)

	if resp.status != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.status, Message: string(resp.body)}
		if decodeErr == nil && env.Status != 0 {
			apiErr.StatusCode = env.Status
			apiErr.Message = env.Description
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, &DataError{Context: "envelope", Err: decodeErr}
	}
	if env.Status != 0 && env.Status != http.StatusOK {
		return nil, &APIError{StatusCode: env.Status, Message: env.Description}
	}
	if env.DataURL == "" {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "envelope has no data URL: " + env.Description}
	}
	return &env, nil
}

// fetchPayload performs the second hop. The data URL is pre-signed, so no
// API key is sent.
func (c *Client) fetchPayload(ctx context.Context, dataURL, accept string) (*response, error) {
	resp, err := c.get(ctx, "data request", dataURL, accept)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, &APIError{StatusCode: resp.status, Message: string(resp.body)}
	}
	return resp, nil
}

type response struct {
	status      int
	contentType string
	body        []byte
}

func (c *Client) get(ctx context.Context, operation, reqURL, accept string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Operation: operation, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Operation: operation, Err: err}
	}

	return &response{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        body,
	}, nil
}

// buildURL joins path onto the base URL and adds the API key
func (c *Client) buildURL(path string, params url.Values) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")

	query := u.Query()
	for key, values := range params {
		for _, v := range values {
			query.Add(key, v)
		}
	}
	query.Set("api_key", c.apiKey)

	u.RawQuery = query.Encode()
	return u.String(), nil
}
