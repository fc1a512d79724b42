package aemet

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
)

// MapKind selects between the estimated (today) and predicted fire-risk maps
type MapKind int

const (
	Estimated MapKind = iota
	Predicted
)

func (k MapKind) String() string {
	switch k {
	case Estimated:
		return "estimated"
	case Predicted:
		return "predicted"
	default:
		return fmt.Sprintf("MapKind(%d)", int(k))
	}
}

// Region is the area code used by the fire-risk map endpoints
type Region string

const (
	Peninsula       Region = "p"
	CanaryIslands   Region = "c"
	BalearicIslands Region = "b"
)

// Regions lists every region served by the fire-risk maps
var Regions = []Region{Peninsula, CanaryIslands, BalearicIslands}

// Day offsets accepted by predicted maps
const (
	Tomorrow         = 1
	DayAfterTomorrow = 2
	InThreeDays      = 3
)

// ForecastDays lists every day offset served by predicted maps
var ForecastDays = []int{Tomorrow, DayAfterTomorrow, InThreeDays}

// Valid reports whether r is one of the known regions
func (r Region) Valid() bool {
	switch r {
	case Peninsula, CanaryIslands, BalearicIslands:
		return true
	}
	return false
}

// MapRequest identifies one fire-risk map. Day is ignored for estimated maps.
type MapRequest struct {
	Kind   MapKind
	Day    int
	Region Region
}

// Validate checks the request before any network call is made
func (r MapRequest) Validate() error {
	if !r.Region.Valid() {
		return &ValidationError{Field: "region", Message: fmt.Sprintf("unknown region %q", r.Region)}
	}
	switch r.Kind {
	case Estimated:
		return nil
	case Predicted:
		if r.Day < Tomorrow || r.Day > InThreeDays {
			return &ValidationError{Field: "day", Message: fmt.Sprintf("must be between %d and %d, got %d", Tomorrow, InThreeDays, r.Day)}
		}
		return nil
	default:
		return &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown map kind %d", int(r.Kind))}
	}
}

func (r MapRequest) path() string {
	if r.Kind == Predicted {
		return fmt.Sprintf(predictedFireRiskPath, r.Day, r.Region)
	}
	return fmt.Sprintf(estimatedFireRiskPath, r.Region)
}

// DownloadResult reports the outcome of a map download. Status is 200 on
// success, the upstream status on API failures and 0 when no response was
// received at all.
type DownloadResult struct {
	Status     int
	OutputFile string
	Bytes      int64
}

// DownloadFireRiskMap downloads a fire-risk map image into target,
// overwriting any existing file. On failure the returned result is still
// non-nil, except for invalid requests.
func (c *Client) DownloadFireRiskMap(ctx context.Context, req MapRequest, target string) (*DownloadResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	path := req.path()
	c.logger.Printf("Downloading from %s%s...", c.baseURL, path)

	env, err := c.resolve(ctx, path)
	if err != nil {
		return &DownloadResult{Status: statusOf(err)}, err
	}

	resp, err := c.fetchPayload(ctx, env.DataURL, "image/*")
	if err != nil {
		return &DownloadResult{Status: statusOf(err)}, err
	}

	if err := os.WriteFile(target, resp.body, 0o644); err != nil {
		return &DownloadResult{Status: http.StatusOK}, &FileError{Path: target, Err: err}
	}

	return &DownloadResult{
		Status:     http.StatusOK,
		OutputFile: target,
		Bytes:      int64(len(resp.body)),
	}, nil
}

// DownloadEstimatedFireRiskMap downloads today's estimated fire-risk map
func (c *Client) DownloadEstimatedFireRiskMap(ctx context.Context, region Region, target string) (*DownloadResult, error) {
	return c.DownloadFireRiskMap(ctx, MapRequest{Kind: Estimated, Region: region}, target)
}

// DownloadPredictedFireRiskMap downloads the fire-risk map predicted for day
// (1 to 3 days ahead)
func (c *Client) DownloadPredictedFireRiskMap(ctx context.Context, day int, region Region, target string) (*DownloadResult, error) {
	return c.DownloadFireRiskMap(ctx, MapRequest{Kind: Predicted, Day: day, Region: region}, target)
}

// statusOf maps a hop error to the status reported in a DownloadResult
func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	var dataErr *DataError
	if errors.As(err, &dataErr) {
		return http.StatusOK
	}
	return 0
}
