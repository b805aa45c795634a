// Package client talks to the Weather Underground PWS API. All requests
// ask for metric units; unit preferences are applied locally after the
// fact. Each call is a single attempt with a per-call timeout: stage
// failures are reported to the orchestrator, never retried here.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/MrVISKman11/AppTiempo/internal/models"
	"github.com/MrVISKman11/AppTiempo/internal/observability"
)

// WeatherClient is the upstream API surface the orchestrator depends on.
type WeatherClient interface {
	CurrentObservation(ctx context.Context, stationID string) (*models.StationObservation, error)
	FiveDayForecast(ctx context.Context, lat, lon float64, language string) (*models.ForecastResponse, error)
	History(ctx context.Context, stationID string) ([]models.HistoryObservation, error)
}

var (
	ErrInvalidAPIKey   = errors.New("invalid API key")
	ErrStationNotFound = errors.New("station not found")
	ErrUpstreamFailure = errors.New("upstream failure")
	ErrRateLimited     = errors.New("rate limited")
)

const (
	stageObservation = "observation"
	stageForecast    = "forecast"
	stageHistory     = "history"
)

// WUClient is the concrete Weather Underground client.
type WUClient struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewWUClient validates the key and returns a client. baseURL is the API
// root without a trailing path, e.g. https://api.weather.com.
func NewWUClient(apiKey, baseURL string, timeout time.Duration) (*WUClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidAPIKey)
	}
	if len(apiKey) < 10 {
		return nil, fmt.Errorf("%w: API key appears invalid (too short)", ErrInvalidAPIKey)
	}
	return &WUClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// CurrentObservation fetches the station's current reading. An empty
// observations array maps to ErrStationNotFound.
func (c *WUClient) CurrentObservation(ctx context.Context, stationID string) (*models.StationObservation, error) {
	params := url.Values{}
	params.Set("stationId", stationID)

	var resp models.ObservationsResponse
	if err := c.get(ctx, stageObservation, "/v2/pws/observations/current", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Observations) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrStationNotFound, stationID)
	}
	return &resp.Observations[0], nil
}

// FiveDayForecast fetches the daily forecast for the station's geocode in
// the given language tag.
func (c *WUClient) FiveDayForecast(ctx context.Context, lat, lon float64, language string) (*models.ForecastResponse, error) {
	params := url.Values{}
	params.Set("geocode", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("language", language)

	var resp models.ForecastResponse
	if err := c.get(ctx, stageForecast, "/v3/wx/forecast/daily/5day", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History fetches the rolling 24-hour observation history. Wire order is
// unspecified; callers sort by epoch.
func (c *WUClient) History(ctx context.Context, stationID string) ([]models.HistoryObservation, error) {
	params := url.Values{}
	params.Set("stationId", stationID)

	var resp models.HistoryResponse
	if err := c.get(ctx, stageHistory, "/v2/pws/observations/all/1day", params, &resp); err != nil {
		return nil, err
	}
	return resp.Observations, nil
}

func (c *WUClient) get(ctx context.Context, stage, path string, params url.Values, out interface{}) error {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params.Set("units", "m")
	params.Set("format", "json")
	params.Set("apiKey", c.apiKey)

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		observability.UpstreamCallsTotal.WithLabelValues(stage, "error").Inc()
		return fmt.Errorf("invalid API URL: %w", err)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		observability.UpstreamCallsTotal.WithLabelValues(stage, "error").Inc()
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if corrID := extractCorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.UpstreamCallsTotal.WithLabelValues(stage, "error").Inc()
		observability.UpstreamCallDuration.WithLabelValues(stage, "error").Observe(duration)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("request timeout: %w", err)
		}
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := statusLabel(resp.StatusCode)
	observability.UpstreamCallsTotal.WithLabelValues(stage, status).Inc()
	observability.UpstreamCallDuration.WithLabelValues(stage, status).Observe(duration)

	if err := handleErrorResponse(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func handleErrorResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d", ErrInvalidAPIKey, resp.StatusCode)
	case http.StatusNotFound:
		return fmt.Errorf("%w", ErrStationNotFound)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w", ErrRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
	}
	return nil
}

func extractCorrelationID(ctx context.Context) string {
	if v := ctx.Value("correlation_id"); v != nil {
		if corrID, ok := v.(string); ok {
			return corrID
		}
	}
	return ""
}

func statusLabel(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "success"
	case statusCode == 429:
		return "rate_limited"
	case statusCode >= 400 && statusCode < 500:
		return "client_error"
	case statusCode >= 500:
		return "server_error"
	default:
		return "error"
	}
}
