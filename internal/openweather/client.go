package openweather

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mmcdole/weatherly/internal/domain"
	"github.com/sony/gobreaker"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org"
	defaultTimeout = 15 * time.Second
	userAgent      = "Weatherly/1.0"
	geocodeLimit   = 10
)

// Config configures a Client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Backoff Backoff
}

// Client implements domain.WeatherSource and domain.Geocoder against the
// OpenWeather One Call 3.0 and Geocoding 1.0 APIs.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	backoff    Backoff
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewClient creates a new OpenWeather client. Zero config fields take defaults.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Backoff.InitialInterval <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		backoff:    cfg.Backoff,
		breaker:    newBreaker("openweather"),
		logger:     logger,
	}
}

// FetchByCoordinates returns current, hourly and daily weather for a point.
// A JSON null body is an explicit empty result: nil snapshot, nil error.
func (c *Client) FetchByCoordinates(ctx context.Context, lat, lon float64) (*domain.Snapshot, error) {
	query := url.Values{}
	query.Set("lat", formatCoord(lat))
	query.Set("lon", formatCoord(lon))
	query.Set("exclude", "minutely,alerts")
	query.Set("units", "metric")

	body, err := c.get(ctx, "/data/3.0/onecall", query)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		c.logger.Debug("empty weather response", "lat", lat, "lon", lon)
		return nil, nil
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(trimmed, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse weather response: %w", err)
	}
	return &snap, nil
}

type geocodeResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

// SearchByName resolves a city name into at most ten candidates.
func (c *Client) SearchByName(ctx context.Context, name string) ([]domain.Candidate, error) {
	query := url.Values{}
	query.Set("q", name)
	query.Set("limit", strconv.Itoa(geocodeLimit))

	body, err := c.get(ctx, "/geo/1.0/direct", query)
	if err != nil {
		return nil, err
	}

	var results []geocodeResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to parse geocoding response: %w", err)
	}

	candidates := make([]domain.Candidate, len(results))
	for i, r := range results {
		candidates[i] = domain.Candidate{
			Name:    r.Name,
			State:   r.State,
			Country: r.Country,
			Lat:     &r.Lat,
			Lon:     &r.Lon,
		}
	}
	c.logger.Debug("geocoded", "query", name, "count", len(candidates))
	return candidates, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: api key is not configured", domain.ErrUnauthorized)
	}
	query.Set("appid", c.apiKey)
	reqURL := c.baseURL + path + "?" + query.Encode()

	return c.doRequest(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		return req, nil
	})
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// redact hides the API key for logging.
func redact(u *url.URL) string {
	clone := *u
	q := clone.Query()
	if q.Has("appid") {
		q.Set("appid", "REDACTED")
	}
	clone.RawQuery = q.Encode()
	return clone.String()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
