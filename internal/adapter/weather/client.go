// Package weather fetches the current temperature from the OpenWeather
// API for the dashboard card.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/an-gr-hh1/landslide-sync/internal/observability"
)

// Client calls the OpenWeather current-weather endpoint.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
}

// NewClient creates an OpenWeather client.
func NewClient(apiKey string, timeout time.Duration, metrics *observability.Metrics) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		metrics: metrics,
	}
}

// CurrentTemp returns the temperature in degrees Celsius at the given
// coordinates.
func (c *Client) CurrentTemp(ctx context.Context, lat, lon float64) (float64, error) {
	params := url.Values{
		"lat":   {fmt.Sprintf("%.4f", lat)},
		"lon":   {fmt.Sprintf("%.4f", lon)},
		"units": {"metric"},
		"appid": {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("weather API error: status %d: %s", resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("decode response: %w", err)
	}

	c.metrics.WeatherRequests.WithLabelValues("success").Inc()
	return payload.Main.Temp, nil
}

// DisplayTemp renders the temperature for the dashboard. Failures become a
// display string rather than a propagated error: the weather card degrades,
// the dashboard stays up.
func (c *Client) DisplayTemp(ctx context.Context, lat, lon float64) string {
	temp, err := c.CurrentTemp(ctx, lat, lon)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("%.1f°C", temp)
}

// OpenWeather API response, reduced to the fields used.

type response struct {
	Main mainSection `json:"main"`
}

type mainSection struct {
	Temp float64 `json:"temp"`
}
