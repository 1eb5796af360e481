// Package opendata resolves residents and charging stations for an area from
// a municipal open data API.
package opendata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/ev-demand-service/internal/domain"
	"github.com/couchcryptid/ev-demand-service/internal/observability"
)

// Lookup kinds used as metric labels and cache key prefixes.
const (
	kindPopulation = "population"
	kindStations   = "stations"
)

// Client implements domain.PopulationLookup and domain.StationLookup over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an open data client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// ResidentsCount fetches the registered residents of an area.
// An unknown area yields domain.ErrNotFound.
func (c *Client) ResidentsCount(ctx context.Context, area domain.AreaID) (int, error) {
	u := fmt.Sprintf("%s/population/%s", c.baseURL, url.PathEscape(area.String()))

	var resp populationResponse
	if err := c.doRequest(ctx, u, kindPopulation, &resp); err != nil {
		return 0, err
	}
	if resp.Residents < 0 {
		return 0, fmt.Errorf("%w: open data reported %d residents for %s", domain.ErrInvalidCount, resp.Residents, area)
	}
	return resp.Residents, nil
}

// FindStationsByArea lists the charging stations registered in an area. An
// area without stations yields an empty slice.
func (c *Client) FindStationsByArea(ctx context.Context, area domain.AreaID) ([]domain.Station, error) {
	params := url.Values{"area": {area.String()}}
	u := fmt.Sprintf("%s/stations?%s", c.baseURL, params.Encode())

	var resp stationsResponse
	if err := c.doRequest(ctx, u, kindStations, &resp); err != nil {
		return nil, err
	}

	stations := make([]domain.Station, 0, len(resp.Stations))
	for _, s := range resp.Stations {
		stations = append(stations, domain.Station{
			ID:        s.ID,
			AreaID:    area,
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			PowerKW:   s.PowerKW,
		})
	}
	return stations, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL, kind string, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		c.metrics.LookupRequests.WithLabelValues(kind, outcome).Inc()
		c.metrics.LookupDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s lookup request: %w", kind, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s lookup: %w", kind, domain.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn("open data API error", "kind", kind, "status", resp.StatusCode)
		return fmt.Errorf("open data API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", kind, err)
	}
	return nil
}

// Open data API response types.

type populationResponse struct {
	AreaID    string `json:"area_id"`
	Residents int    `json:"residents"`
}

type stationsResponse struct {
	Stations []station `json:"stations"`
}

type station struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	PowerKW   float64 `json:"power_kw"`
}
