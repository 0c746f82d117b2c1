// Package osrmclient queries an OSRM Table Service for a travel-duration
// matrix, used only by the offline precompute command (never the
// simulation core). Grounded on original_source/src/services/queries.cpp's
// buildQueryURL/queryTableService; translated from libcurl + nlohmann::json
// to net/http + encoding/json since no pack repo wires an HTTP client whose
// shape fits better (justified stdlib use, see DESIGN.md).
package osrmclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/inference-sim/inference-sim/sim"
)

// Client queries one OSRM server's Table Service.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New builds a Client against baseURL (spec.md §6 OSRM_URL), defaulting to
// a 30s timeout the way a one-shot precompute query should.
func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: &http.Client{Timeout: 30 * time.Second}}
}

// tableResponse is the subset of OSRM's /table response this client reads.
type tableResponse struct {
	Code      string      `json:"code"`
	Durations [][]float64 `json:"durations"`
}

// Durations queries the OSRM Table Service for the sources->destinations
// travel-time matrix, mirroring buildQueryURL's coordinate/sources/
// destinations query-string construction.
func (c *Client) Durations(ctx context.Context, sources, destinations []sim.Location) ([][]float64, error) {
	url := c.buildQueryURL(sources, destinations)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("osrmclient: building request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("osrmclient: querying %s: %w", c.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("osrmclient: http status %d from %s", resp.StatusCode, c.BaseURL)
	}

	var table tableResponse
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return nil, fmt.Errorf("osrmclient: decoding response: %w", err)
	}
	if table.Code != "Ok" {
		return nil, fmt.Errorf("osrmclient: OSRM returned code %q", table.Code)
	}
	return table.Durations, nil
}

// buildQueryURL reproduces Queries::buildQueryURL: all coordinates
// (sources then destinations) in one semicolon-separated lon,lat list,
// with explicit &sources=/&destinations= index parameters.
func (c *Client) buildQueryURL(sources, destinations []sim.Location) string {
	var coords []string
	for _, loc := range sources {
		coords = append(coords, formatCoord(loc))
	}
	for _, loc := range destinations {
		coords = append(coords, formatCoord(loc))
	}

	var sourceIdx, destIdx []string
	for i := range sources {
		sourceIdx = append(sourceIdx, strconv.Itoa(i))
	}
	for i := range destinations {
		destIdx = append(destIdx, strconv.Itoa(len(sources)+i))
	}

	base := strings.TrimRight(c.BaseURL, "/")
	return fmt.Sprintf("%s/%s?sources=%s&destinations=%s",
		base, strings.Join(coords, ";"), strings.Join(sourceIdx, ";"), strings.Join(destIdx, ";"))
}

func formatCoord(loc sim.Location) string {
	return fmt.Sprintf("%g,%g", loc.Lon, loc.Lat)
}

// CheckHealth queries OSRM's /route endpoint with a known fixed coordinate
// pair, mirroring checkOSRM's liveness probe.
func (c *Client) CheckHealth(ctx context.Context) error {
	base := strings.TrimRight(c.BaseURL, "/")
	url := strings.Replace(base, "/table/", "/route/", 1) + "/-86.7844,36.1659;-86.8005,36.1447"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("osrmclient: building health request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("osrmclient: health check: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("osrmclient: health check http status %d", resp.StatusCode)
	}
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("osrmclient: decoding health response: %w", err)
	}
	if body.Code != "Ok" {
		return fmt.Errorf("osrmclient: health check returned code %q", body.Code)
	}
	return nil
}
