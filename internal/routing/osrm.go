package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mr1hm/go-rescue-network/internal/models"
)

type osrmResponse struct {
	Code   string      `json:"code"`
	Routes []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64         `json:"distance"` // meters
	Duration float64         `json:"duration"` // seconds
	Geometry json.RawMessage `json:"geometry"`
}

// OSRMClient queries an OSRM routing server. Failures degrade to
// FallbackRoute rather than erroring.
type OSRMClient struct {
	baseURL string
	client  *http.Client
}

func NewOSRMClient(baseURL string, timeout time.Duration) *OSRMClient {
	return &OSRMClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *OSRMClient) Route(ctx context.Context, from, to models.Coordinate) (Route, error) {
	r, err := c.fetch(ctx, from, to)
	if err != nil {
		if ctx.Err() != nil {
			return Route{}, ctx.Err()
		}
		slog.Warn("osrm lookup failed, using fallback route", "key", Key(from, to), "error", err)
		return FallbackRoute, nil
	}
	return r, nil
}

func (c *OSRMClient) fetch(ctx context.Context, from, to models.Coordinate) (Route, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%g,%g;%g,%g?overview=simplified&geometries=geojson",
		c.baseURL, from.Lng, from.Lat, to.Lng, to.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Route{}, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Route{}, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Route{}, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Route{}, fmt.Errorf("error decoding resp.Body: %w", err)
	}
	if len(data.Routes) == 0 {
		return Route{}, fmt.Errorf("no routes returned (code %q)", data.Code)
	}

	best := data.Routes[0]
	return Route{
		DistanceMeters:  best.Distance,
		DurationSeconds: best.Duration,
		Geometry:        best.Geometry,
	}, nil
}
