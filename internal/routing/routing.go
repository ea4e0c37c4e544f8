// Package routing looks up driving distance and duration between two points.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/mr1hm/go-rescue-network/internal/models"
)

type Route struct {
	DistanceMeters  float64         `json:"distance"`
	DurationSeconds float64         `json:"duration"`
	Geometry        json.RawMessage `json:"geometry,omitempty"` // GeoJSON LineString
	Fallback        bool            `json:"fallback,omitempty"`
}

func (r Route) DistanceKm() float64 {
	return round2(r.DistanceMeters / 1000)
}

func (r Route) ETAMin() float64 {
	return round2(r.DurationSeconds / 60)
}

// FallbackRoute is returned when the routing backend cannot answer.
var FallbackRoute = Route{DistanceMeters: 5000, DurationSeconds: 600, Fallback: true}

type Router interface {
	Route(ctx context.Context, from, to models.Coordinate) (Route, error)
}

// Key identifies a from/to pair as "lon,lat->lon,lat".
func Key(from, to models.Coordinate) string {
	return fmt.Sprintf("%g,%g->%g,%g", from.Lng, from.Lat, to.Lng, to.Lat)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
