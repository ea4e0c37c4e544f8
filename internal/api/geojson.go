package api

import (
	"github.com/mr1hm/go-rescue-network/internal/expiry"
	"github.com/mr1hm/go-rescue-network/internal/models"
	"github.com/mr1hm/go-rescue-network/internal/rescue"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry holds a Point ([lon, lat]) or a LineString ([][lon, lat]).
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

func point(c models.Coordinate) Geometry {
	return Geometry{Type: "Point", Coordinates: []float64{c.Lng, c.Lat}}
}

// mostUrgent returns the worst tier among a donor's items.
func mostUrgent(items []rescue.ClassifiedItem) expiry.Tier {
	worst := expiry.TierSafe
	for _, item := range items {
		if item.Tier.Rank() > worst.Rank() {
			worst = item.Tier
		}
	}
	return worst
}

func toGeoJSON(donors []rescue.DonorInventory, ngos []models.NGO, vehicles []models.Vehicle, plan rescue.RoutePlan) FeatureCollection {
	features := make([]Feature, 0, len(donors)+len(ngos)+len(vehicles)+1)

	for _, d := range donors {
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: point(d.Location),
			Properties: map[string]any{
				"kind":    "donor",
				"id":      d.ID,
				"name":    d.Name,
				"address": d.Address,
				"items":   len(d.Items),
				"urgency": mostUrgent(d.Items),
			},
		})
	}

	for _, n := range ngos {
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: point(n.Location),
			Properties: map[string]any{
				"kind":    "ngo",
				"id":      n.ID,
				"name":    n.Name,
				"address": n.Address,
			},
		})
	}

	for _, v := range vehicles {
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: point(v.Location),
			Properties: map[string]any{
				"kind":           "vehicle",
				"id":             v.ID,
				"name":           v.Name,
				"plate":          v.Plate,
				"driver":         v.Driver,
				"status":         v.Status,
				"items_on_board": v.ItemsOnBoard,
			},
		})
	}

	if plan.Shown && len(plan.Route) > 1 {
		line := make([][]float64, len(plan.Route))
		for i, c := range plan.Route {
			line[i] = []float64{c.Lng, c.Lat}
		}
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: Geometry{Type: "LineString", Coordinates: line},
			Properties: map[string]any{
				"kind":  "route",
				"stops": len(plan.Stops),
			},
		})
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
