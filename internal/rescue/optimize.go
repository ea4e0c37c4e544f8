package rescue

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/mr1hm/go-rescue-network/internal/models"
)

type PriorityMode string

const (
	PriorityModeExpiry   PriorityMode = "expiry"
	PriorityModeDistance PriorityMode = "distance"
	PriorityModeBalanced PriorityMode = "balanced"
)

func (m PriorityMode) Valid() bool {
	switch m {
	case PriorityModeExpiry, PriorityModeDistance, PriorityModeBalanced:
		return true
	}
	return false
}

type OptimizationOptions struct {
	VehicleID       string       `json:"vehicleId"`
	PriorityMode    PriorityMode `json:"priorityMode"`
	ConsiderTraffic bool         `json:"considerTraffic"`
	MaxStops        int          `json:"maxStops"`
}

// RoutePlan is the planned route. Shown is false until an optimization has
// been requested.
type RoutePlan struct {
	Shown   bool                 `json:"shown"`
	Route   []models.Coordinate  `json:"route"`
	Stops   []models.RouteStop   `json:"stops"`
	Options *OptimizationOptions `json:"options,omitempty"`
}

// OptimizeRoute validates the request and reveals the planned route. The plan
// itself comes from the seed; stops are not reordered.
func (n *Network) OptimizeRoute(opts OptimizationOptions) (RoutePlan, error) {
	if opts.PriorityMode == "" {
		opts.PriorityMode = PriorityModeBalanced
	}
	if !opts.PriorityMode.Valid() {
		return RoutePlan{}, fmt.Errorf("%w: unknown priority mode %q", ErrInvalidOptimization, opts.PriorityMode)
	}
	if opts.MaxStops <= 0 {
		return RoutePlan{}, fmt.Errorf("%w: maxStops must be positive", ErrInvalidOptimization)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if opts.VehicleID != "" && !slices.ContainsFunc(n.vehicles, func(v models.Vehicle) bool { return v.ID == opts.VehicleID }) {
		return RoutePlan{}, fmt.Errorf("%w: %s", ErrVehicleNotFound, opts.VehicleID)
	}

	n.routeShown = true
	n.lastPlan = &opts
	slog.Info("route optimization requested",
		"vehicle", opts.VehicleID,
		"mode", opts.PriorityMode,
		"traffic", opts.ConsiderTraffic,
		"max_stops", opts.MaxStops)

	return n.planLocked(), nil
}

func (n *Network) RoutePlan() RoutePlan {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.planLocked()
}

func (n *Network) planLocked() RoutePlan {
	plan := RoutePlan{
		Shown: n.routeShown,
		Route: slices.Clone(n.route),
		Stops: slices.Clone(n.stops),
	}
	if n.lastPlan != nil {
		opts := *n.lastPlan
		plan.Options = &opts
	}
	return plan
}
