package rescue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mr1hm/go-rescue-network/internal/models"
	"github.com/mr1hm/go-rescue-network/internal/repository"
	"github.com/mr1hm/go-rescue-network/internal/routing"
)

// RequestSubmission asks for a pickup between two points. Priority is
// derived from Type when left empty.
type RequestSubmission struct {
	DonorID  string          `json:"donor_id"`
	Type     string          `json:"type" validate:"notblank"`
	Priority models.Priority `json:"priority"`
	StartLon *float64        `json:"start_lon" validate:"required"`
	StartLat *float64        `json:"start_lat" validate:"required"`
	EndLon   *float64        `json:"end_lon" validate:"required"`
	EndLat   *float64        `json:"end_lat" validate:"required"`
}

// Dispatcher turns rescue requests into routed, stored records.
type Dispatcher struct {
	repo   repository.RequestRepository
	router routing.Router
	now    func() time.Time
}

func NewDispatcher(repo repository.RequestRepository, router routing.Router) *Dispatcher {
	return &Dispatcher{repo: repo, router: router, now: time.Now}
}

func (d *Dispatcher) Create(ctx context.Context, sub RequestSubmission) (models.RescueRequest, error) {
	if err := checkStruct(sub); err != nil {
		return models.RescueRequest{}, err
	}
	start, err := location(sub.StartLat, sub.StartLon)
	if err != nil {
		return models.RescueRequest{}, err
	}
	end, err := location(sub.EndLat, sub.EndLon)
	if err != nil {
		return models.RescueRequest{}, err
	}

	priority := sub.Priority
	if priority == "" {
		priority = PriorityForType(sub.Type)
	}
	if !priority.Valid() {
		return models.RescueRequest{}, fmt.Errorf("%w: %q", ErrInvalidPriority, priority)
	}

	route, err := d.router.Route(ctx, start, end)
	if err != nil {
		return models.RescueRequest{}, fmt.Errorf("error routing request: %w", err)
	}

	req := models.RescueRequest{
		ID:         "request-" + uuid.NewString(),
		DonorID:    sub.DonorID,
		Type:       sub.Type,
		Priority:   priority,
		Start:      start,
		End:        end,
		DistanceKm: route.DistanceKm(),
		ETAMin:     route.ETAMin(),
		CreatedAt:  d.now().UTC(),
	}
	if err := d.repo.Add(ctx, &req); err != nil {
		return models.RescueRequest{}, fmt.Errorf("error storing request: %w", err)
	}

	slog.Info("rescue request stored",
		"id", req.ID,
		"priority", req.Priority,
		"distance_km", req.DistanceKm,
		"eta_min", req.ETAMin,
		"fallback", route.Fallback)
	return req, nil
}

func (d *Dispatcher) List(ctx context.Context, f repository.Filter) ([]models.RescueRequest, error) {
	return d.repo.ListRequests(ctx, f)
}
