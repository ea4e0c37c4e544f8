// Package rescue coordinates donors, NGOs, vehicles and open crises for the
// rescue network.
package rescue

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mr1hm/go-rescue-network/internal/crisis"
	"github.com/mr1hm/go-rescue-network/internal/expiry"
	"github.com/mr1hm/go-rescue-network/internal/fixtures"
	"github.com/mr1hm/go-rescue-network/internal/models"
)

var (
	ErrVehicleNotFound     = errors.New("vehicle not found")
	ErrVehicleBrokenDown   = errors.New("vehicle already broken down")
	ErrInvalidOptimization = errors.New("invalid optimization options")
)

// Publisher receives crisis events. Publish must not block.
type Publisher interface {
	Publish(models.CrisisEvent)
}

type Option func(*Network)

func WithPublisher(p Publisher) Option {
	return func(n *Network) { n.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(n *Network) { n.classifier = expiry.NewClassifier(now) }
}

// WithIDGenerator overrides how ids are minted for new records.
func WithIDGenerator(gen func(prefix string) string) Option {
	return func(n *Network) { n.newID = gen }
}

// Network is the single owner of all mutable state. Every method takes the
// same lock, so commands from concurrent handlers are applied one at a time.
type Network struct {
	mu         sync.Mutex
	donors     []models.Donor
	ngos       []models.NGO
	vehicles   []models.Vehicle
	crises     *crisis.Registry
	route      []models.Coordinate
	stops      []models.RouteStop
	routeShown bool
	lastPlan   *OptimizationOptions

	classifier *expiry.Classifier
	publisher  Publisher
	newID      func(prefix string) string
}

func NewNetwork(seed *fixtures.Seed, opts ...Option) (*Network, error) {
	n := &Network{
		classifier: expiry.NewClassifier(time.Now),
		newID:      func(prefix string) string { return prefix + "-" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(n)
	}

	var crises []models.Crisis
	if seed != nil {
		n.donors = slices.Clone(seed.Donors)
		n.ngos = slices.Clone(seed.NGOs)
		n.vehicles = slices.Clone(seed.Vehicles)
		n.route = slices.Clone(seed.Route)
		n.stops = slices.Clone(seed.RouteStops)
		crises = seed.Crises
	}

	reg, err := crisis.NewRegistry(crises...)
	if err != nil {
		return nil, fmt.Errorf("error seeding crises: %w", err)
	}
	n.crises = reg
	return n, nil
}

// Now is the coordinator's clock.
func (n *Network) Now() time.Time {
	return n.classifier.Now()
}

func (n *Network) publish(kind models.CrisisEventKind, c models.Crisis) {
	if n.publisher == nil {
		return
	}
	n.publisher.Publish(models.CrisisEvent{Kind: kind, Crisis: c, At: n.classifier.Now()})
}

// AddDonor validates a submission and appends the donor. A rejected
// submission leaves the network unchanged.
func (n *Network) AddDonor(sub DonorSubmission) (models.Donor, error) {
	d, err := sub.validate()
	if err != nil {
		return models.Donor{}, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	d.ID = n.newID("donor")
	n.donors = append(n.donors, d)
	slog.Info("donor added", "id", d.ID, "name", d.Name, "items", len(d.Items))
	return d, nil
}

func (n *Network) DeleteDonor(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	i := slices.IndexFunc(n.donors, func(d models.Donor) bool { return d.ID == id })
	if i < 0 {
		return false
	}
	n.donors = slices.Delete(n.donors, i, i+1)
	slog.Info("donor removed", "id", id)
	return true
}

func (n *Network) Donors() []models.Donor {
	n.mu.Lock()
	defer n.mu.Unlock()
	return snapshot(n.donors)
}

func (n *Network) AddNGO(sub NGOSubmission) (models.NGO, error) {
	ngo, err := sub.validate()
	if err != nil {
		return models.NGO{}, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	ngo.ID = n.newID("ngo")
	n.ngos = append(n.ngos, ngo)
	slog.Info("ngo added", "id", ngo.ID, "name", ngo.Name)
	return ngo, nil
}

func (n *Network) DeleteNGO(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	i := slices.IndexFunc(n.ngos, func(g models.NGO) bool { return g.ID == id })
	if i < 0 {
		return false
	}
	n.ngos = slices.Delete(n.ngos, i, i+1)
	slog.Info("ngo removed", "id", id)
	return true
}

func (n *Network) NGOs() []models.NGO {
	n.mu.Lock()
	defer n.mu.Unlock()
	return snapshot(n.ngos)
}

func (n *Network) Vehicles() []models.Vehicle {
	n.mu.Lock()
	defer n.mu.Unlock()
	return snapshot(n.vehicles)
}

// ActiveVehicle returns the first idle vehicle available for dispatch.
func (n *Network) ActiveVehicle() (models.Vehicle, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, v := range n.vehicles {
		if v.Status == models.VehicleStatusIdle {
			return v, true
		}
	}
	return models.Vehicle{}, false
}

// ReportBreakdown marks a vehicle as broken down and raises a high severity
// breakdown crisis referencing its plate.
func (n *Network) ReportBreakdown(vehicleID string) (models.Crisis, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	i := slices.IndexFunc(n.vehicles, func(v models.Vehicle) bool { return v.ID == vehicleID })
	if i < 0 {
		return models.Crisis{}, fmt.Errorf("%w: %s", ErrVehicleNotFound, vehicleID)
	}
	v := &n.vehicles[i]
	if v.Status == models.VehicleStatusBreakdown {
		return models.Crisis{}, fmt.Errorf("%w: %s", ErrVehicleBrokenDown, vehicleID)
	}

	now := n.classifier.Now()
	where := v.CurrentStop
	if where == "" {
		where = fmt.Sprintf("%.4f, %.4f", v.Location.Lat, v.Location.Lng)
	}
	c := models.Crisis{
		ID:          n.newID("crisis"),
		Type:        models.CrisisTypeBreakdown,
		Severity:    models.CrisisSeverityHigh,
		Title:       "Vehicle Breakdown",
		Description: fmt.Sprintf("%s (%s) has reported a mechanical failure near %s.", v.Name, v.Plate, where),
		Location:    where,
		Timestamp:   now,
		VehicleID:   v.Plate,
	}
	if err := n.crises.Add(c); err != nil {
		return models.Crisis{}, err
	}
	v.Status = models.VehicleStatusBreakdown
	v.LastUpdate = now

	slog.Warn("vehicle breakdown reported", "vehicle", v.ID, "plate", v.Plate, "crisis", c.ID)
	n.publish(models.CrisisRaised, c)
	return c, nil
}

// RaiseCrisis validates and registers a crisis. An empty id is assigned and
// a zero timestamp is set to now.
func (n *Network) RaiseCrisis(c models.Crisis) (models.Crisis, error) {
	if !c.Type.Valid() {
		return models.Crisis{}, fmt.Errorf("%w: unknown type %q", crisis.ErrInvalidCrisis, c.Type)
	}
	if !c.Severity.Valid() {
		return models.Crisis{}, fmt.Errorf("%w: unknown severity %q", crisis.ErrInvalidCrisis, c.Severity)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if c.ID == "" {
		c.ID = n.newID("crisis")
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = n.classifier.Now()
	}
	if err := n.crises.Add(c); err != nil {
		return models.Crisis{}, err
	}

	slog.Info("crisis raised", "id", c.ID, "type", c.Type, "severity", c.Severity)
	n.publish(models.CrisisRaised, c)
	return c, nil
}

// DismissCrisis hides a crisis without claiming it was handled.
func (n *Network) DismissCrisis(id string) crisis.Outcome {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := n.crises.Dismiss(id)
	if out.Removed {
		slog.Info("crisis dismissed", "id", id)
		n.publish(models.CrisisDismissed, *out.Crisis)
	}
	return out
}

// ResolveCrisis records that a crisis was handled.
func (n *Network) ResolveCrisis(id string) crisis.Outcome {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := n.crises.Resolve(id)
	if out.Removed {
		slog.Info("crisis resolved", "id", id)
		n.publish(models.CrisisResolved, *out.Crisis)
	}
	return out
}

func (n *Network) Crises() []models.Crisis {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.crises.List()
}

func (n *Network) HasCrisis(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.crises.Has(id)
}

// snapshot copies s into a non-nil slice so empty collections encode as [].
func snapshot[T any](s []T) []T {
	return append(make([]T, 0, len(s)), s...)
}
