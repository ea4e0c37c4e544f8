// Package fixtures loads the seed data the rescue network starts with.
package fixtures

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mr1hm/go-rescue-network/internal/expiry"
	"github.com/mr1hm/go-rescue-network/internal/models"
)

//go:embed seed.yaml
var defaultSeed []byte

var ErrInvalidSeed = errors.New("invalid seed")

// Seed is the decoded, validated seed with all timestamps resolved.
type Seed struct {
	Donors     []models.Donor
	NGOs       []models.NGO
	Vehicles   []models.Vehicle
	Crises     []models.Crisis
	Route      []models.Coordinate
	RouteStops []models.RouteStop
}

type seedFile struct {
	Donors     []donorDoc     `yaml:"donors"`
	NGOs       []ngoDoc       `yaml:"ngos"`
	Vehicles   []vehicleDoc   `yaml:"vehicles"`
	Crises     []crisisDoc    `yaml:"crises"`
	Route      []coordDoc     `yaml:"route"`
	RouteStops []routeStopDoc `yaml:"route_stops"`
}

type coordDoc struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

type itemDoc struct {
	Name      string `yaml:"name"`
	Quantity  int    `yaml:"quantity"`
	Expiry    string `yaml:"expiry"`
	ExpiresIn string `yaml:"expires_in"`
}

type donorDoc struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	Address  string    `yaml:"address"`
	Location coordDoc  `yaml:"location"`
	Items    []itemDoc `yaml:"items"`
}

type ngoDoc struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	Address       string   `yaml:"address"`
	Location      coordDoc `yaml:"location"`
	ContactPerson string   `yaml:"contact_person"`
	Phone         string   `yaml:"phone"`
	Email         string   `yaml:"email"`
	Capacity      *int     `yaml:"capacity"`
}

type vehicleDoc struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Plate        string   `yaml:"plate"`
	Driver       string   `yaml:"driver"`
	Status       string   `yaml:"status"`
	Location     coordDoc `yaml:"location"`
	CurrentStop  string   `yaml:"current_stop"`
	ItemsOnBoard int      `yaml:"items_on_board"`
}

type crisisDoc struct {
	ID          string `yaml:"id"`
	Type        string `yaml:"type"`
	Severity    string `yaml:"severity"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Location    string `yaml:"location"`
	Timestamp   string `yaml:"timestamp"`
	VehicleID   string `yaml:"vehicle_id"`
}

type routeStopDoc struct {
	ID       string    `yaml:"id"`
	Type     string    `yaml:"type"`
	Name     string    `yaml:"name"`
	Address  string    `yaml:"address"`
	Items    []itemDoc `yaml:"items"`
	ETA      string    `yaml:"eta"`
	Status   string    `yaml:"status"`
	Distance string    `yaml:"distance"`
}

// Default returns the embedded seed resolved against now.
func Default(now time.Time) (*Seed, error) {
	return Load(bytes.NewReader(defaultSeed), now)
}

func LoadFile(path string, now time.Time) (*Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening seed file: %w", err)
	}
	defer f.Close()
	return Load(f, now)
}

// Load decodes a YAML seed. Relative expiries, and crisis or vehicle
// timestamps left empty, are resolved against now.
func Load(r io.Reader, now time.Time) (*Seed, error) {
	var doc seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}

	seed := &Seed{}
	seen := make(map[string]bool)
	unique := func(kind, id string) error {
		if id == "" {
			return fmt.Errorf("%w: %s with empty id", ErrInvalidSeed, kind)
		}
		key := kind + "/" + id
		if seen[key] {
			return fmt.Errorf("%w: duplicate %s id %q", ErrInvalidSeed, kind, id)
		}
		seen[key] = true
		return nil
	}

	for _, d := range doc.Donors {
		if err := unique("donor", d.ID); err != nil {
			return nil, err
		}
		if !coord(d.Location).Valid() {
			return nil, fmt.Errorf("%w: donor %s has out-of-range location", ErrInvalidSeed, d.ID)
		}
		items, err := resolveItems(d.Items, now)
		if err != nil {
			return nil, fmt.Errorf("donor %s: %w", d.ID, err)
		}
		seed.Donors = append(seed.Donors, models.Donor{
			ID:       d.ID,
			Name:     d.Name,
			Address:  d.Address,
			Location: coord(d.Location),
			Items:    items,
		})
	}

	for _, n := range doc.NGOs {
		if err := unique("ngo", n.ID); err != nil {
			return nil, err
		}
		if !coord(n.Location).Valid() {
			return nil, fmt.Errorf("%w: ngo %s has out-of-range location", ErrInvalidSeed, n.ID)
		}
		seed.NGOs = append(seed.NGOs, models.NGO{
			ID:            n.ID,
			Name:          n.Name,
			Address:       n.Address,
			Location:      coord(n.Location),
			ContactPerson: n.ContactPerson,
			Phone:         n.Phone,
			Email:         n.Email,
			Capacity:      n.Capacity,
		})
	}

	for _, v := range doc.Vehicles {
		if err := unique("vehicle", v.ID); err != nil {
			return nil, err
		}
		if !coord(v.Location).Valid() {
			return nil, fmt.Errorf("%w: vehicle %s has out-of-range location", ErrInvalidSeed, v.ID)
		}
		status := models.VehicleStatus(v.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: vehicle %s has unknown status %q", ErrInvalidSeed, v.ID, v.Status)
		}
		seed.Vehicles = append(seed.Vehicles, models.Vehicle{
			ID:           v.ID,
			Name:         v.Name,
			Plate:        v.Plate,
			Driver:       v.Driver,
			Status:       status,
			Location:     coord(v.Location),
			CurrentStop:  v.CurrentStop,
			ItemsOnBoard: v.ItemsOnBoard,
			LastUpdate:   now,
		})
	}

	for _, c := range doc.Crises {
		if err := unique("crisis", c.ID); err != nil {
			return nil, err
		}
		crisis, err := resolveCrisis(c, now)
		if err != nil {
			return nil, err
		}
		seed.Crises = append(seed.Crises, crisis)
	}

	for _, p := range doc.Route {
		seed.Route = append(seed.Route, coord(p))
	}

	for _, s := range doc.RouteStops {
		if err := unique("route stop", s.ID); err != nil {
			return nil, err
		}
		items, err := resolveItems(s.Items, now)
		if err != nil {
			return nil, fmt.Errorf("route stop %s: %w", s.ID, err)
		}
		seed.RouteStops = append(seed.RouteStops, models.RouteStop{
			ID:       s.ID,
			Type:     models.StopType(s.Type),
			Name:     s.Name,
			Address:  s.Address,
			Items:    items,
			ETA:      s.ETA,
			Status:   models.StopStatus(s.Status),
			Distance: s.Distance,
		})
	}

	return seed, nil
}

func coord(c coordDoc) models.Coordinate {
	return models.Coordinate{Lat: c.Lat, Lng: c.Lng}
}

func resolveItems(docs []itemDoc, now time.Time) ([]models.PerishableItem, error) {
	items := make([]models.PerishableItem, 0, len(docs))
	for _, d := range docs {
		if strings.TrimSpace(d.Name) == "" || d.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %q needs a name and a positive quantity", ErrInvalidSeed, d.Name)
		}

		var exp time.Time
		switch {
		case d.Expiry != "" && d.ExpiresIn != "":
			return nil, fmt.Errorf("%w: item %q sets both expiry and expires_in", ErrInvalidSeed, d.Name)
		case d.Expiry != "":
			t, err := expiry.ParseExpiry(d.Expiry)
			if err != nil {
				return nil, fmt.Errorf("%w: item %q: %v", ErrInvalidSeed, d.Name, err)
			}
			exp = t
		case d.ExpiresIn != "":
			dur, err := time.ParseDuration(d.ExpiresIn)
			if err != nil {
				return nil, fmt.Errorf("%w: item %q: %v", ErrInvalidSeed, d.Name, err)
			}
			exp = now.Add(dur)
		default:
			return nil, fmt.Errorf("%w: item %q has no expiry", ErrInvalidSeed, d.Name)
		}

		items = append(items, models.PerishableItem{
			Name:     d.Name,
			Quantity: d.Quantity,
			Expiry:   exp,
		})
	}
	return items, nil
}

func resolveCrisis(c crisisDoc, now time.Time) (models.Crisis, error) {
	typ := models.CrisisType(c.Type)
	if !typ.Valid() {
		return models.Crisis{}, fmt.Errorf("%w: crisis %s has unknown type %q", ErrInvalidSeed, c.ID, c.Type)
	}
	sev := models.CrisisSeverity(c.Severity)
	if !sev.Valid() {
		return models.Crisis{}, fmt.Errorf("%w: crisis %s has unknown severity %q", ErrInvalidSeed, c.ID, c.Severity)
	}

	ts := now
	if c.Timestamp != "" {
		t, err := expiry.ParseExpiry(c.Timestamp)
		if err != nil {
			return models.Crisis{}, fmt.Errorf("%w: crisis %s: %v", ErrInvalidSeed, c.ID, err)
		}
		ts = t
	}

	return models.Crisis{
		ID:          c.ID,
		Type:        typ,
		Severity:    sev,
		Title:       c.Title,
		Description: c.Description,
		Location:    c.Location,
		Timestamp:   ts,
		VehicleID:   c.VehicleID,
	}, nil
}
