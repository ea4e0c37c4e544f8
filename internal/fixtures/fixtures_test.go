package fixtures

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-rescue-network/internal/expiry"
	"github.com/mr1hm/go-rescue-network/internal/models"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestDefault(t *testing.T) {
	seed, err := Default(now)
	require.NoError(t, err)

	assert.Len(t, seed.Donors, 3)
	assert.Len(t, seed.NGOs, 2)
	assert.Len(t, seed.Vehicles, 3)
	assert.Len(t, seed.Route, 4)
	assert.Len(t, seed.RouteStops, 4)

	require.Len(t, seed.Crises, 2)
	assert.Equal(t, "crisis-1", seed.Crises[0].ID)
	assert.Equal(t, "crisis-2", seed.Crises[1].ID)
	assert.Equal(t, models.CrisisSeverityHigh, seed.Crises[0].Severity)
	assert.Equal(t, "VN-2347", seed.Crises[0].VehicleID)
	assert.Equal(t, now, seed.Crises[1].Timestamp)
}

func TestDefault_ExpiryRelativeToNow(t *testing.T) {
	seed, err := Default(now)
	require.NoError(t, err)

	rice := seed.Donors[0].Items[0]
	assert.Equal(t, "Prepared Rice", rice.Name)
	assert.Equal(t, now.Add(2*time.Hour), rice.Expiry)
	assert.Equal(t, expiry.TierCritical, expiry.Classify(rice.Expiry, now).Tier)

	bread := seed.Donors[1].Items[0]
	assert.Equal(t, expiry.TierSafe, expiry.Classify(bread.Expiry, now).Tier)
}

func TestLoad_AbsoluteExpiry(t *testing.T) {
	doc := `
donors:
  - id: d1
    name: Bakery
    location: {lat: 1, lng: 2}
    items:
      - {name: Bread, quantity: 5, expiry: "2026-03-01T20:00:00Z"}
`
	seed, err := Load(strings.NewReader(doc), now)
	require.NoError(t, err)
	require.Len(t, seed.Donors, 1)

	item := seed.Donors[0].Items[0]
	assert.True(t, item.Expiry.Equal(time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)))
	assert.Equal(t, models.Coordinate{Lat: 1, Lng: 2}, seed.Donors[0].Location)
}

func TestLoad_Empty(t *testing.T) {
	seed, err := Load(strings.NewReader(""), now)
	require.NoError(t, err)
	assert.Empty(t, seed.Donors)
	assert.Empty(t, seed.Crises)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "donors:\n  - id: d1\n    colour: red\n"},
		{"duplicate crisis", "crises:\n  - {id: c1, type: traffic, severity: low}\n  - {id: c1, type: delay, severity: low}\n"},
		{"empty id", "ngos:\n  - {name: Nameless}\n"},
		{"bad severity", "crises:\n  - {id: c1, type: traffic, severity: extreme}\n"},
		{"bad crisis type", "crises:\n  - {id: c1, type: flood, severity: low}\n"},
		{"bad vehicle status", "vehicles:\n  - {id: v1, status: flying}\n"},
		{"donor latitude out of range", "donors:\n  - id: d1\n    location: {lat: 91, lng: 77}\n"},
		{"ngo longitude out of range", "ngos:\n  - {id: n1, location: {lat: 28, lng: 181}}\n"},
		{"vehicle latitude out of range", "vehicles:\n  - {id: v1, status: idle, location: {lat: -90.5, lng: 77}}\n"},
		{"item without expiry", "donors:\n  - id: d1\n    items:\n      - {name: Rice, quantity: 1}\n"},
		{"item with both expiries", "donors:\n  - id: d1\n    items:\n      - {name: Rice, quantity: 1, expiry: \"2026-03-01\", expires_in: 1h}\n"},
		{"zero quantity", "donors:\n  - id: d1\n    items:\n      - {name: Rice, quantity: 0, expires_in: 1h}\n"},
		{"bad duration", "donors:\n  - id: d1\n    items:\n      - {name: Rice, quantity: 1, expires_in: soon}\n"},
		{"malformed yaml", "donors: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc), now)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSeed), "got %v", err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, defaultSeed, 0o600))

	seed, err := LoadFile(path, now)
	require.NoError(t, err)
	assert.Len(t, seed.Donors, 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), now)
	assert.Error(t, err)
}
