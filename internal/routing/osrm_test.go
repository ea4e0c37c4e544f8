package routing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-rescue-network/internal/models"
)

var (
	grandHotel = models.Coordinate{Lat: 28.6280, Lng: 77.2200}
	hopeCenter = models.Coordinate{Lat: 28.6400, Lng: 77.2100}
)

func TestOSRMClient_Route(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":"Ok","routes":[{"distance":3215.7,"duration":689.4,"geometry":{"type":"LineString","coordinates":[[77.22,28.628],[77.21,28.64]]}}]}`))
	}))
	defer srv.Close()

	client := NewOSRMClient(srv.URL+"/", 2*time.Second)
	r, err := client.Route(context.Background(), grandHotel, hopeCenter)
	require.NoError(t, err)

	assert.Equal(t, "/route/v1/driving/77.22,28.628;77.21,28.64", gotPath)
	assert.Contains(t, gotQuery, "geometries=geojson")
	assert.False(t, r.Fallback)
	assert.Equal(t, 3.22, r.DistanceKm())
	assert.Equal(t, 11.49, r.ETAMin())
	assert.True(t, strings.Contains(string(r.Geometry), "LineString"))
}

func TestOSRMClient_FallsBack(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}},
		{"no routes", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"code":"NoRoute","routes":[]}`))
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"routes":`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			r, err := NewOSRMClient(srv.URL, time.Second).Route(context.Background(), grandHotel, hopeCenter)
			require.NoError(t, err)
			assert.Equal(t, FallbackRoute, r)
			assert.Equal(t, 5.0, r.DistanceKm())
			assert.Equal(t, 10.0, r.ETAMin())
		})
	}
}

func TestOSRMClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r, err := NewOSRMClient(url, time.Second).Route(context.Background(), grandHotel, hopeCenter)
	require.NoError(t, err)
	assert.True(t, r.Fallback)
}

func TestOSRMClient_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewOSRMClient(srv.URL, time.Second).Route(ctx, grandHotel, hopeCenter)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "77.22,28.628->77.21,28.64", Key(grandHotel, hopeCenter))
}
