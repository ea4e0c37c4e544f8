package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mr1hm/go-rescue-network/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteDB {
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	return db
}

func testRequest(id string, priority models.Priority, createdAt time.Time) *models.RescueRequest {
	return &models.RescueRequest{
		ID:         id,
		DonorID:    "donor-1",
		Type:       "food",
		Priority:   priority,
		Start:      models.Coordinate{Lat: 28.6280, Lng: 77.2200},
		End:        models.Coordinate{Lat: 28.6400, Lng: 77.2100},
		DistanceKm: 3.2,
		ETAMin:     11.5,
		CreatedAt:  createdAt,
	}
}

func TestSQLiteDB_AddAndGetRequest(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	created := time.Date(2026, 2, 7, 14, 0, 0, 0, time.UTC)
	req := testRequest("req-1", models.PriorityMedium, created)

	if err := db.Add(ctx, req); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, err := db.GetByID(ctx, "req-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Type != "food" || got.Priority != models.PriorityMedium {
		t.Errorf("unexpected request: %+v", got)
	}
	if got.Start != req.Start || got.End != req.End {
		t.Errorf("coordinates mismatch: got %+v -> %+v", got.Start, got.End)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("expected created_at %s, got %s", created, got.CreatedAt)
	}
}

func TestSQLiteDB_GetByIDNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteDB_AddDuplicate(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	req := testRequest("dup", models.PriorityLow, time.Now())
	if err := db.Add(ctx, req); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := db.Add(ctx, req); err == nil {
		t.Error("expected duplicate insert to fail")
	}
}

func TestSQLiteDB_ListRequests_WithFilters(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Date(2026, 2, 7, 14, 0, 0, 0, time.UTC)

	requests := []*models.RescueRequest{
		testRequest("r1", models.PriorityHigh, now.Add(-3*time.Hour)),
		testRequest("r2", models.PriorityMedium, now.Add(-2*time.Hour)),
		testRequest("r3", models.PriorityHigh, now.Add(-time.Hour)),
		testRequest("r4", models.PriorityLow, now),
	}
	requests[3].DonorID = "donor-2"
	for _, r := range requests {
		if err := db.Add(ctx, r); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	all, err := db.ListRequests(ctx, Filter{})
	if err != nil {
		t.Fatalf("ListRequests failed: %v", err)
	}
	if len(all) != 4 || all[0].ID != "r4" || all[3].ID != "r1" {
		t.Errorf("expected newest first, got %v", requestIDs(all))
	}

	high := models.PriorityHigh
	results, err := db.ListRequests(ctx, Filter{Priority: &high})
	if err != nil {
		t.Fatalf("ListRequests failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 high priority requests, got %d", len(results))
	}

	since := now.Add(-90 * time.Minute)
	results, err = db.ListRequests(ctx, Filter{Since: &since})
	if err != nil {
		t.Fatalf("ListRequests failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 requests since %s, got %v", since, requestIDs(results))
	}

	results, err = db.ListRequests(ctx, Filter{DonorID: "donor-2"})
	if err != nil {
		t.Fatalf("ListRequests failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "r4" {
		t.Errorf("expected only r4 for donor-2, got %v", requestIDs(results))
	}

	results, err = db.ListRequests(ctx, Filter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("ListRequests failed: %v", err)
	}
	if len(results) != 2 || results[0].ID != "r3" || results[1].ID != "r2" {
		t.Errorf("expected [r3 r2], got %v", requestIDs(results))
	}
}

func TestSQLiteDB_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rescue.db")
	ctx := context.Background()

	db, err := NewSQLiteDB(path)
	if err != nil {
		t.Fatalf("NewSQLiteDB failed: %v", err)
	}
	if err := db.Add(ctx, testRequest("persisted", models.PriorityHigh, time.Now())); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	db.Close()

	reopened, err := NewSQLiteDB(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	if _, err := reopened.GetByID(ctx, "persisted"); err != nil {
		t.Errorf("expected request to survive reopen: %v", err)
	}
}

func requestIDs(rs []models.RescueRequest) []string {
	ids := make([]string, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.ID)
	}
	return ids
}
