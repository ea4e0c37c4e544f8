package crisis

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mr1hm/go-rescue-network/internal/models"
)

func testCrises() []models.Crisis {
	ts := time.Date(2026, 2, 7, 14, 0, 0, 0, time.UTC)
	return []models.Crisis{
		{
			ID:          "crisis-1",
			Type:        models.CrisisTypeBreakdown,
			Severity:    models.CrisisSeverityHigh,
			Title:       "Vehicle Breakdown",
			Description: "Mechanical failure near Karol Bagh.",
			Location:    "Karol Bagh, New Delhi",
			Timestamp:   ts,
			VehicleID:   "VN-2347",
		},
		{
			ID:          "crisis-2",
			Type:        models.CrisisTypeTraffic,
			Severity:    models.CrisisSeverityMedium,
			Title:       "Heavy Traffic Alert",
			Description: "Congestion on route to Lajpat Nagar.",
			Location:    "Ring Road, South Delhi",
			Timestamp:   ts,
		},
	}
}

func ids(crises []models.Crisis) []string {
	out := make([]string, 0, len(crises))
	for _, c := range crises {
		out = append(out, c.ID)
	}
	return out
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(testCrises()...)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	return r
}

func TestRegistry_ResolveKeepsRelativeOrder(t *testing.T) {
	r := newTestRegistry(t)

	out := r.Resolve("crisis-1")
	if !out.Removed {
		t.Fatal("expected crisis-1 to be removed")
	}
	if out.Action != ActionResolve {
		t.Errorf("expected action resolve, got %s", out.Action)
	}
	if out.Crisis == nil || out.Crisis.ID != "crisis-1" {
		t.Errorf("expected removed crisis in outcome, got %+v", out.Crisis)
	}

	if diff := cmp.Diff([]string{"crisis-2"}, ids(r.List())); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_AddThenDismissRoundTrip(t *testing.T) {
	r := newTestRegistry(t)
	before := r.List()

	c := models.Crisis{ID: "crisis-3", Type: models.CrisisTypeDelay, Severity: models.CrisisSeverityLow}
	if err := r.Add(c); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if r.Len() != 3 {
		t.Fatalf("expected 3 crises, got %d", r.Len())
	}

	out := r.Dismiss(c.ID)
	if !out.Removed || out.Action != ActionDismiss {
		t.Errorf("unexpected outcome: %+v", out)
	}

	if diff := cmp.Diff(before, r.List()); diff != "" {
		t.Errorf("registry changed after add+dismiss (-want +got):\n%s", diff)
	}
}

func TestRegistry_UnknownIDIsNoOp(t *testing.T) {
	r := newTestRegistry(t)
	before := r.List()

	for _, out := range []Outcome{r.Dismiss("nope"), r.Resolve("nope"), r.Dismiss("")} {
		if out.Removed {
			t.Errorf("expected no removal, got %+v", out)
		}
		if out.Crisis != nil {
			t.Errorf("expected nil crisis, got %+v", out.Crisis)
		}
	}

	if diff := cmp.Diff(before, r.List()); diff != "" {
		t.Errorf("registry changed (-want +got):\n%s", diff)
	}
}

func TestRegistry_RepeatedDismissIsIdempotent(t *testing.T) {
	r := newTestRegistry(t)

	first := r.Dismiss("crisis-2")
	second := r.Dismiss("crisis-2")
	third := r.Resolve("crisis-2")

	if !first.Removed {
		t.Error("first dismiss should remove")
	}
	if second.Removed || third.Removed {
		t.Error("later calls should be no-ops")
	}
	if diff := cmp.Diff([]string{"crisis-1"}, ids(r.List())); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_AddRejectsDuplicateAndEmptyID(t *testing.T) {
	r := newTestRegistry(t)

	err := r.Add(models.Crisis{ID: "crisis-1"})
	if !errors.Is(err, ErrDuplicateCrisis) {
		t.Errorf("expected ErrDuplicateCrisis, got %v", err)
	}

	err = r.Add(models.Crisis{})
	if !errors.Is(err, ErrInvalidCrisis) {
		t.Errorf("expected ErrInvalidCrisis, got %v", err)
	}

	if r.Len() != 2 {
		t.Errorf("expected registry unchanged, got %d crises", r.Len())
	}

	// Once removed, the id may be reused.
	r.Resolve("crisis-1")
	if err := r.Add(models.Crisis{ID: "crisis-1"}); err != nil {
		t.Errorf("expected re-add after resolve to succeed, got %v", err)
	}
	if diff := cmp.Diff([]string{"crisis-2", "crisis-1"}, ids(r.List())); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRegistry_RejectsDuplicateSeed(t *testing.T) {
	seed := testCrises()
	seed = append(seed, seed[0])

	if _, err := NewRegistry(seed...); !errors.Is(err, ErrDuplicateCrisis) {
		t.Errorf("expected ErrDuplicateCrisis, got %v", err)
	}
}

func TestRegistry_ListIsSnapshot(t *testing.T) {
	r := newTestRegistry(t)

	snap := r.List()
	snap[0].Title = "mutated"
	r.Dismiss("crisis-2")

	if len(snap) != 2 {
		t.Errorf("snapshot should not shrink, got %d", len(snap))
	}
	if got := r.List()[0].Title; got != "Vehicle Breakdown" {
		t.Errorf("registry entry mutated through snapshot: %q", got)
	}
}

func TestRegistry_EmptyListIsNonNil(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := r.List(); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", got)
	}
	if got := SortBySeverity(r.List()); got == nil {
		t.Error("expected sorted empty list to be non-nil")
	}
}

func TestSortBySeverity(t *testing.T) {
	in := []models.Crisis{
		{ID: "a", Severity: models.CrisisSeverityLow},
		{ID: "b", Severity: models.CrisisSeverityHigh},
		{ID: "c", Severity: models.CrisisSeverityMedium},
		{ID: "d", Severity: models.CrisisSeverityHigh},
		{ID: "e", Severity: models.CrisisSeverityLow},
	}

	got := SortBySeverity(in)

	if diff := cmp.Diff([]string{"b", "d", "c", "a", "e"}, ids(got)); diff != "" {
		t.Errorf("SortBySeverity mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d", "e"}, ids(in)); diff != "" {
		t.Errorf("input was reordered (-want +got):\n%s", diff)
	}
}
