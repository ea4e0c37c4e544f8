package rescue

import (
	"time"

	"github.com/mr1hm/go-rescue-network/internal/expiry"
	"github.com/mr1hm/go-rescue-network/internal/models"
)

type ClassifiedItem struct {
	models.PerishableItem
	Tier           expiry.Tier `json:"tier"`
	HoursRemaining float64     `json:"hoursRemaining"`
	Label          string      `json:"label"`
}

// DonorInventory is a donor with each item classified at a point in time.
type DonorInventory struct {
	models.Donor
	Items []ClassifiedItem `json:"items"`
}

type Stats struct {
	TotalDonors         int `json:"totalDonors"`
	TotalNGOs           int `json:"totalNGOs"`
	TotalVehicles       int `json:"totalVehicles"`
	ActiveVehicles      int `json:"activeVehicles"`
	ItemsInTransit      int `json:"itemsInTransit"`
	CompletedDeliveries int `json:"completedDeliveries"`
	TotalItems          int `json:"totalItems"`
	CriticalItems       int `json:"criticalItems"`
	WarningItems        int `json:"warningItems"`
	ExpiredItems        int `json:"expiredItems"`
	ActiveCrises        int `json:"activeCrises"`
}

func classifyItems(items []models.PerishableItem, now time.Time) []ClassifiedItem {
	out := make([]ClassifiedItem, len(items))
	for i, item := range items {
		r := expiry.Classify(item.Expiry, now)
		out[i] = ClassifiedItem{
			PerishableItem: item,
			Tier:           r.Tier,
			HoursRemaining: r.HoursRemaining,
			Label:          r.Label,
		}
	}
	return out
}

// Inventory classifies every donor item against now.
func (n *Network) Inventory(now time.Time) []DonorInventory {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]DonorInventory, len(n.donors))
	for i, d := range n.donors {
		out[i] = DonorInventory{Donor: d, Items: classifyItems(d.Items, now)}
	}
	return out
}

// Stats aggregates the dashboard counters. Nothing is cached; tiers depend
// on now.
func (n *Network) Stats(now time.Time) Stats {
	n.mu.Lock()
	defer n.mu.Unlock()

	s := Stats{
		TotalDonors:   len(n.donors),
		TotalNGOs:     len(n.ngos),
		TotalVehicles: len(n.vehicles),
		ActiveCrises:  n.crises.Len(),
	}

	for _, v := range n.vehicles {
		if v.Status == models.VehicleStatusActive {
			s.ActiveVehicles++
		}
		s.ItemsInTransit += v.ItemsOnBoard
	}

	for _, stop := range n.stops {
		if stop.Type == models.StopTypeNGO && stop.Status == models.StopStatusCompleted {
			s.CompletedDeliveries++
		}
	}

	for _, d := range n.donors {
		for _, item := range d.Items {
			s.TotalItems++
			switch expiry.Classify(item.Expiry, now).Tier {
			case expiry.TierExpired:
				s.ExpiredItems++
			case expiry.TierCritical:
				s.CriticalItems++
			case expiry.TierWarning:
				s.WarningItems++
			}
		}
	}

	return s
}
