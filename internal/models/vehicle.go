package models

import "time"

type VehicleStatus string

const (
	VehicleStatusActive    VehicleStatus = "active"
	VehicleStatusIdle      VehicleStatus = "idle"
	VehicleStatusBreakdown VehicleStatus = "breakdown"
)

func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleStatusActive, VehicleStatusIdle, VehicleStatusBreakdown:
		return true
	}
	return false
}

type Vehicle struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`  // e.g. "Vehicle #1 - VN-2345"
	Plate        string        `json:"plate"` // registration, referenced by Crisis.VehicleID
	Driver       string        `json:"driver"`
	Status       VehicleStatus `json:"status"`
	Location     Coordinate    `json:"location"`
	CurrentStop  string        `json:"currentStop,omitempty"`
	ItemsOnBoard int           `json:"itemsOnBoard"`
	LastUpdate   time.Time     `json:"lastUpdate"`
}
