package models

import "time"

type StopType string

const (
	StopTypeDonor StopType = "donor"
	StopTypeNGO   StopType = "ngo"
)

type StopStatus string

const (
	StopStatusPending    StopStatus = "pending"
	StopStatusInProgress StopStatus = "in-progress"
	StopStatusCompleted  StopStatus = "completed"
)

// RouteStop is a scheduled pickup or dropoff. ETA and distance are display
// strings taken from fixtures.
type RouteStop struct {
	ID       string           `json:"id"`
	Type     StopType         `json:"type"`
	Name     string           `json:"name"`
	Address  string           `json:"address"`
	Items    []PerishableItem `json:"items"`
	ETA      string           `json:"eta"`
	Status   StopStatus       `json:"status"`
	Distance string           `json:"distance"`
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

type RescueRequest struct {
	ID         string     `json:"id"`
	DonorID    string     `json:"donorId,omitempty"`
	Type       string     `json:"type"` // food / medicine / other
	Priority   Priority   `json:"priority"`
	Start      Coordinate `json:"start"`
	End        Coordinate `json:"end"`
	DistanceKm float64    `json:"distanceKm"`
	ETAMin     float64    `json:"etaMin"`
	CreatedAt  time.Time  `json:"createdAt"`
}
