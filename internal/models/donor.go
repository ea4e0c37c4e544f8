package models

import "time"

type PerishableItem struct {
	Name     string    `json:"name"`
	Quantity int       `json:"quantity"` // kilograms, always > 0
	Expiry   time.Time `json:"expiry"`
}

type Donor struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Address  string           `json:"address"`
	Location Coordinate       `json:"location"`
	Items    []PerishableItem `json:"items"`
}

// NGO is a distribution center receiving goods for redistribution.
type NGO struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Address       string     `json:"address"`
	Location      Coordinate `json:"location"`
	ContactPerson string     `json:"contactPerson,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	Email         string     `json:"email,omitempty"`
	Capacity      *int       `json:"capacity,omitempty"`
}
