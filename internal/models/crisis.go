package models

import "time"

type CrisisType string

const (
	CrisisTypeTraffic   CrisisType = "traffic"
	CrisisTypeBreakdown CrisisType = "breakdown"
	CrisisTypeDelay     CrisisType = "delay"
)

func (t CrisisType) Valid() bool {
	switch t {
	case CrisisTypeTraffic, CrisisTypeBreakdown, CrisisTypeDelay:
		return true
	}
	return false
}

type CrisisSeverity string

const (
	CrisisSeverityLow    CrisisSeverity = "low"
	CrisisSeverityMedium CrisisSeverity = "medium"
	CrisisSeverityHigh   CrisisSeverity = "high"
)

func (s CrisisSeverity) Valid() bool {
	switch s {
	case CrisisSeverityLow, CrisisSeverityMedium, CrisisSeverityHigh:
		return true
	}
	return false
}

// Crisis is a transient operational event that stays open until it is
// dismissed or resolved.
type Crisis struct {
	ID          string         `json:"id"`
	Type        CrisisType     `json:"type"`
	Severity    CrisisSeverity `json:"severity"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Location    string         `json:"location"`
	Timestamp   time.Time      `json:"timestamp"`
	VehicleID   string         `json:"vehicleId,omitempty"` // weak reference, not checked
}

type CrisisEventKind string

const (
	CrisisRaised    CrisisEventKind = "raised"
	CrisisDismissed CrisisEventKind = "dismissed"
	CrisisResolved  CrisisEventKind = "resolved"
)

// CrisisEvent describes a change to the set of open crises.
type CrisisEvent struct {
	Kind   CrisisEventKind `json:"kind"`
	Crisis Crisis          `json:"crisis"`
	At     time.Time       `json:"at"`
}
