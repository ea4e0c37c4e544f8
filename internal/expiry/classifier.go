// Package expiry classifies perishable items by the time left before they
// expire.
package expiry

import (
	"fmt"
	"time"
)

type Tier string

const (
	TierExpired  Tier = "expired"
	TierCritical Tier = "critical"
	TierWarning  Tier = "warning"
	TierSafe     Tier = "safe"
)

const (
	// CriticalWindow is the upper (exclusive) bound of the critical tier.
	CriticalWindow = 4 * time.Hour
	// WarningWindow is the upper (exclusive) bound of the warning tier.
	WarningWindow = 12 * time.Hour
)

func (t Tier) String() string {
	return string(t)
}

func (t Tier) Valid() bool {
	switch t {
	case TierExpired, TierCritical, TierWarning, TierSafe:
		return true
	}
	return false
}

// Rank orders tiers by urgency; expired is the most urgent.
func (t Tier) Rank() int {
	switch t {
	case TierExpired:
		return 3
	case TierCritical:
		return 2
	case TierWarning:
		return 1
	default:
		return 0
	}
}

type Result struct {
	Tier           Tier          `json:"tier"`
	Remaining      time.Duration `json:"-"`
	HoursRemaining float64       `json:"hoursRemaining"` // negative once expired
	Label          string        `json:"label"`
}

// Classify maps the time between now and expiry onto a tier. Intervals are
// half-open with the lower bound inclusive, so exactly 0h is critical, 4h is
// warning and 12h is safe.
func Classify(expiry, now time.Time) Result {
	remaining := expiry.Sub(now)

	r := Result{
		Remaining:      remaining,
		HoursRemaining: remaining.Hours(),
	}

	switch {
	case remaining < 0:
		r.Tier = TierExpired
		r.Label = "Expired"
		return r
	case remaining < CriticalWindow:
		r.Tier = TierCritical
	case remaining < WarningWindow:
		r.Tier = TierWarning
	default:
		r.Tier = TierSafe
	}

	// remaining is non-negative here, so integer division floors.
	r.Label = fmt.Sprintf("%dh remaining", int64(remaining/time.Hour))
	return r
}

// Classifier classifies against an injected clock. The zero value uses the
// wall clock.
type Classifier struct {
	now func() time.Time
}

func NewClassifier(now func() time.Time) *Classifier {
	return &Classifier{now: now}
}

func (c *Classifier) Now() time.Time {
	if c == nil || c.now == nil {
		return time.Now()
	}
	return c.now()
}

func (c *Classifier) Classify(expiry time.Time) Result {
	return Classify(expiry, c.Now())
}
