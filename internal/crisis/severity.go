package crisis

import (
	"slices"

	"github.com/mr1hm/go-rescue-network/internal/models"
)

// SeverityRank orders severities high > medium > low. Unknown severities
// rank below low.
func SeverityRank(s models.CrisisSeverity) int {
	switch s {
	case models.CrisisSeverityHigh:
		return 3
	case models.CrisisSeverityMedium:
		return 2
	case models.CrisisSeverityLow:
		return 1
	default:
		return 0
	}
}

// SortBySeverity returns a copy ordered most severe first. Crises of equal
// severity keep their relative order.
func SortBySeverity(crises []models.Crisis) []models.Crisis {
	sorted := append(make([]models.Crisis, 0, len(crises)), crises...)
	slices.SortStableFunc(sorted, func(a, b models.Crisis) int {
		return SeverityRank(b.Severity) - SeverityRank(a.Severity)
	})
	return sorted
}
