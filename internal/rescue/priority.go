package rescue

import (
	"strings"

	"github.com/mr1hm/go-rescue-network/internal/models"
)

// PriorityForType maps a request type to its dispatch priority.
func PriorityForType(requestType string) models.Priority {
	switch strings.ToLower(strings.TrimSpace(requestType)) {
	case "medicine":
		return models.PriorityHigh
	case "food":
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}
