package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mr1hm/go-rescue-network/internal/models"
)

type feedResponse struct {
	Signals []feedSignal `json:"signals"`
}

type feedSignal struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Timestamp   int64  `json:"timestamp"` // unix millis
	VehicleID   string `json:"vehicle_id"`
}

func (m *Manager) pollFeed(ctx context.Context, url string) ([]models.Crisis, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	crises := make([]models.Crisis, 0, len(data.Signals))
	for _, s := range data.Signals {
		c := models.Crisis{
			ID:          "feed_" + s.ID,
			Type:        models.CrisisType(s.Type),
			Severity:    models.CrisisSeverity(s.Severity),
			Title:       s.Title,
			Description: s.Description,
			Location:    s.Location,
			VehicleID:   s.VehicleID,
		}
		if s.ID == "" || !c.Type.Valid() || !c.Severity.Valid() {
			slog.Debug("skipping malformed signal", "id", s.ID, "type", s.Type, "severity", s.Severity)
			continue
		}
		if s.Timestamp > 0 {
			c.Timestamp = time.UnixMilli(s.Timestamp)
		}
		crises = append(crises, c)
	}

	return crises, nil
}
