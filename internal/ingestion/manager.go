// Package ingestion turns signals from an external crisis feed into open
// crises on the network.
package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mr1hm/go-rescue-network/internal/config"
	"github.com/mr1hm/go-rescue-network/internal/crisis"
	"github.com/mr1hm/go-rescue-network/internal/models"
	"github.com/mr1hm/go-rescue-network/internal/worker"
)

// Raiser registers a crisis. rescue.Network satisfies it.
type Raiser interface {
	RaiseCrisis(c models.Crisis) (models.Crisis, error)
}

type Manager struct {
	cfg    *config.Config
	raiser Raiser
	client *http.Client
	pool   *worker.Pool[models.Crisis]
	wg     sync.WaitGroup

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewManager(cfg *config.Config, raiser Raiser) *Manager {
	return &Manager{
		cfg:    cfg,
		raiser: raiser,
		client: &http.Client{Timeout: 15 * time.Second},
		seen:   make(map[string]struct{}),
	}
}

// markSeen reports whether id is new. A signal is raised at most once, so a
// dismissed crisis is not brought back by the next poll.
func (m *Manager) markSeen(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.seen[id]; ok {
		return false
	}
	m.seen[id] = struct{}{}
	return true
}

func (m *Manager) Start(ctx context.Context) {
	processor := func(ctx context.Context, c models.Crisis) error {
		if !m.markSeen(c.ID) {
			return nil
		}

		if _, err := m.raiser.RaiseCrisis(c); err != nil {
			if errors.Is(err, crisis.ErrDuplicateCrisis) {
				return nil
			}
			slog.Error("error raising crisis", "id", c.ID, "error", err)
			return err
		}

		slog.Info("raised crisis from feed", "id", c.ID, "type", c.Type, "severity", c.Severity)
		return nil
	}

	m.pool = worker.NewPool("ingestion", m.cfg.Worker.Count, m.cfg.Worker.BufferSize, processor)
	m.pool.Start(ctx)

	if m.cfg.Feed.Enabled {
		m.wg.Add(1)
		go m.runPoller(ctx, m.cfg.Feed.URL, m.cfg.Feed.PollInterval)
	}
}

func (m *Manager) runPoller(ctx context.Context, url string, interval time.Duration) {
	defer m.wg.Done()
	slog.Info("starting poller", "url", url, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial poll
	m.poll(ctx, url)

	for {
		select {
		case <-ctx.Done():
			slog.Info("poller shutting down")
			return
		case <-ticker.C:
			m.poll(ctx, url)
		}
	}
}

func (m *Manager) poll(ctx context.Context, url string) {
	slog.Debug("polling crisis feed")

	crises, err := m.pollFeed(ctx, url)
	if err != nil {
		slog.Error("poll failed", "error", err)
		return
	}

	for _, c := range crises {
		if err := m.pool.Submit(ctx, c); err != nil {
			slog.Warn("dropping signal", "id", c.ID, "error", err)
			return
		}
	}

	slog.Debug("poll complete", "count", len(crises))
}

// Stop waits for the poller to exit, then drains the worker pool. Cancel the
// context passed to Start first.
func (m *Manager) Stop() {
	m.wg.Wait()
	if m.pool != nil {
		m.pool.Stop()
	}
	slog.Info("ingestion manager stopped")
}
