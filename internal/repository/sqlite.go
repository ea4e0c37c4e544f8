package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mr1hm/go-rescue-network/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// Each connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS rescue_requests (
			id TEXT PRIMARY KEY,
			donor_id TEXT,
			type TEXT NOT NULL,
			priority TEXT NOT NULL,
			start_lon REAL NOT NULL,
			start_lat REAL NOT NULL,
			end_lon REAL NOT NULL,
			end_lat REAL NOT NULL,
			distance_km REAL NOT NULL,
			eta_min REAL NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_rescue_requests_created_at ON rescue_requests(created_at);
		CREATE INDEX IF NOT EXISTS idx_rescue_requests_priority ON rescue_requests(priority);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Add(ctx context.Context, r *models.RescueRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rescue_requests
			(id, donor_id, type, priority, start_lon, start_lat, end_lon, end_lat, distance_km, eta_min, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.DonorID, r.Type, string(r.Priority),
		r.Start.Lng, r.Start.Lat, r.End.Lng, r.End.Lat,
		r.DistanceKm, r.ETAMin, r.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("error inserting rescue request %s: %w", r.ID, err)
	}
	return nil
}

func (s *SQLiteDB) GetByID(ctx context.Context, id string) (*models.RescueRequest, error) {
	row := s.db.QueryRowContext(ctx, selectRequests+` WHERE id = ?`, id)

	r, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: rescue request %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading rescue request %s: %w", id, err)
	}
	return r, nil
}

// ListRequests returns requests newest first.
func (s *SQLiteDB) ListRequests(ctx context.Context, opts Filter) ([]models.RescueRequest, error) {
	var (
		where []string
		args  []any
	)

	if opts.Since != nil {
		where = append(where, "created_at >= ?")
		args = append(args, opts.Since.UnixMilli())
	}
	if opts.Priority != nil {
		where = append(where, "priority = ?")
		args = append(args, string(*opts.Priority))
	}
	if opts.DonorID != "" {
		where = append(where, "donor_id = ?")
		args = append(args, opts.DonorID)
	}

	query := selectRequests
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	if opts.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing rescue requests: %w", err)
	}
	defer rows.Close()

	var results []models.RescueRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning rescue request: %w", err)
		}
		results = append(results, *r)
	}
	return results, rows.Err()
}

func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

const selectRequests = `
	SELECT id, donor_id, type, priority, start_lon, start_lat, end_lon, end_lat, distance_km, eta_min, created_at
	FROM rescue_requests`

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(sc scanner) (*models.RescueRequest, error) {
	var (
		r         models.RescueRequest
		donorID   sql.NullString
		priority  string
		createdAt int64
	)

	err := sc.Scan(
		&r.ID, &donorID, &r.Type, &priority,
		&r.Start.Lng, &r.Start.Lat, &r.End.Lng, &r.End.Lat,
		&r.DistanceKm, &r.ETAMin, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	r.DonorID = donorID.String
	r.Priority = models.Priority(priority)
	r.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &r, nil
}
