// Package audit keeps role-fit score snapshots in SQLite. The engine never
// reads these back into a computation; they exist for history and review.
package audit

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tempocal/internal/model"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// Config configures the snapshot store.
type Config struct {
	Path        string
	BusyTimeout time.Duration // 0 means driver default
}

// Snapshot is one persisted role-fit result.
type Snapshot struct {
	ID              int64
	TakenAt         time.Time
	OwnerID         string
	Role            string
	Zone            string
	WeekStart       string
	Score           int
	Breakdown       model.RoleFitBreakdown
	Recommendations []string
}

// Store is a SQLite-backed snapshot log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the snapshot database and applies
// migrations.
func Open(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("audit: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	st := &Store{db: db}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *Store) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append records one snapshot. A zero TakenAt is stamped with the current
// time.
func (s *Store) Append(ctx context.Context, snap Snapshot) error {
	if s == nil || s.db == nil {
		return errors.New("audit: store is closed")
	}
	if snap.TakenAt.IsZero() {
		snap.TakenAt = time.Now()
	}

	breakdown, err := json.Marshal(snap.Breakdown)
	if err != nil {
		return err
	}
	recs, err := json.Marshal(snap.Recommendations)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rolefit_snapshots
			(taken_at, owner_id, role, zone, week_start, score, breakdown_json, recommendations_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.TakenAt.UTC(), snap.OwnerID, snap.Role, snap.Zone, snap.WeekStart,
		snap.Score, string(breakdown), string(recs),
	)
	return err
}

// Recent returns up to limit snapshots for an owner, newest first. An empty
// ownerID returns snapshots across all owners.
func (s *Store) Recent(ctx context.Context, ownerID string, limit int) ([]Snapshot, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("audit: store is closed")
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, taken_at, owner_id, role, zone, week_start, score, breakdown_json, recommendations_json
		FROM rolefit_snapshots`
	args := make([]any, 0, 2)
	if ownerID != "" {
		query += ` WHERE owner_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY taken_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Snapshot, 0, limit)
	for rows.Next() {
		var snap Snapshot
		var breakdown, recs string
		if err := rows.Scan(&snap.ID, &snap.TakenAt, &snap.OwnerID, &snap.Role, &snap.Zone,
			&snap.WeekStart, &snap.Score, &breakdown, &recs); err != nil {
			return nil, err
		}
		// Tolerate malformed rows rather than failing the whole listing.
		_ = json.Unmarshal([]byte(breakdown), &snap.Breakdown)
		_ = json.Unmarshal([]byte(recs), &snap.Recommendations)
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Prune deletes snapshots taken before the cutoff and reports how many rows
// went away.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("audit: store is closed")
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM rolefit_snapshots WHERE taken_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
