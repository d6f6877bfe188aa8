package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements the DB interface using SQLite
type SQLiteDB struct {
	db *sql.DB
}

var _ DB = (*SQLiteDB)(nil)

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; also keeps a :memory: database on a single connection.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Ping checks the connection is usable.
func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate runs database migrations
func (s *SQLiteDB) Migrate(ctx context.Context) error {
	baseMigrations := []string{
		`CREATE TABLE IF NOT EXISTS spins (
			id TEXT PRIMARY KEY,
			wheel_id TEXT NOT NULL,
			winner_index INTEGER NOT NULL,
			winner_value TEXT NOT NULL,
			amount TEXT NOT NULL DEFAULT '0',
			segments INTEGER NOT NULL,
			target_angle REAL NOT NULL,
			duration_ms INTEGER NOT NULL,
			direction TEXT NOT NULL,
			server_seed_hash TEXT NOT NULL DEFAULT '',
			client_seed TEXT NOT NULL DEFAULT '',
			nonce INTEGER NOT NULL DEFAULT 0,
			source TEXT NOT NULL,
			engine_version TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, migration := range baseMigrations {
		if _, err := s.db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("base migration failed: %w", err)
		}
	}

	// Columns added after the first schema.
	alterMigrations := []string{
		`ALTER TABLE spins ADD COLUMN easing TEXT NOT NULL DEFAULT ''`,
		`ALTER TABLE spins ADD COLUMN session_id TEXT NOT NULL DEFAULT ''`,
	}

	for _, migration := range alterMigrations {
		if _, err := s.db.ExecContext(ctx, migration); err != nil {
			if !isDuplicateColumnError(err) {
				return fmt.Errorf("alter migration failed: %w", err)
			}
		}
	}

	indexMigrations := []string{
		`CREATE INDEX IF NOT EXISTS idx_spins_created_at ON spins(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_spins_wheel_created ON spins(wheel_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_spins_wheel_winner ON spins(wheel_id, winner_index)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_spins_fair_nonce
			ON spins(wheel_id, server_seed_hash, nonce) WHERE source = 'fair'`,
	}

	for _, migration := range indexMigrations {
		if _, err := s.db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("index migration failed: %w", err)
		}
	}

	return nil
}

// isDuplicateColumnError reports the error SQLite gives when an ALTER already ran.
func isDuplicateColumnError(err error) bool {
	return strings.Contains(err.Error(), "duplicate column name")
}

// SaveSpin saves a settled spin to the database
func (s *SQLiteDB) SaveSpin(ctx context.Context, spin *Spin) error {
	prepareSpin(spin, func() string { return uuid.New().String() })

	query := `INSERT INTO spins (
		id, wheel_id, session_id, winner_index, winner_value, amount,
		segments, target_angle, duration_ms, direction, easing,
		server_seed_hash, client_seed, nonce, source, engine_version, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		spin.ID, spin.WheelID, spin.SessionID, spin.WinnerIndex, spin.WinnerValue, spin.Amount.String(),
		spin.Segments, spin.TargetAngle, spin.DurationMs, spin.Direction, spin.Easing,
		spin.ServerSeedHash, spin.ClientSeed, int64(spin.Nonce), string(spin.Source), spin.EngineVersion,
		spin.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save spin: %w", err)
	}
	return nil
}

// GetSpin retrieves a spin by ID
func (s *SQLiteDB) GetSpin(ctx context.Context, id string) (*Spin, error) {
	query := `SELECT ` + strings.Join(spinColumns("amount"), ", ") + ` FROM spins WHERE id = ?`

	spin, err := scanSpin(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get spin: %w", err)
	}
	return spin, nil
}

// ListSpins retrieves spins with pagination and filtering, newest first
func (s *SQLiteDB) ListSpins(ctx context.Context, query SpinsQuery) (*SpinsPage, error) {
	query = query.normalized()

	whereClause := ""
	args := []interface{}{}
	if query.WheelID != "" {
		whereClause = "WHERE wheel_id = ?"
		args = append(args, query.WheelID)
	}

	var totalCount int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM spins "+whereClause, args...).Scan(&totalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to get total count: %w", err)
	}

	mainQuery := `SELECT ` + strings.Join(spinColumns("amount"), ", ") + `
		FROM spins ` + whereClause + `
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`
	args = append(args, query.PerPage, query.offset())

	rows, err := s.db.QueryContext(ctx, mainQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query spins: %w", err)
	}
	defer rows.Close()

	var spins []Spin
	for rows.Next() {
		spin, err := scanSpin(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan spin: %w", err)
		}
		spins = append(spins, *spin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating spins: %w", err)
	}

	return newSpinsPage(spins, totalCount, query), nil
}

// WheelStats counts landings and sums payouts per segment
func (s *SQLiteDB) WheelStats(ctx context.Context, wheelID string) ([]IndexStat, error) {
	query := `SELECT winner_index, MAX(winner_value), amount, COUNT(*)
		FROM spins WHERE wheel_id = ?
		GROUP BY winner_index, amount
		ORDER BY winner_index`

	rows, err := s.db.QueryContext(ctx, query, wheelID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var groups []statRow
	for rows.Next() {
		var r statRow
		if err := rows.Scan(&r.index, &r.value, &r.amount, &r.count); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		groups = append(groups, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stats: %w", err)
	}
	return foldStats(wheelID, groups)
}

// NextNonce returns the nonce for the next fair spin under serverSeedHash, starting at 1.
func (s *SQLiteDB) NextNonce(ctx context.Context, wheelID, serverSeedHash string) (uint64, error) {
	var last int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(nonce), 0) FROM spins WHERE wheel_id = ? AND server_seed_hash = ? AND source = 'fair'`,
		wheelID, serverSeedHash,
	).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("failed to read nonce: %w", err)
	}
	return uint64(last) + 1, nil
}
