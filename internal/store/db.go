package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a spin ID does not exist.
var ErrNotFound = errors.New("store: not found")

const (
	defaultPerPage = 50
	maxPerPage     = 500
)

// DB represents the database interface
type DB interface {
	Close() error
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	SaveSpin(ctx context.Context, spin *Spin) error
	GetSpin(ctx context.Context, id string) (*Spin, error)
	ListSpins(ctx context.Context, query SpinsQuery) (*SpinsPage, error)
	WheelStats(ctx context.Context, wheelID string) ([]IndexStat, error)
	// NextNonce is one past the highest fair nonce used with this server seed hash.
	NextNonce(ctx context.Context, wheelID, serverSeedHash string) (uint64, error)
}

// Source records how a spin's winner was chosen.
type Source string

const (
	SourceFair   Source = "fair"
	SourceRandom Source = "random"
	SourcePinned Source = "pinned"
)

// Spin is one settled spin.
type Spin struct {
	ID             string          `json:"id" db:"id"`
	WheelID        string          `json:"wheel_id" db:"wheel_id"`
	SessionID      string          `json:"session_id,omitempty" db:"session_id"`
	WinnerIndex    int             `json:"winner_index" db:"winner_index"`
	WinnerValue    string          `json:"winner_value" db:"winner_value"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	Segments       int             `json:"segments" db:"segments"`
	TargetAngle    float64         `json:"target_angle" db:"target_angle"`
	DurationMs     int64           `json:"duration_ms" db:"duration_ms"`
	Direction      string          `json:"direction" db:"direction"`
	Easing         string          `json:"easing" db:"easing"`
	ServerSeedHash string          `json:"server_seed_hash,omitempty" db:"server_seed_hash"`
	ClientSeed     string          `json:"client_seed,omitempty" db:"client_seed"`
	Nonce          uint64          `json:"nonce,omitempty" db:"nonce"`
	Source         Source          `json:"source" db:"source"`
	EngineVersion  string          `json:"engine_version" db:"engine_version"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// SpinsQuery represents query parameters for listing spins
type SpinsQuery struct {
	WheelID string `json:"wheel_id,omitempty"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

func (q SpinsQuery) normalized() SpinsQuery {
	if q.PerPage <= 0 {
		q.PerPage = defaultPerPage
	}
	if q.PerPage > maxPerPage {
		q.PerPage = maxPerPage
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return q
}

func (q SpinsQuery) offset() int {
	return (q.Page - 1) * q.PerPage
}

// SpinsPage represents paginated spins response
type SpinsPage struct {
	Spins      []Spin `json:"spins"`
	TotalCount int    `json:"total_count"`
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
	TotalPages int    `json:"total_pages"`
}

func newSpinsPage(spins []Spin, total int, q SpinsQuery) *SpinsPage {
	if spins == nil {
		spins = []Spin{}
	}
	return &SpinsPage{
		Spins:      spins,
		TotalCount: total,
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalPages: (total + q.PerPage - 1) / q.PerPage,
	}
}

// IndexStat aggregates the spins of one wheel that landed on one segment.
type IndexStat struct {
	WheelID     string          `json:"wheel_id"`
	WinnerIndex int             `json:"winner_index"`
	WinnerValue string          `json:"winner_value"`
	Count       int64           `json:"count"`
	Payout      decimal.Decimal `json:"payout"`
}

// prepareSpin fills in the fields every backend defaults the same way.
func prepareSpin(s *Spin, newID func() string) {
	if s.ID == "" {
		s.ID = newID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.Source == "" {
		s.Source = SourceRandom
	}
}

// rowScanner is satisfied by database/sql and pgx rows alike.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSpin reads the columns listed by spinColumns, with amount as text.
func scanSpin(row rowScanner) (*Spin, error) {
	var s Spin
	var amount, source string
	var nonce int64
	err := row.Scan(
		&s.ID, &s.WheelID, &s.SessionID, &s.WinnerIndex, &s.WinnerValue, &amount,
		&s.Segments, &s.TargetAngle, &s.DurationMs, &s.Direction, &s.Easing,
		&s.ServerSeedHash, &s.ClientSeed, &nonce, &source, &s.EngineVersion, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if s.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("spin %s amount %q: %w", s.ID, amount, err)
	}
	s.Nonce = uint64(nonce)
	s.Source = Source(source)
	return &s, nil
}

func spinColumns(amountExpr string) []string {
	return []string{
		"id", "wheel_id", "session_id", "winner_index", "winner_value", amountExpr,
		"segments", "target_angle", "duration_ms", "direction", "easing",
		"server_seed_hash", "client_seed", "nonce", "source", "engine_version", "created_at",
	}
}

// statRow is one (index, amount) group; backends fold them into IndexStats.
type statRow struct {
	index  int
	value  string
	amount string
	count  int64
}

func foldStats(wheelID string, rows []statRow) ([]IndexStat, error) {
	var out []IndexStat
	for _, r := range rows {
		amount, err := decimal.NewFromString(r.amount)
		if err != nil {
			return nil, fmt.Errorf("stats amount %q: %w", r.amount, err)
		}
		payout := amount.Mul(decimal.NewFromInt(r.count))
		if n := len(out); n > 0 && out[n-1].WinnerIndex == r.index {
			out[n-1].Count += r.count
			out[n-1].Payout = out[n-1].Payout.Add(payout)
			continue
		}
		out = append(out, IndexStat{
			WheelID:     wheelID,
			WinnerIndex: r.index,
			WinnerValue: r.value,
			Count:       r.count,
			Payout:      payout,
		})
	}
	if out == nil {
		out = []IndexStat{}
	}
	return out, nil
}
