package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func testSpin(wheelID string, index int, amount string, at time.Time) *Spin {
	return &Spin{
		WheelID:       wheelID,
		WinnerIndex:   index,
		WinnerValue:   []string{"A", "B", "C"}[index%3],
		Amount:        decimal.RequireFromString(amount),
		Segments:      3,
		TargetAngle:   365 + 3600,
		DurationMs:    10000,
		Direction:     "clockwise",
		Easing:        "easeOutQuad",
		Source:        SourceRandom,
		EngineVersion: "test",
		CreatedAt:     at,
	}
}

func TestSaveAndGetSpin(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	spin := testSpin("daily", 1, "12.50", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	spin.ServerSeedHash = "hash"
	spin.ClientSeed = "client"
	spin.Nonce = 7
	spin.Source = SourceFair
	spin.SessionID = "sess-1"

	if err := db.SaveSpin(ctx, spin); err != nil {
		t.Fatalf("SaveSpin: %v", err)
	}
	if spin.ID == "" {
		t.Fatal("SaveSpin did not assign an ID")
	}

	got, err := db.GetSpin(ctx, spin.ID)
	if err != nil {
		t.Fatalf("GetSpin: %v", err)
	}
	if got.WheelID != "daily" || got.WinnerIndex != 1 || got.WinnerValue != "B" {
		t.Errorf("unexpected spin: %+v", got)
	}
	if !got.Amount.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("amount = %s", got.Amount)
	}
	if got.Nonce != 7 || got.Source != SourceFair || got.SessionID != "sess-1" {
		t.Errorf("fair fields = %d %s %q", got.Nonce, got.Source, got.SessionID)
	}
	if !got.CreatedAt.Equal(spin.CreatedAt) {
		t.Errorf("created_at = %s, want %s", got.CreatedAt, spin.CreatedAt)
	}
	if got.Easing != "easeOutQuad" || got.TargetAngle != spin.TargetAngle {
		t.Errorf("plan fields = %q %v", got.Easing, got.TargetAngle)
	}
}

func TestGetSpinNotFound(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.GetSpin(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetSpin(missing) = %v, want ErrNotFound", err)
	}
}

func TestListSpins(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if err := db.SaveSpin(ctx, testSpin("daily", i%3, "1", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.SaveSpin(ctx, testSpin("weekly", 0, "1", base)); err != nil {
		t.Fatal(err)
	}

	all, err := db.ListSpins(ctx, SpinsQuery{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListSpins: %v", err)
	}
	if all.TotalCount != 6 || len(all.Spins) != 6 {
		t.Errorf("Expected 6 spins, got total=%d len=%d", all.TotalCount, len(all.Spins))
	}

	page, err := db.ListSpins(ctx, SpinsQuery{WheelID: "daily", Page: 1, PerPage: 2})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalCount != 5 || page.TotalPages != 3 || len(page.Spins) != 2 {
		t.Errorf("page 1 = total %d pages %d len %d", page.TotalCount, page.TotalPages, len(page.Spins))
	}
	if !page.Spins[0].CreatedAt.After(page.Spins[1].CreatedAt) {
		t.Error("spins not ordered newest first")
	}

	last, err := db.ListSpins(ctx, SpinsQuery{WheelID: "daily", Page: 3, PerPage: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(last.Spins) != 1 {
		t.Errorf("last page len = %d", len(last.Spins))
	}

	empty, err := db.ListSpins(ctx, SpinsQuery{WheelID: "nope"})
	if err != nil {
		t.Fatal(err)
	}
	if empty.Spins == nil || len(empty.Spins) != 0 || empty.PerPage != defaultPerPage || empty.Page != 1 {
		t.Errorf("empty page = %+v", empty)
	}
}

func TestWheelStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, s := range []*Spin{
		testSpin("daily", 0, "10", now),
		testSpin("daily", 0, "10", now),
		testSpin("daily", 2, "0.25", now),
		testSpin("daily", 0, "5", now), // amount changed after a config reload
		testSpin("weekly", 1, "100", now),
	} {
		if err := db.SaveSpin(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := db.WheelStats(ctx, "daily")
	if err != nil {
		t.Fatalf("WheelStats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("stats = %+v, want 2 indexes", stats)
	}
	if stats[0].WinnerIndex != 0 || stats[0].Count != 3 || !stats[0].Payout.Equal(decimal.NewFromInt(25)) {
		t.Errorf("index 0 = %+v", stats[0])
	}
	if stats[1].WinnerIndex != 2 || stats[1].Count != 1 || stats[1].Payout.String() != "0.25" {
		t.Errorf("index 2 = %+v", stats[1])
	}

	none, err := db.WheelStats(ctx, "nope")
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("empty stats = %v, %v", none, err)
	}
}

func TestNextNonce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	n, err := db.NextNonce(ctx, "daily", "hash-a")
	if err != nil || n != 1 {
		t.Fatalf("first NextNonce = %d, %v", n, err)
	}

	for i := uint64(1); i <= 3; i++ {
		s := testSpin("daily", 0, "1", time.Now())
		s.Source = SourceFair
		s.ServerSeedHash = "hash-a"
		s.Nonce = i
		if err := db.SaveSpin(ctx, s); err != nil {
			t.Fatal(err)
		}
	}
	// Random spins and other seeds do not advance the counter.
	if err := db.SaveSpin(ctx, testSpin("daily", 0, "1", time.Now())); err != nil {
		t.Fatal(err)
	}

	if n, _ := db.NextNonce(ctx, "daily", "hash-a"); n != 4 {
		t.Errorf("NextNonce(hash-a) = %d, want 4", n)
	}
	if n, _ := db.NextNonce(ctx, "daily", "hash-b"); n != 1 {
		t.Errorf("NextNonce(hash-b) = %d, want 1", n)
	}

	dup := testSpin("daily", 1, "1", time.Now())
	dup.Source = SourceFair
	dup.ServerSeedHash = "hash-a"
	dup.Nonce = 2
	if err := db.SaveSpin(ctx, dup); err == nil {
		t.Error("reused fair nonce was accepted")
	}
}

func TestMigrationIdempotency(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test_migration_idempotency.db")
	db, err := NewSQLiteDB(path)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := db.Migrate(ctx); err != nil {
			t.Fatalf("Failed to migrate (pass %d): %v", i+1, err)
		}
	}

	spin := testSpin("daily", 0, "1", time.Now())
	if err := db.SaveSpin(ctx, spin); err != nil {
		t.Fatalf("Failed to save spin after multiple migrations: %v", err)
	}
	if _, err := db.GetSpin(ctx, spin.ID); err != nil {
		t.Fatalf("Failed to get spin after multiple migrations: %v", err)
	}
}

func TestSpinsQueryNormalized(t *testing.T) {
	q := SpinsQuery{Page: -1, PerPage: 10000}.normalized()
	if q.Page != 1 || q.PerPage != maxPerPage {
		t.Errorf("normalized = %+v", q)
	}
	if q := (SpinsQuery{Page: 3, PerPage: 20}).normalized(); q.offset() != 40 {
		t.Errorf("offset = %d", q.offset())
	}
}
