package seedvault

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"

	"github.com/MJE43/wheel-of-fortune-go/internal/engine"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	keyring.MockInit()
	return New("wheel-test", filepath.Join(t.TempDir(), "seeds.json"))
}

func TestActiveIsStable(t *testing.T) {
	v := newTestVault(t)

	first, err := v.Active("daily")
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if len(first) != 2*seedBytes {
		t.Fatalf("seed length = %d", len(first))
	}
	second, _ := v.Active("daily")
	if first != second {
		t.Fatal("Active returned a different seed on second call")
	}

	other, _ := v.Active("weekly")
	if other == first {
		t.Fatal("two wheels share a seed")
	}

	hash, err := v.Hash("daily")
	if err != nil {
		t.Fatal(err)
	}
	if hash != engine.HashServerSeed(first) {
		t.Errorf("Hash = %s, want sha256 of active seed", hash)
	}
}

func TestRotateRevealsOldSeed(t *testing.T) {
	v := newTestVault(t)

	if _, err := v.Previous("daily"); !errors.Is(err, keyring.ErrNotFound) {
		t.Fatalf("Previous before rotate = %v", err)
	}

	old, _ := v.Active("daily")
	oldHash, _ := v.Hash("daily")

	rot, err := v.Rotate("daily")
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if rot.Revealed != old || rot.RevealedHash != oldHash {
		t.Errorf("rotation revealed %+v, want seed %s", rot, old)
	}

	current, _ := v.Active("daily")
	if current == old {
		t.Fatal("active seed unchanged after rotate")
	}
	if rot.NextHash != engine.HashServerSeed(current) {
		t.Error("NextHash does not commit to the new active seed")
	}
	prev, err := v.Previous("daily")
	if err != nil || prev != old {
		t.Errorf("Previous = %q, %v", prev, err)
	}
}

func TestForget(t *testing.T) {
	v := newTestVault(t)
	old, _ := v.Active("daily")
	if err := v.Forget("daily"); err != nil {
		t.Fatal(err)
	}
	fresh, _ := v.Active("daily")
	if fresh == old {
		t.Error("Forget kept the seed")
	}
}
