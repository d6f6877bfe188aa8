package seedvault

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestKeyringStoreSetGetDelete(t *testing.T) {
	keyring.MockInit()
	k := NewKeyringStore("wheel-test", filepath.Join(t.TempDir(), "fallback_seeds.json"))

	if err := k.setSecret("daily", partActive, "seed-1"); err != nil {
		t.Fatalf("setSecret: %v", err)
	}
	got, err := k.getSecret("daily", partActive)
	if err != nil {
		t.Fatalf("getSecret: %v", err)
	}
	if got != "seed-1" {
		t.Fatalf("unexpected seed: %q", got)
	}

	if err := k.DeleteAll("daily"); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if _, err := k.getSecret("daily", partActive); !errors.Is(err, keyring.ErrNotFound) {
		t.Fatalf("getSecret after delete = %v, want ErrNotFound", err)
	}
}

func TestKeyringStoreRequiresWheelID(t *testing.T) {
	keyring.MockInit()
	k := NewKeyringStore("", "")
	if err := k.setSecret("  ", partActive, "x"); err == nil {
		t.Fatal("expected error for blank wheel id")
	}
	if _, err := k.getSecret("", partActive); err == nil {
		t.Fatal("expected error for blank wheel id")
	}
}

func TestKeyringStoreFallback(t *testing.T) {
	keyring.MockInitWithError(errors.New("keyring backend not available"))
	defer keyring.MockInit()

	path := filepath.Join(t.TempDir(), "nested", "fallback_seeds.json")
	k := NewKeyringStore("wheel-test", path)

	if err := k.setSecret("daily", partActive, "seed-a"); err != nil {
		t.Fatalf("setSecret: %v", err)
	}
	if err := k.setSecret("weekly", partActive, "seed-b"); err != nil {
		t.Fatalf("setSecret: %v", err)
	}
	got, err := k.getSecret("daily", partActive)
	if err != nil || got != "seed-a" {
		t.Fatalf("getSecret = %q, %v", got, err)
	}
	if _, err := k.getSecret("daily", partPrevious); !errors.Is(err, keyring.ErrNotFound) {
		t.Fatalf("missing part = %v, want ErrNotFound", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("fallback file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("fallback mode = %v", info.Mode().Perm())
	}

	if err := k.DeleteAll("daily"); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if _, err := k.getSecret("daily", partActive); !errors.Is(err, keyring.ErrNotFound) {
		t.Errorf("daily still present after delete: %v", err)
	}
	if got, _ := k.getSecret("weekly", partActive); got != "seed-b" {
		t.Errorf("weekly lost on daily delete: %q", got)
	}
}

func TestKeyringStoreNoFallbackConfigured(t *testing.T) {
	keyring.MockInitWithError(errors.New("keyring backend not available"))
	defer keyring.MockInit()

	k := NewKeyringStore("wheel-test", "")
	if err := k.setSecret("daily", partActive, "x"); err == nil {
		t.Fatal("expected error without keyring or fallback")
	}
}
