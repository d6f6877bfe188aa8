package seedvault

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"

	"github.com/MJE43/wheel-of-fortune-go/internal/engine"
)

const seedBytes = 32

// Rotation is the result of retiring a wheel's server seed.
type Rotation struct {
	WheelID      string `json:"wheel_id"`
	Revealed     string `json:"revealed_server_seed"`
	RevealedHash string `json:"revealed_server_seed_hash"`
	NextHash     string `json:"next_server_seed_hash"`
}

// Vault keeps one secret server seed per wheel. Only its hash is public until
// the seed is rotated out, at which point it is revealed so past spins can be verified.
type Vault struct {
	secrets *KeyringStore
	mu      sync.Mutex
}

// New builds a vault over the OS keychain under service, falling back to the
// JSON file at fallbackPath when no keychain is reachable.
func New(service, fallbackPath string) *Vault {
	return &Vault{secrets: NewKeyringStore(service, fallbackPath)}
}

// Active returns the wheel's current server seed, creating one on first use.
func (v *Vault) Active(wheelID string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.activeLocked(wheelID)
}

func (v *Vault) activeLocked(wheelID string) (string, error) {
	seed, err := v.secrets.getSecret(wheelID, partActive)
	if err == nil {
		return seed, nil
	}
	if !errors.Is(err, keyring.ErrNotFound) {
		return "", err
	}
	seed, err = newSeed()
	if err != nil {
		return "", err
	}
	if err := v.secrets.setSecret(wheelID, partActive, seed); err != nil {
		return "", err
	}
	return seed, nil
}

// Hash returns the public commitment to the wheel's active seed.
func (v *Vault) Hash(wheelID string) (string, error) {
	seed, err := v.Active(wheelID)
	if err != nil {
		return "", err
	}
	return engine.HashServerSeed(seed), nil
}

// Rotate replaces the active seed and reveals the old one.
func (v *Vault) Rotate(wheelID string) (Rotation, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	old, err := v.activeLocked(wheelID)
	if err != nil {
		return Rotation{}, err
	}
	next, err := newSeed()
	if err != nil {
		return Rotation{}, err
	}
	if err := v.secrets.setSecret(wheelID, partPrevious, old); err != nil {
		return Rotation{}, err
	}
	if err := v.secrets.setSecret(wheelID, partActive, next); err != nil {
		return Rotation{}, err
	}
	return Rotation{
		WheelID:      wheelID,
		Revealed:     old,
		RevealedHash: engine.HashServerSeed(old),
		NextHash:     engine.HashServerSeed(next),
	}, nil
}

// Previous returns the most recently revealed seed, or keyring.ErrNotFound
// when the wheel was never rotated.
func (v *Vault) Previous(wheelID string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.secrets.getSecret(wheelID, partPrevious)
}

// Forget drops every seed kept for the wheel.
func (v *Vault) Forget(wheelID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.secrets.DeleteAll(wheelID)
}

func newSeed() (string, error) {
	b := make([]byte, seedBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("seedvault: generate seed: %w", err)
	}
	return hex.EncodeToString(b), nil
}
