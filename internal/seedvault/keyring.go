package seedvault

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	partActive   = "active"
	partPrevious = "previous"
)

// KeyringStore wraps OS keychain with an optional file fallback.
// Fallback is intended for environments where no system keyring is available.
type KeyringStore struct {
	service      string
	fallbackPath string
	mu           sync.Mutex
}

// NewKeyringStore creates a keyring wrapper.
func NewKeyringStore(serviceName, fallbackPath string) *KeyringStore {
	if strings.TrimSpace(serviceName) == "" {
		serviceName = "wheel-of-fortune-go"
	}
	return &KeyringStore{
		service:      serviceName,
		fallbackPath: fallbackPath,
	}
}

func (k *KeyringStore) key(wheelID, part string) string {
	return fmt.Sprintf("%s/%s", wheelID, part)
}

// DeleteAll removes every seed kept for the wheel.
func (k *KeyringStore) DeleteAll(wheelID string) error {
	var errs []error
	for _, part := range []string{partActive, partPrevious} {
		err := keyring.Delete(k.service, k.key(wheelID, part))
		if err != nil && !errors.Is(err, keyring.ErrNotFound) && !isKeyringUnavailable(err) {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		return k.deleteFallbackWheel(wheelID)
	}
	// Try fallback cleanup even if keyring delete failed.
	_ = k.deleteFallbackWheel(wheelID)
	return fmt.Errorf("seedvault: keyring delete failed: %v", errs[0])
}

func (k *KeyringStore) setSecret(wheelID, part, value string) error {
	wheelID = strings.TrimSpace(wheelID)
	if wheelID == "" {
		return fmt.Errorf("seedvault: wheel id is required")
	}

	if err := keyring.Set(k.service, k.key(wheelID, part), value); err == nil {
		return nil
	} else if !isKeyringUnavailable(err) {
		return fmt.Errorf("seedvault: keyring set %s: %w", part, err)
	}

	return k.setFallback(wheelID, part, value)
}

func (k *KeyringStore) getSecret(wheelID, part string) (string, error) {
	wheelID = strings.TrimSpace(wheelID)
	if wheelID == "" {
		return "", fmt.Errorf("seedvault: wheel id is required")
	}

	val, err := keyring.Get(k.service, k.key(wheelID, part))
	if err == nil {
		return val, nil
	}
	if !isKeyringUnavailable(err) && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("seedvault: keyring get %s: %w", part, err)
	}

	fallback, ferr := k.getFallback(wheelID, part)
	if ferr == nil {
		return fallback, nil
	}

	if errors.Is(err, keyring.ErrNotFound) {
		return "", keyring.ErrNotFound
	}
	return "", ferr
}

func isKeyringUnavailable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "secret service") ||
		strings.Contains(msg, "dbus") ||
		strings.Contains(msg, "the specified item could not be found in the keychain") ||
		strings.Contains(msg, "no keychain") ||
		strings.Contains(msg, "keyring backend not available")
}

// fallbackSeeds is the on-disk form: one flat map keyed like the keychain entries.
type fallbackSeeds map[string]string

func (k *KeyringStore) setFallback(wheelID, part, value string) error {
	if strings.TrimSpace(k.fallbackPath) == "" {
		return fmt.Errorf("seedvault: keyring unavailable and no fallback path configured")
	}
	return k.updateFallback(func(data fallbackSeeds) {
		data[k.key(wheelID, part)] = value
	})
}

func (k *KeyringStore) getFallback(wheelID, part string) (string, error) {
	if strings.TrimSpace(k.fallbackPath) == "" {
		return "", fmt.Errorf("seedvault: fallback path not configured")
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	data, err := k.readFallbackUnlocked()
	if err != nil {
		return "", err
	}
	val, ok := data[k.key(wheelID, part)]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return val, nil
}

func (k *KeyringStore) deleteFallbackWheel(wheelID string) error {
	if strings.TrimSpace(k.fallbackPath) == "" {
		return nil
	}
	prefix := k.key(wheelID, "")
	return k.updateFallback(func(data fallbackSeeds) {
		for key := range data {
			if strings.HasPrefix(key, prefix) {
				delete(data, key)
			}
		}
	})
}

func (k *KeyringStore) updateFallback(mutate func(fallbackSeeds)) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	data, err := k.readFallbackUnlocked()
	if err != nil {
		return err
	}
	mutate(data)
	return k.writeFallbackUnlocked(data)
}

func (k *KeyringStore) readFallbackUnlocked() (fallbackSeeds, error) {
	out := fallbackSeeds{}
	raw, err := os.ReadFile(k.fallbackPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return out, nil
		}
		return nil, fmt.Errorf("seedvault: read fallback seeds: %w", err)
	}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("seedvault: decode fallback seeds: %w", err)
	}
	return out, nil
}

// writeFallbackUnlocked replaces the file through a temp file so a crash never leaves it half written.
func (k *KeyringStore) writeFallbackUnlocked(data fallbackSeeds) error {
	dir := filepath.Dir(k.fallbackPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("seedvault: mkdir fallback dir: %w", err)
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("seedvault: encode fallback seeds: %w", err)
	}
	tmp := k.fallbackPath + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("seedvault: write fallback seeds: %w", err)
	}
	if err := os.Rename(tmp, k.fallbackPath); err != nil {
		return fmt.Errorf("seedvault: replace fallback seeds: %w", err)
	}
	return nil
}
