// Package authtoken keeps the service's API token in the OS keychain, with a
// JSON file fallback for hosts that have no keyring backend (headless Linux,
// containers).
package authtoken

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/zalando/go-keyring"
	"go.uber.org/multierr"
)

const (
	DefaultService = "life-tick-go"
	tokenKey       = "api-token"
)

// ErrNotFound is returned when no token has been stored.
var ErrNotFound = keyring.ErrNotFound

// Store wraps the OS keychain with an optional file fallback.
type Store struct {
	service      string
	fallbackPath string
	mu           sync.Mutex
}

// NewStore creates a keyring wrapper. An empty fallbackPath disables the fallback.
func NewStore(service, fallbackPath string) *Store {
	if strings.TrimSpace(service) == "" {
		service = DefaultService
	}
	return &Store{
		service:      service,
		fallbackPath: fallbackPath,
	}
}

// NewToken returns a fresh random token.
func NewToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Set stores token, falling back to the file when the keyring is unavailable.
func (s *Store) Set(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("authtoken: token is empty")
	}

	err := keyring.Set(s.service, tokenKey, token)
	if err == nil {
		return nil
	}
	if !isKeyringUnavailable(err) {
		return fmt.Errorf("authtoken: keyring set: %w", err)
	}
	return s.writeFallback(token)
}

// Get returns the stored token or ErrNotFound.
func (s *Store) Get() (string, error) {
	val, err := keyring.Get(s.service, tokenKey)
	if err == nil {
		return val, nil
	}
	if !isKeyringUnavailable(err) && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("authtoken: keyring get: %w", err)
	}

	fallback, ferr := s.readFallback()
	if ferr == nil {
		return fallback, nil
	}
	if errors.Is(ferr, ErrNotFound) || errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	return "", ferr
}

// Clear removes the token from both the keyring and the fallback file.
func (s *Store) Clear() error {
	var err error
	if kerr := keyring.Delete(s.service, tokenKey); kerr != nil &&
		!errors.Is(kerr, keyring.ErrNotFound) && !isKeyringUnavailable(kerr) {
		err = fmt.Errorf("authtoken: keyring delete: %w", kerr)
	}
	return multierr.Append(err, s.removeFallback())
}

func isKeyringUnavailable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "secret service") ||
		strings.Contains(msg, "dbus") ||
		strings.Contains(msg, "no keychain") ||
		strings.Contains(msg, "keyring backend not available")
}

type fallbackFile struct {
	Token string `json:"token"`
}

func (s *Store) writeFallback(token string) error {
	if strings.TrimSpace(s.fallbackPath) == "" {
		return fmt.Errorf("authtoken: keyring unavailable and no fallback path configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.fallbackPath), 0o700); err != nil {
		return fmt.Errorf("authtoken: mkdir fallback dir: %w", err)
	}
	raw, err := json.Marshal(fallbackFile{Token: token})
	if err != nil {
		return fmt.Errorf("authtoken: encode fallback: %w", err)
	}
	if err := os.WriteFile(s.fallbackPath, raw, 0o600); err != nil {
		return fmt.Errorf("authtoken: write fallback: %w", err)
	}
	return nil
}

func (s *Store) readFallback() (string, error) {
	if strings.TrimSpace(s.fallbackPath) == "" {
		return "", ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.fallbackPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("authtoken: read fallback: %w", err)
	}
	var f fallbackFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return "", fmt.Errorf("authtoken: decode fallback: %w", err)
	}
	if f.Token == "" {
		return "", ErrNotFound
	}
	return f.Token, nil
}

func (s *Store) removeFallback() error {
	if strings.TrimSpace(s.fallbackPath) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.fallbackPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("authtoken: remove fallback: %w", err)
	}
	return nil
}
