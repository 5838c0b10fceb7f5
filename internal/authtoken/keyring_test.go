package authtoken

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestStoreWithKeyring(t *testing.T) {
	keyring.MockInit()
	s := NewStore("life-tick-test", filepath.Join(t.TempDir(), "token.json"))

	if _, err := s.Get(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store err = %v, want ErrNotFound", err)
	}
	if err := s.Set("secret-123"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "secret-123" {
		t.Fatalf("Get = %q", got)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := s.Get(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Clear err = %v, want ErrNotFound", err)
	}
}

func TestStoreFallsBackToFile(t *testing.T) {
	keyring.MockInitWithError(errors.New("dbus: session bus not available"))
	t.Cleanup(keyring.MockInit)

	path := filepath.Join(t.TempDir(), "nested", "token.json")
	s := NewStore("", path)

	if err := s.Set("file-token"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("fallback file not written: %v", err)
	}
	got, err := s.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "file-token" {
		t.Fatalf("Get = %q", got)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("fallback file still present: %v", err)
	}
}

func TestStoreWithoutFallback(t *testing.T) {
	keyring.MockInitWithError(errors.New("keyring backend not available"))
	t.Cleanup(keyring.MockInit)

	s := NewStore("life-tick-test", "")
	if err := s.Set("x"); err == nil {
		t.Fatal("expected error without keyring or fallback")
	}
	if _, err := s.Get(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get err = %v, want ErrNotFound", err)
	}
}

func TestSetRejectsEmpty(t *testing.T) {
	keyring.MockInit()
	if err := NewStore("", "").Set("   "); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestNewToken(t *testing.T) {
	a, b := NewToken(), NewToken()
	if len(a) != 32 {
		t.Errorf("len(NewToken()) = %d, want 32", len(a))
	}
	if a == b {
		t.Error("NewToken returned the same value twice")
	}
}
