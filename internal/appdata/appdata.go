// Package appdata locates the per-user directory holding the pattern
// catalog and the token fallback file.
package appdata

import (
	"os"
	"path/filepath"
)

const (
	// DirName is the directory created under the user config dir.
	DirName = "life-tick-go"

	PatternsDBName = "patterns.db"
	TokenFileName  = "token.json"
)

// Dir returns the application data directory without creating it.
func Dir() string {
	if d, err := os.UserConfigDir(); err == nil && d != "" {
		return filepath.Join(d, DirName)
	}
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		return filepath.Join(h, "."+DirName)
	}
	return "."
}

// Path returns name inside Dir, creating Dir if needed. When the directory
// cannot be created it falls back to the working directory.
func Path(name string) (string, error) {
	base := Dir()
	if err := os.MkdirAll(base, 0o755); err != nil {
		return filepath.Join(".", name), err
	}
	return filepath.Join(base, name), nil
}
