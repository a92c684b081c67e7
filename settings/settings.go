// Package settings stores the translation service credential in the XDG
// data directory:
//
//	$XDG_DATA_HOME/doclocal/auth.json  (default: ~/.local/share/doclocal/)
//
// The file is written with 0600 permissions. Lookup order for the auth key
// at build time:
//
//  1. --auth-key flag (highest priority)
//  2. DOCLOCAL_AUTH_KEY environment variable
//  3. this store
//
// An absent key everywhere is valid configuration: the build then runs in
// offline mode against cached translations only.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dataDirName = "doclocal"
	fileName    = "auth.json"
)

// auth is the on-disk shape of auth.json.
type auth struct {
	// AuthKey is the translation service API key.
	AuthKey string `json:"auth_key,omitempty"`
}

// dataDir returns the XDG data directory for doclocal.
// Respects $XDG_DATA_HOME, falling back to ~/.local/share.
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

func filePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// FilePath returns the auth.json path for display purposes.
func FilePath() string {
	p, err := filePath()
	if err != nil {
		return ""
	}
	return p
}

// AuthKey returns the stored API key, or "" if none is stored.
func AuthKey() string {
	path, err := filePath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var a auth
	if err := json.Unmarshal(data, &a); err != nil {
		return ""
	}
	return a.AuthKey
}

// SetAuthKey stores the API key with 0600 permissions.
func SetAuthKey(key string) error {
	path, err := filePath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(auth{AuthKey: key}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// Remove deletes the stored credential. Removing a missing file is not an
// error.
func Remove() error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing auth file: %w", err)
	}
	return nil
}

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
