// Package settings stores the OpenAI API key in the XDG data directory:
//
//	$XDG_DATA_HOME/potranslator/auth.json  (default: ~/.local/share/potranslator/)
//
// The file holds a single entry {"type": "api", "key": "..."} and is
// written with 0600 permissions.
//
// Lookup order for the API key (implemented by the CLI):
//  1. --api-key flag
//  2. OPENAI_API_KEY environment variable (a .env file is honored)
//  3. This store
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dataDirName = "potranslator"
	fileName    = "auth.json"
)

// Info is the stored credential entry.
type Info struct {
	// Type discriminator, always "api" for this tool.
	Type string `json:"type"`
	// Key is the API key.
	Key string `json:"key,omitempty"`
}

// dataDir returns the XDG data directory for potranslator.
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

// FilePath returns the auth.json path for display purposes.
func FilePath() string {
	dir, err := dataDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, fileName)
}

// APIKey returns the stored API key, or "" when none is stored.
func APIKey() string {
	path := FilePath()
	if path == "" {
		return ""
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return ""
	}
	if info.Type != "api" {
		return ""
	}
	return info.Key
}

// SetAPIKey stores the API key with 0600 permissions.
func SetAPIKey(key string) error {
	dir, err := dataDir()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(Info{Type: "api", Key: key}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, fileName), data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// Remove deletes the stored credential. Removing a non-existent store is
// not an error.
func Remove() error {
	path := FilePath()
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing auth file: %w", err)
	}
	return nil
}

// ResolveAPIKey resolves the key to use: explicit flag value first, then
// the OPENAI_API_KEY environment variable, then the store.
func ResolveAPIKey(flagKey string) string {
	if flagKey != "" {
		return flagKey
	}
	if env := os.Getenv("OPENAI_API_KEY"); env != "" {
		return env
	}
	return APIKey()
}

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
