// Package config — .potranslator.yaml configuration file support.
//
// When a .potranslator.yaml file exists in the scan root, its values are
// used as defaults for the corresponding command-line flags. Flags always
// win over the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the scan root.
const FileName = ".potranslator.yaml"

// File is the top-level .potranslator.yaml structure.
type File struct {
	// Model overrides the default model identifier.
	Model string `yaml:"model,omitempty"`
	// BaseURL overrides the API root (for OpenAI-compatible endpoints).
	BaseURL string `yaml:"base_url,omitempty"`
	// Languages is the default target language list for translate/status.
	Languages []string `yaml:"languages,omitempty"`
	// SourceExt is the file extension scanned in inline mode (default ".ex").
	SourceExt string `yaml:"source_ext,omitempty"`
}

// Load reads and validates .potranslator.yaml from dir.
// Returns nil (and no error) when the file does not exist.
func Load(dir string) (*File, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &f, nil
}

func (f *File) validate() error {
	if f.SourceExt != "" && !strings.HasPrefix(f.SourceExt, ".") {
		return fmt.Errorf("source_ext must start with a dot, got %q", f.SourceExt)
	}
	for _, lang := range f.Languages {
		if strings.TrimSpace(lang) == "" {
			return fmt.Errorf("languages contains an empty entry")
		}
	}
	return nil
}

// LangList returns the configured languages joined for flag defaults.
func (f *File) LangList() string {
	if f == nil {
		return ""
	}
	return strings.Join(f.Languages, ",")
}
