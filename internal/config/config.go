// Package config loads scan settings from an optional YAML file at the
// repository root. Command-line flags override anything set here.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/todotree-dev/todotree/internal/attribute"
	"github.com/todotree-dev/todotree/internal/marker"
)

// DefaultFileName is looked up at the repository root when no --config
// flag is given.
const DefaultFileName = ".todotree.yaml"

// Config holds the scan settings that can come from a file.
type Config struct {
	// Markers are the tokens scanned for. Empty means ["todo"].
	Markers []string `yaml:"markers"`

	// ExcludeDirs replaces the default directory exclusion list.
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// IncludeExtensions limits scanning to the listed extensions.
	IncludeExtensions []string `yaml:"include_extensions"`

	// MaxFileSize is the per-file size ceiling in bytes.
	MaxFileSize int64 `yaml:"max_file_size"`

	// Jobs caps the scan worker pool.
	Jobs int `yaml:"jobs"`

	// CommentOnly requires markers to follow a comment introducer.
	CommentOnly bool `yaml:"comment_only"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Markers:     []string{"todo"},
		ExcludeDirs: attribute.DefaultExcludeDirs(),
		MaxFileSize: marker.DefaultMaxFileSize,
	}
}

// Load reads path strictly: a missing or malformed file is an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path chosen by the user
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	return parse(data)
}

// LoadFromRoot reads DefaultFileName under root when present, falling back
// to Default when the file does not exist.
func LoadFromRoot(root string) (Config, error) {
	data, err := os.ReadFile(filepath.Join(root, DefaultFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
