package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/pelletier/go-toml/v2"
)

// ErrNotInitialized is returned when no configuration has been written yet.
var ErrNotInitialized = errors.New("pxl is not initialized; run `pxl init` first")

// Storage selects the object store backend.
type Storage struct {
	Backend string `toml:"backend" env:"BACKEND"`
	Root    string `toml:"root" env:"ROOT"`
}

// S3 contains the credential bundle for the S3-compatible object store.
type S3 struct {
	Endpoint  string `toml:"endpoint" env:"ENDPOINT"`
	Region    string `toml:"region" env:"REGION"`
	Bucket    string `toml:"bucket" env:"BUCKET"`
	KeyID     string `toml:"key_id" env:"KEY_ID"`
	KeySecret string `toml:"key_secret" env:"KEY_SECRET"`
	PublicURL string `toml:"public_url" env:"PUBLIC_URL"`
	Insecure  bool   `toml:"insecure"`
}

// Upload contains configuration for image publishing.
type Upload struct {
	Variants    bool `toml:"variants"`
	Concurrency int  `toml:"concurrency" env:"CONCURRENCY"`
}

// Site contains configuration for static site generation.
type Site struct {
	OutputDir string `toml:"output_dir" env:"OUTPUT_DIR"`
	DesignDir string `toml:"design_dir" env:"DESIGN_DIR"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" env:"FORMAT"`
	Level  string `toml:"level" env:"LEVEL"`
}

// Config encapsulates all configuration values for pxl.
//
// Configuration sections:
//   - Storage: object store backend ("s3" or "fs")
//   - S3: endpoint, region, bucket, and credentials
//   - Upload: resized variants and upload parallelism
//   - Site: output and design directories for `pxl build`
//   - Logging: log format and level
type Config struct {
	Storage Storage `toml:"storage" envPrefix:"PXL_STORAGE_"`
	S3      S3      `toml:"s3" envPrefix:"PXL_S3_"`
	Upload  Upload  `toml:"upload" envPrefix:"PXL_UPLOAD_"`
	Site    Site    `toml:"site" envPrefix:"PXL_SITE_"`
	Logging Logging `toml:"logging" envPrefix:"PXL_LOG_"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// PublicBaseURL returns the URL prefix under which published images are
// reachable. An explicit public_url wins over the virtual-hosted bucket URL.
func (c *Config) PublicBaseURL() string {
	if url := strings.TrimRight(strings.TrimSpace(c.S3.PublicURL), "/"); url != "" {
		return url
	}
	if c.Storage.Backend == BackendFS {
		return "file://" + filepath.ToSlash(c.Storage.Root)
	}
	return fmt.Sprintf("https://%s.%s.%s", c.S3.Bucket, c.S3.Region, c.S3.Endpoint)
}

// Clone returns a deep copy so callers can adjust flags without touching the
// loaded value.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// decode parses TOML data on top of repository defaults, applies environment
// overrides, then normalizes and validates the result.
func decode(data []byte) (*Config, error) {
	cfg := Default()
	if len(data) > 0 {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("read environment overrides: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func encode(cfg *Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
