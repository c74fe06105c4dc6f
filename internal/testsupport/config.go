package testsupport

import (
	"path/filepath"
	"testing"

	"pxl/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config backed by the filesystem object store under a
// unique temp directory. It applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Storage.Backend = config.BackendFS
	cfgVal.Storage.Root = filepath.Join(base, "bucket")
	cfgVal.S3.PublicURL = "https://img.example.test"
	cfgVal.Site.OutputDir = filepath.Join(base, "build")
	cfgVal.Upload.Variants = false
	cfgVal.Upload.Concurrency = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithVariants enables resized rendition uploads.
func WithVariants() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Upload.Variants = true
	}
}

// WithDesignDir points site generation at a design directory.
func WithDesignDir(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Site.DesignDir = dir
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Storage.Root)
}
