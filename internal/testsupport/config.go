package testsupport

import (
	"path/filepath"
	"testing"

	"blockscan/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ReportDir = filepath.Join(base, "reports")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithCodeThreshold overrides the logic similarity threshold on the test config.
func WithCodeThreshold(threshold float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Analysis.CodeSimilarityThreshold = threshold
	}
}

// WithImageMode overrides the image comparison mode on the test config.
func WithImageMode(mode string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Analysis.ImageMode = mode
	}
}
