package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"blockscan/internal/config"
)

func TestLoadDefaultsWhenNoFileExists(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	prevWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prevWD) })

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "blockscan")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Analysis.CodeSimilarityThreshold != 85.0 {
		t.Fatalf("unexpected code similarity threshold: %v", cfg.Analysis.CodeSimilarityThreshold)
	}
	if cfg.Analysis.SharedAssetMinimum != 3 {
		t.Fatalf("unexpected shared asset minimum: %d", cfg.Analysis.SharedAssetMinimum)
	}
	if cfg.Analysis.ImageMode != config.ImageModePHash {
		t.Fatalf("unexpected image mode: %q", cfg.Analysis.ImageMode)
	}
	if cfg.FindingsDBPath() != filepath.Join(wantData, "findings.db") {
		t.Fatalf("unexpected findings db path: %q", cfg.FindingsDBPath())
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[analysis]",
		"code_similarity_threshold = 90.0",
		`image_mode = "HISTOGRAM"`,
		"",
		"[logging]",
		`level = "debug"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Analysis.CodeSimilarityThreshold != 90.0 {
		t.Fatalf("threshold not merged: %v", cfg.Analysis.CodeSimilarityThreshold)
	}
	if cfg.Analysis.ImageMode != config.ImageModeHistogram {
		t.Fatalf("image mode not normalized: %q", cfg.Analysis.ImageMode)
	}
	if cfg.Analysis.SharedAssetMinimum != 3 {
		t.Fatalf("default lost during merge: %d", cfg.Analysis.SharedAssetMinimum)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging level not merged: %q", cfg.Logging.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"threshold zero":      func(c *config.Config) { c.Analysis.CodeSimilarityThreshold = 0 },
		"threshold over 100":  func(c *config.Config) { c.Analysis.CodeSimilarityThreshold = 101 },
		"asset minimum zero":  func(c *config.Config) { c.Analysis.SharedAssetMinimum = 0 },
		"unknown image mode":  func(c *config.Config) { c.Analysis.ImageMode = "ssim" },
		"tolerance too large": func(c *config.Config) { c.Analysis.ImageDistanceTolerance = 65 },
		"zero chunk window":   func(c *config.Config) { c.Analysis.ChunkWindowBytes = 0 },
		"negative workers":    func(c *config.Config) { c.Analysis.Workers = -1 },
		"unknown log format":  func(c *config.Config) { c.Logging.Format = "xml" },
		"unknown log level":   func(c *config.Config) { c.Logging.Level = "trace" },
	}
	for name, mutate := range cases {
		cfg := config.Default()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample config not found after CreateSample")
	}
	def := config.Default()
	if cfg.Analysis != def.Analysis {
		t.Fatalf("sample analysis settings drifted from defaults: %+v vs %+v", cfg.Analysis, def.Analysis)
	}
}
