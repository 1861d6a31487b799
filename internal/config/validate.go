package config

import (
	"errors"
	"fmt"
	"strings"
)

// ImageModePHash compares perceptual hashes by Hamming distance.
const ImageModePHash = "phash"

// ImageModeHistogram compares color histograms by correlation.
const ImageModeHistogram = "histogram"

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	a := c.Analysis
	if a.CodeSimilarityThreshold <= 0 || a.CodeSimilarityThreshold > 100 {
		return errors.New("analysis.code_similarity_threshold must be in (0, 100]")
	}
	if a.SharedAssetMinimum < 1 {
		return errors.New("analysis.shared_asset_minimum must be at least 1")
	}
	switch a.ImageMode {
	case ImageModePHash, ImageModeHistogram:
	default:
		return fmt.Errorf("analysis.image_mode must be %q or %q", ImageModePHash, ImageModeHistogram)
	}
	if a.ImageDistanceTolerance < 0 || a.ImageDistanceTolerance > 64 {
		return errors.New("analysis.image_distance_tolerance must be between 0 and 64 bits")
	}
	if a.ImageCorrelationThreshold <= 0 || a.ImageCorrelationThreshold > 100 {
		return errors.New("analysis.image_correlation_threshold must be in (0, 100]")
	}
	if a.ChunkThresholdBytes < 0 {
		return errors.New("analysis.chunk_threshold_bytes must not be negative")
	}
	if a.ChunkWindowBytes <= 0 {
		return errors.New("analysis.chunk_window_bytes must be positive")
	}
	if a.Workers < 0 {
		return errors.New("analysis.workers must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be one of auto, console, json; got %q", c.Logging.Format)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
