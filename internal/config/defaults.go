package config

const (
	defaultDataDir                   = "~/.local/share/blockscan"
	defaultLogDir                    = "~/.local/share/blockscan/logs"
	defaultReportDir                 = "~/blockscan-reports"
	defaultCodeSimilarityThreshold   = 85.0
	defaultSharedAssetMinimum        = 3
	defaultImageMode                 = "phash"
	defaultImageDistanceTolerance    = 10
	defaultImageCorrelationThreshold = 80.0
	defaultChunkThresholdBytes       = 32 << 20
	defaultChunkWindowBytes          = 1 << 20
	defaultLogFormat                 = "console"
	defaultLogLevel                  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			ReportDir: defaultReportDir,
		},
		Analysis: Analysis{
			CodeSimilarityThreshold:   defaultCodeSimilarityThreshold,
			SharedAssetMinimum:        defaultSharedAssetMinimum,
			ImageMode:                 defaultImageMode,
			ImageDistanceTolerance:    defaultImageDistanceTolerance,
			ImageCorrelationThreshold: defaultImageCorrelationThreshold,
			ChunkThresholdBytes:       defaultChunkThresholdBytes,
			ChunkWindowBytes:          defaultChunkWindowBytes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
