// Package config loads, validates, and normalizes blockscan configuration.
//
// Configuration is TOML, defaulting to ~/.config/blockscan/config.toml with a
// project-local blockscan.toml fallback. Defaults cover every key, so a
// missing file is not an error. Paths are expanded (~, relative) during load;
// callers always see absolute paths.
package config
