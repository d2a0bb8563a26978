// Package config provides configuration management for scratch-downloader.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Conversion to the Scratch client configuration
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Downloads to ./downloads/<session>
//	// One worker per CPU
//	// Explore traffic routed through Tor
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Saving Settings
//
//	settings.OutputDir = "/data/scratch"
//	err := settings.Save("/path/to/config.json")
//
// # Configuration Options
//
// Settings includes options for:
//   - Output and staging directories
//   - Worker count and retry behavior
//   - Scratch endpoint overrides
//   - Explore query, mode and language
//   - Tor proxy routing
//   - Metrics endpoint and Postgres mirroring
package config
