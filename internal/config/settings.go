package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/scratchkit/scratch-downloader/internal/scratch"
)

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	OutputDir      string  `json:"output_dir"`
	StagingDir     string  `json:"staging_dir"`
	Workers        int     `json:"workers"`
	MaxRetries     int     `json:"max_retries"`
	RequestTimeout float64 `json:"request_timeout"`
	RetryCooldown  float64 `json:"retry_cooldown"`
	RetryMaxDelay  float64 `json:"retry_max_delay"`

	// Endpoint settings
	APIBase      string `json:"api_base"`
	ProjectHost  string `json:"project_host"`
	FallbackHost string `json:"fallback_host"`

	// Explore settings
	ExploreQuery    string `json:"explore_query"`
	ExploreMode     string `json:"explore_mode"` // popular, trending, recent
	ExploreLanguage string `json:"explore_language"`

	// Proxy settings
	UseTor       bool   `json:"use_tor"`
	ProxyAddress string `json:"proxy_address"`

	// Integration settings
	MetricsAddr string `json:"metrics_addr"`
	PostgresDSN string `json:"postgres_dsn"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		OutputDir:      "downloads",
		StagingDir:     "utemp",
		Workers:        runtime.NumCPU(),
		MaxRetries:     1,
		RequestTimeout: 1.0,
		RetryCooldown:  0.75,
		RetryMaxDelay:  8.0,

		APIBase:      scratch.DefaultAPIBase,
		ProjectHost:  scratch.DefaultProjectHost,
		FallbackHost: "",

		ExploreQuery:    "*",
		ExploreMode:     "popular",
		ExploreLanguage: "en",

		UseTor:       true,
		ProxyAddress: "tor_proxy:9050",
	}
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Timeout returns the per-request timeout as a duration.
func (s *Settings) Timeout() time.Duration {
	return seconds(s.RequestTimeout)
}

// Cooldown returns the base retry cooldown as a duration.
func (s *Settings) Cooldown() time.Duration {
	return seconds(s.RetryCooldown)
}

// MaxDelay returns the retry delay cap as a duration.
func (s *Settings) MaxDelay() time.Duration {
	return seconds(s.RetryMaxDelay)
}

// ProxyAddr returns the SOCKS5 proxy address for explore traffic, or
// an empty string when Tor routing is disabled.
func (s *Settings) ProxyAddr() string {
	if !s.UseTor {
		return ""
	}
	return s.ProxyAddress
}

// ToClientConfig converts settings to a Scratch client configuration.
func (s *Settings) ToClientConfig() scratch.Config {
	return scratch.Config{
		APIBase:      s.APIBase,
		ProjectHost:  s.ProjectHost,
		FallbackHost: s.FallbackHost,
		Timeout:      s.Timeout(),
	}
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
