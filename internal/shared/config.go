package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Fetch    FetchConfig    `toml:"fetch"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Export   ExportConfig   `toml:"export"`
	Cache    CacheConfig    `toml:"cache"`
	Open     OpenConfig     `toml:"open"`
}

// FetchConfig controls track page requests.
type FetchConfig struct {
	Timeout     time.Duration `toml:"timeout"`
	MaxRetries  int           `toml:"max_retries"`
	BackoffBase time.Duration `toml:"backoff_base"`
	MaxBackoff  time.Duration `toml:"max_backoff"`
	UserAgent   string        `toml:"user_agent"`
}

// PipelineConfig controls pacing of a digging run.
type PipelineConfig struct {
	Delay     time.Duration `toml:"delay"`
	MaxTracks int           `toml:"max_tracks"`
}

// ExportConfig selects the summary export format and destination.
type ExportConfig struct {
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// CacheConfig contains result cache database settings.
type CacheConfig struct {
	Enabled      bool   `toml:"enabled"`
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// OpenConfig controls how summary links are opened in a browser.
type OpenConfig struct {
	Browser  string        `toml:"browser"`
	Interval time.Duration `toml:"interval"`
}

// LoadConfig reads a TOML configuration file from path and overlays it on [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Fetch.Timeout <= 0:
		return fmt.Errorf("%w: fetch.timeout must be positive", ErrInvalidConfig)
	case c.Fetch.MaxRetries < 0:
		return fmt.Errorf("%w: fetch.max_retries must not be negative", ErrInvalidConfig)
	case c.Fetch.BackoffBase < 0 || c.Fetch.MaxBackoff < 0:
		return fmt.Errorf("%w: fetch back-off durations must not be negative", ErrInvalidConfig)
	case c.Pipeline.Delay < 0:
		return fmt.Errorf("%w: pipeline.delay must not be negative", ErrInvalidConfig)
	case c.Pipeline.MaxTracks < 0:
		return fmt.Errorf("%w: pipeline.max_tracks must not be negative", ErrInvalidConfig)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
