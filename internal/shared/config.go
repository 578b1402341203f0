package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Fingerprint FingerprintConfig `toml:"fingerprint"`
	Scanner     ScannerConfig     `toml:"scanner"`
	Pool        PoolConfig        `toml:"pool"`
	Storage     StorageConfig     `toml:"storage"`
}

// FingerprintConfig contains audio analysis settings.
type FingerprintConfig struct {
	SampleRate     int           `toml:"sample_rate"`     // Target decode sample rate in Hz
	RolloffPercent float64       `toml:"rolloff_percent"` // Energy fraction for spectral rolloff
	WindowSize     int           `toml:"window_size"`     // STFT window length in samples
	HopSize        int           `toml:"hop_size"`        // STFT hop length in samples
	Weights        WeightsConfig `toml:"weights"`
}

// WeightsConfig contains the per-feature weights used to derive a quality score.
// The four weights are expected to sum to 1.0.
type WeightsConfig struct {
	DynamicRange      float64 `toml:"dynamic_range"`
	SpectralRolloff   float64 `toml:"spectral_rolloff"`
	SpectralCentroid  float64 `toml:"spectral_centroid"`
	SpectralBandwidth float64 `toml:"spectral_bandwidth"`
}

// ScannerConfig contains directory scanning settings.
type ScannerConfig struct {
	Extensions []string `toml:"extensions"` // Eligible audio file extensions, lowercase with dot
}

// PoolConfig contains fingerprinting worker pool settings.
type PoolConfig struct {
	Workers  int     `toml:"workers"`  // Concurrent analysis workers
	Throttle float64 `toml:"throttle"` // Files dispatched per second, 0 disables throttling
}

// StorageConfig contains persisted document settings.
type StorageConfig struct {
	DataDir   string `toml:"data_dir"`   // Directory holding cache and session documents
	CacheFile string `toml:"cache_file"` // Fingerprint cache filename within DataDir
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: config file already exists at %s", ErrInvalidInput, path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DataDir resolves the configured data directory, expanding a leading "~" and
// creating the directory when it does not exist yet.
func (c *Config) DataDir() (string, error) {
	dir := ExpandHome(c.Storage.DataDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// CachePath resolves the absolute path of the fingerprint cache document.
func (c *Config) CachePath() (string, error) {
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.CacheFile), nil
}
