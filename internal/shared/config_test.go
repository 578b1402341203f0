package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Fingerprint.SampleRate != 44100 {
			t.Errorf("expected sample rate 44100, got %d", config.Fingerprint.SampleRate)
		}

		if config.Fingerprint.RolloffPercent != 0.90 {
			t.Errorf("expected rolloff percent 0.90, got %v", config.Fingerprint.RolloffPercent)
		}

		if config.Pool.Workers != 4 {
			t.Errorf("expected 4 workers, got %d", config.Pool.Workers)
		}

		w := config.Fingerprint.Weights
		sum := w.DynamicRange + w.SpectralRolloff + w.SpectralCentroid + w.SpectralBandwidth
		if sum != 1.0 {
			t.Errorf("expected weights to sum to 1.0, got %v", sum)
		}

		if len(config.Scanner.Extensions) != 2 {
			t.Errorf("expected 2 default extensions, got %v", config.Scanner.Extensions)
		}

		if config.Storage.CacheFile != "fingerprints_cache.json" {
			t.Errorf("expected cache file fingerprints_cache.json, got %s", config.Storage.CacheFile)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Storage.DataDir != defaultConfig.Storage.DataDir {
			t.Errorf("created config data dir doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[fingerprint]
sample_rate = 22050
rolloff_percent = 0.85
window_size = 512
hop_size = 128

[fingerprint.weights]
dynamic_range = 0.7
spectral_rolloff = 0.1
spectral_centroid = 0.1
spectral_bandwidth = 0.1

[scanner]
extensions = [".flac"]

[pool]
workers = 8
throttle = 2.5

[storage]
data_dir = "/tmp/qq"
cache_file = "cache.json"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Fingerprint.SampleRate != 22050 {
			t.Errorf("expected sample rate 22050, got %d", config.Fingerprint.SampleRate)
		}
		if config.Pool.Throttle != 2.5 {
			t.Errorf("expected throttle 2.5, got %v", config.Pool.Throttle)
		}
		if config.Scanner.Extensions[0] != ".flac" {
			t.Errorf("expected extension .flac, got %v", config.Scanner.Extensions)
		}
	})

	t.Run("LoadConfigMissing", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("LoadConfigMalformed", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[fingerprint\nbroken"), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("CachePath", func(t *testing.T) {
		config := DefaultConfig()
		config.Storage.DataDir = t.TempDir()

		path, err := config.CachePath()
		if err != nil {
			t.Fatalf("failed to resolve cache path: %v", err)
		}
		if filepath.Base(path) != "fingerprints_cache.json" {
			t.Errorf("unexpected cache path %s", path)
		}
	})
}
