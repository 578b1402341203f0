package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"qualityqueue/internal/audio"
	"qualityqueue/internal/fingerprint"
	"qualityqueue/internal/shared"
	"qualityqueue/internal/store"
	"qualityqueue/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, cacheCommand, stateCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// resolveConfig reloads configuration from the --config flag when the file
// exists, falling back to whatever the Runner was constructed with.
func (r *Runner) resolveConfig(cmd *cli.Command) *shared.Config {
	path := cmd.String("config")
	if path == "" {
		return r.config
	}
	if _, err := os.Stat(path); err != nil {
		return r.config
	}
	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warnf("could not load %s, using defaults: %v", path, err)
		return r.config
	}
	return config
}

// buildEngine wires the decode/extract/score pipeline into a QueueEngine.
// The workers argument overrides the configured pool size when positive.
func (r *Runner) buildEngine(config *shared.Config, cache *store.Cache, workers int, logger *log.Logger) *tasks.QueueEngine {
	decoder := audio.FFmpegDecoder{}
	extractor := audio.SpectralExtractor{
		WindowSize:     config.Fingerprint.WindowSize,
		HopSize:        config.Fingerprint.HopSize,
		RolloffPercent: config.Fingerprint.RolloffPercent,
	}
	analyzer := fingerprint.NewEngine(decoder, extractor, config.Fingerprint.SampleRate)

	if workers <= 0 {
		workers = config.Pool.Workers
	}
	pool := fingerprint.NewPool(analyzer, fingerprint.PoolOpts{
		Workers:  workers,
		Throttle: config.Pool.Throttle,
	}, logger)

	return tasks.NewQueueEngine(tasks.QueueEngineOpts{
		Pool:     pool,
		Analyzer: analyzer,
		Cache:    cache,
		Weights: fingerprint.Weights{
			DynamicRange:      config.Fingerprint.Weights.DynamicRange,
			SpectralRolloff:   config.Fingerprint.Weights.SpectralRolloff,
			SpectralCentroid:  config.Fingerprint.Weights.SpectralCentroid,
			SpectralBandwidth: config.Fingerprint.Weights.SpectralBandwidth,
		},
		Extensions: config.Scanner.Extensions,
		Logger:     logger,
	})
}

// checkDir validates that path names an existing directory and returns its
// absolute form.
func checkDir(path string) (string, error) {
	abs, err := filepath.Abs(shared.ExpandHome(path))
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s does not exist", shared.ErrInvalidArgument, abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", shared.ErrInvalidArgument, abs)
	}
	return abs, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
