package fingerprint

import (
	"context"
	"errors"
	"fmt"

	"qualityqueue/internal/audio"
	"qualityqueue/internal/shared"
)

// Analyzer produces a fingerprint for a single audio file.
type Analyzer interface {
	Analyze(ctx context.Context, path string) (Fingerprint, error)
}

// Engine implements [Analyzer] by composing a decoder and a feature extractor.
// It holds no mutable state and is safe for concurrent use; caching is layered
// outside by the coordinator, never inside the engine.
type Engine struct {
	decoder    audio.Decoder
	extractor  audio.Extractor
	sampleRate int
}

// NewEngine creates an Engine decoding at the given fixed sample rate.
func NewEngine(decoder audio.Decoder, extractor audio.Extractor, sampleRate int) *Engine {
	return &Engine{
		decoder:    decoder,
		extractor:  extractor,
		sampleRate: sampleRate,
	}
}

// Analyze decodes path at the engine's sample rate and extracts its feature
// tuple. Failures are normalized onto the shared error taxonomy: decode
// problems wrap [shared.ErrDecode], zero-length decodes [shared.ErrEmptyAudio],
// extraction problems [shared.ErrExtract]. Context cancellation passes
// through untouched.
func (e *Engine) Analyze(ctx context.Context, path string) (Fingerprint, error) {
	samples, rate, err := e.decoder.Decode(ctx, path, e.sampleRate)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Fingerprint{}, err
		}
		if errors.Is(err, shared.ErrDecode) || errors.Is(err, shared.ErrEmptyAudio) {
			return Fingerprint{}, err
		}
		return Fingerprint{}, fmt.Errorf("%w: %v", shared.ErrDecode, err)
	}
	if len(samples) == 0 {
		return Fingerprint{}, fmt.Errorf("%w: %s", shared.ErrEmptyAudio, path)
	}

	vec, err := e.extractor.Extract(samples, rate)
	if err != nil {
		if errors.Is(err, shared.ErrExtract) {
			return Fingerprint{}, err
		}
		return Fingerprint{}, fmt.Errorf("%w: %v", shared.ErrExtract, err)
	}

	fp, err := FromVector(vec)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("%w: %v", shared.ErrExtract, err)
	}
	return fp, nil
}
