// Package audio provides the decode and feature-extraction collaborators used
// by the fingerprinting engine.
//
// Decoding normalizes any supported input into mono float64 samples in [-1, 1]
// at a fixed target sample rate. Feature extraction reduces those samples to a
// fixed-size numeric vector. Both live behind small interfaces so alternate
// backends can be swapped in without touching the engine.
package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"

	"qualityqueue/internal/shared"
)

// Decoder decodes an audio file into mono samples at the requested sample rate.
type Decoder interface {
	Decode(ctx context.Context, path string, targetRate int) ([]float64, int, error)
}

// WAVDecoder reads PCM WAV files natively via go-audio/wav, mixing down to
// mono and resampling to the target rate when needed.
type WAVDecoder struct{}

// Decode implements [Decoder] for WAV input.
func (WAVDecoder) Decode(ctx context.Context, path string, targetRate int) ([]float64, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shared.ErrDecode, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: %s is not a valid WAV file", shared.ErrDecode, path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shared.ErrDecode, err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, 0, fmt.Errorf("%w: %s", shared.ErrEmptyAudio, path)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}

	samples := toMonoFloat64(buf.Data, channels, bitDepth)
	if len(samples) == 0 {
		return nil, 0, fmt.Errorf("%w: %s", shared.ErrEmptyAudio, path)
	}

	rate := buf.Format.SampleRate
	if targetRate > 0 && rate != targetRate {
		samples = Resample(samples, rate, targetRate)
		rate = targetRate
	}
	return samples, rate, nil
}

// toMonoFloat64 converts interleaved integer PCM frames to mono float64
// samples normalized to [-1, 1], averaging across channels.
func toMonoFloat64(data []int, channels, bitDepth int) []float64 {
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))
	frames := len(data) / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(data[i*channels+c]) * scale
		}
		out[i] = sum / float64(channels)
	}
	return out
}

// Resample converts samples from one sample rate to another using linear
// interpolation. Rates must be positive; equal rates return the input as-is.
func Resample(samples []float64, from, to int) []float64 {
	if from == to || from <= 0 || to <= 0 || len(samples) == 0 {
		return samples
	}
	ratio := float64(from) / float64(to)
	n := int(float64(len(samples)) / ratio)
	if n < 1 {
		n = 1
	}
	out := make([]float64, n)
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(j)
		out[i] = samples[j]*(1-frac) + samples[j+1]*frac
	}
	return out
}

// FFmpegDecoder decodes arbitrary audio formats by shelling out to ffmpeg,
// converting the input to a temporary mono PCM WAV at the target rate before
// reading it natively. WAV inputs skip the conversion step.
type FFmpegDecoder struct {
	// Binary overrides the ffmpeg executable name. Defaults to "ffmpeg".
	Binary string

	wav WAVDecoder
}

// Decode implements [Decoder].
func (d FFmpegDecoder) Decode(ctx context.Context, path string, targetRate int) ([]float64, int, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return d.wav.Decode(ctx, path, targetRate)
	}

	bin := d.Binary
	if bin == "" {
		bin = "ffmpeg"
	}

	tmpDir, err := os.MkdirTemp("", "qualityqueue-decode-")
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shared.ErrDecode, err)
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, "decoded.wav")
	cmd := exec.CommandContext(
		ctx,
		bin,
		"-y",
		"-v", "quiet",
		"-i", path,
		"-ac", "1", // mono
		"-ar", fmt.Sprintf("%d", targetRate),
		"-c:a", "pcm_s16le",
		tmpPath,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, fmt.Errorf("%w: ffmpeg: %v (%s)", shared.ErrDecode, err, strings.TrimSpace(string(out)))
	}

	return d.wav.Decode(ctx, tmpPath, targetRate)
}
