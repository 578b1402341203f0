// package testing contains shared testing utilities
package testing

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV writes 16-bit PCM samples (normalized floats) to a WAV file.
func WriteWAV(t *testing.T, path string, samples []float64, sampleRate, channels int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s * 32767)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Data:           data,
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to write WAV data: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to finalize WAV: %v", err)
	}
}

// Sine generates n samples of a pure tone at the given frequency and rate.
func Sine(freq float64, rate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(rate))
	}
	return out
}

// WriteSine writes a half-second mono sine tone into dir and returns its path.
func WriteSine(t *testing.T, dir, name string, rate int, freq, amplitude float64) string {
	t.Helper()

	samples := Sine(freq, rate, rate/2)
	for i := range samples {
		samples[i] *= amplitude
	}
	path := filepath.Join(dir, name)
	WriteWAV(t, path, samples, rate, 1)
	return path
}
