package audio

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"qualityqueue/internal/shared"
)

// Feature vector layout produced by [Extractor.Extract].
const (
	FeatureDynamicRange = iota
	FeatureSpectralRolloff
	FeatureSpectralCentroid
	FeatureSpectralBandwidth
	FeatureCount
)

// Extractor reduces decoded samples to a fixed-size numeric feature vector.
// Implementations must be pure: no shared mutable state, safe for concurrent use.
type Extractor interface {
	Extract(samples []float64, sampleRate int) ([]float64, error)
}

// SpectralExtractor computes the default feature set: dynamic range plus
// frame-averaged spectral rolloff, centroid, and bandwidth from an STFT
// magnitude spectrogram.
type SpectralExtractor struct {
	WindowSize     int     // STFT window length, defaults to 1024
	HopSize        int     // STFT hop length, defaults to 256
	RolloffPercent float64 // Energy fraction for rolloff, defaults to 0.90
}

// Extract implements [Extractor].
func (e SpectralExtractor) Extract(samples []float64, sampleRate int) ([]float64, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples", shared.ErrExtract)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: invalid sample rate %d", shared.ErrExtract, sampleRate)
	}

	windowSize := e.WindowSize
	if windowSize == 0 {
		windowSize = 1024
	}
	hopSize := e.HopSize
	if hopSize == 0 {
		hopSize = 256
	}
	rolloff := e.RolloffPercent
	if rolloff == 0 {
		rolloff = 0.90
	}

	minVal, maxVal := samples[0], samples[0]
	for _, s := range samples[1:] {
		if s < minVal {
			minVal = s
		}
		if s > maxVal {
			maxVal = s
		}
	}

	spectrogram := stft(samples, windowSize, hopSize)

	var rolloffSum, centroidSum, bandwidthSum float64
	for _, mag := range spectrogram {
		c := centroid(mag, sampleRate, windowSize)
		rolloffSum += rolloffFreq(mag, sampleRate, windowSize, rolloff)
		centroidSum += c
		bandwidthSum += bandwidth(mag, sampleRate, windowSize, c)
	}
	frames := float64(len(spectrogram))

	return []float64{
		maxVal - minVal,
		rolloffSum / frames,
		centroidSum / frames,
		bandwidthSum / frames,
	}, nil
}

// hamming returns a Hamming window of length n.
func hamming(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// stft computes a time-major magnitude spectrogram (positive frequencies only).
// Inputs shorter than one window are zero-padded to a single frame.
func stft(samples []float64, windowSize, hopSize int) [][]float64 {
	if len(samples) < windowSize {
		padded := make([]float64, windowSize)
		copy(padded, samples)
		samples = padded
	}

	window := hamming(windowSize)
	var spectrogram [][]float64
	for start := 0; start+windowSize <= len(samples); start += hopSize {
		frame := make([]float64, windowSize)
		copy(frame, samples[start:start+windowSize])
		for i := range frame {
			frame[i] *= window[i]
		}

		spectrum := fft.FFTReal(frame)
		mag := make([]float64, windowSize/2)
		for i := range mag {
			mag[i] = cmplx.Abs(spectrum[i])
		}
		spectrogram = append(spectrogram, mag)
	}
	return spectrogram
}

// binFreq returns the center frequency of an FFT bin.
func binFreq(bin, sampleRate, windowSize int) float64 {
	return float64(bin) * float64(sampleRate) / float64(windowSize)
}

// rolloffFreq returns the frequency below which percent of the total spectral
// magnitude is contained.
func rolloffFreq(mag []float64, sampleRate, windowSize int, percent float64) float64 {
	var total float64
	for _, m := range mag {
		total += m
	}
	if total == 0 {
		return 0
	}
	threshold := percent * total
	var cum float64
	for i, m := range mag {
		cum += m
		if cum >= threshold {
			return binFreq(i, sampleRate, windowSize)
		}
	}
	return binFreq(len(mag)-1, sampleRate, windowSize)
}

// centroid returns the magnitude-weighted mean frequency of a frame.
func centroid(mag []float64, sampleRate, windowSize int) float64 {
	var weighted, total float64
	for i, m := range mag {
		weighted += binFreq(i, sampleRate, windowSize) * m
		total += m
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// bandwidth returns the magnitude-weighted standard deviation of frequency
// around the frame centroid.
func bandwidth(mag []float64, sampleRate, windowSize int, centroid float64) float64 {
	var weighted, total float64
	for i, m := range mag {
		d := binFreq(i, sampleRate, windowSize) - centroid
		weighted += m * d * d
		total += m
	}
	if total == 0 {
		return 0
	}
	return math.Sqrt(weighted / total)
}
