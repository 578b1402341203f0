// Package fingerprint computes and compares per-file audio quality
// fingerprints.
//
// A [Fingerprint] is an ordered tuple of four numeric features. Two files are
// considered the same track iff their fingerprints are bit-identical in every
// feature; the weighted [Weights.Score] scalar is only ever used to break ties
// between already-matched files, never for matching itself.
package fingerprint

import (
	"encoding/json"
	"fmt"

	"qualityqueue/internal/audio"
)

// Fingerprint is the fixed-size quality feature tuple for one audio file.
// The JSON form is a four-element array in declaration order, matching the
// persisted cache and session documents.
type Fingerprint struct {
	DynamicRange      float64
	SpectralRolloff   float64
	SpectralCentroid  float64
	SpectralBandwidth float64
}

// FromVector builds a Fingerprint from an extractor feature vector.
func FromVector(vec []float64) (Fingerprint, error) {
	if len(vec) != audio.FeatureCount {
		return Fingerprint{}, fmt.Errorf("expected %d features, got %d", audio.FeatureCount, len(vec))
	}
	return Fingerprint{
		DynamicRange:      vec[audio.FeatureDynamicRange],
		SpectralRolloff:   vec[audio.FeatureSpectralRolloff],
		SpectralCentroid:  vec[audio.FeatureSpectralCentroid],
		SpectralBandwidth: vec[audio.FeatureSpectralBandwidth],
	}, nil
}

// Vector returns the features in declaration order.
func (fp Fingerprint) Vector() []float64 {
	return []float64{fp.DynamicRange, fp.SpectralRolloff, fp.SpectralCentroid, fp.SpectralBandwidth}
}

// Equal reports whether every feature value is bit-identical. This is the
// match predicate used throughout reconciliation.
func (fp Fingerprint) Equal(other Fingerprint) bool {
	return fp == other
}

// MarshalJSON encodes the fingerprint as a four-element array.
func (fp Fingerprint) MarshalJSON() ([]byte, error) {
	return json.Marshal(fp.Vector())
}

// UnmarshalJSON decodes the four-element array form.
func (fp *Fingerprint) UnmarshalJSON(data []byte) error {
	var vec []float64
	if err := json.Unmarshal(data, &vec); err != nil {
		return err
	}
	parsed, err := FromVector(vec)
	if err != nil {
		return err
	}
	*fp = parsed
	return nil
}

// Weights holds the per-feature coefficients for deriving a quality score.
// The four weights are expected to sum to 1.0.
type Weights struct {
	DynamicRange      float64
	SpectralRolloff   float64
	SpectralCentroid  float64
	SpectralBandwidth float64
}

// DefaultWeights returns the standard scoring weights.
func DefaultWeights() Weights {
	return Weights{
		DynamicRange:      0.4,
		SpectralRolloff:   0.2,
		SpectralCentroid:  0.2,
		SpectralBandwidth: 0.2,
	}
}

// Score computes the weighted-sum quality scalar for a fingerprint.
func (w Weights) Score(fp Fingerprint) float64 {
	return fp.DynamicRange*w.DynamicRange +
		fp.SpectralRolloff*w.SpectralRolloff +
		fp.SpectralCentroid*w.SpectralCentroid +
		fp.SpectralBandwidth*w.SpectralBandwidth
}

// ScoreOrSentinel scores a possibly-absent fingerprint. Absence scores as -1,
// a sentinel lower than any real score, so a file with any real fingerprint
// always outranks one whose analysis failed.
func (w Weights) ScoreOrSentinel(fp *Fingerprint) float64 {
	if fp == nil {
		return -1
	}
	return w.Score(*fp)
}
