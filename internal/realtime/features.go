// Package realtime extracts lightweight per-frame audio features for driving
// in-game visuals while a track plays.
package realtime

import (
	"math"

	"github.com/soundglide/soundglide/internal/dsp"
	"github.com/soundglide/soundglide/internal/model"
)

// BandCount is the number of coarse spectrum bands reported per frame.
const BandCount = 8

// SnapshotSource provides per-frame audio snapshots. FrequencyData returns
// magnitude bins in decibels and TimeDomainData the raw sample window, both
// for the most recent frame.
type SnapshotSource interface {
	FrequencyData() []float64
	TimeDomainData() []float64
}

// Extractor computes frame features from a snapshot source. The previous
// frame's linear spectrum is the only state kept between calls, used for the
// spectral flux. Not safe for concurrent use.
type Extractor struct {
	source       SnapshotSource
	prevSpectrum []float64
}

// NewExtractor returns an extractor reading from source.
func NewExtractor(source SnapshotSource) *Extractor {
	return &Extractor{source: source}
}

// Extract computes the current frame's features. A nil source or empty
// snapshot yields a zero-valued result with all bands at zero.
func (e *Extractor) Extract() model.RealtimeFeatures {
	out := model.RealtimeFeatures{BandEnergies: make([]float64, BandCount)}
	if e.source == nil {
		return out
	}

	if samples := e.source.TimeDomainData(); len(samples) > 0 {
		out.RMS = dsp.RMS(samples)
		out.ZCR = zeroCrossingRate(samples)
	}

	db := e.source.FrequencyData()
	if len(db) == 0 {
		return out
	}
	mags := make([]float64, len(db))
	for i, v := range db {
		mags[i] = math.Pow(10, v/20)
	}

	out.SpectralCentroid = centroid(mags)
	out.SpectralFlux = e.flux(mags)
	fillBands(out.BandEnergies, mags)
	e.prevSpectrum = mags
	return out
}

// Reset drops the previous-frame state, e.g. when playback seeks.
func (e *Extractor) Reset() {
	e.prevSpectrum = nil
}

// zeroCrossingRate counts sign changes per sample.
func zeroCrossingRate(samples []float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(samples); i++ {
		if (samples[i] >= 0) != (samples[i-1] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(samples))
}

// centroid is the magnitude-weighted mean bin index normalized to [0,1].
func centroid(mags []float64) float64 {
	var weighted, total float64
	for i, m := range mags {
		weighted += float64(i) * m
		total += m
	}
	if total <= 0 {
		return 0
	}
	return weighted / total / float64(len(mags))
}

// flux sums the positive bin-wise increases since the previous frame. The
// first frame after a reset has nothing to compare against and reports zero.
func (e *Extractor) flux(mags []float64) float64 {
	if len(e.prevSpectrum) != len(mags) {
		return 0
	}
	var sum float64
	for i, m := range mags {
		if d := m - e.prevSpectrum[i]; d > 0 {
			sum += d
		}
	}
	return sum
}

// fillBands partitions the spectrum into len(bands) contiguous ranges and
// writes each range's mean magnitude.
func fillBands(bands, mags []float64) {
	n := len(bands)
	for b := 0; b < n; b++ {
		lo := b * len(mags) / n
		hi := (b + 1) * len(mags) / n
		if hi <= lo {
			bands[b] = 0
			continue
		}
		bands[b] = dsp.Mean(mags[lo:hi])
	}
}
