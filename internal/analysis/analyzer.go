package analysis

import (
	"math"

	"github.com/soundglide/soundglide/internal/audio"
	"github.com/soundglide/soundglide/internal/dsp"
	"github.com/soundglide/soundglide/internal/model"
)

// ProgressFunc receives fractional progress in [0,1]. It is invoked
// synchronously on the analyzing goroutine at stage boundaries, with
// monotonically increasing values.
type ProgressFunc func(fraction float64)

// Danceability blend weights: mean track energy vs. beat-interval regularity.
const (
	danceEnergyWeight     = 0.6
	danceRegularityWeight = 0.4
)

// Analyzer runs the offline pipeline. A zero-value Analyzer is ready to use;
// separate instances are independent, so multiple tracks can be analyzed
// concurrently in tests.
type Analyzer struct{}

// NewAnalyzer returns a new Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze runs every analysis stage in dependency order and assembles one
// immutable SongMap. It never fails on degenerate audio: every stage defines
// a fallback, so assembly always completes. IdealPath is left empty for the
// path generator to attach.
func (a *Analyzer) Analyze(buf *audio.Buffer, onProgress ProgressFunc) *model.SongMap {
	report := func(f float64) {
		if onProgress != nil {
			onProgress(f)
		}
	}

	samples := buf.Samples
	rate := buf.SampleRate
	duration := buf.Duration()

	bpm := EstimateBPM(samples, rate)
	report(0.15)

	beats := GenerateBeatGrid(samples, rate, bpm, duration)
	report(0.30)

	energy := ExtractEnergyCurve(samples, rate)
	report(0.45)

	onsets := DetectOnsets(samples, rate)
	report(0.60)

	pitch := ExtractPitchContour(samples, rate)
	report(0.75)

	key := DetectKey(samples, rate)
	report(0.85)

	sections := SegmentSections(energy, duration)
	report(0.95)

	m := &model.SongMap{
		BPM:          bpm,
		Key:          key,
		Danceability: danceability(energy, beats),
		Duration:     duration,
		Beats:        beats,
		Onsets:       onsets,
		Sections:     sections,
		PitchContour: pitch,
		EnergyCurve:  energy,
	}
	report(1.0)
	return m
}

// danceability blends mean track energy with beat-interval regularity
// (inverted coefficient of variation), clamped to [0,1]. Silence scores 0.
func danceability(energy []model.EnergyPoint, beats []model.BeatEvent) float64 {
	if len(energy) == 0 {
		return 0
	}
	values := make([]float64, len(energy))
	for i, p := range energy {
		values[i] = p.Energy
	}
	meanEnergy := dsp.Mean(values)
	if meanEnergy <= 0 {
		return 0
	}

	regularity := 0.0
	if len(beats) >= 3 {
		intervals := make([]float64, len(beats)-1)
		for i := 1; i < len(beats); i++ {
			intervals[i-1] = beats[i].Time - beats[i-1].Time
		}
		mean := dsp.Mean(intervals)
		if mean > 0 {
			var variance float64
			for _, iv := range intervals {
				d := iv - mean
				variance += d * d
			}
			variance /= float64(len(intervals))
			cov := math.Sqrt(variance) / mean
			regularity = dsp.Clamp(1-cov, 0, 1)
		}
	}

	return dsp.Clamp(danceEnergyWeight*meanEnergy+danceRegularityWeight*regularity, 0, 1)
}
