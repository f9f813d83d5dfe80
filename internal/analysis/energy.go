package analysis

import (
	"github.com/soundglide/soundglide/internal/dsp"
	"github.com/soundglide/soundglide/internal/model"
)

// energyCurveRate is the fixed output rate of the energy curve in samples
// per second of audio.
const energyCurveRate = 30

// ExtractEnergyCurve computes a fixed-rate RMS curve normalized so the track
// peak is 1.0. Windows overlap: each covers two hops. Silence yields an
// all-zero curve (normalization is skipped when the peak is zero).
func ExtractEnergyCurve(samples []float64, sampleRate int) []model.EnergyPoint {
	if sampleRate <= 0 || len(samples) == 0 {
		return nil
	}

	hop := sampleRate / energyCurveRate
	if hop < 1 {
		hop = 1
	}
	window := hop * 2

	// Pass 1: raw RMS per hop
	n := len(samples) / hop
	raw := make([]float64, 0, n)
	for start := 0; start+hop <= len(samples); start += hop {
		raw = append(raw, dsp.WindowRMS(samples, start, window))
	}

	// Pass 2: global-max normalization
	norm := dsp.NormalizePeak(raw)

	curve := make([]model.EnergyPoint, len(norm))
	for i, e := range norm {
		curve[i] = model.EnergyPoint{
			Time:   float64(i*hop) / float64(sampleRate),
			Energy: e,
		}
	}
	return curve
}
