package analysis

import (
	"math"

	"github.com/soundglide/soundglide/internal/dsp"
	"github.com/soundglide/soundglide/internal/model"
)

// Pitch tunables
const (
	pitchHopMs    = 20
	pitchWindowMs = 40

	pitchMinHz = 80.0
	pitchMaxHz = 1000.0

	// Correlation sums are bounded to this many samples per lag.
	pitchCorrSpan = 512

	// Windows whose mean-square energy falls below this are treated as
	// silence and emitted as zero-confidence points.
	pitchSilenceThreshold = 1e-4

	// Every Nth analysis frame reaches the output contour.
	pitchDownsample = 5
)

// ExtractPitchContour runs short-window normalized autocorrelation over each
// frame and emits a sparse, time-ordered contour. This is coarse monophonic
// tracking: polyphonic or noisy material produces low-confidence points whose
// frequencies are musically meaningless, so confidence must gate all
// downstream use.
func ExtractPitchContour(samples []float64, sampleRate int) []model.PitchPoint {
	if sampleRate <= 0 || len(samples) == 0 {
		return nil
	}

	hop := sampleRate * pitchHopMs / 1000
	window := sampleRate * pitchWindowMs / 1000
	if hop < 1 || window < 2 {
		return nil
	}

	minLag := int(float64(sampleRate) / pitchMaxHz)
	maxLag := int(float64(sampleRate) / pitchMinHz)
	if minLag < 1 {
		minLag = 1
	}

	var contour []model.PitchPoint
	frameIdx := 0
	for start := 0; start+window <= len(samples); start += hop {
		if frameIdx%pitchDownsample != 0 {
			frameIdx++
			continue
		}
		frameIdx++

		t := float64(start) / float64(sampleRate)
		frame := samples[start : start+window]

		var energy float64
		for _, s := range frame {
			energy += s * s
		}
		if energy/float64(window) < pitchSilenceThreshold {
			contour = append(contour, model.PitchPoint{Time: t})
			continue
		}

		freq, conf := detectPitch(frame, sampleRate, minLag, maxLag)
		contour = append(contour, model.PitchPoint{
			Time:       t,
			Frequency:  freq,
			Confidence: conf,
		})
	}
	return contour
}

// detectPitch picks the lag with the highest normalized autocorrelation in
// [minLag, maxLag]. The correlation value doubles as confidence.
func detectPitch(frame []float64, sampleRate, minLag, maxLag int) (freq, confidence float64) {
	bestLag := 0
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag && lag < len(frame); lag++ {
		span := len(frame) - lag
		if span > pitchCorrSpan {
			span = pitchCorrSpan
		}
		var cross, e0, e1 float64
		for i := 0; i < span; i++ {
			cross += frame[i] * frame[i+lag]
			e0 += frame[i] * frame[i]
			e1 += frame[i+lag] * frame[i+lag]
		}
		denom := math.Sqrt(e0 * e1)
		if denom == 0 {
			continue
		}
		corr := cross / denom
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}
	if bestLag == 0 {
		return 0, 0
	}
	return float64(sampleRate) / float64(bestLag), dsp.Clamp(bestCorr, 0, 1)
}
