// Package analysis implements the offline song-structure pipeline: tempo and
// beat estimation, energy and onset extraction, pitch contour, key detection,
// and section segmentation, assembled into a single SongMap.
package analysis

import (
	"github.com/goccmack/godsp/peaks"

	"github.com/soundglide/soundglide/internal/dsp"
)

// Tempo tunables
const (
	tempoHopMs    = 10 // envelope hop
	tempoWindowMs = 20 // envelope window

	minRawBPM = 60
	maxRawBPM = 200

	// Folded output range. Raw estimates outside it are doubled/halved in.
	minFoldedBPM = 80
	maxFoldedBPM = 180

	// Correlation sums are limited to this many onset-strength samples to
	// bound cost on long tracks (~20 s of envelope at a 10 ms hop).
	tempoCorrSpan = 2000

	fallbackBPM = 120
)

// EstimateBPM detects the dominant tempo of a mono buffer by autocorrelating
// an onset-strength envelope over lags in the 60-200 BPM range and folding
// the winner into [80, 180]. Every input produces some winning lag; silence
// or rhythm-free material yields a plausible but meaningless value.
func EstimateBPM(samples []float64, sampleRate int) int {
	if sampleRate <= 0 || len(samples) == 0 {
		return fallbackBPM
	}

	hop := sampleRate * tempoHopMs / 1000
	window := sampleRate * tempoWindowMs / 1000
	envelope := dsp.ShortTimeEnergy(samples, hop, window)
	onsetStrength := dsp.HalfWaveDiff(envelope)
	if len(onsetStrength) == 0 {
		return fallbackBPM
	}

	// Envelope frame rate is 1000/tempoHopMs frames per second; a beat period
	// of 60/bpm seconds therefore spans frameRate*60/bpm frames.
	frameRate := 1000.0 / float64(tempoHopMs)
	minLag := int(frameRate * 60 / maxRawBPM)
	maxLag := int(frameRate * 60 / minRawBPM)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(onsetStrength) {
		maxLag = len(onsetStrength) - 1
	}
	if maxLag < minLag {
		return fallbackBPM
	}

	span := len(onsetStrength)
	if span > tempoCorrSpan {
		span = tempoCorrSpan
	}

	corr := make([]float64, maxLag+1)
	for lag := minLag; lag <= maxLag; lag++ {
		var sum float64
		for i := 0; i+lag < len(onsetStrength) && i < span; i++ {
			sum += onsetStrength[i] * onsetStrength[i+lag]
		}
		corr[lag] = sum
	}

	bestLag := pickBestLag(corr, minLag, maxLag)
	if bestLag <= 0 {
		return fallbackBPM
	}

	bpm := int(frameRate*60/float64(bestLag) + 0.5)
	return FoldBPM(bpm)
}

// pickBestLag prefers a peak-picked candidate and falls back to the raw
// argmax when the separation filter leaves nothing in range.
func pickBestLag(corr []float64, minLag, maxLag int) int {
	best := -1
	for _, idx := range peaks.Get(corr, minLag/2) {
		if idx < minLag || idx > maxLag {
			continue
		}
		if best < 0 || corr[idx] > corr[best] {
			best = idx
		}
	}
	if best >= 0 {
		return best
	}
	for lag := minLag; lag <= maxLag; lag++ {
		if best < 0 || corr[lag] > corr[best] {
			best = lag
		}
	}
	return best
}

// FoldBPM doubles or halves bpm until it falls inside the conventional
// [80, 180] window. Folding is idempotent once in range.
func FoldBPM(bpm int) int {
	if bpm <= 0 {
		return fallbackBPM
	}
	for bpm < minFoldedBPM {
		bpm *= 2
	}
	for bpm > maxFoldedBPM {
		bpm /= 2
	}
	return bpm
}
