package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/soundglide/soundglide/internal/dsp"
	"github.com/soundglide/soundglide/internal/model"
)

// Onset tunables
const (
	onsetHopMs      = 10
	onsetWindowSize = 2048

	// Energy-flux threshold. Band energies are Parseval-scaled so their total
	// equals the window's mean-square amplitude, keeping this comparable
	// across sample rates.
	onsetFluxThreshold = 0.02

	// Onsets closer than this to their predecessor are coalesced.
	onsetDedupeSec = 0.05

	onsetStrengthGain = 10.0
)

// DetectOnsets finds transient events via frame-to-frame energy flux. Each
// window's magnitude spectrum is split into three contiguous thirds as coarse
// low/mid/high bands; an onset fires when total energy rises by more than the
// flux threshold, tagged with the dominant band.
func DetectOnsets(samples []float64, sampleRate int) []model.OnsetEvent {
	if sampleRate <= 0 || len(samples) < onsetWindowSize {
		return nil
	}

	hop := sampleRate * onsetHopMs / 1000
	if hop < 1 {
		hop = 1
	}

	var onsets []model.OnsetEvent
	prevTotal := 0.0
	lastOnset := -onsetDedupeSec

	frame := make([]float64, onsetWindowSize)
	for start := 0; start+onsetWindowSize <= len(samples); start += hop {
		copy(frame, samples[start:start+onsetWindowSize])
		low, mid, high := bandEnergies(frame)
		total := low + mid + high

		flux := total - prevTotal
		prevTotal = total
		if flux <= onsetFluxThreshold {
			continue
		}

		t := float64(start) / float64(sampleRate)
		if t-lastOnset < onsetDedupeSec {
			continue
		}
		lastOnset = t

		band := model.BandLow
		if mid > low && mid >= high {
			band = model.BandMid
		} else if high > low && high > mid {
			band = model.BandHigh
		}

		onsets = append(onsets, model.OnsetEvent{
			Time:     t,
			Strength: dsp.Clamp(flux*onsetStrengthGain, 0, 1),
			Band:     band,
		})
	}
	return onsets
}

// bandEnergies splits the window's magnitude spectrum into three contiguous
// thirds and sums each. The 2/N^2 factor makes the three bands total the
// window's mean-square amplitude (Parseval), independent of window size.
func bandEnergies(frame []float64) (low, mid, high float64) {
	spectrum := fft.FFTReal(frame)
	half := len(spectrum) / 2
	third := half / 3
	scale := 2.0 / float64(len(frame)*len(frame))

	for i := 0; i < half; i++ {
		mag := cmplx.Abs(spectrum[i])
		e := mag * mag * scale
		switch {
		case i < third:
			low += e
		case i < 2*third:
			mid += e
		default:
			high += e
		}
	}
	return low, mid, high
}
