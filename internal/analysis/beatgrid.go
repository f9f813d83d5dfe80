package analysis

import (
	"github.com/soundglide/soundglide/internal/dsp"
	"github.com/soundglide/soundglide/internal/model"
)

// Beat grid tunables
const (
	anchorSearchSec   = 2.0  // window scanned for the phase anchor
	anchorFrameMs     = 20   // short-window energy frame for the anchor scan
	beatStrengthWinMs = 100  // local RMS window around each beat
	downbeatBonus     = 0.3  // strength boost for downbeats
	beatsPerMeasure   = 4
)

// GenerateBeatGrid projects a fixed-interval grid at the given BPM across
// [anchor, duration]. The anchor is the highest-energy frame in the first two
// seconds, standing in for the first strong onset. Every fourth beat by index
// is a downbeat. Deterministic for identical input.
func GenerateBeatGrid(samples []float64, sampleRate, bpm int, duration float64) []model.BeatEvent {
	if sampleRate <= 0 || bpm <= 0 || duration <= 0 {
		return nil
	}

	anchor := findAnchor(samples, sampleRate)
	interval := 60.0 / float64(bpm)

	var beats []model.BeatEvent
	strengthWin := sampleRate * beatStrengthWinMs / 1000
	raw := make([]float64, 0, int(duration/interval)+1)
	for t := anchor; t < duration; t += interval {
		center := int(t * float64(sampleRate))
		raw = append(raw, dsp.WindowRMS(samples, center-strengthWin/2, strengthWin))
		beats = append(beats, model.BeatEvent{
			Time:       t,
			IsDownbeat: len(beats)%beatsPerMeasure == 0,
		})
	}

	// Per-beat strength is local RMS normalized against the loudest beat,
	// with a downbeat bonus clamped at full strength.
	norm := dsp.NormalizePeak(raw)
	for i := range beats {
		s := norm[i]
		if beats[i].IsDownbeat {
			s += downbeatBonus
		}
		beats[i].Strength = dsp.Clamp(s, 0, 1)
	}
	return beats
}

// findAnchor returns the time of peak short-window energy within the opening
// seconds of the track, which in practice lands on the first strong onset.
func findAnchor(samples []float64, sampleRate int) float64 {
	frame := sampleRate * anchorFrameMs / 1000
	if frame <= 0 {
		return 0
	}
	limit := int(anchorSearchSec * float64(sampleRate))
	if limit > len(samples) {
		limit = len(samples)
	}

	bestStart := 0
	bestEnergy := -1.0
	for start := 0; start+frame <= limit; start += frame {
		var sum float64
		for _, s := range samples[start : start+frame] {
			sum += s * s
		}
		if sum > bestEnergy {
			bestEnergy = sum
			bestStart = start
		}
	}
	return float64(bestStart) / float64(sampleRate)
}
