// Package pathgen converts a SongMap into the smooth 3D "ideal path" the
// player's orb is scored against: pitch drives the lateral axis, energy the
// vertical axis, and time advances at a constant forward speed.
package pathgen

import (
	"sort"

	"github.com/soundglide/soundglide/internal/dsp"
	"github.com/soundglide/soundglide/internal/model"
)

// Path tunables
const (
	// SampleRate is the path sampling density in points per second.
	SampleRate = 15.0

	// defaultFrequency stands in when the contour gives no usable pitch.
	defaultFrequency = 220.0

	// rangeExpandHz widens a collapsed pitch range symmetrically so constant
	// pitch maps to the lateral center instead of dividing by zero.
	rangeExpandHz = 50.0

	// Contour samples below this confidence fall back to defaultFrequency.
	negligibleConfidence = 0.05

	// Contour points below this confidence do not define the observed range.
	rangeConfidence = 0.2

	// Two successive centered moving-average passes, the second half as wide,
	// remove jitter while preserving the large-scale contour.
	smoothFirstWindow  = 9
	smoothSecondWindow = 5
)

// Generate samples the ideal path at a fixed rate across the whole track.
// The output length is floor(duration * SampleRate) and times are strictly
// increasing; smoothing never changes the length.
func Generate(m *model.SongMap) []model.PathPoint {
	if m == nil || m.Duration <= 0 {
		return nil
	}
	n := int(m.Duration * SampleRate)
	if n <= 0 {
		return nil
	}

	minFreq, maxFreq := pitchRange(m.PitchContour)
	mult := movementMultiplier(m.Danceability)

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate

		freq, conf := sampleContour(m.PitchContour, t)
		if conf < negligibleConfidence {
			freq = defaultFrequency
		}
		norm := dsp.Clamp(2*(freq-minFreq)/(maxFreq-minFreq)-1, -1, 1)
		xs[i] = norm * model.LateralRange * mult

		ys[i] = model.BaseAltitude + sampleEnergy(m.EnergyCurve, t)*model.VerticalRange
	}

	xs = dsp.MovingAverage(dsp.MovingAverage(xs, smoothFirstWindow), smoothSecondWindow)
	ys = dsp.MovingAverage(dsp.MovingAverage(ys, smoothFirstWindow), smoothSecondWindow)

	path := make([]model.PathPoint, n)
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		path[i] = model.PathPoint{
			Time: t,
			Position: model.Vec3{
				X: xs[i],
				Y: ys[i],
				// Z stays exact: it must match the game-side forward motion
				// or sync scoring drifts over the track.
				Z: -model.ForwardSpeed * t,
			},
		}
	}
	return path
}

// movementMultiplier scales lateral motion with danceability: calm tracks
// drift gently, danceable tracks sweep the full range and beyond.
func movementMultiplier(danceability float64) float64 {
	return 0.5 + dsp.Clamp(danceability, 0, 1)
}

// pitchRange returns the observed frequency range over confident contour
// points, expanded symmetrically when it collapses to (near) zero width.
func pitchRange(contour []model.PitchPoint) (min, max float64) {
	first := true
	for _, p := range contour {
		if p.Confidence < rangeConfidence {
			continue
		}
		if first {
			min, max = p.Frequency, p.Frequency
			first = false
			continue
		}
		if p.Frequency < min {
			min = p.Frequency
		}
		if p.Frequency > max {
			max = p.Frequency
		}
	}
	if first {
		min, max = defaultFrequency, defaultFrequency
	}
	if max-min < 1e-3 {
		min -= rangeExpandHz
		max += rangeExpandHz
	}
	return min, max
}

// sampleContour interpolates frequency and confidence between the contour
// points bracketing t, located by binary search.
func sampleContour(contour []model.PitchPoint, t float64) (freq, confidence float64) {
	if len(contour) == 0 {
		return 0, 0
	}
	idx := sort.Search(len(contour), func(i int) bool { return contour[i].Time > t })
	if idx == 0 {
		return contour[0].Frequency, contour[0].Confidence
	}
	if idx == len(contour) {
		last := contour[len(contour)-1]
		return last.Frequency, last.Confidence
	}
	p0, p1 := contour[idx-1], contour[idx]
	span := p1.Time - p0.Time
	if span <= 0 {
		return p0.Frequency, p0.Confidence
	}
	w := (t - p0.Time) / span
	return p0.Frequency + (p1.Frequency-p0.Frequency)*w,
		p0.Confidence + (p1.Confidence-p0.Confidence)*w
}

// sampleEnergy linearly interpolates the energy curve at t.
func sampleEnergy(curve []model.EnergyPoint, t float64) float64 {
	if len(curve) == 0 {
		return 0
	}
	idx := sort.Search(len(curve), func(i int) bool { return curve[i].Time > t })
	if idx == 0 {
		return curve[0].Energy
	}
	if idx == len(curve) {
		return curve[len(curve)-1].Energy
	}
	p0, p1 := curve[idx-1], curve[idx]
	span := p1.Time - p0.Time
	if span <= 0 {
		return p0.Energy
	}
	w := (t - p0.Time) / span
	return p0.Energy + (p1.Energy-p0.Energy)*w
}
