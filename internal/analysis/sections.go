package analysis

import (
	"github.com/soundglide/soundglide/internal/dsp"
	"github.com/soundglide/soundglide/internal/model"
)

// Section segmentation tunables
const (
	sectionSmoothSec     = 3.0  // centered moving-average width
	sectionChangeDelta   = 0.08 // smoothed frame-to-frame change that opens a boundary
	sectionMinDurationSec = 5.0 // minimum section length
	sectionMinSamples    = 10   // below this the track is one section
)

// SegmentSections splits the track into contiguous labeled sections by
// change-point detection on the smoothed energy curve. Sections tile
// [0, duration] exactly. Tracks with too few energy samples collapse to a
// single intro section.
func SegmentSections(curve []model.EnergyPoint, duration float64) []model.Section {
	if duration <= 0 {
		return nil
	}
	if len(curve) < sectionMinSamples {
		return []model.Section{{StartTime: 0, EndTime: duration, Label: "intro", Energy: meanEnergy(curve, 0, len(curve))}}
	}

	// Curve is fixed-rate, so window width in samples follows from timing.
	dt := curve[1].Time - curve[0].Time
	if dt <= 0 {
		dt = 1.0 / energyCurveRate
	}
	smoothWin := int(sectionSmoothSec / dt)

	values := make([]float64, len(curve))
	for i, p := range curve {
		values[i] = p.Energy
	}
	smoothed := dsp.MovingAverage(values, smoothWin)

	// Walk at one-second strides: after 3 s of smoothing, per-sample deltas
	// are too diluted to carry change-point information.
	stride := int(1.0 / dt)
	if stride < 1 {
		stride = 1
	}
	var boundaries []int
	lastBoundaryTime := 0.0
	for i := stride; i < len(smoothed); i += stride {
		change := smoothed[i] - smoothed[i-stride]
		if change < 0 {
			change = -change
		}
		if change > sectionChangeDelta && curve[i].Time-lastBoundaryTime >= sectionMinDurationSec {
			boundaries = append(boundaries, i)
			lastBoundaryTime = curve[i].Time
		}
	}

	starts := append([]int{0}, boundaries...)
	sections := make([]model.Section, 0, len(starts))
	for si, start := range starts {
		end := len(curve)
		endTime := duration
		if si+1 < len(starts) {
			end = starts[si+1]
			endTime = curve[end].Time
		}
		avg := dsp.Mean(smoothed[start:end])
		sections = append(sections, model.Section{
			StartTime: startTime(curve, start),
			EndTime:   endTime,
			Energy:    avg,
			Label:     labelForEnergy(avg),
		})
	}

	// Position overrides energy for the outer sections.
	sections[0].Label = "intro"
	sections[0].StartTime = 0
	if len(sections) > 1 {
		sections[len(sections)-1].Label = "outro"
	}
	return sections
}

func startTime(curve []model.EnergyPoint, idx int) float64 {
	if idx == 0 {
		return 0
	}
	return curve[idx].Time
}

func labelForEnergy(avg float64) string {
	switch {
	case avg >= 0.7:
		return "chorus"
	case avg >= 0.4:
		return "verse"
	default:
		return "bridge"
	}
}

func meanEnergy(curve []model.EnergyPoint, start, end int) float64 {
	if start >= end {
		return 0
	}
	var sum float64
	for _, p := range curve[start:end] {
		sum += p.Energy
	}
	return sum / float64(end-start)
}
