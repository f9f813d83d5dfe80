// Package tracking scores how closely a moving position follows the ideal
// path during playback and turns the accumulated samples into a final score.
package tracking

import (
	"math"

	"github.com/soundglide/soundglide/internal/dsp"
	"github.com/soundglide/soundglide/internal/model"
)

const (
	// MaxDistance is the planar distance at which sync bottoms out at zero.
	MaxDistance = 4.0

	// Alpha is the display smoothing factor at the 60fps reference frame.
	Alpha = 0.05

	// Score samples accumulate at most once per this much song time.
	sampleInterval = 0.1

	// Playback may seek backwards this far without resetting the cursor.
	backtrackWindow = 0.5

	// Frame deltas above this are treated as hitches, not real time.
	maxFrameDelta = 0.1
)

// Tracker follows playback through an ideal path and maintains both the raw
// per-frame sync value and a smoothed display value. It is not safe for
// concurrent use.
type Tracker struct {
	rawSync        float64
	displaySync    float64
	scoreSamples   []float64
	lastSampleTime float64
	cursor         int
}

// NewTracker returns a tracker in its initial fully-synced state.
func NewTracker() *Tracker {
	return &Tracker{rawSync: 1.0, displaySync: 1.0, lastSampleTime: -sampleInterval}
}

// Update advances the tracker one frame. pos is the player position, path the
// ideal path, now the current song time in seconds and dt the frame delta.
// It returns the smoothed display sync in [0,1].
func (t *Tracker) Update(pos model.Vec3, path []model.PathPoint, now, dt float64) float64 {
	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}

	if len(path) == 0 {
		// Nothing to follow: relax toward full sync without scoring.
		t.rawSync = 1.0
		t.displaySync = t.smooth(1.0, dt)
		return t.displaySync
	}

	t.advanceCursor(path, now)
	target := pathPositionAt(path, t.cursor, now)

	d := pos.PlanarDistance(target)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		t.rawSync = 1.0
		t.displaySync = t.smooth(1.0, dt)
		return t.displaySync
	}

	t.rawSync = dsp.Clamp(1.0-d/MaxDistance, 0, 1)
	t.displaySync = t.smooth(t.rawSync, dt)

	if now-t.lastSampleTime >= sampleInterval {
		t.scoreSamples = append(t.scoreSamples, t.rawSync)
		t.lastSampleTime = now
	}
	return t.displaySync
}

// RawSync returns the unsmoothed sync value from the last Update.
func (t *Tracker) RawSync() float64 { return t.rawSync }

// DisplaySync returns the smoothed sync value from the last Update.
func (t *Tracker) DisplaySync() float64 { return t.displaySync }

// FinalScore averages the accumulated samples into a 0-100 score. A run with
// no samples counts as perfect.
func (t *Tracker) FinalScore() int {
	if len(t.scoreSamples) == 0 {
		return 100
	}
	return int(math.Round(dsp.Mean(t.scoreSamples) * 100))
}

// Reset returns the tracker to its initial state for a new run.
func (t *Tracker) Reset() {
	t.rawSync = 1.0
	t.displaySync = 1.0
	t.scoreSamples = nil
	t.lastSampleTime = -sampleInterval
	t.cursor = 0
}

// smooth applies the display EMA with the alpha scaled to the actual frame
// delta, so smoothing speed is frame-rate independent.
func (t *Tracker) smooth(target, dt float64) float64 {
	effAlpha := dsp.Clamp(Alpha*dt*60, 0, 1)
	return dsp.EMA(target, t.displaySync, effAlpha)
}

// advanceCursor moves the path cursor forward to the segment containing now,
// and rewinds it only past the small backtrack window so scrubbing a little
// does not restart the search from the top.
func (t *Tracker) advanceCursor(path []model.PathPoint, now float64) {
	if t.cursor >= len(path) {
		t.cursor = len(path) - 1
	}
	if t.cursor > 0 && path[t.cursor].Time > now+backtrackWindow {
		t.cursor = 0
	}
	for t.cursor > 0 && path[t.cursor].Time > now {
		t.cursor--
	}
	for t.cursor+1 < len(path) && path[t.cursor+1].Time <= now {
		t.cursor++
	}
}

// pathPositionAt interpolates the ideal position at time now, given the
// cursor pointing at the last point with Time <= now.
func pathPositionAt(path []model.PathPoint, cursor int, now float64) model.Vec3 {
	p0 := path[cursor]
	if cursor+1 >= len(path) || now <= p0.Time {
		return p0.Position
	}
	p1 := path[cursor+1]
	span := p1.Time - p0.Time
	if span <= 0 {
		return p0.Position
	}
	w := dsp.Clamp((now-p0.Time)/span, 0, 1)
	return model.Vec3{
		X: p0.Position.X + (p1.Position.X-p0.Position.X)*w,
		Y: p0.Position.Y + (p1.Position.Y-p0.Position.Y)*w,
		Z: p0.Position.Z + (p1.Position.Z-p0.Position.Z)*w,
	}
}

// Rating maps a final score to its in-game label.
func Rating(score int) string {
	switch {
	case score >= 95:
		return "Perfect Harmony"
	case score >= 80:
		return "In the Flow"
	case score >= 60:
		return "Drifting"
	case score >= 40:
		return "Lost in Space"
	default:
		return "Static"
	}
}
