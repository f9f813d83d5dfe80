// Package model defines the immutable analysis result types shared by the
// offline pipeline, the path generator, and the real-time scoring layer.
package model

import "math"

// FrequencyBand is the coarse spectral region an onset was strongest in.
type FrequencyBand int

const (
	BandLow FrequencyBand = iota
	BandMid
	BandHigh
)

func (b FrequencyBand) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandMid:
		return "mid"
	case BandHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Vec3 is a 3D position in game space. X is lateral, Y vertical, Z forward
// (decreasing as the track progresses).
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PlanarDistance returns the X/Y Euclidean distance, ignoring Z. The orb and
// the ideal path advance at the same constant forward speed, so only lateral
// and vertical deviation carry sync information.
func (v Vec3) PlanarDistance(o Vec3) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BeatEvent is a single beat projected from the estimated tempo grid.
type BeatEvent struct {
	Time       float64 `json:"time"`
	Strength   float64 `json:"strength"`
	IsDownbeat bool    `json:"is_downbeat"`
}

// OnsetEvent is a detected transient with its dominant frequency band.
type OnsetEvent struct {
	Time     float64       `json:"time"`
	Strength float64       `json:"strength"`
	Band     FrequencyBand `json:"band"`
}

// Section is a contiguous labeled region of the track. Sections tile
// [0, duration] with no gaps or overlap.
type Section struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Label     string  `json:"label"`
	Energy    float64 `json:"energy"`
}

// PitchPoint is one sparse pitch-contour sample. Confidence gates all
// downstream use: low-confidence frequencies are musically meaningless.
type PitchPoint struct {
	Time       float64 `json:"time"`
	Frequency  float64 `json:"frequency"`
	Confidence float64 `json:"confidence"`
}

// EnergyPoint is one dense normalized-energy sample (~30/s).
type EnergyPoint struct {
	Time   float64 `json:"time"`
	Energy float64 `json:"energy"`
}

// PathPoint is one sample of the ideal flight path (~15/s), strictly
// increasing in time.
type PathPoint struct {
	Time     float64 `json:"time"`
	Position Vec3    `json:"position"`
}

// Key is the detected musical key.
type Key struct {
	Name  string `json:"name"`  // C, C#, D, ...
	Scale string `json:"scale"` // major or minor
}

func (k Key) String() string {
	return k.Name + " " + k.Scale
}

// SongMap is the complete structural description of one analyzed track.
// It is assembled once per loaded track and never mutated afterwards, except
// for IdealPath which the path generator attaches after assembly.
type SongMap struct {
	BPM          int           `json:"bpm"`
	Key          Key           `json:"key"`
	Danceability float64       `json:"danceability"`
	Duration     float64       `json:"duration"`
	Beats        []BeatEvent   `json:"beats"`
	Onsets       []OnsetEvent  `json:"onsets"`
	Sections     []Section     `json:"sections"`
	PitchContour []PitchPoint  `json:"pitch_contour"`
	EnergyCurve  []EnergyPoint `json:"energy_curve"`
	IdealPath    []PathPoint   `json:"ideal_path"`
}

// RealtimeFeatures is the per-frame feature set extracted from the live
// playback signal. Recomputed every frame; values are zero when no snapshot
// source is available.
type RealtimeFeatures struct {
	RMS              float64   `json:"rms"`
	SpectralCentroid float64   `json:"spectral_centroid"`
	SpectralFlux     float64   `json:"spectral_flux"`
	ZCR              float64   `json:"zcr"`
	BandEnergies     []float64 `json:"band_energies"`
}

// Movement constants shared between the path generator and the game-side
// motion system. ForwardSpeed must match the orb's forward speed exactly or
// sync scoring drifts over the course of a track.
const (
	ForwardSpeed  = 10.0 // units per second along -Z
	LateralRange  = 5.0  // max |X| before the danceability multiplier
	BaseAltitude  = 2.0  // Y offset floor
	VerticalRange = 3.0  // Y span driven by energy
)
