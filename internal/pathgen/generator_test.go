package pathgen

import (
	"math"
	"testing"

	"github.com/soundglide/soundglide/internal/model"
)

func flatMap(duration, freq, energy, danceability float64) *model.SongMap {
	m := &model.SongMap{
		BPM:          120,
		Duration:     duration,
		Danceability: danceability,
	}
	for t := 0.0; t < duration; t += 0.1 {
		m.PitchContour = append(m.PitchContour, model.PitchPoint{
			Time: t, Frequency: freq, Confidence: 1.0,
		})
		m.EnergyCurve = append(m.EnergyCurve, model.EnergyPoint{
			Time: t, Energy: energy,
		})
	}
	return m
}

func TestGenerateLengthAndTiming(t *testing.T) {
	m := flatMap(10.0, 440, 0.5, 0.5)
	path := Generate(m)

	want := int(10.0 * SampleRate)
	if len(path) != want {
		t.Errorf("expected %d path points, got %d", want, len(path))
	}
	for i := 1; i < len(path); i++ {
		if path[i].Time <= path[i-1].Time {
			t.Fatalf("path times not strictly increasing at %d: %f <= %f",
				i, path[i].Time, path[i-1].Time)
		}
	}
	step := path[1].Time - path[0].Time
	if math.Abs(step-1.0/SampleRate) > 1e-9 {
		t.Errorf("expected sample spacing %f, got %f", 1.0/SampleRate, step)
	}
}

func TestGenerateForwardAxisExact(t *testing.T) {
	path := Generate(flatMap(5.0, 440, 0.5, 0.5))
	for _, p := range path {
		want := -model.ForwardSpeed * p.Time
		if math.Abs(p.Position.Z-want) > 1e-9 {
			t.Fatalf("Z at t=%f: expected %f, got %f", p.Time, want, p.Position.Z)
		}
	}
}

func TestGenerateConstantPitchCentered(t *testing.T) {
	// A collapsed pitch range must map to the lateral center, not blow up.
	path := Generate(flatMap(8.0, 330, 0.5, 1.0))
	for _, p := range path {
		if math.Abs(p.Position.X) > 1e-6 {
			t.Fatalf("constant pitch should give X=0, got %f at t=%f",
				p.Position.X, p.Time)
		}
	}
}

func TestGenerateAltitudeTracksEnergy(t *testing.T) {
	quiet := Generate(flatMap(8.0, 440, 0.0, 0.5))
	loud := Generate(flatMap(8.0, 440, 1.0, 0.5))

	for _, p := range quiet {
		if math.Abs(p.Position.Y-model.BaseAltitude) > 1e-6 {
			t.Fatalf("zero energy should give base altitude, got %f", p.Position.Y)
		}
	}
	wantLoud := model.BaseAltitude + model.VerticalRange
	for _, p := range loud {
		if math.Abs(p.Position.Y-wantLoud) > 1e-6 {
			t.Fatalf("full energy should give %f, got %f", wantLoud, p.Position.Y)
		}
	}
}

func TestGeneratePitchDrivesLateral(t *testing.T) {
	m := &model.SongMap{Duration: 10.0, Danceability: 0.5}
	for t := 0.0; t < 10.0; t += 0.1 {
		freq := 200.0
		if t >= 5.0 {
			freq = 600.0
		}
		m.PitchContour = append(m.PitchContour, model.PitchPoint{
			Time: t, Frequency: freq, Confidence: 1.0,
		})
		m.EnergyCurve = append(m.EnergyCurve, model.EnergyPoint{Time: t, Energy: 0.5})
	}

	path := Generate(m)
	if len(path) == 0 {
		t.Fatal("expected non-empty path")
	}
	early := path[int(2.0*SampleRate)]
	late := path[int(8.0*SampleRate)]
	if early.Position.X >= 0 {
		t.Errorf("low pitch should sit on the negative side, got %f", early.Position.X)
	}
	if late.Position.X <= 0 {
		t.Errorf("high pitch should sit on the positive side, got %f", late.Position.X)
	}
}

func TestGenerateLateralBounded(t *testing.T) {
	m := &model.SongMap{Duration: 10.0, Danceability: 1.0}
	for t := 0.0; t < 10.0; t += 0.1 {
		freq := 100.0 + 900.0*math.Abs(math.Sin(t))
		m.PitchContour = append(m.PitchContour, model.PitchPoint{
			Time: t, Frequency: freq, Confidence: 1.0,
		})
		m.EnergyCurve = append(m.EnergyCurve, model.EnergyPoint{Time: t, Energy: 1.0})
	}
	limit := model.LateralRange * movementMultiplier(1.0)
	for _, p := range Generate(m) {
		if math.Abs(p.Position.X) > limit+1e-9 {
			t.Fatalf("X %f exceeds bound %f", p.Position.X, limit)
		}
	}
}

func TestGenerateUnvoicedFallsBack(t *testing.T) {
	// A contour with no confident points should still produce a stable path.
	m := &model.SongMap{Duration: 5.0}
	for t := 0.0; t < 5.0; t += 0.1 {
		m.PitchContour = append(m.PitchContour, model.PitchPoint{Time: t})
		m.EnergyCurve = append(m.EnergyCurve, model.EnergyPoint{Time: t})
	}
	path := Generate(m)
	if len(path) != int(5.0*SampleRate) {
		t.Fatalf("expected %d points, got %d", int(5.0*SampleRate), len(path))
	}
	for _, p := range path {
		if math.Abs(p.Position.X) > 1e-6 {
			t.Fatalf("fallback pitch should center the path, got X=%f", p.Position.X)
		}
	}
}

func TestGenerateDegenerateInputs(t *testing.T) {
	if got := Generate(nil); got != nil {
		t.Errorf("nil map: expected nil path, got %d points", len(got))
	}
	if got := Generate(&model.SongMap{}); got != nil {
		t.Errorf("zero duration: expected nil path, got %d points", len(got))
	}
}
