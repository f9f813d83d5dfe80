package analysis

import (
	"math"
	"testing"
)

func TestExtractEnergyCurveNormalization(t *testing.T) {
	// Quiet first half, loud second half
	samples := make([]float64, 4*testRate)
	for i := range samples {
		amp := 0.2
		if i >= len(samples)/2 {
			amp = 0.8
		}
		samples[i] = amp * math.Sin(2*math.Pi*220*float64(i)/testRate)
	}

	curve := ExtractEnergyCurve(samples, testRate)
	if len(curve) == 0 {
		t.Fatal("empty energy curve")
	}

	// ~30 samples per second
	perSec := float64(len(curve)) / 4.0
	if perSec < 25 || perSec > 35 {
		t.Errorf("curve rate = %.1f/s, want ~30", perSec)
	}

	var peak float64
	for _, p := range curve {
		if p.Energy < 0 || p.Energy > 1 {
			t.Fatalf("energy %f out of [0,1] at t=%f", p.Energy, p.Time)
		}
		if p.Energy > peak {
			peak = p.Energy
		}
	}
	if math.Abs(peak-1.0) > 1e-9 {
		t.Errorf("peak energy = %f, want 1.0", peak)
	}

	// Loud half must sit above the quiet half
	quiet := curve[len(curve)/4].Energy
	loud := curve[3*len(curve)/4].Energy
	if loud <= quiet {
		t.Errorf("loud half energy %f not above quiet half %f", loud, quiet)
	}

	// Time strictly non-decreasing
	for i := 1; i < len(curve); i++ {
		if curve[i].Time < curve[i-1].Time {
			t.Fatalf("time not ordered at %d", i)
		}
	}
}

func TestExtractEnergyCurveSilence(t *testing.T) {
	curve := ExtractEnergyCurve(make([]float64, 2*testRate), testRate)
	if len(curve) == 0 {
		t.Fatal("expected curve over silence")
	}
	for _, p := range curve {
		if p.Energy != 0 {
			t.Fatalf("silent track energy = %f at t=%f, want 0", p.Energy, p.Time)
		}
	}
}

func TestExtractEnergyCurveEmpty(t *testing.T) {
	if curve := ExtractEnergyCurve(nil, testRate); curve != nil {
		t.Error("expected nil curve for empty input")
	}
}
