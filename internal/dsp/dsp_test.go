package dsp

import (
	"math"
	"testing"
)

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS of empty input = %f, want 0", got)
	}

	// Constant signal: RMS equals the absolute value
	constant := []float64{0.5, 0.5, 0.5, 0.5}
	if got := RMS(constant); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("RMS of constant 0.5 = %f", got)
	}

	// Full-scale sine has RMS 1/sqrt(2)
	sine := make([]float64, 44100)
	for i := range sine {
		sine[i] = math.Sin(2 * math.Pi * 100 * float64(i) / 44100)
	}
	want := 1 / math.Sqrt2
	if got := RMS(sine); math.Abs(got-want) > 1e-3 {
		t.Errorf("RMS of unit sine = %f, want %f", got, want)
	}
}

func TestWindowRMSBounds(t *testing.T) {
	x := []float64{1, 1, 1, 1}

	if got := WindowRMS(x, 2, 100); math.Abs(got-1) > 1e-12 {
		t.Errorf("clamped window RMS = %f, want 1", got)
	}
	if got := WindowRMS(x, 10, 4); got != 0 {
		t.Errorf("out-of-range window RMS = %f, want 0", got)
	}
	if got := WindowRMS(x, -3, 2); math.Abs(got-1) > 1e-12 {
		t.Errorf("negative-start window RMS = %f, want 1", got)
	}
}

func TestShortTimeEnergy(t *testing.T) {
	samples := make([]float64, 1000)
	for i := range samples {
		samples[i] = 0.5
	}

	env := ShortTimeEnergy(samples, 100, 200)
	if len(env) != 10 {
		t.Fatalf("expected 10 frames, got %d", len(env))
	}
	for i, e := range env {
		if math.Abs(e-0.25) > 1e-12 {
			t.Errorf("frame %d energy = %f, want 0.25", i, e)
		}
	}

	if env := ShortTimeEnergy(nil, 100, 200); env != nil {
		t.Error("expected nil envelope for empty input")
	}
}

func TestHalfWaveDiff(t *testing.T) {
	x := []float64{0, 2, 1, 4}
	got := HalfWaveDiff(x)
	want := []float64{2, 0, 3}
	if len(got) != len(want) {
		t.Fatalf("length %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("diff[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestNormalizePeak(t *testing.T) {
	x := []float64{0.2, 0.8, 0.4}
	norm := NormalizePeak(x)
	if math.Abs(norm[1]-1.0) > 1e-12 {
		t.Errorf("peak after normalization = %f, want 1.0", norm[1])
	}
	if math.Abs(norm[0]-0.25) > 1e-12 {
		t.Errorf("norm[0] = %f, want 0.25", norm[0])
	}

	// Silence must pass through untouched, not divide by zero
	silent := []float64{0, 0, 0}
	for i, v := range NormalizePeak(silent) {
		if v != 0 {
			t.Errorf("silent[%d] = %f after normalization, want 0", i, v)
		}
	}
}

func TestMovingAverage(t *testing.T) {
	x := []float64{0, 0, 6, 0, 0}
	sm := MovingAverage(x, 3)
	if len(sm) != len(x) {
		t.Fatalf("length changed: %d != %d", len(sm), len(x))
	}
	if math.Abs(sm[2]-2.0) > 1e-12 {
		t.Errorf("center = %f, want 2.0", sm[2])
	}
	if math.Abs(sm[1]-2.0) > 1e-12 || math.Abs(sm[3]-2.0) > 1e-12 {
		t.Errorf("neighbors = %f, %f, want 2.0", sm[1], sm[3])
	}

	// Constant input is invariant under smoothing, including at edges
	c := []float64{3, 3, 3, 3, 3, 3}
	for i, v := range MovingAverage(c, 5) {
		if math.Abs(v-3) > 1e-12 {
			t.Errorf("constant[%d] = %f after smoothing", i, v)
		}
	}
}

func TestEMA(t *testing.T) {
	got := EMA(1.0, 0.0, 0.05)
	if math.Abs(got-0.05) > 1e-12 {
		t.Errorf("EMA step = %f, want 0.05", got)
	}

	// Repeated application converges toward the input
	v := 0.0
	for i := 0; i < 500; i++ {
		v = EMA(1.0, v, 0.05)
	}
	if v < 0.99 {
		t.Errorf("EMA did not converge: %f", v)
	}
}

func TestClamp(t *testing.T) {
	cases := []struct{ v, lo, hi, want float64 }{
		{-1, 0, 1, 0},
		{2, 0, 1, 1},
		{0.5, 0, 1, 0.5},
	}
	for _, c := range cases {
		if got := Clamp(c.v, c.lo, c.hi); got != c.want {
			t.Errorf("Clamp(%f) = %f, want %f", c.v, got, c.want)
		}
	}
}
