package analysis

import (
	"math"
	"testing"
)

func TestExtractPitchContourPureTone(t *testing.T) {
	const freq = 440.0
	samples := sineWave(freq, 3, testRate, 0.6)
	contour := ExtractPitchContour(samples, testRate)
	if len(contour) == 0 {
		t.Fatal("empty pitch contour")
	}

	for i, p := range contour {
		if p.Confidence < 0.8 {
			t.Errorf("point %d confidence %f, want high for a pure tone", i, p.Confidence)
			continue
		}
		// Lag quantization limits precision at this sample rate
		if math.Abs(p.Frequency-freq) > 15 {
			t.Errorf("point %d frequency %f, want ~%f", i, p.Frequency, freq)
		}
	}
}

func TestExtractPitchContourSilence(t *testing.T) {
	contour := ExtractPitchContour(make([]float64, 2*testRate), testRate)
	if len(contour) == 0 {
		t.Fatal("expected zero-confidence points over silence")
	}
	for i, p := range contour {
		if p.Confidence != 0 {
			t.Errorf("silent point %d confidence %f, want 0", i, p.Confidence)
		}
		if p.Frequency != 0 {
			t.Errorf("silent point %d frequency %f, want 0", i, p.Frequency)
		}
	}
}

func TestExtractPitchContourDownsampled(t *testing.T) {
	samples := sineWave(220, 4, testRate, 0.5)
	contour := ExtractPitchContour(samples, testRate)

	// 20 ms hop downsampled 5x => ~10 points per second
	perSec := float64(len(contour)) / 4.0
	if perSec < 8 || perSec > 12 {
		t.Errorf("contour density %.1f points/s, want ~10", perSec)
	}

	for i := 1; i < len(contour); i++ {
		if contour[i].Time <= contour[i-1].Time {
			t.Fatalf("contour times not strictly increasing at %d", i)
		}
	}
}

func TestExtractPitchContourRangeLimits(t *testing.T) {
	// A 50 Hz tone is below the detectable range; whatever the detector
	// reports must stay within [80, 1000+] and confidence within [0,1].
	samples := sineWave(50, 2, testRate, 0.5)
	for i, p := range ExtractPitchContour(samples, testRate) {
		if p.Confidence < 0 || p.Confidence > 1 {
			t.Errorf("point %d confidence %f out of [0,1]", i, p.Confidence)
		}
		if p.Confidence > 0 && p.Frequency < 75 {
			t.Errorf("point %d frequency %f below the lag search floor", i, p.Frequency)
		}
	}
}

func TestExtractPitchContourEmpty(t *testing.T) {
	if c := ExtractPitchContour(nil, testRate); c != nil {
		t.Error("expected nil contour for empty input")
	}
}
