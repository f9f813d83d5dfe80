package analysis

import (
	"math"
	"testing"

	"github.com/soundglide/soundglide/internal/model"
)

// syntheticCurve builds a 30/s energy curve from per-second levels.
func syntheticCurve(levels []float64) []model.EnergyPoint {
	curve := make([]model.EnergyPoint, 0, len(levels)*30)
	for sec, level := range levels {
		for i := 0; i < 30; i++ {
			curve = append(curve, model.EnergyPoint{
				Time:   float64(sec) + float64(i)/30.0,
				Energy: level,
			})
		}
	}
	return curve
}

func TestSegmentSectionsCoverage(t *testing.T) {
	// Low intro, loud middle, quiet end: two clear change points
	levels := make([]float64, 30)
	for i := range levels {
		switch {
		case i < 8:
			levels[i] = 0.2
		case i < 20:
			levels[i] = 0.9
		default:
			levels[i] = 0.3
		}
	}
	duration := float64(len(levels))
	sections := SegmentSections(syntheticCurve(levels), duration)
	if len(sections) < 2 {
		t.Fatalf("expected multiple sections, got %d", len(sections))
	}

	// Contiguous and exhaustive
	if sections[0].StartTime != 0 {
		t.Errorf("first section starts at %f, want 0", sections[0].StartTime)
	}
	if last := sections[len(sections)-1].EndTime; math.Abs(last-duration) > 1e-9 {
		t.Errorf("last section ends at %f, want %f", last, duration)
	}
	for i := 1; i < len(sections); i++ {
		if sections[i].StartTime != sections[i-1].EndTime {
			t.Errorf("gap between sections %d and %d: %f != %f",
				i-1, i, sections[i-1].EndTime, sections[i].StartTime)
		}
	}

	if sections[0].Label != "intro" {
		t.Errorf("first section labeled %q, want intro", sections[0].Label)
	}
	if last := sections[len(sections)-1].Label; last != "outro" {
		t.Errorf("last section labeled %q, want outro", last)
	}
}

func TestSegmentSectionsMinimumDuration(t *testing.T) {
	// Rapid oscillation: boundaries must still be at least ~5 s apart
	levels := make([]float64, 40)
	for i := range levels {
		if i%2 == 0 {
			levels[i] = 0.1
		} else {
			levels[i] = 0.9
		}
	}
	sections := SegmentSections(syntheticCurve(levels), float64(len(levels)))
	for i := 1; i < len(sections); i++ {
		if d := sections[i].EndTime - sections[i].StartTime; i < len(sections)-1 && d < 4.9 {
			t.Errorf("section %d lasts %f s, want >= ~5", i, d)
		}
	}
}

func TestSegmentSectionsDegenerate(t *testing.T) {
	// Fewer than 10 energy samples: one intro section spanning the track
	curve := syntheticCurve([]float64{0.5})[:5]
	sections := SegmentSections(curve, 12.0)
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	s := sections[0]
	if s.StartTime != 0 || s.EndTime != 12.0 || s.Label != "intro" {
		t.Errorf("degenerate section = %+v", s)
	}
}

func TestSegmentSectionsConstantEnergy(t *testing.T) {
	levels := make([]float64, 30)
	for i := range levels {
		levels[i] = 0.6
	}
	sections := SegmentSections(syntheticCurve(levels), 30)
	if len(sections) != 1 {
		t.Fatalf("constant energy split into %d sections, want 1", len(sections))
	}
	if sections[0].Label != "intro" {
		t.Errorf("single section labeled %q, want intro", sections[0].Label)
	}
}
