package analysis

import (
	"math"
	"testing"

	"github.com/soundglide/soundglide/internal/audio"
)

func TestAnalyzeClickTrack(t *testing.T) {
	buf := &audio.Buffer{Samples: clickTrack(120, 15, testRate), SampleRate: testRate}

	var progress []float64
	m := NewAnalyzer().Analyze(buf, func(f float64) {
		progress = append(progress, f)
	})

	if m.BPM < 80 || m.BPM > 180 {
		t.Errorf("BPM %d outside folded range", m.BPM)
	}
	if math.Abs(m.Duration-15) > 0.01 {
		t.Errorf("duration = %f, want 15", m.Duration)
	}
	if m.Danceability < 0 || m.Danceability > 1 {
		t.Errorf("danceability %f out of [0,1]", m.Danceability)
	}
	if len(m.Beats) == 0 || len(m.EnergyCurve) == 0 || len(m.Sections) == 0 || len(m.PitchContour) == 0 {
		t.Error("missing analysis outputs")
	}
	if len(m.IdealPath) != 0 {
		t.Error("IdealPath should be empty until the path generator runs")
	}

	// Progress is monotonically increasing in [0,1] and ends at 1
	if len(progress) == 0 {
		t.Fatal("no progress reported")
	}
	for i, f := range progress {
		if f < 0 || f > 1 {
			t.Errorf("progress %d = %f out of [0,1]", i, f)
		}
		if i > 0 && f < progress[i-1] {
			t.Errorf("progress not monotonic at %d: %f < %f", i, f, progress[i-1])
		}
	}
	if progress[len(progress)-1] != 1.0 {
		t.Errorf("final progress = %f, want 1.0", progress[len(progress)-1])
	}
}

func TestAnalyzeOutputsTimeOrdered(t *testing.T) {
	buf := &audio.Buffer{Samples: clickTrack(110, 12, testRate), SampleRate: testRate}
	m := NewAnalyzer().Analyze(buf, nil)

	for i := 1; i < len(m.Beats); i++ {
		if m.Beats[i].Time < m.Beats[i-1].Time {
			t.Fatal("beats not time-ordered")
		}
	}
	for i := 1; i < len(m.Onsets); i++ {
		if m.Onsets[i].Time < m.Onsets[i-1].Time {
			t.Fatal("onsets not time-ordered")
		}
	}
	for i := 1; i < len(m.PitchContour); i++ {
		if m.PitchContour[i].Time < m.PitchContour[i-1].Time {
			t.Fatal("pitch contour not time-ordered")
		}
	}
	for i := 1; i < len(m.EnergyCurve); i++ {
		if m.EnergyCurve[i].Time < m.EnergyCurve[i-1].Time {
			t.Fatal("energy curve not time-ordered")
		}
	}

	// Sections tile [0, duration]
	if m.Sections[0].StartTime != 0 {
		t.Error("sections do not start at 0")
	}
	if last := m.Sections[len(m.Sections)-1].EndTime; math.Abs(last-m.Duration) > 1e-9 {
		t.Errorf("sections end at %f, want %f", last, m.Duration)
	}
}

func TestAnalyzePureTone(t *testing.T) {
	// 30 s of a single pure tone: no rhythm, constant pitch
	buf := &audio.Buffer{Samples: sineWave(440, 30, testRate, 0.6), SampleRate: testRate}
	m := NewAnalyzer().Analyze(buf, nil)

	if m.BPM < 80 || m.BPM > 180 {
		t.Errorf("pure tone BPM %d outside folded range", m.BPM)
	}
	if len(m.Sections) != 1 {
		t.Errorf("pure tone split into %d sections, want 1", len(m.Sections))
	}
	high := 0
	for _, p := range m.PitchContour {
		if p.Confidence > 0.8 {
			high++
		}
	}
	if high < len(m.PitchContour)*9/10 {
		t.Errorf("only %d/%d contour points confident for a pure tone", high, len(m.PitchContour))
	}
}

func TestAnalyzeSilence(t *testing.T) {
	buf := &audio.Buffer{Samples: make([]float64, 10*testRate), SampleRate: testRate}
	m := NewAnalyzer().Analyze(buf, nil)

	for _, p := range m.EnergyCurve {
		if p.Energy != 0 {
			t.Fatal("silent track has nonzero energy")
		}
	}
	if len(m.Onsets) != 0 {
		t.Errorf("silent track produced %d onsets", len(m.Onsets))
	}
	for _, p := range m.PitchContour {
		if p.Confidence != 0 {
			t.Fatal("silent track has confident pitch")
		}
	}
	if m.Danceability != 0 {
		t.Errorf("silent track danceability = %f, want 0", m.Danceability)
	}
	if m.Key.Name == "" {
		t.Error("key missing for silent track")
	}
}
