package analysis

import (
	"math"

	"github.com/soundglide/soundglide/internal/model"
)

// Key detection tunables
const (
	keyAnalysisSec = 10 // leading audio considered
	keySubsample   = 4  // every Nth sample enters the correlation
	keyOctaves     = 3
	keyBaseC       = 130.813 // C3 in Hz
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Krumhansl-Kessler perceptual tonal profiles.
var (
	majorProfile = [12]float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	minorProfile = [12]float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

// DetectKey builds a 12-bin chroma vector by correlating the signal against
// each pitch class across three octaves, then matches every rotation of the
// chroma against the major and minor Krumhansl profiles. Degenerate input
// still returns a deterministic (if musically meaningless) key.
func DetectKey(samples []float64, sampleRate int) model.Key {
	chroma := chromaVector(samples, sampleRate)

	bestScore := math.Inf(-1)
	bestRoot := 0
	bestScale := "major"
	for root := 0; root < 12; root++ {
		if s := profileCorrelation(chroma, majorProfile, root); s > bestScore {
			bestScore, bestRoot, bestScale = s, root, "major"
		}
		if s := profileCorrelation(chroma, minorProfile, root); s > bestScore {
			bestScore, bestRoot, bestScale = s, root, "minor"
		}
	}
	return model.Key{Name: noteNames[bestRoot], Scale: bestScale}
}

// chromaVector accumulates, per pitch class, the magnitude of a discrete
// correlation between the signal and the class's frequencies over three
// octaves. Only the first seconds of audio are used, subsampled for cost.
func chromaVector(samples []float64, sampleRate int) [12]float64 {
	var chroma [12]float64
	if sampleRate <= 0 || len(samples) == 0 {
		return chroma
	}

	limit := keyAnalysisSec * sampleRate
	if limit > len(samples) {
		limit = len(samples)
	}

	for pc := 0; pc < 12; pc++ {
		for oct := 0; oct < keyOctaves; oct++ {
			freq := keyBaseC * math.Pow(2, float64(oct)+float64(pc)/12)
			omega := 2 * math.Pi * freq / float64(sampleRate)

			var re, im float64
			for n := 0; n < limit; n += keySubsample {
				phase := omega * float64(n)
				re += samples[n] * math.Cos(phase)
				im += samples[n] * math.Sin(phase)
			}
			chroma[pc] += math.Hypot(re, im)
		}
	}
	return chroma
}

// profileCorrelation is the Pearson correlation between a tonal profile and
// the chroma vector rotated so the candidate root sits at bin zero.
func profileCorrelation(chroma [12]float64, profile [12]float64, root int) float64 {
	var meanC, meanP float64
	for i := 0; i < 12; i++ {
		meanC += chroma[(root+i)%12]
		meanP += profile[i]
	}
	meanC /= 12
	meanP /= 12

	var num, denC, denP float64
	for i := 0; i < 12; i++ {
		dc := chroma[(root+i)%12] - meanC
		dp := profile[i] - meanP
		num += dc * dp
		denC += dc * dc
		denP += dp * dp
	}
	if denC == 0 || denP == 0 {
		return 0
	}
	return num / math.Sqrt(denC*denP)
}
