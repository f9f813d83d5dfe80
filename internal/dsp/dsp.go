// Package dsp holds the low-level numeric routines shared by the analysis
// stages: windowed RMS, short-time energy, normalization, and smoothing.
package dsp

import (
	"math"

	"github.com/goccmack/godsp"
)

// RMS returns the root mean square of the whole buffer. Empty input is 0.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// WindowRMS returns the RMS of samples[start:start+window], clamping the
// window to the buffer bounds. Out-of-range windows yield 0.
func WindowRMS(samples []float64, start, window int) float64 {
	if start < 0 {
		start = 0
	}
	end := start + window
	if end > len(samples) {
		end = len(samples)
	}
	if start >= end {
		return 0
	}
	return RMS(samples[start:end])
}

// ShortTimeEnergy computes the mean-square energy per frame with the given
// hop and window sizes. The last partial window is included.
func ShortTimeEnergy(samples []float64, hop, window int) []float64 {
	if hop <= 0 || window <= 0 || len(samples) == 0 {
		return nil
	}
	n := (len(samples) + hop - 1) / hop
	env := make([]float64, 0, n)
	for start := 0; start < len(samples); start += hop {
		end := start + window
		if end > len(samples) {
			end = len(samples)
		}
		var sum float64
		for _, s := range samples[start:end] {
			sum += s * s
		}
		env = append(env, sum/float64(end-start))
	}
	return env
}

// HalfWaveDiff returns the half-wave-rectified first difference of x:
// max(0, x[i]-x[i-1]). The result is one element shorter than the input.
func HalfWaveDiff(x []float64) []float64 {
	if len(x) < 2 {
		return nil
	}
	out := make([]float64, len(x)-1)
	for i := 1; i < len(x); i++ {
		d := x[i] - x[i-1]
		if d > 0 {
			out[i-1] = d
		}
	}
	return out
}

// NormalizePeak scales x so its maximum is 1.0. A silent (all-zero) input is
// returned unchanged to avoid dividing by zero.
func NormalizePeak(x []float64) []float64 {
	if len(x) == 0 {
		return x
	}
	max := godsp.Max(x)
	if max <= 0 {
		return x
	}
	return godsp.DivS(x, max)
}

// Mean returns the arithmetic mean of x, 0 for empty input.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return godsp.Average(x)
}

// MovingAverage applies a centered moving average of the given window width.
// The window is truncated at the edges so output length equals input length.
func MovingAverage(x []float64, window int) []float64 {
	if window <= 1 || len(x) == 0 {
		out := make([]float64, len(x))
		copy(out, x)
		return out
	}
	half := window / 2
	out := make([]float64, len(x))
	for i := range x {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi >= len(x) {
			hi = len(x) - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += x[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

// EMA returns one step of an exponential moving average.
func EMA(current, previous, alpha float64) float64 {
	return alpha*current + (1-alpha)*previous
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
