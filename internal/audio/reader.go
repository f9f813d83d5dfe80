// Package audio decodes WAV files into the mono float64 buffers the analysis
// pipeline consumes, and transcodes arbitrary inputs to that form via ffmpeg.
package audio

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// Buffer is a decoded mono waveform with samples normalized to [-1, 1].
type Buffer struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// ReadWAV decodes a PCM WAV file into a mono Buffer. Stereo input is downmixed
// by averaging channels; samples are scaled by the source bit depth.
func ReadWAV(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening wav: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("not a valid WAV file: %s", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading samples: %w", err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 {
		return nil, errors.New("missing WAV format information")
	}

	channels := buf.Format.NumChannels
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("unsupported channel count %d: only mono/stereo supported", channels)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := 1.0 / float64(int(1)<<(uint(bitDepth)-1))

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	if channels == 1 {
		for i := 0; i < frames; i++ {
			samples[i] = float64(buf.Data[i]) * scale
		}
	} else {
		for i := 0; i < frames; i++ {
			l := float64(buf.Data[2*i]) * scale
			r := float64(buf.Data[2*i+1]) * scale
			samples[i] = (l + r) * 0.5
		}
	}

	return &Buffer{Samples: samples, SampleRate: buf.Format.SampleRate}, nil
}
