/*
NAME
  linefreq.go

DESCRIPTION
  linefreq.go provides estimation of the lighting flicker frequency of a
  frame stream from its per-frame mean brightness. AC-powered lighting
  intensity peaks twice per power line cycle, so under 50Hz mains a flickering
  stream shows a 100Hz beat, aliased by the camera rate.

AUTHORS
  Russell Stanley <russell@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package linefreq estimates the lighting flicker frequency of a grayscale
// frame stream, letting an operator verify a camera and lighting combination
// shows mains flicker before enabling removal.
package linefreq

import (
	"image"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Power line frequency and the resulting intensity beat. Lighting intensity
// peaks on both half-waves of the AC cycle.
const (
	LineFrequency = 50 // Hz
	BeatFrequency = 2 * LineFrequency
)

// Minimum number of samples for a usable spectrum.
const minSamples = 32

// Probe accumulates per-frame mean brightness and estimates the dominant
// flicker frequency of the accumulated series.
type Probe struct {
	fps    float64
	levels []float64
}

// NewProbe returns a Probe for a stream captured at the given rate.
func NewProbe(fps float64) (*Probe, error) {
	if fps <= 0 {
		return nil, errors.Errorf("invalid frame rate: %v", fps)
	}
	return &Probe{fps: fps}, nil
}

// Add accumulates the mean brightness of the given frame.
func (p *Probe) Add(img *image.Gray) {
	b := img.Bounds()
	var sum float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			sum += float64(row[x])
		}
	}
	p.levels = append(p.levels, sum/float64(b.Dx()*b.Dy()))
}

// Len returns the number of accumulated frames.
func (p *Probe) Len() int { return len(p.levels) }

// Spectrum returns the power spectrum of the de-meaned brightness series and
// the frequency of each bin in Hz, up to the Nyquist rate.
func (p *Probe) Spectrum() (freqs, power []float64, err error) {
	n := len(p.levels)
	if n < minSamples {
		return nil, nil, errors.Errorf("need at least %d frames, have %d", minSamples, n)
	}

	mean := stat.Mean(p.levels, nil)
	centred := make([]float64, n)
	for i, v := range p.levels {
		centred[i] = v - mean
	}

	spec := fft.FFTReal(centred)
	bins := n/2 + 1
	freqs = make([]float64, bins)
	power = make([]float64, bins)
	for k := 0; k < bins; k++ {
		freqs[k] = float64(k) * p.fps / float64(n)
		power[k] = cmplx.Abs(spec[k]) * cmplx.Abs(spec[k])
	}
	return freqs, power, nil
}

// Result describes the dominant spectral peak of a brightness series.
type Result struct {
	Frequency float64 // Peak frequency in Hz.
	Power     float64 // Peak spectral power.
	SNR       float64 // Peak power over the mean non-DC spectral power.
	MainsBeat bool    // Whether the peak matches the aliased 100Hz mains beat.
}

// Detect returns the dominant non-DC spectral peak and whether it matches
// the mains intensity beat folded by the sampling rate.
func (p *Probe) Detect() (Result, error) {
	freqs, power, err := p.Spectrum()
	if err != nil {
		return Result{}, err
	}

	peak := 1
	for k := 2; k < len(power); k++ {
		if power[k] > power[peak] {
			peak = k
		}
	}

	res := Result{
		Frequency: freqs[peak],
		Power:     power[peak],
		SNR:       power[peak] / stat.Mean(power[1:], nil),
	}

	// The beat frequency itself is usually above Nyquist, so compare
	// against its alias. Allow a little over one bin of leakage.
	resolution := p.fps / float64(len(p.levels))
	res.MainsBeat = math.Abs(res.Frequency-aliased(BeatFrequency, p.fps)) <= 1.5*resolution
	return res, nil
}

// aliased folds a frequency into [0, fps/2].
func aliased(freq, fps float64) float64 {
	f := math.Mod(freq, fps)
	if f > fps/2 {
		f = fps - f
	}
	return f
}
