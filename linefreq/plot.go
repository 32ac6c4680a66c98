/*
NAME
  plot.go

DESCRIPTION
  plot.go renders a brightness power spectrum to an image file for operator
  spot checks.

AUTHORS
  Russell Stanley <russell@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package linefreq

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SaveSpectrum renders the power spectrum to the file at path; the format
// follows the file extension (e.g. .png, .svg).
func SaveSpectrum(path string, freqs, power []float64) error {
	if len(freqs) != len(power) {
		return fmt.Errorf("mismatched spectrum lengths: %d and %d", len(freqs), len(power))
	}

	pts := make(plotter.XYs, len(freqs))
	for i := range freqs {
		pts[i].X = freqs[i]
		pts[i].Y = power[i]
	}

	pl := plot.New()
	pl.Title.Text = "Mean brightness spectrum"
	pl.X.Label.Text = "Frequency (Hz)"
	pl.Y.Label.Text = "Power"
	pl.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("could not create spectrum line: %w", err)
	}
	pl.Add(line)

	return pl.Save(8*vg.Inch, 4*vg.Inch, path)
}
