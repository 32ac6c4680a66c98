/*
NAME
  evaluator.go

DESCRIPTION
  evaluator.go provides the Evaluator interface: the pluggable primitive that
  executes the engine's pixel-parallel kernels. Two back-ends implement it,
  Scalar and Parallel, and produce identical results.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package remover

import (
	"github.com/ausocean/flicker/bitgrid"
	"github.com/ausocean/flicker/frame"
)

// Evaluator executes per-pixel kernels over whole frames. Every kernel is a
// pure per-pixel function of same-coordinate inputs, except FilteredDiff
// which reads a 3x3 neighbourhood, so implementations may parallelize across
// pixels; a kernel returns only when all pixels are written. All arguments
// must share the engine's frame dimensions.
type Evaluator interface {
	// UpdateSimilarityLevels compares frames a and b per pixel and writes 1
	// to newLevels where |a-b| <= threshold, else 0. sum is maintained as a
	// running total: the new level is added and the oldLevels value
	// subtracted at every pixel, so sum stays the element-wise sum of a ring
	// of level grids when oldLevels is the grid falling out of the ring.
	UpdateSimilarityLevels(a, b *frame.Frame, oldLevels *bitgrid.Grid, threshold int, newLevels *bitgrid.Grid, sum *frame.Plane) error

	// UpdateFlickerCounter increments counter at pixels judged to flicker
	// with the learned period: corrSum > threshold (the pixel is stable
	// across phase-aligned frames) while adjSum < simMax (some adjacent pair
	// disagrees). All other pixels reset to zero.
	UpdateFlickerCounter(adjSum *frame.Plane, simMax uint, corrSum *frame.Plane, threshold float64, counter *frame.Plane) error

	// UpdateMasks adds offset-ground to mask at every pixel whose counter
	// exceeds maxDuration.
	UpdateMasks(ground, offset *frame.Frame, counter *frame.Plane, maxDuration int, mask *frame.Frame) error

	// ZeroFlickerCounter resets counter to zero at every pixel where it
	// exceeds maxDuration. It must be invoked after UpdateMasks, which reads
	// the same exceedances.
	ZeroFlickerCounter(maxDuration int, counter *frame.Plane) error

	// FilteredDiff writes 255 to dst at pixels of the difference image src
	// that exceed threshold1 and have at least threshold2 8-connected
	// neighbours exceeding threshold1, else 0. Used for visualisation, not
	// by the engine itself.
	FilteredDiff(src *frame.Plane, threshold1, threshold2 int, dst *frame.Plane) error
}
