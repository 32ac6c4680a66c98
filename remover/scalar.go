/*
NAME
  scalar.go

DESCRIPTION
  scalar.go provides the Scalar evaluator, which walks pixels directly in a
  single goroutine.

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

// Scalar is an Evaluator that runs each kernel as a direct nested loop over
// all pixels. It holds no state and is safe to share between engines.
type Scalar struct{}

// UpdateSimilarityLevels implements Evaluator.
func (Scalar) UpdateSimilarityLevels(a, b *frame.Frame, oldLevels *bitgrid.Grid, threshold int, newLevels *bitgrid.Grid, sum *frame.Plane) error {
	return similarityRows(a, b, oldLevels, threshold, newLevels, sum, 0, a.Rows)
}

// UpdateFlickerCounter implements Evaluator.
func (Scalar) UpdateFlickerCounter(adjSum *frame.Plane, simMax uint, corrSum *frame.Plane, threshold float64, counter *frame.Plane) error {
	counterRows(adjSum, simMax, corrSum, threshold, counter, 0, counter.Rows)
	return nil
}

// UpdateMasks implements Evaluator.
func (Scalar) UpdateMasks(ground, offset *frame.Frame, counter *frame.Plane, maxDuration int, mask *frame.Frame) error {
	masksRows(ground, offset, counter, maxDuration, mask, 0, mask.Rows)
	return nil
}

// ZeroFlickerCounter implements Evaluator.
func (Scalar) ZeroFlickerCounter(maxDuration int, counter *frame.Plane) error {
	zeroCounterRows(maxDuration, counter, 0, counter.Rows)
	return nil
}

// FilteredDiff implements Evaluator.
func (Scalar) FilteredDiff(src *frame.Plane, threshold1, threshold2 int, dst *frame.Plane) error {
	filteredDiffRows(src, threshold1, threshold2, dst, 0, src.Rows)
	return nil
}
