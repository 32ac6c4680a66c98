/*
NAME
  kernels.go

DESCRIPTION
  kernels.go provides the per-pixel kernel bodies shared by the Scalar and
  Parallel evaluators. Each body operates on a half-open range of rows so
  both back-ends run exactly the same arithmetic.

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

func similarityRows(a, b *frame.Frame, oldLevels *bitgrid.Grid, threshold int, newLevels *bitgrid.Grid, sum *frame.Plane, r0, r1 int) error {
	for r := r0; r < r1; r++ {
		for c := 0; c < a.Cols; c++ {
			i := r*a.Cols + c
			d := a.Pix[i] - b.Pix[i]
			if d < 0 {
				d = -d
			}
			sim := d <= int32(threshold)

			old, err := oldLevels.At(r, c)
			if err != nil {
				return err
			}
			err = newLevels.Set(r, c, sim)
			if err != nil {
				return err
			}

			var n, o uint8
			if sim {
				n = 1
			}
			if old {
				o = 1
			}
			sum.Pix[i] += n - o
		}
	}
	return nil
}

func counterRows(adjSum *frame.Plane, simMax uint, corrSum *frame.Plane, threshold float64, counter *frame.Plane, r0, r1 int) {
	for r := r0; r < r1; r++ {
		for c := 0; c < counter.Cols; c++ {
			i := r*counter.Cols + c
			if float64(corrSum.Pix[i]) > threshold && uint(adjSum.Pix[i]) < simMax {
				counter.Pix[i]++
			} else {
				counter.Pix[i] = 0
			}
		}
	}
}

func masksRows(ground, offset *frame.Frame, counter *frame.Plane, maxDuration int, mask *frame.Frame, r0, r1 int) {
	for r := r0; r < r1; r++ {
		for c := 0; c < mask.Cols; c++ {
			i := r*mask.Cols + c
			if int(counter.Pix[i]) > maxDuration {
				mask.Pix[i] += offset.Pix[i] - ground.Pix[i]
			}
		}
	}
}

func zeroCounterRows(maxDuration int, counter *frame.Plane, r0, r1 int) {
	for r := r0; r < r1; r++ {
		for c := 0; c < counter.Cols; c++ {
			i := r*counter.Cols + c
			if int(counter.Pix[i]) > maxDuration {
				counter.Pix[i] = 0
			}
		}
	}
}

func filteredDiffRows(src *frame.Plane, threshold1, threshold2 int, dst *frame.Plane, r0, r1 int) {
	for r := r0; r < r1; r++ {
		for c := 0; c < src.Cols; c++ {
			i := r*src.Cols + c
			if int(src.Pix[i]) > threshold1 && whiteNeighbours(src, r, c, 1, threshold1) >= threshold2 {
				dst.Pix[i] = 255
			} else {
				dst.Pix[i] = 0
			}
		}
	}
}

// whiteNeighbours counts the neighbours of (row, col) within radius whose
// value exceeds threshold. The centre pixel itself is never counted.
func whiteNeighbours(p *frame.Plane, row, col, radius, threshold int) int {
	var count int
	minC := max(col-radius, 0)
	maxC := min(col+radius, p.Cols-1)
	minR := max(row-radius, 0)
	maxR := min(row+radius, p.Rows-1)
	for r := minR; r <= maxR; r++ {
		for c := minC; c <= maxC; c++ {
			if r == row && c == col {
				continue
			}
			if int(p.Pix[r*p.Cols+c]) > threshold {
				count++
			}
		}
	}
	return count
}
