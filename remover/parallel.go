/*
NAME
  parallel.go

DESCRIPTION
  parallel.go provides the Parallel evaluator, which dispatches each kernel
  as a 2D work grid of row stripes across worker goroutines. Results are
  identical to the Scalar evaluator.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package remover

import (
	"runtime"
	"sync"

	"github.com/ausocean/flicker/bitgrid"
	"github.com/ausocean/flicker/frame"
)

// Parallel is an Evaluator that splits each kernel into row stripes and runs
// them on worker goroutines. Dispatches of each kernel are serialized with a
// per-kernel mutex so a single Parallel may be shared by engines on
// independent streams.
type Parallel struct {
	workers int

	// One mutex per kernel so concurrent engines sharing this evaluator
	// serialize dispatches of the same kernel.
	simMu     sync.Mutex
	counterMu sync.Mutex
	masksMu   sync.Mutex
	zeroMu    sync.Mutex
	diffMu    sync.Mutex
}

// NewParallel returns a Parallel evaluator using the given number of worker
// goroutines per kernel, or the number of CPUs when workers is not positive.
func NewParallel(workers int) *Parallel {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Parallel{workers: workers}
}

// stripe runs fn over [0, rows) split into contiguous stripes. Stripe heights
// are rounded up to a multiple of align and the first error is returned once
// all stripes have finished.
func (p *Parallel) stripe(rows, align int, fn func(r0, r1 int) error) error {
	chunk := (rows + p.workers - 1) / p.workers
	chunk = (chunk + align - 1) / align * align

	var wg sync.WaitGroup
	errs := make([]error, (rows+chunk-1)/chunk)
	for w, r0 := 0, 0; r0 < rows; w, r0 = w+1, r0+chunk {
		r1 := min(r0+chunk, rows)
		wg.Add(1)
		go func(w, r0, r1 int) {
			defer wg.Done()
			errs[w] = fn(r0, r1)
		}(w, r0, r1)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// levelAlign returns the smallest row multiple at which a row boundary of a
// level grid with the given number of columns falls on a byte boundary.
// Stripes aligned this way never write the same byte of a bit grid.
func levelAlign(cols int) int {
	a := 1
	for cols*a%8 != 0 {
		a++
	}
	return a
}

// UpdateSimilarityLevels implements Evaluator.
func (p *Parallel) UpdateSimilarityLevels(a, b *frame.Frame, oldLevels *bitgrid.Grid, threshold int, newLevels *bitgrid.Grid, sum *frame.Plane) error {
	p.simMu.Lock()
	defer p.simMu.Unlock()
	return p.stripe(a.Rows, levelAlign(a.Cols), func(r0, r1 int) error {
		return similarityRows(a, b, oldLevels, threshold, newLevels, sum, r0, r1)
	})
}

// UpdateFlickerCounter implements Evaluator.
func (p *Parallel) UpdateFlickerCounter(adjSum *frame.Plane, simMax uint, corrSum *frame.Plane, threshold float64, counter *frame.Plane) error {
	p.counterMu.Lock()
	defer p.counterMu.Unlock()
	return p.stripe(counter.Rows, 1, func(r0, r1 int) error {
		counterRows(adjSum, simMax, corrSum, threshold, counter, r0, r1)
		return nil
	})
}

// UpdateMasks implements Evaluator.
func (p *Parallel) UpdateMasks(ground, offset *frame.Frame, counter *frame.Plane, maxDuration int, mask *frame.Frame) error {
	p.masksMu.Lock()
	defer p.masksMu.Unlock()
	return p.stripe(mask.Rows, 1, func(r0, r1 int) error {
		masksRows(ground, offset, counter, maxDuration, mask, r0, r1)
		return nil
	})
}

// ZeroFlickerCounter implements Evaluator.
func (p *Parallel) ZeroFlickerCounter(maxDuration int, counter *frame.Plane) error {
	p.zeroMu.Lock()
	defer p.zeroMu.Unlock()
	return p.stripe(counter.Rows, 1, func(r0, r1 int) error {
		zeroCounterRows(maxDuration, counter, r0, r1)
		return nil
	})
}

// FilteredDiff implements Evaluator.
func (p *Parallel) FilteredDiff(src *frame.Plane, threshold1, threshold2 int, dst *frame.Plane) error {
	p.diffMu.Lock()
	defer p.diffMu.Unlock()
	return p.stripe(src.Rows, 1, func(r0, r1 int) error {
		filteredDiffRows(src, threshold1, threshold2, dst, r0, r1)
		return nil
	})
}
