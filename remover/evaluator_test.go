/*
NAME
  evaluator_test.go

DESCRIPTION
  evaluator_test.go exercises the per-pixel kernels and checks that the
  Scalar and Parallel evaluators produce identical results.

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
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/flicker/bitgrid"
	"github.com/ausocean/flicker/frame"
)

func frameOf(rows, cols int, pix ...int32) *frame.Frame {
	f := frame.New(rows, cols)
	copy(f.Pix, pix)
	return f
}

func planeOf(rows, cols int, pix ...uint8) *frame.Plane {
	p := frame.NewPlane(rows, cols)
	copy(p.Pix, pix)
	return p
}

func gridPix(t *testing.T, g *bitgrid.Grid) []uint8 {
	t.Helper()
	pix := make([]uint8, g.Rows()*g.Cols())
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			v, err := g.At(r, c)
			if err != nil {
				t.Fatalf("could not read grid at (%d,%d): %v", r, c, err)
			}
			if v {
				pix[r*g.Cols()+c] = 1
			}
		}
	}
	return pix
}

// TestUpdateSimilarityLevels checks the similarity predicate and that the
// running sum gains the new level and loses the old one at every pixel.
func TestUpdateSimilarityLevels(t *testing.T) {
	a := frameOf(2, 2, 10, 10, 10, 10)
	b := frameOf(2, 2, 10, 13, 14, 5)

	old, _ := bitgrid.New(2, 2)
	old.Set(0, 0, true)
	old.Set(1, 1, true)
	newLevels, _ := bitgrid.New(2, 2)
	sum := planeOf(2, 2, 3, 3, 3, 3)

	err := Scalar{}.UpdateSimilarityLevels(a, b, old, 3, newLevels, sum)
	if err != nil {
		t.Fatalf("kernel failed: %v", err)
	}

	// |a-b| = 0, 3, 4, 5 with threshold 3 -> levels 1, 1, 0, 0.
	wantLevels := []uint8{1, 1, 0, 0}
	if !cmp.Equal(gridPix(t, newLevels), wantLevels) {
		t.Errorf("unexpected levels: got: %v, want: %v", gridPix(t, newLevels), wantLevels)
	}

	// sum + new - old.
	wantSum := []uint8{3, 4, 3, 2}
	if !cmp.Equal(sum.Pix, wantSum) {
		t.Errorf("unexpected sum: got: %v, want: %v", sum.Pix, wantSum)
	}
}

// TestUpdateFlickerCounter checks the increment-or-reset rule: stable across
// corresponding frames, unstable across some adjacent pair.
func TestUpdateFlickerCounter(t *testing.T) {
	const (
		simMax    = 2
		threshold = 2.1
	)
	adj := planeOf(1, 4, 0, 2, 1, 2)
	corr := planeOf(1, 4, 3, 3, 2, 1)
	counter := planeOf(1, 4, 5, 5, 5, 5)

	err := Scalar{}.UpdateFlickerCounter(adj, simMax, corr, threshold, counter)
	if err != nil {
		t.Fatalf("kernel failed: %v", err)
	}

	// Pixel 0: corr>theta and adj<max -> increment. Pixel 1: adj==max ->
	// reset. Pixels 2, 3: corr<=theta -> reset.
	want := []uint8{6, 0, 0, 0}
	if !cmp.Equal(counter.Pix, want) {
		t.Errorf("unexpected counter: got: %v, want: %v", counter.Pix, want)
	}
}

// TestUpdateMasks checks that the mask accumulates offset-ground only where
// the counter exceeds the maximum duration.
func TestUpdateMasks(t *testing.T) {
	ground := frameOf(1, 3, 100, 100, 100)
	offset := frameOf(1, 3, 110, 90, 120)
	counter := planeOf(1, 3, 3, 2, 4)
	mask := frameOf(1, 3, 1, 1, 1)

	err := Scalar{}.UpdateMasks(ground, offset, counter, 2, mask)
	if err != nil {
		t.Fatalf("kernel failed: %v", err)
	}

	want := []int32{11, 1, 21}
	if !cmp.Equal(mask.Pix, want) {
		t.Errorf("unexpected mask: got: %v, want: %v", mask.Pix, want)
	}
}

// TestZeroFlickerCounter checks that only counters past the maximum duration
// reset.
func TestZeroFlickerCounter(t *testing.T) {
	counter := planeOf(1, 4, 0, 2, 3, 200)

	err := Scalar{}.ZeroFlickerCounter(2, counter)
	if err != nil {
		t.Fatalf("kernel failed: %v", err)
	}

	want := []uint8{0, 2, 0, 0}
	if !cmp.Equal(counter.Pix, want) {
		t.Errorf("unexpected counter: got: %v, want: %v", counter.Pix, want)
	}
}

// TestFilteredDiff checks the neighbour-count filter, in particular that the
// centre pixel is not counted as its own neighbour and that borders clip.
func TestFilteredDiff(t *testing.T) {
	src := planeOf(3, 3,
		0, 200, 0,
		200, 200, 0,
		0, 0, 0,
	)
	dst := frame.NewPlane(3, 3)

	// Centre (1,1) exceeds 100 and has 2 bright neighbours; with
	// threshold2=3 it must stay dark even though including itself would
	// reach 3.
	err := Scalar{}.FilteredDiff(src, 100, 3, dst)
	if err != nil {
		t.Fatalf("kernel failed: %v", err)
	}
	if got := dst.At(1, 1); got != 0 {
		t.Errorf("centre counted itself: got: %v, want: 0", got)
	}

	// With threshold2=2 the centre and both other bright pixels qualify;
	// (0,1) and (1,0) have exactly 2 bright neighbours each.
	err = Scalar{}.FilteredDiff(src, 100, 2, dst)
	if err != nil {
		t.Fatalf("kernel failed: %v", err)
	}
	want := []uint8{
		0, 255, 0,
		255, 255, 0,
		0, 0, 0,
	}
	if !cmp.Equal(dst.Pix, want) {
		t.Errorf("unexpected filtered diff: got: %v, want: %v", dst.Pix, want)
	}
}

// TestEvaluatorsAgree checks that the Parallel evaluator is bit-identical to
// the Scalar evaluator on random inputs, with dimensions chosen so that bit
// grid rows straddle byte boundaries.
func TestEvaluatorsAgree(t *testing.T) {
	const (
		rows = 13
		cols = 7
	)
	rng := rand.New(rand.NewSource(42))

	randFrame := func() *frame.Frame {
		f := frame.New(rows, cols)
		for i := range f.Pix {
			f.Pix[i] = int32(rng.Intn(256))
		}
		return f
	}
	randPlane := func(n int) *frame.Plane {
		p := frame.NewPlane(rows, cols)
		for i := range p.Pix {
			p.Pix[i] = uint8(rng.Intn(n))
		}
		return p
	}

	for _, par := range []*Parallel{NewParallel(1), NewParallel(3), NewParallel(16)} {
		a, b := randFrame(), randFrame()
		old, _ := bitgrid.New(rows, cols)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				old.Set(r, c, rng.Intn(2) == 0)
			}
		}

		newS, _ := bitgrid.New(rows, cols)
		newP, _ := bitgrid.New(rows, cols)
		sumS := randPlane(4)
		sumP := sumS.Clone()
		if err := (Scalar{}).UpdateSimilarityLevels(a, b, old, 10, newS, sumS); err != nil {
			t.Fatalf("scalar kernel failed: %v", err)
		}
		if err := par.UpdateSimilarityLevels(a, b, old, 10, newP, sumP); err != nil {
			t.Fatalf("parallel kernel failed: %v", err)
		}
		if !cmp.Equal(gridPix(t, newS), gridPix(t, newP)) {
			t.Error("similarity levels disagree between back-ends")
		}
		if !cmp.Equal(sumS.Pix, sumP.Pix) {
			t.Error("similarity sums disagree between back-ends")
		}

		adj, corr := randPlane(4), randPlane(4)
		ctrS := randPlane(6)
		ctrP := ctrS.Clone()
		Scalar{}.UpdateFlickerCounter(adj, 2, corr, 2.1, ctrS)
		par.UpdateFlickerCounter(adj, 2, corr, 2.1, ctrP)
		if !cmp.Equal(ctrS.Pix, ctrP.Pix) {
			t.Error("flicker counters disagree between back-ends")
		}

		maskS := randFrame()
		maskP := maskS.Clone()
		Scalar{}.UpdateMasks(a, b, ctrS, 2, maskS)
		par.UpdateMasks(a, b, ctrP, 2, maskP)
		if !cmp.Equal(maskS.Pix, maskP.Pix) {
			t.Error("masks disagree between back-ends")
		}

		Scalar{}.ZeroFlickerCounter(2, ctrS)
		par.ZeroFlickerCounter(2, ctrP)
		if !cmp.Equal(ctrS.Pix, ctrP.Pix) {
			t.Error("zeroed counters disagree between back-ends")
		}

		src := randPlane(256)
		dstS := frame.NewPlane(rows, cols)
		dstP := frame.NewPlane(rows, cols)
		Scalar{}.FilteredDiff(src, 100, 3, dstS)
		par.FilteredDiff(src, 100, 3, dstP)
		if !cmp.Equal(dstS.Pix, dstP.Pix) {
			t.Error("filtered diffs disagree between back-ends")
		}
	}
}
