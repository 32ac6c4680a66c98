/*
NAME
  remover_test.go

DESCRIPTION
  remover_test.go exercises the flicker removal engine: configuration,
  timestamp scheduling, phase cycling, mask learning on synthetic flicker,
  and reset determinism.

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
	"image"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/ausocean/flicker/bitgrid"
	"github.com/ausocean/flicker/frame"
)

const (
	tstRows = 8
	tstCols = 6
)

func uniform(rows, cols int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// feed processes count frames produced by gen with on-schedule timestamps
// starting at frame number start, returning the outputs.
func feed(t *testing.T, r *Remover, gen func(n int) *image.Gray, start, count int) []*frame.Frame {
	t.Helper()
	var out []*frame.Frame
	for n := start; n < start+count; n++ {
		f, err := r.Process(gen(n), float64(n)*r.timestampsDelta)
		if err != nil {
			t.Fatalf("could not process frame %d: %v", n, err)
		}
		out = append(out, f)
	}
	return out
}

// TestConfiguration checks block derivation for a 150fps camera: 3 frames
// per block, 2 masks, and the warm-up formula.
func TestConfiguration(t *testing.T) {
	r, err := New(Scalar{}, 150, 3, 3, tstRows, tstCols)
	if err != nil {
		t.Fatalf("could not construct remover: %v", err)
	}
	if got := r.StoredFrameCount(); got != 3 {
		t.Errorf("unexpected stored frame count: got: %v, want: 3", got)
	}
	if r.numberOfMasks != 2 {
		t.Errorf("unexpected number of masks: got: %v, want: 2", r.numberOfMasks)
	}
	if got := r.WarmupDuration(); got != 15 {
		t.Errorf("unexpected warmup duration: got: %v, want: 15", got)
	}

	// 60fps: the smallest whole number of frames spanning whole line cycles
	// is 6 (0.1s, 5 cycles).
	r, err = New(Scalar{}, 60, 3, 2, tstRows, tstCols)
	if err != nil {
		t.Fatalf("could not construct remover: %v", err)
	}
	if got := r.StoredFrameCount(); got != 6 {
		t.Errorf("unexpected stored frame count at 60fps: got: %v, want: 6", got)
	}
}

// TestRejectSubLineFrequency checks that rates at or below 50Hz are rejected.
func TestRejectSubLineFrequency(t *testing.T) {
	for _, fps := range []uint{50, 25, 1} {
		_, err := New(Scalar{}, fps, 3, 3, tstRows, tstCols)
		if !errors.Is(err, ErrConfiguration) {
			t.Errorf("unexpected error for %dfps: %v", fps, err)
		}
	}
}

// TestBadConstruction checks the remaining constructor validation.
func TestBadConstruction(t *testing.T) {
	if _, err := New(nil, 150, 3, 3, tstRows, tstCols); !errors.Is(err, ErrConfiguration) {
		t.Errorf("unexpected error for nil evaluator: %v", err)
	}
	if _, err := New(Scalar{}, 150, 3, 1, tstRows, tstCols); !errors.Is(err, ErrConfiguration) {
		t.Errorf("unexpected error for short duration: %v", err)
	}
	if _, err := New(Scalar{}, 150, 3, 3, 0, tstCols); !errors.Is(err, ErrConfiguration) {
		t.Errorf("unexpected error for zero rows: %v", err)
	}
}

// TestShapeMismatch checks that a wrongly sized frame fails with both sizes
// in the message.
func TestShapeMismatch(t *testing.T) {
	r, err := New(Scalar{}, 150, 3, 3, 600, 800)
	if err != nil {
		t.Fatalf("could not construct remover: %v", err)
	}

	_, err = r.Process(uniform(480, 640, 0), 0)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"640x480", "800x600"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error message missing %q: %v", want, err)
		}
	}
}

// TestTimestampSchedule checks tolerance, forward-gap rotation and
// regression errors at 150fps (delta 6.67ms, tolerance 2.22ms).
func TestTimestampSchedule(t *testing.T) {
	r, err := New(Scalar{}, 150, 3, 3, tstRows, tstCols)
	if err != nil {
		t.Fatalf("could not construct remover: %v", err)
	}
	img := uniform(tstRows, tstCols, 100)

	if _, err := r.Process(img, 0); err != nil {
		t.Fatalf("could not process first frame: %v", err)
	}
	// 10 is ahead of the expected 6.67 by more than the tolerance, but
	// rounds to zero dropped frames, so it is accepted.
	if _, err := r.Process(img, 10); err != nil {
		t.Fatalf("could not process forward-gap frame: %v", err)
	}
	// Expected is now 16.67; 3 is behind schedule.
	_, err = r.Process(img, 3)
	if !errors.Is(err, ErrTimestampRegression) {
		t.Errorf("unexpected error for regressed timestamp: %v", err)
	}
}

// TestPhaseGapRotation checks that a forward gap advances the phase by the
// number of dropped frames.
func TestPhaseGapRotation(t *testing.T) {
	// 100fps: block of 2, 1 mask, delta 10ms.
	r, err := New(Scalar{}, 100, 3, 3, tstRows, tstCols)
	if err != nil {
		t.Fatalf("could not construct remover: %v", err)
	}
	img := uniform(tstRows, tstCols, 100)

	if _, err := r.Process(img, 0); err != nil {
		t.Fatalf("could not process first frame: %v", err)
	}
	if r.actualMask != 0 {
		t.Fatalf("unexpected phase after ground frame: got: %v, want: 0", r.actualMask)
	}
	// One frame dropped: next timestamp 20 instead of 10. The phase skips
	// the dropped slot, so the frame at 20 is treated as ground again.
	if _, err := r.Process(img, 20); err != nil {
		t.Fatalf("could not process frame after gap: %v", err)
	}
	if r.actualMask != 0 {
		t.Errorf("unexpected phase after gap: got: %v, want: 0", r.actualMask)
	}
}

// TestPhaseCycle checks that the phase index is periodic with the block size
// over on-schedule frames.
func TestPhaseCycle(t *testing.T) {
	r, err := New(Scalar{}, 150, 3, 3, tstRows, tstCols)
	if err != nil {
		t.Fatalf("could not construct remover: %v", err)
	}

	var phases []int
	for n := 0; n < 12; n++ {
		phases = append(phases, r.actualMask)
		if _, err := r.Process(uniform(tstRows, tstCols, 50), float64(n)*r.timestampsDelta); err != nil {
			t.Fatalf("could not process frame %d: %v", n, err)
		}
	}
	for n := range phases[:len(phases)-3] {
		if phases[n] != phases[n+3] {
			t.Errorf("phase not periodic at frame %d: got: %v then %v", n, phases[n], phases[n+3])
		}
	}
}

// TestNoFlickerIdentity checks that identical input frames leave all masks
// zero and every output equal to the widened input.
func TestNoFlickerIdentity(t *testing.T) {
	r, err := New(Scalar{}, 150, 3, 2, tstRows, tstCols)
	if err != nil {
		t.Fatalf("could not construct remover: %v", err)
	}

	in := uniform(tstRows, tstCols, 77)
	want := frame.FromGray(in)
	out := feed(t, r, func(int) *image.Gray { return in }, 0, int(r.WarmupDuration())+9)

	for n, f := range out {
		if !cmp.Equal(f.Pix, want.Pix) {
			t.Fatalf("output %d differs from input", n)
		}
	}
	for i, m := range r.masks {
		for _, v := range m.Pix {
			if v != 0 {
				t.Fatalf("mask %d not zero", i)
			}
		}
	}
}

// TestGroundPreservation checks that a frame entering at the ground phase is
// returned as a bitwise copy in the widened format.
func TestGroundPreservation(t *testing.T) {
	r, err := New(Scalar{}, 150, 3, 3, tstRows, tstCols)
	if err != nil {
		t.Fatalf("could not construct remover: %v", err)
	}

	img := uniform(tstRows, tstCols, 3)
	img.Pix[5] = 250
	f, err := r.Process(img, 0)
	if err != nil {
		t.Fatalf("could not process frame: %v", err)
	}
	if !cmp.Equal(f.Pix, frame.FromGray(img).Pix) {
		t.Error("ground frame not preserved")
	}
}

// TestSyntheticFlicker feeds a repeating 3-phase flicker pattern with a
// constant brightness step and checks that outputs are constant after the
// warm-up (S5).
func TestSyntheticFlicker(t *testing.T) {
	const (
		base  = 100
		delta = 10
	)
	r, err := New(Scalar{}, 150, 3, 2, tstRows, tstCols)
	if err != nil {
		t.Fatalf("could not construct remover: %v", err)
	}

	gen := func(n int) *image.Gray {
		return uniform(tstRows, tstCols, uint8(base+delta*(n%3)))
	}
	warm := int(r.WarmupDuration())
	out := feed(t, r, gen, 0, warm+10)

	for n := warm; n < len(out); n++ {
		for i, v := range out[n].Pix {
			d := v - base
			if d < 0 {
				d = -d
			}
			if d > 1 {
				t.Fatalf("output %d pixel %d not ground level: got: %v, want: %v±1", n, i, v, base)
			}
		}
	}
}

// TestStaticPixelMask checks the static pixel mask over the last frame pair
// (S6) and the insufficient-history error.
func TestStaticPixelMask(t *testing.T) {
	r, err := New(Scalar{}, 150, 3, 3, tstRows, tstCols)
	if err != nil {
		t.Fatalf("could not construct remover: %v", err)
	}
	mask, _ := bitgrid.New(tstRows, tstCols)

	if err := r.StaticPixelMask(mask); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("unexpected error before two frames: %v", err)
	}

	img := uniform(tstRows, tstCols, 100)
	feed(t, r, func(int) *image.Gray { return img }, 0, 2)
	if err := r.StaticPixelMask(mask); err != nil {
		t.Fatalf("could not get static pixel mask: %v", err)
	}
	for r0 := 0; r0 < tstRows; r0++ {
		for c := 0; c < tstCols; c++ {
			if v, _ := mask.At(r0, c); !v {
				t.Fatalf("static pixel (%d,%d) not set for identical frames", r0, c)
			}
		}
	}

	r.Reset()
	bright := uniform(tstRows, tstCols, 200)
	if _, err := r.Process(img, 0); err != nil {
		t.Fatalf("could not process frame: %v", err)
	}
	if _, err := r.Process(bright, r.timestampsDelta); err != nil {
		t.Fatalf("could not process frame: %v", err)
	}
	if err := r.StaticPixelMask(mask); err != nil {
		t.Fatalf("could not get static pixel mask: %v", err)
	}
	for r0 := 0; r0 < tstRows; r0++ {
		for c := 0; c < tstCols; c++ {
			if v, _ := mask.At(r0, c); v {
				t.Fatalf("static pixel (%d,%d) set for differing frames", r0, c)
			}
		}
	}
}

// TestResetDeterminism checks that a reset engine reproduces the outputs of
// a freshly constructed engine on the same sequence (P6).
func TestResetDeterminism(t *testing.T) {
	fresh, err := New(Scalar{}, 150, 3, 2, tstRows, tstCols)
	if err != nil {
		t.Fatalf("could not construct remover: %v", err)
	}
	used, err := New(Scalar{}, 150, 3, 2, tstRows, tstCols)
	if err != nil {
		t.Fatalf("could not construct remover: %v", err)
	}

	rng := rand.New(rand.NewSource(7))
	noise := func(int) *image.Gray {
		img := image.NewGray(image.Rect(0, 0, tstCols, tstRows))
		for i := range img.Pix {
			img.Pix[i] = uint8(rng.Intn(256))
		}
		return img
	}
	feed(t, used, noise, 0, 20)
	used.Reset()

	gen := func(n int) *image.Gray {
		return uniform(tstRows, tstCols, uint8(100+10*(n%3)))
	}
	wantOut := feed(t, fresh, gen, 0, 25)
	gotOut := feed(t, used, gen, 0, 25)

	for n := range wantOut {
		if !cmp.Equal(gotOut[n].Pix, wantOut[n].Pix) {
			t.Fatalf("output %d differs after reset", n)
		}
	}
}

// TestRunningSums checks that both similarity sums stay the element-wise sum
// of their level rings after every processed frame (P1).
func TestRunningSums(t *testing.T) {
	r, err := New(Scalar{}, 150, 20, 2, tstRows, tstCols)
	if err != nil {
		t.Fatalf("could not construct remover: %v", err)
	}

	rng := rand.New(rand.NewSource(11))
	for n := 0; n < 30; n++ {
		img := image.NewGray(image.Rect(0, 0, tstCols, tstRows))
		for i := range img.Pix {
			img.Pix[i] = uint8(100 + rng.Intn(40))
		}
		if _, err := r.Process(img, float64(n)*r.timestampsDelta); err != nil {
			t.Fatalf("could not process frame %d: %v", n, err)
		}

		checkSum(t, n, "corresponding", r.correspondingLevels.Size(), r.correspondingSum, r.correspondingLevels.Index)
		checkSum(t, n, "adjacent", r.adjacentLevels.Size(), r.adjacentSum, r.adjacentLevels.Index)
	}
}

func checkSum(t *testing.T, n int, name string, count int, sum *frame.Plane, index func(int) (*bitgrid.Grid, bool)) {
	t.Helper()
	want := make([]uint8, tstRows*tstCols)
	for j := 0; j < count; j++ {
		g, ok := index(j)
		if !ok {
			t.Fatalf("could not index %s ring at %d", name, j)
		}
		for r0 := 0; r0 < tstRows; r0++ {
			for c := 0; c < tstCols; c++ {
				if v, _ := g.At(r0, c); v {
					want[r0*tstCols+c]++
				}
			}
		}
	}
	if !cmp.Equal(sum.Pix, want) {
		t.Fatalf("%s sum out of step with ring after frame %d", name, n)
	}
}
