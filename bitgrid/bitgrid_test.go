/*
NAME
  bitgrid_test.go

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package bitgrid

import (
	"testing"

	"github.com/pkg/errors"
)

// TestBadDimensions checks that grids with non-positive dimensions are rejected.
func TestBadDimensions(t *testing.T) {
	tests := []struct {
		rows, cols int
	}{
		{0, 10},
		{10, 0},
		{-1, 10},
		{10, -1},
		{0, 0},
	}

	for _, test := range tests {
		_, err := New(test.rows, test.cols)
		if !errors.Is(err, ErrBadDimensions) {
			t.Errorf("unexpected error for %dx%d grid: %v", test.rows, test.cols, err)
		}
	}
}

// TestRoundTrip checks that a value written to any element is read back, for
// both values, including dimensions that do not pack to whole bytes.
func TestRoundTrip(t *testing.T) {
	for _, dims := range [][2]int{{3, 5}, {8, 8}, {1, 1}, {7, 13}} {
		g, err := New(dims[0], dims[1])
		if err != nil {
			t.Fatalf("could not create grid: %v", err)
		}
		for _, v := range []bool{true, false, true} {
			for r := 0; r < dims[0]; r++ {
				for c := 0; c < dims[1]; c++ {
					err := g.Set(r, c, v)
					if err != nil {
						t.Fatalf("could not set (%d,%d): %v", r, c, err)
					}
					got, err := g.At(r, c)
					if err != nil {
						t.Fatalf("could not get (%d,%d): %v", r, c, err)
					}
					if got != v {
						t.Errorf("unexpected value at (%d,%d): got: %v, want: %v", r, c, got, v)
					}
				}
			}
		}
	}
}

// TestNeighbourIsolation checks that setting one element does not disturb its
// neighbours within the same byte.
func TestNeighbourIsolation(t *testing.T) {
	g, err := New(4, 5)
	if err != nil {
		t.Fatalf("could not create grid: %v", err)
	}

	// Checkerboard.
	for r := 0; r < 4; r++ {
		for c := 0; c < 5; c++ {
			g.Set(r, c, (r+c)%2 == 0)
		}
	}
	g.Set(2, 2, false)
	for r := 0; r < 4; r++ {
		for c := 0; c < 5; c++ {
			want := (r+c)%2 == 0
			if r == 2 && c == 2 {
				want = false
			}
			got, _ := g.At(r, c)
			if got != want {
				t.Errorf("unexpected value at (%d,%d): got: %v, want: %v", r, c, got, want)
			}
		}
	}
}

// TestOutOfRange checks that out-of-range access fails.
func TestOutOfRange(t *testing.T) {
	g, err := New(3, 4)
	if err != nil {
		t.Fatalf("could not create grid: %v", err)
	}

	tests := []struct {
		row, col int
	}{
		{3, 0},
		{0, 4},
		{-1, 0},
		{0, -1},
		{100, 100},
	}

	for _, test := range tests {
		if _, err := g.At(test.row, test.col); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("unexpected At error for (%d,%d): %v", test.row, test.col, err)
		}
		if err := g.Set(test.row, test.col, true); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("unexpected Set error for (%d,%d): %v", test.row, test.col, err)
		}
	}
}
