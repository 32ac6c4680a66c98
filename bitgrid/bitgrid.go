/*
NAME
  bitgrid.go

DESCRIPTION
  bitgrid.go provides a fixed-size 2D array of booleans stored one bit per
  element.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package bitgrid provides a fixed-size 2D array of booleans stored as single
// bits for memory efficiency.
package bitgrid

import (
	"github.com/pkg/errors"
)

// Errors returned by Grid operations.
var (
	ErrBadDimensions = errors.New("rows and columns must be bigger than 0")
	ErrOutOfRange    = errors.New("element out of range")
)

// Grid is a 2D array of booleans. Values are stored one bit per element,
// row-major, rounded up to whole bytes.
type Grid struct {
	rows, cols int
	data       []byte
}

// New returns a new all-false Grid of the given dimensions.
func New(rows, cols int) (*Grid, error) {
	if rows <= 0 {
		return nil, errors.Wrap(ErrBadDimensions, "bad rows")
	}
	if cols <= 0 {
		return nil, errors.Wrap(ErrBadDimensions, "bad columns")
	}
	return &Grid{rows: rows, cols: cols, data: make([]byte, (rows*cols+7)/8)}, nil
}

// Rows returns the number of rows in the grid.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns in the grid.
func (g *Grid) Cols() int { return g.cols }

// At returns the value of the element at (row, col).
func (g *Grid) At(row, col int) (bool, error) {
	if row < 0 || row >= g.rows {
		return false, errors.Wrapf(ErrOutOfRange, "row: %d, rows: %d", row, g.rows)
	}
	if col < 0 || col >= g.cols {
		return false, errors.Wrapf(ErrOutOfRange, "col: %d, cols: %d", col, g.cols)
	}
	i := row*g.cols + col
	return g.data[i/8]>>(uint(i)%8)&1 == 1, nil
}

// Set sets the element at (row, col) to value.
func (g *Grid) Set(row, col int, value bool) error {
	if row < 0 || row >= g.rows {
		return errors.Wrapf(ErrOutOfRange, "row: %d, rows: %d", row, g.rows)
	}
	if col < 0 || col >= g.cols {
		return errors.Wrapf(ErrOutOfRange, "col: %d, cols: %d", col, g.cols)
	}
	i := row*g.cols + col
	if value {
		g.data[i/8] |= 1 << (uint(i) % 8)
	} else {
		g.data[i/8] &^= 1 << (uint(i) % 8)
	}
	return nil
}
