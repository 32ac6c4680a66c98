/*
NAME
  frame.go

DESCRIPTION
  frame.go provides the working pixel planes used by the flicker removal
  engine: a signed 32-bit grayscale frame wide enough to carry sums of pixel
  differences, and an unsigned 8-bit plane for counters and running sums.

AUTHORS
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package frame provides grayscale pixel planes in the formats the flicker
// removal engine works in. Input frames are 8-bit grayscale; the engine
// widens them to 32-bit signed so that frame and mask arithmetic does not
// wrap, and clamps back to 8-bit for rendering.
package frame

import "image"

// Frame is a single-channel frame of 32-bit signed pixels, row-major.
type Frame struct {
	Rows, Cols int
	Pix        []int32
}

// New returns a new zero Frame of the given dimensions.
func New(rows, cols int) *Frame {
	return &Frame{Rows: rows, Cols: cols, Pix: make([]int32, rows*cols)}
}

// FromGray widens an 8-bit grayscale image into a new Frame.
func FromGray(img *image.Gray) *Frame {
	b := img.Bounds()
	f := New(b.Dy(), b.Dx())
	for r := 0; r < f.Rows; r++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+r):]
		for c := 0; c < f.Cols; c++ {
			f.Pix[r*f.Cols+c] = int32(row[c])
		}
	}
	return f
}

// Subtract widens an 8-bit grayscale image and subtracts the mask from it,
// returning a new Frame. The image and mask must have equal dimensions.
func Subtract(img *image.Gray, mask *Frame) *Frame {
	b := img.Bounds()
	f := New(b.Dy(), b.Dx())
	for r := 0; r < f.Rows; r++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+r):]
		for c := 0; c < f.Cols; c++ {
			i := r*f.Cols + c
			f.Pix[i] = int32(row[c]) - mask.Pix[i]
		}
	}
	return f
}

// Clone returns a deep copy of the Frame.
func (f *Frame) Clone() *Frame {
	n := New(f.Rows, f.Cols)
	copy(n.Pix, f.Pix)
	return n
}

// At returns the pixel at (row, col).
func (f *Frame) At(row, col int) int32 { return f.Pix[row*f.Cols+col] }

// Set sets the pixel at (row, col).
func (f *Frame) Set(row, col int, v int32) { f.Pix[row*f.Cols+col] = v }

// ToGray renders the Frame as an 8-bit grayscale image, clamping each pixel
// to 0..255.
func (f *Frame) ToGray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.Cols, f.Rows))
	for i, v := range f.Pix {
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		img.Pix[i] = uint8(v)
	}
	return img
}

// Plane is a single-channel plane of unsigned 8-bit values, row-major. It
// backs the engine's running similarity sums, the flicker counter and
// difference images.
type Plane struct {
	Rows, Cols int
	Pix        []uint8
}

// NewPlane returns a new zero Plane of the given dimensions.
func NewPlane(rows, cols int) *Plane {
	return &Plane{Rows: rows, Cols: cols, Pix: make([]uint8, rows*cols)}
}

// At returns the value at (row, col).
func (p *Plane) At(row, col int) uint8 { return p.Pix[row*p.Cols+col] }

// Set sets the value at (row, col).
func (p *Plane) Set(row, col int, v uint8) { p.Pix[row*p.Cols+col] = v }

// Fill sets every element to v.
func (p *Plane) Fill(v uint8) {
	for i := range p.Pix {
		p.Pix[i] = v
	}
}

// Clone returns a deep copy of the Plane.
func (p *Plane) Clone() *Plane {
	n := NewPlane(p.Rows, p.Cols)
	copy(n.Pix, p.Pix)
	return n
}

// ToGray renders the Plane as an 8-bit grayscale image.
func (p *Plane) ToGray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, p.Cols, p.Rows))
	copy(img.Pix, p.Pix)
	return img
}

// Diff returns the element-wise absolute difference of two equally sized
// frames, saturated to 255.
func Diff(a, b *Frame) *Plane {
	p := NewPlane(a.Rows, a.Cols)
	for i := range a.Pix {
		d := a.Pix[i] - b.Pix[i]
		if d < 0 {
			d = -d
		}
		if d > 255 {
			d = 255
		}
		p.Pix[i] = uint8(d)
	}
	return p
}
