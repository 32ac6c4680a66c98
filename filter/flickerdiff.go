/*
DESCRIPTION
  A filter that visualises inter-frame change. The absolute difference
  between consecutive frames is thresholded and filtered by neighbourhood
  support, and the resulting binary image is written out as JPEG frames.
  Chained after the Flicker filter it shows what residual change survives
  flicker removal.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package filter

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"io"

	"github.com/ausocean/flicker/config"
	"github.com/ausocean/flicker/frame"
	"github.com/ausocean/flicker/remover"
)

const (
	defaultDiffThreshold  = 20
	defaultDiffNeighbours = 4
)

// FilteredDiff is a filter that emits, for every consecutive frame pair, a
// binary image of the pixels that changed with enough 8-connected
// neighbourhood support. Isolated noisy pixels are rejected.
type FilteredDiff struct {
	dst     io.WriteCloser
	ev      remover.Evaluator
	prev    *frame.Frame
	thresh  int
	support int
	quality int
}

// NewFilteredDiff returns a pointer to a new FilteredDiff filter.
func NewFilteredDiff(dst io.WriteCloser, c config.Config) *FilteredDiff {

	// Validate parameters.
	if c.DiffThreshold <= 0 {
		c.LogInvalidField(config.KeyDiffThreshold, defaultDiffThreshold)
		c.DiffThreshold = defaultDiffThreshold
	}
	if c.DiffNeighbours <= 0 || c.DiffNeighbours > 8 {
		c.LogInvalidField(config.KeyDiffNeighbours, defaultDiffNeighbours)
		c.DiffNeighbours = defaultDiffNeighbours
	}
	if c.JPEGQuality <= 0 || c.JPEGQuality > 100 {
		c.LogInvalidField(config.KeyJPEGQuality, defaultJPEGQuality)
		c.JPEGQuality = defaultJPEGQuality
	}

	return &FilteredDiff{
		dst:     dst,
		ev:      remover.NewParallel(int(c.EvaluatorWorkers)),
		thresh:  c.DiffThreshold,
		support: c.DiffNeighbours,
		quality: c.JPEGQuality,
	}
}

// Implements io.Closer.
func (fd *FilteredDiff) Close() error { return nil }

// Write computes the filtered difference of the incoming frame against the
// previous one and writes the result. The first frame only seeds the
// history.
func (fd *FilteredDiff) Write(p []byte) (int, error) {
	img, err := jpeg.Decode(bytes.NewReader(p))
	if err != nil {
		return 0, fmt.Errorf("image can't be decoded: %w", err)
	}
	cur := frame.FromGray(toGray(img))

	if fd.prev == nil {
		fd.prev = cur
		return len(p), nil
	}
	if cur.Rows != fd.prev.Rows || cur.Cols != fd.prev.Cols {
		return 0, fmt.Errorf("frame size changed: %dx%d to %dx%d", fd.prev.Cols, fd.prev.Rows, cur.Cols, cur.Rows)
	}

	diff := frame.Diff(cur, fd.prev)
	out := frame.NewPlane(cur.Rows, cur.Cols)
	err = fd.ev.FilteredDiff(diff, fd.thresh, fd.support, out)
	if err != nil {
		return 0, fmt.Errorf("could not filter diff: %w", err)
	}
	fd.prev = cur

	var buf bytes.Buffer
	err = jpeg.Encode(&buf, out.ToGray(), &jpeg.Options{Quality: fd.quality})
	if err != nil {
		return 0, fmt.Errorf("diff image can't be encoded: %w", err)
	}
	_, err = fd.dst.Write(buf.Bytes())
	if err != nil {
		return 0, err
	}
	return len(p), nil
}
