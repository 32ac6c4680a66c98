//go:build !debug || !withcv
// +build !debug !withcv

/*
DESCRIPTION
  Replaces the debug windows of the flicker filters for builds without the
  debug and withcv tags, including CI builds without OpenCV installed.

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
	"image"
)

// debugWindows is used for displaying debug information for the flicker
// filters.
type debugWindows struct{}

// close frees resources used by gocv.
func (d *debugWindows) close() error { return nil }

// newWindows creates debugging windows for the flicker filter.
func newWindows(name string) debugWindows { return debugWindows{} }

// show displays the input and corrected frames with annotation text.
func (d *debugWindows) show(in, out image.Image, text ...string) {}
