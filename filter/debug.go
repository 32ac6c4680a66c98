//go:build debug && withcv
// +build debug,withcv

/*
DESCRIPTION
  Displays debug information for the flicker filters.

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
	"image/color"

	"gocv.io/x/gocv"
)

// debugWindows is used for displaying debug information for the flicker
// filters.
type debugWindows struct {
	windows []*gocv.Window
}

// close frees resources used by gocv.
func (d *debugWindows) close() error {
	for _, window := range d.windows {
		err := window.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// newWindows creates debugging windows for the flicker filter.
func newWindows(name string) debugWindows {
	return debugWindows{
		windows: []*gocv.Window{
			gocv.NewWindow(name + ": Input"),
			gocv.NewWindow(name + ": Corrected"),
		},
	}
}

// show displays the input and corrected frames with annotation text.
func (d *debugWindows) show(in, out image.Image, text ...string) {
	var drkRed = color.RGBA{191, 0, 0, 0}

	im, _ := gocv.ImageToMatRGB(in)
	imC, _ := gocv.ImageToMatRGB(out)
	defer im.Close()
	defer imC.Close()

	for i, str := range text {
		gocv.PutText(&imC, str, image.Pt(32, 32*(i+1)), gocv.FontHersheyPlain, 2.0, drkRed, 2)
	}

	d.windows[0].IMShow(im)
	d.windows[1].IMShow(imC)
	d.windows[0].WaitKey(1)
}
