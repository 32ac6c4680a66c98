/*
DESCRIPTION
  A filter that removes AC-lighting flicker from an MJPEG stream. Each frame
  is decoded to grayscale, corrected by the flicker removal engine, and
  re-encoded to the destination.

AUTHORS
  Ella Pietraroia <ella@ausocean.org>
  Saxon A. Nelson-Milton <saxon@ausocean.org>

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
	"image"
	"image/color"
	"image/jpeg"
	"io"

	"github.com/ausocean/flicker/config"
	"github.com/ausocean/flicker/remover"
)

const (
	defaultFrameRate        = 100
	defaultFlickerThreshold = 10
	defaultFlickerDuration  = 3
	defaultJPEGQuality      = 75
)

// Flicker is a filter that removes periodic lighting flicker from the video
// stream. The engine learns per-phase correction masks online, so early
// frames pass through largely uncorrected; see remover.WarmupDuration.
type Flicker struct {
	debugging debugWindows
	dst       io.WriteCloser
	ev        remover.Evaluator
	rem       *remover.Remover
	cfg       config.Config

	// Synthetic capture clock. Frames arrive as a paced stream, so
	// timestamps advance by the configured frame interval.
	clock float64
	delta float64
}

// NewFlicker returns a pointer to a new Flicker filter. The removal engine
// itself is created on the first frame, whose size fixes the expected
// geometry.
func NewFlicker(dst io.WriteCloser, c config.Config) *Flicker {

	// Validate parameters.
	if c.FrameRate <= 50 {
		c.LogInvalidField(config.KeyFrameRate, defaultFrameRate)
		c.FrameRate = defaultFrameRate
	}
	if c.FlickerThreshold <= 0 {
		c.LogInvalidField(config.KeyFlickerThreshold, defaultFlickerThreshold)
		c.FlickerThreshold = defaultFlickerThreshold
	}
	if c.FlickerDuration < 2 {
		c.LogInvalidField(config.KeyFlickerDuration, defaultFlickerDuration)
		c.FlickerDuration = defaultFlickerDuration
	}
	if c.JPEGQuality <= 0 || c.JPEGQuality > 100 {
		c.LogInvalidField(config.KeyJPEGQuality, defaultJPEGQuality)
		c.JPEGQuality = defaultJPEGQuality
	}

	return &Flicker{
		dst:       dst,
		cfg:       c,
		ev:        remover.NewParallel(int(c.EvaluatorWorkers)),
		delta:     1000.0 / float64(c.FrameRate),
		debugging: newWindows("FLICKER"),
	}
}

// Implements io.Closer.
func (f *Flicker) Close() error {
	return f.debugging.close()
}

// Write applies the flicker filter to the video stream. Every written frame
// is corrected and passed on; a frame that cannot be decoded or processed is
// an error, not a silent drop.
func (f *Flicker) Write(p []byte) (int, error) {
	img, err := jpeg.Decode(bytes.NewReader(p))
	if err != nil {
		return 0, fmt.Errorf("image can't be decoded: %w", err)
	}
	gray := toGray(img)

	if f.rem == nil {
		b := gray.Bounds()
		f.rem, err = remover.New(f.ev, f.cfg.FrameRate, f.cfg.FlickerThreshold, f.cfg.FlickerDuration, b.Dy(), b.Dx())
		if err != nil {
			return 0, fmt.Errorf("could not create flicker remover: %w", err)
		}
	}

	corrected, err := f.rem.Process(gray, f.clock)
	f.clock += f.delta
	if err != nil {
		return 0, fmt.Errorf("could not remove flicker: %w", err)
	}
	out := corrected.ToGray()

	// Draw debug information.
	f.debugging.show(gray, out, "Flicker Removal")

	var buf bytes.Buffer
	err = jpeg.Encode(&buf, out, &jpeg.Options{Quality: f.cfg.JPEGQuality})
	if err != nil {
		return 0, fmt.Errorf("corrected image can't be encoded: %w", err)
	}
	_, err = f.dst.Write(buf.Bytes())
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// toGray returns the image as 8-bit grayscale, converting if necessary.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g.SetGray(x, y, color.GrayModel.Convert(img.At(x, y)).(color.Gray))
		}
	}
	return g
}
