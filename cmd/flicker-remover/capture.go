//go:build withcv
// +build withcv

/*
DESCRIPTION
  Provides OpenCV-based capture and output for flicker-remover: frames are
  read from a camera or video file with their capture timestamps, corrected
  by the removal engine directly, and written to an output video.

AUTHORS
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package main

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ausocean/flicker/config"
	"github.com/ausocean/flicker/remover"
	"github.com/ausocean/utils/logging"
)

// runCV captures frames with OpenCV, removes flicker and writes the
// corrected video. Camera capture often reports no position, in which case a
// synthetic clock paced by the configured rate is used.
func runCV(cfg config.Config, log logging.Logger) error {
	var (
		cap *gocv.VideoCapture
		err error
	)
	if cfg.InputPath == "" {
		cap, err = gocv.OpenVideoCapture(0)
	} else {
		cap, err = gocv.VideoCaptureFile(cfg.InputPath)
	}
	if err != nil {
		return fmt.Errorf("could not open capture: %w", err)
	}
	defer cap.Close()

	ev := remover.NewParallel(int(cfg.EvaluatorWorkers))
	var (
		rem    *remover.Remover
		writer *gocv.VideoWriter
		delta  = 1000.0 / float64(cfg.FrameRate)
		clock  float64
	)

	img := gocv.NewMat()
	defer img.Close()
	gray := gocv.NewMat()
	defer gray.Close()

	for n := 0; ; n++ {
		if ok := cap.Read(&img); !ok {
			log.Info(pkg+"capture exhausted", "frames", n)
			break
		}
		gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

		ts := cap.Get(gocv.VideoCapturePosMsec)
		if ts <= 0 && n > 0 {
			ts = clock
		}
		clock = ts + delta

		goImg, err := gray.ToImage()
		if err != nil {
			return fmt.Errorf("could not convert frame %d: %w", n, err)
		}
		grayImg, ok := goImg.(*image.Gray)
		if !ok {
			grayImg = grayOf(goImg)
		}

		if rem == nil {
			rem, err = remover.New(ev, cfg.FrameRate, cfg.FlickerThreshold, cfg.FlickerDuration, gray.Rows(), gray.Cols())
			if err != nil {
				return fmt.Errorf("could not create flicker remover: %w", err)
			}
			writer, err = gocv.VideoWriterFile(cfg.OutputPath, "MJPG", float64(cfg.FrameRate), gray.Cols(), gray.Rows(), false)
			if err != nil {
				return fmt.Errorf("could not create video writer: %w", err)
			}
			defer writer.Close()
			log.Info(pkg+"capture geometry", "width", gray.Cols(), "height", gray.Rows())
		}

		corrected, err := rem.Process(grayImg, ts)
		if err != nil {
			return fmt.Errorf("could not remove flicker from frame %d: %w", n, err)
		}

		out, err := gocv.ImageGrayToMatGray(corrected.ToGray())
		if err != nil {
			return fmt.Errorf("could not convert corrected frame %d: %w", n, err)
		}
		err = writer.Write(out)
		out.Close()
		if err != nil {
			return fmt.Errorf("could not write corrected frame %d: %w", n, err)
		}
	}
	return nil
}
