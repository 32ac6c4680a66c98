/*
DESCRIPTION
  flicker-remover reads an MJPEG stream from a file or a webcam, removes
  AC-lighting flicker from the frames, and writes the corrected stream to a
  file. It can also probe a stream for the mains flicker frequency, and
  optionally emit a filtered difference stream for inspection.

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


// Package main provides the flicker-remover command.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/flicker/config"
	"github.com/ausocean/flicker/device"
	"github.com/ausocean/flicker/device/file"
	"github.com/ausocean/flicker/device/webcam"
	"github.com/ausocean/flicker/filter"
	"github.com/ausocean/flicker/linefreq"
	"github.com/ausocean/flicker/mjpeg"
	"github.com/ausocean/utils/logging"
)

// Current software version.
const version = "v1.0.0"

// Logging configuration.
const (
	logPath      = "/var/log/flicker-remover/flicker-remover.log"
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

// Misc constants.
const (
	pkg         = "flicker-remover: "
	probeFrames = 256 // Frames accumulated by the frequency probe.
)

func main() {
	var (
		showVersion  = flag.Bool("version", false, "show version")
		inputPath    = flag.String("input", "", "input MJPEG file; when empty, capture from the webcam")
		outputPath   = flag.String("output", "out.mjpeg", "output file for the corrected stream")
		varsPath     = flag.String("vars", "", "variables file applied at start and on every change")
		fps          = flag.Uint("fps", 0, "input frame rate in frames per second; must be above 50")
		threshold    = flag.Int("threshold", 0, "pixel similarity threshold")
		duration     = flag.Int("duration", 0, "blocks of sustained flicker before a mask update")
		loop         = flag.Bool("loop", false, "restart file input at EOF")
		diffPath     = flag.String("diff", "", "optional output file of filtered inter-frame differences")
		useCV        = flag.Bool("cv", false, "capture and write video with OpenCV (withcv builds only)")
		probe        = flag.Bool("probe", false, "estimate the flicker frequency of the input instead of correcting it")
		spectrumPath = flag.String("spectrum", "", "with -probe, write a spectrum plot to this file")
	)
	flag.Parse()
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Create lumberjack logger to handle logging to file.
	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)
	log.Info("starting flicker-remover", "version", version)

	cfg := config.Config{
		Logger:           log,
		FrameRate:        *fps,
		FlickerThreshold: *threshold,
		FlickerDuration:  *duration,
		InputPath:        *inputPath,
		OutputPath:       *outputPath,
		Loop:             *loop,
	}

	if *varsPath != "" {
		stop, err := config.Watch(*varsPath, &cfg, log)
		if err != nil {
			log.Fatal(pkg+"could not watch variables file", "error", err.Error())
		}
		defer stop()
	}

	err := cfg.Validate()
	if err != nil {
		log.Fatal(pkg+"config struct is bad", "error", err.Error())
	}

	switch {
	case *useCV:
		err = runCV(cfg, log)
	case *probe:
		err = runProbe(cfg, log, *spectrumPath)
	default:
		err = run(cfg, log, *diffPath)
	}
	if err != nil {
		log.Fatal(pkg+"run failed", "error", err.Error())
	}
	log.Info(pkg + "done")
}

// run drives the pure-Go pipeline: input device, MJPEG lexer, flicker
// filter, output file, with an optional filtered-diff side channel fed by
// the corrected frames.
func run(cfg config.Config, log logging.Logger, diffPath string) error {
	out, err := os.Create(cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}
	defer out.Close()

	var dst io.WriteCloser = out
	if diffPath != "" {
		diffOut, err := os.Create(diffPath)
		if err != nil {
			return fmt.Errorf("could not create diff output file: %w", err)
		}
		defer diffOut.Close()
		diff := filter.NewFilteredDiff(diffOut, cfg)
		defer diff.Close()
		dst = teeWriteCloser{out, diff}
	}

	flick := filter.NewFlicker(dst, cfg)
	defer flick.Close()

	in, err := openInput(cfg, log)
	if err != nil {
		return err
	}
	defer in.Stop()

	err = mjpeg.Lex(flick, in, 0)
	if err != io.EOF {
		return err
	}
	log.Info(pkg + "input exhausted")
	return nil
}

// runProbe accumulates frames from the input and reports the dominant
// brightness oscillation and whether it matches mains flicker.
func runProbe(cfg config.Config, log logging.Logger, spectrumPath string) error {
	p, err := linefreq.NewProbe(float64(cfg.FrameRate))
	if err != nil {
		return fmt.Errorf("could not create probe: %w", err)
	}

	in, err := openInput(cfg, log)
	if err != nil {
		return err
	}
	defer in.Stop()

	sink := &probeSink{probe: p, max: probeFrames}
	err = mjpeg.Lex(sink, in, 0)
	if err != io.EOF && err != errProbeDone {
		return err
	}

	res, err := p.Detect()
	if err != nil {
		return fmt.Errorf("could not detect flicker frequency: %w", err)
	}
	log.Info(pkg+"probe result", "frequency", res.Frequency, "snr", res.SNR, "mainsBeat", res.MainsBeat)
	fmt.Printf("dominant brightness oscillation: %.2f Hz (SNR %.1f)\n", res.Frequency, res.SNR)
	if res.MainsBeat {
		fmt.Printf("matches the aliased %dHz mains intensity beat; flicker removal applies\n", linefreq.BeatFrequency)
	} else {
		fmt.Println("does not match the mains intensity beat")
	}

	if spectrumPath != "" {
		freqs, power, err := p.Spectrum()
		if err != nil {
			return err
		}
		err = linefreq.SaveSpectrum(spectrumPath, freqs, power)
		if err != nil {
			return fmt.Errorf("could not save spectrum plot: %w", err)
		}
		log.Info(pkg+"saved spectrum plot", "path", spectrumPath)
	}
	return nil
}

// openInput selects, configures and starts the input device: a file when
// InputPath is set, the webcam otherwise.
func openInput(cfg config.Config, log logging.Logger) (device.AVDevice, error) {
	var in device.AVDevice
	if cfg.InputPath == "" {
		in = webcam.New(log)
	} else {
		in = file.New(log)
	}
	err := in.Set(cfg)
	if err != nil {
		// Set errors are defaulted fields, not failures.
		log.Warning(pkg+"errors from input device set", "device", in.Name(), "errors", err.Error())
	}
	err = in.Start()
	if err != nil {
		return nil, fmt.Errorf("could not start %s input: %w", in.Name(), err)
	}
	return in, nil
}

var errProbeDone = fmt.Errorf("probe finished")

// probeSink feeds lexed frames to a linefreq probe, stopping the lexer once
// enough frames have been seen.
type probeSink struct {
	probe *linefreq.Probe
	n     int
	max   int
}

func (s *probeSink) Write(p []byte) (int, error) {
	img, err := jpeg.Decode(bytes.NewReader(p))
	if err != nil {
		return 0, fmt.Errorf("image can't be decoded: %w", err)
	}
	s.probe.Add(grayOf(img))
	s.n++
	if s.n >= s.max {
		return len(p), errProbeDone
	}
	return len(p), nil
}

// grayOf returns the image as 8-bit grayscale, converting if necessary.
func grayOf(img image.Image) *image.Gray {
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

// teeWriteCloser forwards writes to a file and a side filter. The underlying
// writers are closed by the caller.
type teeWriteCloser struct {
	out  io.Writer
	side io.Writer
}

func (t teeWriteCloser) Write(p []byte) (int, error) {
	n, err := t.out.Write(p)
	if err != nil {
		return n, err
	}
	_, err = t.side.Write(p)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func (t teeWriteCloser) Close() error { return nil }
