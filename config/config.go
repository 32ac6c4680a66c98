/*
NAME
  config.go

DESCRIPTION
  config.go contains the Config struct for the flicker removal pipeline,
  along with methods for validating and updating it.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package config provides the configuration of the flicker removal pipeline:
// input geometry and rate, engine thresholds, and input/output locations.
package config

import (
	"github.com/ausocean/utils/logging"
)

// Config provides parameters relevant to the flicker removal pipeline. A new
// config must be validated before use.
type Config struct {
	// Logger holds an implementation of the logging.Logger interface.
	// This must be set for the pipeline to work correctly.
	Logger logging.Logger

	// LogLevel is the pipeline logging verbosity level.
	// Valid values are defined by enums from the logging package: logging.Debug,
	// logging.Info, logging.Warning, logging.Error, logging.Fatal.
	LogLevel int8

	// FrameRate defines the input frame rate in frames per second. The rate
	// must be above the 50Hz power line frequency for flicker removal to be
	// possible; see the remover package.
	FrameRate uint

	Height uint // Height defines the capture height requested from the webcam. 0 means 720.
	Width  uint // Width defines the capture width requested from the webcam. 0 means 1280.

	// FlickerThreshold is the maximum absolute difference between two values
	// of the same pixel at which they still count as similar.
	FlickerThreshold int

	// FlickerDuration is the number of consecutive blocks a pixel must keep
	// the same flickering pattern before the correction masks are updated.
	// At least 2.
	FlickerDuration int

	// EvaluatorWorkers is the number of goroutines the parallel per-pixel
	// evaluator uses per kernel. 0 means one per CPU.
	EvaluatorWorkers uint

	// DiffThreshold and DiffNeighbours parameterize the filtered-diff
	// visualisation: a difference pixel survives when it exceeds
	// DiffThreshold and at least DiffNeighbours of its 8-connected
	// neighbours do too.
	DiffThreshold  int
	DiffNeighbours int

	// InputPath defines the input file location for file input. This must be
	// defined if file input is to be used.
	InputPath string

	// OutputPath defines the output destination for file output.
	OutputPath string

	Loop bool // If true will restart reading of input after an io.EOF.

	// JPEGQuality is a value 1-100 inclusive, controlling JPEG compression
	// of re-encoded corrected frames. 100 represents minimal compression.
	JPEGQuality int

	Suppress bool // Holds logger suppression state.
}

// Validate checks for any errors in the config fields and defaults settings
// if particular parameters have not been defined.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	return nil
}

// Update takes a map of configuration variable names and their corresponding
// values, parses the string values into the correct type, and then sets the
// config struct fields as appropriate.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}

func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}
