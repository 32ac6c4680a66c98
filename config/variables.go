/*
NAME
  variables.go

DESCRIPTION
  variables.go contains a list of structs that provide a variable Name, type
  in a string format, a function for updating the variable in the Config
  struct from a string, and a validation function to check the validity of
  the corresponding field value in the Config.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package config

import (
	"strconv"
)

// Config map keys.
const (
	KeyDiffNeighbours   = "DiffNeighbours"
	KeyDiffThreshold    = "DiffThreshold"
	KeyEvaluatorWorkers = "EvaluatorWorkers"
	KeyFlickerDuration  = "FlickerDuration"
	KeyFlickerThreshold = "FlickerThreshold"
	KeyFrameRate        = "FrameRate"
	KeyHeight           = "Height"
	KeyInputPath        = "InputPath"
	KeyJPEGQuality      = "JPEGQuality"
	KeyLoop             = "Loop"
	KeyOutputPath       = "OutputPath"
	KeySuppress         = "Suppress"
	KeyWidth            = "Width"
)

// Config map parameter types.
const (
	typeString = "string"
	typeInt    = "int"
	typeUint   = "uint"
	typeBool   = "bool"
)

// Default variable values.
const (
	defaultFrameRate        = 100
	defaultFlickerThreshold = 10
	defaultFlickerDuration  = 3
	defaultDiffThreshold    = 20
	defaultDiffNeighbours   = 4
	defaultJPEGQuality      = 75
)

// Variables describes the variables that can be used for pipeline control.
// These structs provide the name and type of variable, a function for updating
// this variable in a Config, and a function for validating the value of the variable.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name:   KeyDiffNeighbours,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.DiffNeighbours = parseInt(KeyDiffNeighbours, v, c) },
		Validate: func(c *Config) {
			if c.DiffNeighbours <= 0 || c.DiffNeighbours > 8 {
				c.LogInvalidField(KeyDiffNeighbours, defaultDiffNeighbours)
				c.DiffNeighbours = defaultDiffNeighbours
			}
		},
	},
	{
		Name:   KeyDiffThreshold,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.DiffThreshold = parseInt(KeyDiffThreshold, v, c) },
		Validate: func(c *Config) {
			if c.DiffThreshold <= 0 {
				c.LogInvalidField(KeyDiffThreshold, defaultDiffThreshold)
				c.DiffThreshold = defaultDiffThreshold
			}
		},
	},
	{
		Name:   KeyEvaluatorWorkers,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.EvaluatorWorkers = parseUint(KeyEvaluatorWorkers, v, c) },
	},
	{
		Name:   KeyFlickerDuration,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.FlickerDuration = parseInt(KeyFlickerDuration, v, c) },
		Validate: func(c *Config) {
			if c.FlickerDuration < 2 {
				c.LogInvalidField(KeyFlickerDuration, defaultFlickerDuration)
				c.FlickerDuration = defaultFlickerDuration
			}
		},
	},
	{
		Name:   KeyFlickerThreshold,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.FlickerThreshold = parseInt(KeyFlickerThreshold, v, c) },
		Validate: func(c *Config) {
			if c.FlickerThreshold <= 0 {
				c.LogInvalidField(KeyFlickerThreshold, defaultFlickerThreshold)
				c.FlickerThreshold = defaultFlickerThreshold
			}
		},
	},
	{
		Name:   KeyFrameRate,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.FrameRate = parseUint(KeyFrameRate, v, c) },
		Validate: func(c *Config) {
			// Rates at or below the line frequency cannot be corrected.
			if c.FrameRate <= 50 {
				c.LogInvalidField(KeyFrameRate, defaultFrameRate)
				c.FrameRate = defaultFrameRate
			}
		},
	},
	{
		Name:   KeyHeight,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.Height = parseUint(KeyHeight, v, c) },
	},
	{
		Name:   KeyInputPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.InputPath = v },
	},
	{
		Name:   KeyJPEGQuality,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.JPEGQuality = parseInt(KeyJPEGQuality, v, c) },
		Validate: func(c *Config) {
			if c.JPEGQuality <= 0 || c.JPEGQuality > 100 {
				c.LogInvalidField(KeyJPEGQuality, defaultJPEGQuality)
				c.JPEGQuality = defaultJPEGQuality
			}
		},
	},
	{
		Name:   KeyLoop,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Loop = parseBool(KeyLoop, v, c) },
	},
	{
		Name:   KeyOutputPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.OutputPath = v },
	},
	{
		Name:   KeySuppress,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Suppress = parseBool(KeySuppress, v, c) },
	},
	{
		Name:   KeyWidth,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.Width = parseUint(KeyWidth, v, c) },
	},
}

func parseUint(key, value string, c *Config) uint {
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		c.Logger.Warning("invalid "+key+" param", "value", value)
	}
	return uint(v)
}

func parseInt(key, value string, c *Config) int {
	v, err := strconv.Atoi(value)
	if err != nil {
		c.Logger.Warning("invalid "+key+" param", "value", value)
	}
	return v
}

func parseBool(key, value string, c *Config) bool {
	v, err := strconv.ParseBool(value)
	if err != nil {
		c.Logger.Warning("invalid "+key+" param", "value", value)
	}
	return v
}
