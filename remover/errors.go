/*
NAME
  errors.go

DESCRIPTION
  errors.go provides the error values returned by the flicker removal engine.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package remover

import "github.com/pkg/errors"

// Errors returned by the Remover. Callers test the kind with errors.Is; the
// returned error always carries a message describing the particular failure.
var (
	// ErrConfiguration indicates invalid construction parameters, such as a
	// camera rate at or below the power line frequency or non-positive frame
	// dimensions.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrShapeMismatch indicates a frame whose dimensions differ from the
	// dimensions the engine was constructed with.
	ErrShapeMismatch = errors.New("frame shape mismatch")

	// ErrTimestampRegression indicates a frame timestamp earlier than the
	// expected timestamp. Forward gaps are not errors; they rotate the phase.
	ErrTimestampRegression = errors.New("timestamp earlier than expected")

	// ErrInsufficientHistory indicates a query that needs at least two
	// processed frames, made while fewer than two have been processed.
	ErrInsufficientHistory = errors.New("insufficient frame history")

	// ErrKernelDispatch indicates a failure inside an evaluator kernel.
	ErrKernelDispatch = errors.New("kernel dispatch failed")
)
