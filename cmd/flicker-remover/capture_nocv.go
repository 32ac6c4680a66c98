//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  Replaces OpenCV-based capture when flicker-remover is built without the
  withcv tag, e.g. on CI machines without OpenCV installed.

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
	"errors"

	"github.com/ausocean/flicker/config"
	"github.com/ausocean/utils/logging"
)

// runCV is unavailable without OpenCV.
func runCV(cfg config.Config, log logging.Logger) error {
	return errors.New("built without OpenCV support; rebuild with -tags withcv")
}
