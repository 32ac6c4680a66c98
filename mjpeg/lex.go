/*
NAME
  lex.go

DESCRIPTION
  lex.go provides a lexer to extract single JPEG frames from an MJPEG byte
  stream.

AUTHORS
  Dan Kortschak <dan@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package mjpeg provides lexing of MJPEG byte streams into discrete JPEG
// frames.
package mjpeg

import (
	"bufio"
	"io"
	"time"

	"github.com/pkg/errors"
)

var noDelay = make(chan time.Time)

func init() {
	close(noDelay)
}

// Lex parses JPEG frames read from src into separate writes to dst, with
// successive writes being performed not earlier than the specified delay.
// Frames are delimited by their start and end of image markers, with nested
// markers (thumbnails) kept inside their frame. Lex returns io.EOF once src
// is exhausted at a frame boundary.
func Lex(dst io.Writer, src io.Reader, delay time.Duration) error {
	var tick <-chan time.Time
	if delay == 0 {
		tick = noDelay
	} else {
		ticker := time.NewTicker(delay)
		defer ticker.Stop()
		tick = ticker.C
	}

	r := bufio.NewReader(src)
	for {
		buf := make([]byte, 2, 4<<10)
		_, err := io.ReadFull(r, buf)
		if err == io.EOF {
			return io.EOF
		}
		if err != nil {
			return err
		}
		if buf[0] != 0xff || buf[1] != 0xd8 {
			return errors.Errorf("not JPEG frame start: %#v", buf)
		}

		nImg := 1
		var last byte
		for {
			b, err := r.ReadByte()
			if err != nil {
				if err == io.EOF {
					return io.ErrUnexpectedEOF
				}
				return err
			}
			buf = append(buf, b)

			if last == 0xff && b == 0xd8 {
				nImg++
			}
			if last == 0xff && b == 0xd9 {
				nImg--
			}

			if nImg == 0 {
				<-tick
				_, err = dst.Write(buf)
				if err != nil {
					return err
				}
				break
			}

			last = b
		}
	}
}
