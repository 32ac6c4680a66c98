/*
NAME
  remover.go

DESCRIPTION
  remover.go provides the adaptive flicker removal engine. Artificial light
  powered from the 50Hz mains oscillates in intensity; when the camera rate
  is above the line frequency, consecutive frames fall on different phases of
  the lighting cycle and carry different per-pixel biases. The engine learns
  one additive correction mask per phase online from the frames themselves
  and applies them so static scene content stays photometrically stable.

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


// Package remover provides adaptive removal of periodic brightness flicker
// caused by AC-powered lighting from a stream of grayscale video frames.
package remover

import (
	"image"
	"math"

	"github.com/pkg/errors"

	"github.com/ausocean/flicker/bitgrid"
	"github.com/ausocean/flicker/frame"
	"github.com/ausocean/flicker/ring"
)

// Power line frequency in Hz. Lighting intensity oscillates at this rate.
const lineFrequency = 50

// Fraction of a block's phase-aligned frames that must agree for a pixel to
// count as stable across corresponding frames.
const correspondingAgreement = 0.7

// Remover removes periodic lighting flicker from consecutive grayscale
// frames. It is driven by frame timestamps: frames one block apart fall on
// the same lighting phase, and each phase other than the ground phase has a
// correction mask learned from pixels that flicker with the block period.
// A Remover is not safe for concurrent use.
type Remover struct {
	ev Evaluator

	frameRows, frameCols int

	// Usual difference between timestamps of consecutive frames, and the
	// tolerance within which a timestamp still counts as on schedule. Both
	// in milliseconds.
	timestampsDelta             float64
	acceptedTimestampDifference float64

	flickeringThreshold       int
	maxAllowedFlickerDuration int

	// A block of blockSize consecutive frames cycles through all lighting
	// phases once; every phase except the ground phase has a mask.
	numberOfMasks int
	blockSize     int

	// Phase index for the next frame. Equal to numberOfMasks means the next
	// frame is a ground frame and gets no mask.
	actualMask int

	masks       []*frame.Frame
	framesBlock *ring.Buffer[*frame.Frame]

	// Similarity histories and their element-wise running sums. The
	// corresponding ring compares frames one block apart, the adjacent ring
	// consecutive frames.
	correspondingLevels *ring.Buffer[*bitgrid.Grid]
	adjacentLevels      *ring.Buffer[*bitgrid.Grid]
	correspondingSum    *frame.Plane
	adjacentSum         *frame.Plane

	flickerCounter *frame.Plane

	expectedTimestamp float64
	timestampSeen     bool
}

// New returns a Remover for the given camera rate and frame geometry. The
// flickering threshold is the maximum absolute pixel difference at which two
// values still count as similar. maxDuration is the number of consecutive
// blocks a pixel must flicker before the masks are corrected; at least 2.
// Construction fails when cameraFPS is at or below the 50Hz line frequency,
// since then no frame phase schedule exists.
func New(ev Evaluator, cameraFPS uint, threshold, maxDuration, rows, cols int) (*Remover, error) {
	if ev == nil {
		return nil, errors.Wrap(ErrConfiguration, "evaluator must not be nil")
	}
	if cameraFPS <= lineFrequency {
		return nil, errors.Wrapf(ErrConfiguration,
			"camera fps (%d) cannot be equal or smaller than power line frequency (%dHz)",
			cameraFPS, lineFrequency)
	}
	if maxDuration < 2 {
		return nil, errors.Wrapf(ErrConfiguration, "max allowed flicker duration (%d) must be at least 2", maxDuration)
	}
	if rows <= 0 || cols <= 0 {
		return nil, errors.Wrapf(ErrConfiguration, "frame dimensions %dx%d must be positive", cols, rows)
	}

	// The block is the smallest whole number of frames spanning a whole
	// number of line cycles.
	count := 1
	for i := uint(1); i <= lineFrequency; i++ {
		count = int(i * cameraFPS / lineFrequency)
		if i*cameraFPS%lineFrequency == 0 {
			break
		}
	}

	r := &Remover{
		ev:                        ev,
		frameRows:                 rows,
		frameCols:                 cols,
		timestampsDelta:           1000.0 / float64(cameraFPS),
		flickeringThreshold:       threshold,
		maxAllowedFlickerDuration: maxDuration,
		numberOfMasks:             count - 1,
		blockSize:                 count,
	}
	r.acceptedTimestampDifference = r.timestampsDelta / 3
	r.framesBlock = ring.New[*frame.Frame](r.blockSize)
	r.correspondingLevels = ring.New[*bitgrid.Grid](r.blockSize)
	r.adjacentLevels = ring.New[*bitgrid.Grid](r.blockSize - 1)
	r.init()
	return r, nil
}

// init allocates masks, counters and sums, and pre-populates both level
// rings with zero grids so every later push evicts the grid leaving the
// window.
func (r *Remover) init() {
	r.masks = make([]*frame.Frame, r.numberOfMasks)
	for i := range r.masks {
		r.masks[i] = frame.New(r.frameRows, r.frameCols)
	}
	for j := 0; j < r.blockSize; j++ {
		r.correspondingLevels.Push(r.newLevels())
	}
	for j := 0; j < r.blockSize-1; j++ {
		r.adjacentLevels.Push(r.newLevels())
	}
	r.correspondingSum = frame.NewPlane(r.frameRows, r.frameCols)
	r.adjacentSum = frame.NewPlane(r.frameRows, r.frameCols)
	r.flickerCounter = frame.NewPlane(r.frameRows, r.frameCols)
	r.actualMask = r.numberOfMasks
	r.timestampSeen = false
}

// newLevels returns a fresh zero bit grid of the frame geometry. Dimensions
// are validated at construction, so allocation cannot fail.
func (r *Remover) newLevels() *bitgrid.Grid {
	g, _ := bitgrid.New(r.frameRows, r.frameCols)
	return g
}

// Process removes flicker from the frame with the given capture timestamp in
// milliseconds and returns a newly allocated corrected frame in the widened
// working format. The returned frame is also kept in the engine's frame
// history for later comparisons, so the caller must not modify it; the input
// frame is not retained. A timestamp further ahead than the
// tolerance rotates the phase by the number of dropped frames; a timestamp
// behind schedule is an error.
func (r *Remover) Process(img *image.Gray, timestamp float64) (*frame.Frame, error) {
	b := img.Bounds()
	if b.Dy() != r.frameRows || b.Dx() != r.frameCols {
		return nil, errors.Wrapf(ErrShapeMismatch,
			"size of the frame: %dx%d is different than expected: %dx%d",
			b.Dx(), b.Dy(), r.frameCols, r.frameRows)
	}

	if !r.timestampOnSchedule(timestamp) {
		if timestamp < r.expectedTimestamp {
			return nil, errors.Wrapf(ErrTimestampRegression,
				"received unexpected timestamp: %v, expected value close to: %v",
				timestamp, r.expectedTimestamp)
		}
		dropped := int((timestamp - r.expectedTimestamp + r.acceptedTimestampDifference) / r.timestampsDelta)
		r.actualMask = (r.actualMask + dropped) % (r.numberOfMasks + 1)
		r.expectedTimestamp = timestamp
	}
	r.expectedTimestamp = timestamp + r.timestampsDelta
	r.timestampSeen = true

	var corrected *frame.Frame
	if r.actualMask == r.numberOfMasks {
		// Ground frame: the photometric reference, no mask applied.
		corrected = frame.FromGray(img)
		r.actualMask = 0
	} else {
		corrected = frame.Subtract(img, r.masks[r.actualMask])
		r.actualMask++
	}

	if last, ok := r.framesBlock.Last(); ok {
		newLevels := r.newLevels()
		oldLevels, _ := r.adjacentLevels.Push(newLevels)
		err := r.ev.UpdateSimilarityLevels(last, corrected, oldLevels, r.flickeringThreshold, newLevels, r.adjacentSum)
		if err != nil {
			return nil, errors.Wrapf(ErrKernelDispatch, "update similarity levels (adjacent): %v", err)
		}
	}

	prev, full := r.framesBlock.Push(corrected)
	if full {
		newLevels := r.newLevels()
		oldLevels, _ := r.correspondingLevels.Push(newLevels)
		err := r.ev.UpdateSimilarityLevels(prev, corrected, oldLevels, r.flickeringThreshold, newLevels, r.correspondingSum)
		if err != nil {
			return nil, errors.Wrapf(ErrKernelDispatch, "update similarity levels (corresponding): %v", err)
		}
	}

	// A block has just completed with the ring holding one full phase cycle
	// starting at a ground frame; only now can masks be learned.
	if r.actualMask == r.numberOfMasks && r.framesBlock.IsFull() {
		err := r.ev.UpdateFlickerCounter(r.adjacentSum, uint(r.numberOfMasks), r.correspondingSum,
			correspondingAgreement*float64(r.blockSize), r.flickerCounter)
		if err != nil {
			return nil, errors.Wrapf(ErrKernelDispatch, "update flicker counter: %v", err)
		}
		ground, _ := r.framesBlock.Index(0)
		for i := 0; i < r.numberOfMasks; i++ {
			offset, _ := r.framesBlock.Index(i + 1)
			err = r.ev.UpdateMasks(ground, offset, r.flickerCounter, r.maxAllowedFlickerDuration, r.masks[i])
			if err != nil {
				return nil, errors.Wrapf(ErrKernelDispatch, "update masks (%d): %v", i, err)
			}
		}
		// Counters that triggered a mask update reset so the pixel needs
		// fresh evidence before the next correction.
		err = r.ev.ZeroFlickerCounter(r.maxAllowedFlickerDuration, r.flickerCounter)
		if err != nil {
			return nil, errors.Wrapf(ErrKernelDispatch, "zero flicker counter: %v", err)
		}
	}

	return corrected, nil
}

// timestampOnSchedule reports whether the timestamp is acceptably close to
// the expected timestamp of the next frame. Any timestamp is on schedule
// before the first frame has been observed.
func (r *Remover) timestampOnSchedule(timestamp float64) bool {
	return !r.timestampSeen || math.Abs(r.expectedTimestamp-timestamp) < r.acceptedTimestampDifference
}

// Reset drops all frame and similarity history and re-creates zero masks, so
// processing can start over.
func (r *Remover) Reset() {
	r.framesBlock.Clear()
	r.correspondingLevels.Clear()
	r.adjacentLevels.Clear()
	r.init()
}

// StaticPixelMask sets out to 1 at pixels where the last two processed
// frames were similar per the flickering threshold, distinguishing static
// scenery from moving objects, and 0 elsewhere. At least two frames must
// have been processed.
func (r *Remover) StaticPixelMask(out *bitgrid.Grid) error {
	if r.framesBlock.Size() < 2 {
		return errors.Wrap(ErrInsufficientHistory,
			"flicker remover has to process at least 2 frames to be able to compare 2 consecutive frames")
	}
	if out.Rows() != r.frameRows || out.Cols() != r.frameCols {
		return errors.Wrapf(ErrShapeMismatch,
			"size of the mask: %dx%d is different than expected: %dx%d",
			out.Cols(), out.Rows(), r.frameCols, r.frameRows)
	}
	last, _ := r.framesBlock.Last()
	prev, _ := r.framesBlock.Index(-2)
	for row := 0; row < r.frameRows; row++ {
		for col := 0; col < r.frameCols; col++ {
			d := last.Pix[row*r.frameCols+col] - prev.Pix[row*r.frameCols+col]
			if d < 0 {
				d = -d
			}
			err := out.Set(row, col, d <= int32(r.flickeringThreshold))
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// StoredFrameCount returns the number of frames the engine keeps for
// processing, which is the block size.
func (r *Remover) StoredFrameCount() uint {
	return uint(r.blockSize)
}

// WarmupDuration returns the number of initial frames processed before
// learned masks can be relied upon. Callers should discard metrics computed
// over earlier frames.
func (r *Remover) WarmupDuration() uint {
	return uint(r.blockSize * (r.maxAllowedFlickerDuration + 2))
}
