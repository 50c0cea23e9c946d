// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pillar

import (
	"errors"
	"fmt"
)

// ErrNoFrames is returned when an analysis is attempted without any
// frames.
var ErrNoFrames = errors.New("no frames to analyse")

// ErrDivisionByZero is returned when a crop is requested for a frame
// with no width or no height.
var ErrDivisionByZero = errors.New("division by zero: frame width and height must be non-zero")

// InvalidFrameError is returned for a frame which has no pixels.
type InvalidFrameError struct {
	Width, Height int
}

func (e *InvalidFrameError) Error() string {
	return fmt.Sprintf("invalid frame: dimensions %dx%d", e.Width, e.Height)
}

// InconsistentWidthError is returned when a frame's width differs
// from that of the first frame in an analysis. Frame is the
// zero-based index of the offending frame.
type InconsistentWidthError struct {
	Frame     int
	Want, Got int
}

func (e *InconsistentWidthError) Error() string {
	return fmt.Sprintf("frame %d has width %d, expected %d like the first frame", e.Frame, e.Got, e.Want)
}
