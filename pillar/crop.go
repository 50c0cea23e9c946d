// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pillar

import (
	"fmt"
	"strconv"
)

// Crop is a crop rectangle, in pixels and as proportions (0-1) of
// the frame dimensions.
type Crop struct {
	X  int     `json:"x"`
	Y  int     `json:"y"`
	W  int     `json:"w"`
	H  int     `json:"h"`
	NX float64 `json:"nx"`
	NY float64 `json:"ny"`
	NW float64 `json:"nw"`
	NH float64 `json:"nh"`
}

// Round6 rounds v to 6 decimal places. The result is the closest
// 6 decimal place number to the exact binary value of v, with exact
// halfway cases rounded to even, so it is the same on all platforms.
func Round6(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 6, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// ComputeCrop returns the crop which removes left and right columns
// from each side of a w x h frame. The full height is always kept.
func ComputeCrop(left, right, w, h int) (Crop, error) {
	if w == 0 || h == 0 {
		return Crop{}, ErrDivisionByZero
	}

	c := Crop{
		X: left,
		Y: 0,
		W: w - left - right,
		H: h,
	}
	if c.W < 0 {
		c.W = 0
	}

	c.NX = Round6(float64(c.X) / float64(w))
	c.NY = Round6(float64(c.Y) / float64(h))
	c.NW = Round6(float64(c.W) / float64(w))
	c.NH = Round6(float64(c.H) / float64(h))

	return c, nil
}

// FFmpegFilter returns the crop as an ffmpeg crop filter. The
// values are in pixels of the analysed frame size.
func (c Crop) FFmpegFilter() string {
	return fmt.Sprintf("crop=%d:%d:%d:%d", c.W, c.H, c.X, c.Y)
}

// Scale returns the crop in pixels of a frame of a different size,
// such as the original video, using the proportional values.
func (c Crop) Scale(w, h int) Crop {
	s := c
	s.X = int(c.NX*float64(w) + 0.5)
	s.Y = int(c.NY*float64(h) + 0.5)
	s.W = int(c.NW*float64(w) + 0.5)
	s.H = int(c.NH*float64(h) + 0.5)
	if s.X+s.W > w {
		s.W = w - s.X
	}
	return s
}
