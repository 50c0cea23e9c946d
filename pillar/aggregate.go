// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pillar

import (
	"image"
	"io"
	"math"
)

// Defaults used by the commands
const (
	DefaultThreshold = 16
	DefaultFramePct  = 0.9
)

// FrameSource provides the frames of a video one at a time, in
// order. NextFrame returns io.EOF once there are no more frames.
type FrameSource interface {
	NextFrame() (*image.Gray, error)
}

// Analysis is the result of analysing a set of frames. Width and
// Height are those of the first frame.
type Analysis struct {
	NFrames   int         `json:"n_frames"`
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	Counts    []int       `json:"counts"`
	BlackCols []bool      `json:"black_cols"`
	ColMeans  [][]float64 `json:"col_means"`
}

// Accumulator counts, for each column, the number of frames in which
// that column is black. Frames are added one at a time, so only the
// running counts (and the column means kept for diagnostics) are
// held in memory.
type Accumulator struct {
	Threshold int

	counts        []int
	means         [][]float64
	width, height int
	n             int
}

// NewAccumulator creates an Accumulator which considers a column to
// be black if its mean brightness is at or below threshold.
func NewAccumulator(threshold int) *Accumulator {
	return &Accumulator{Threshold: threshold}
}

// Add analyses a frame and adds its black columns to the counts.
func (a *Accumulator) Add(img *image.Gray) error {
	if a.n > 0 && img.Bounds().Dx() != a.width {
		return &InconsistentWidthError{Frame: a.n, Want: a.width, Got: img.Bounds().Dx()}
	}

	black, means, err := ColumnBlackness(img, a.Threshold)
	if err != nil {
		return err
	}

	if a.n == 0 {
		a.width = img.Bounds().Dx()
		a.height = img.Bounds().Dy()
		a.counts = make([]int, a.width)
	}
	for i, b := range black {
		if b {
			a.counts[i]++
		}
	}
	a.means = append(a.means, means)
	a.n++

	return nil
}

// Frames returns the number of frames added so far
func (a *Accumulator) Frames() int {
	return a.n
}

// Result decides which columns are black across the frames added so
// far, using the proportion of frames framePct in which a column must
// have been black.
func (a *Accumulator) Result(framePct float64) (Analysis, error) {
	if a.n == 0 {
		return Analysis{}, ErrNoFrames
	}

	counts := make([]int, len(a.counts))
	copy(counts, a.counts)
	means := make([][]float64, len(a.means))
	copy(means, a.means)

	return Analysis{
		NFrames:   a.n,
		Width:     a.width,
		Height:    a.height,
		Counts:    counts,
		BlackCols: BlackColumns(counts, a.n, framePct),
		ColMeans:  means,
	}, nil
}

// RequiredCount returns the number of frames out of n in which a
// column must be black to be considered part of a pillar. No range
// checking is done on framePct; zero or less means every column
// passes, and more than one means none can.
func RequiredCount(framePct float64, n int) int {
	return int(math.Ceil(framePct * float64(n)))
}

// BlackColumns returns whether each column's count reaches the
// required count for n frames.
func BlackColumns(counts []int, n int, framePct float64) []bool {
	required := RequiredCount(framePct, n)
	black := make([]bool, len(counts))
	for i, c := range counts {
		black[i] = c >= required
	}
	return black
}

// Analyse reads every frame from src, returning the combined
// analysis. Reading stops at the first error.
func Analyse(src FrameSource, threshold int, framePct float64) (Analysis, error) {
	acc := NewAccumulator(threshold)
	for {
		img, err := src.NextFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Analysis{}, err
		}
		err = acc.Add(img)
		if err != nil {
			return Analysis{}, err
		}
	}
	return acc.Result(framePct)
}

type sliceSource []*image.Gray

func (s *sliceSource) NextFrame() (*image.Gray, error) {
	if len(*s) == 0 {
		return nil, io.EOF
	}
	img := (*s)[0]
	*s = (*s)[1:]
	return img, nil
}

// AnalyseFrames is like Analyse, for frames which are already in
// memory.
func AnalyseFrames(frames []*image.Gray, threshold int, framePct float64) (Analysis, error) {
	src := sliceSource(frames)
	return Analyse(&src, threshold, framePct)
}
