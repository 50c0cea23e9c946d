// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pillar

import (
	"image"

	"rescribe.xyz/pillarcrop/integralimg"
)

// ColumnBlackness calculates the mean brightness of every column of
// a grayscale frame, and whether each column is dark enough to be
// considered black (mean <= threshold).
func ColumnBlackness(img *image.Gray, threshold int) ([]bool, []float64, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, nil, &InvalidFrameError{Width: b.Dx(), Height: b.Dy()}
	}

	means := integralimg.ToIntegralImg(img).ColumnMeans()
	black := make([]bool, len(means))
	for i, m := range means {
		black[i] = m <= float64(threshold)
	}

	return black, means, nil
}
