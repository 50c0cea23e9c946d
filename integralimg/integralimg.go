// Copyright 2019 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// Package integralimg provides integral images (summed-area tables)
// of grayscale images, which make the sum or mean of any rectangular
// area available in constant time.
package integralimg

import (
	"image"
)

// I is the Integral Image. It has one more row and column than the
// image it was created from; the first row and column are all zero,
// and I[y][x] is the sum of all pixels above and to the left of
// (x, y).
type I [][]uint64

// Window is a part of an Integral Image
type Window struct {
	topleft     uint64
	topright    uint64
	bottomleft  uint64
	bottomright uint64
	width       int
	height      int
}

// ToIntegralImg creates an integral image
func ToIntegralImg(img *image.Gray) I {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	integral := make(I, h+1)
	integral[0] = make([]uint64, w+1)
	for y := 0; y < h; y++ {
		row := make([]uint64, w+1)
		var rowsum uint64
		for x := 0; x < w; x++ {
			rowsum += uint64(img.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			row[x+1] = integral[y][x+1] + rowsum
		}
		integral[y+1] = row
	}
	return integral
}

// Width returns the width of the image the Integral Image was
// created from
func (i I) Width() int {
	if len(i) == 0 {
		return 0
	}
	return len(i[0]) - 1
}

// Height returns the height of the image the Integral Image was
// created from
func (i I) Height() int {
	if len(i) == 0 {
		return 0
	}
	return len(i) - 1
}

// GetRect gets the corners of the rectangle r, which is clipped to
// the bounds of the image.
func (i I) GetRect(r image.Rectangle) Window {
	r = r.Intersect(image.Rect(0, 0, i.Width(), i.Height()))
	if r.Empty() {
		return Window{}
	}
	return Window{
		topleft:     i[r.Min.Y][r.Min.X],
		topright:    i[r.Min.Y][r.Max.X],
		bottomleft:  i[r.Max.Y][r.Min.X],
		bottomright: i[r.Max.Y][r.Max.X],
		width:       r.Dx(),
		height:      r.Dy(),
	}
}

// VerticalWindow gets a window which spans the full height of the
// image, starting at column x and continuing for width columns.
func (i I) VerticalWindow(x, width int) Window {
	return i.GetRect(image.Rect(x, 0, x+width, i.Height()))
}

// Sum returns the sum of all pixels in a Window
func (w Window) Sum() uint64 {
	return w.bottomright + w.topleft - w.topright - w.bottomleft
}

// Size returns the total size of a Window
func (w Window) Size() int {
	return w.width * w.height
}

// Mean returns the average value of pixels in a Window. An empty
// window has a mean of zero.
func (w Window) Mean() float64 {
	if w.Size() == 0 {
		return 0
	}
	return float64(w.Sum()) / float64(w.Size())
}

// ColumnMeans returns the mean value of every column of the image
func (i I) ColumnMeans() []float64 {
	means := make([]float64, i.Width())
	for x := range means {
		means[x] = i.VerticalWindow(x, 1).Mean()
	}
	return means
}
