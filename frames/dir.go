// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package frames

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// Dir provides frames from a list of image files, loading each one
// only when it is requested, so that only one frame is held in
// memory at a time.
type Dir struct {
	// Width to scale frames to; 0 leaves them at their original size
	Width int

	paths []string
	next  int
}

// NewDirSource creates a frame source reading the image files in
// paths, in order
func NewDirSource(paths []string, width int) *Dir {
	return &Dir{Width: width, paths: paths}
}

// NextFrame loads the next frame, returning io.EOF once all have been
// loaded
func (d *Dir) NextFrame() (*image.Gray, error) {
	if d.next >= len(d.paths) {
		return nil, io.EOF
	}
	p := d.paths[d.next]
	d.next++

	img, err := LoadGray(p, d.Width)
	if err != nil {
		return nil, fmt.Errorf("Could not load frame %s: %w", p, err)
	}
	return img, nil
}

// Len returns the total number of frames
func (d *Dir) Len() int {
	return len(d.paths)
}

// LoadAll loads every remaining frame into memory
func (d *Dir) LoadAll() ([]*image.Gray, error) {
	var imgs []*image.Gray
	for {
		img, err := d.NextFrame()
		if err == io.EOF {
			return imgs, nil
		}
		if err != nil {
			return imgs, err
		}
		imgs = append(imgs, img)
	}
}

// LoadGray decodes an image file, converts it to grayscale, and
// scales it to width (keeping the aspect ratio) if width is not 0
func LoadGray(path string, width int) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	gray := ToGray(img)
	if width > 0 && gray.Bounds().Dx() != width {
		gray = Scale(gray, width)
	}
	return gray, nil
}

// ToGray converts an image to grayscale, with its bounds starting at
// (0, 0). Colour pixels are converted with Luma.
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok && b.Min == (image.Point{}) {
		return g
	}
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch src := img.(type) {
	case *image.Gray:
		draw.Draw(gray, gray.Bounds(), src, b.Min, draw.Src)
	case *image.NRGBA:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				i := src.PixOffset(b.Min.X+x, b.Min.Y+y)
				gray.Pix[y*gray.Stride+x] = Luma(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
			}
		}
	default:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				gray.Pix[y*gray.Stride+x] = Luma(c.R, c.G, c.B)
			}
		}
	}
	return gray
}

// Luma is the ITU-R 601-2 transform L = R*299/1000 + G*587/1000 +
// B*114/1000, in 16 bit fixed point and rounded to nearest, which is
// how Pillow converts images to "L" mode. It is not quite the same as
// color.GrayModel, which works on 16 bit channels and can come out one
// lower.
func Luma(r, g, b uint8) uint8 {
	return uint8((uint32(r)*19595 + uint32(g)*38470 + uint32(b)*7471 + 0x8000) >> 16)
}

// Scale resizes a grayscale image to width, keeping the aspect ratio
func Scale(img *image.Gray, width int) *image.Gray {
	b := img.Bounds()
	if b.Dx() == 0 || width <= 0 {
		return img
	}
	height := int(float64(b.Dy())*float64(width)/float64(b.Dx()) + 0.5)
	if height < 1 {
		height = 1
	}
	scaled := image.NewGray(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Src, nil)
	return scaled
}
