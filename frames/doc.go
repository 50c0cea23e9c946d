// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// Package frames extracts sample frames from videos with ffmpeg, and
// provides them one at a time as grayscale images for analysis by
// the pillar package.
//
// Colour frames are converted to grayscale with the ITU-R 601-2 luma
// transform, computed in 16 bit fixed point exactly as Pillow does
// for convert("L") (see Luma), so column means agree with tools built
// on Pillow to the last brightness level.
package frames
