// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

/*
Package pillar detects black vertical bars ("pillars") at the sides of
video frames, and suggests a crop which removes them.

Each sampled frame is reduced to the mean brightness of each of its
columns, and a column is black in that frame if its mean is at or
below a threshold. The number of frames in which each column is black
is counted, and a column is considered black overall if it was black
in at least framePct of the frames. Pillars are the runs of black
columns touching the left and right edges, each capped at half the
frame width, so that a fully black video gives a crop of zero (or, for
odd widths, one) columns rather than a negative one.

A typical use, with frames extracted by the frames package:

	src := frames.NewDirSource(paths, 0)
	res, _, err := pillar.Detect("movie.mp4", src, 16, 0.9)
*/
package pillar
