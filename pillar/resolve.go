// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pillar

// FindPillars returns the widths of the runs of black columns which
// touch the left and right edges. Black columns elsewhere are not
// counted. Each width is capped at half the number of columns
// (rounded down), so a completely black set of columns still leaves
// a crop of zero or one column, rather than a negative one.
func FindPillars(black []bool) (left, right int) {
	w := len(black)

	for left < w && black[left] {
		left++
	}
	for right < w && black[w-1-right] {
		right++
	}

	if left > w/2 {
		left = w / 2
	}
	if right > w/2 {
		right = w / 2
	}

	return left, right
}
