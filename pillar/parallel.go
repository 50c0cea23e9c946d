// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pillar

import (
	"image"
	"runtime"
	"sync"
)

// AnalyseParallel is like AnalyseFrames, but spreads the analysis of
// frames over a number of workers. Each worker keeps its own counts,
// which are only summed once every worker has finished. The result
// is identical to that of AnalyseFrames, including which error is
// returned if more than one frame is bad. If workers is less than 1
// the number of CPUs is used.
func AnalyseParallel(frames []*image.Gray, threshold int, framePct float64, workers int) (Analysis, error) {
	if len(frames) == 0 {
		return Analysis{}, ErrNoFrames
	}
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > len(frames) {
		workers = len(frames)
	}

	width := frames[0].Bounds().Dx()
	means := make([][]float64, len(frames))
	errs := make([]error, len(frames))
	partials := make([][]int, workers)
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := range partials {
		partials[w] = make([]int, width)
		wg.Add(1)
		go func(partial []int) {
			defer wg.Done()
			for i := range jobs {
				if got := frames[i].Bounds().Dx(); i > 0 && got != width {
					errs[i] = &InconsistentWidthError{Frame: i, Want: width, Got: got}
					continue
				}
				black, m, err := ColumnBlackness(frames[i], threshold)
				if err != nil {
					errs[i] = err
					continue
				}
				means[i] = m
				for x, b := range black {
					if b {
						partial[x]++
					}
				}
			}
		}(partials[w])
	}

	for i := range frames {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return Analysis{}, err
		}
	}

	counts := make([]int, width)
	for _, partial := range partials {
		for x, c := range partial {
			counts[x] += c
		}
	}

	return Analysis{
		NFrames:   len(frames),
		Width:     width,
		Height:    frames[0].Bounds().Dy(),
		Counts:    counts,
		BlackCols: BlackColumns(counts, len(frames), framePct),
		ColMeans:  means,
	}, nil
}
