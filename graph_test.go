// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pillarcrop

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rescribe.xyz/pillarcrop/pillar"
)

func testAnalysis() pillar.Analysis {
	return pillar.Analysis{
		NFrames:   4,
		Width:     10,
		Height:    6,
		Counts:    []int{4, 4, 4, 0, 0, 0, 0, 0, 3, 3},
		BlackCols: []bool{true, true, true, false, false, false, false, false, false, false},
		ColMeans: [][]float64{
			{0, 0, 0, 200, 200, 200, 200, 200, 0, 0},
			{0, 0, 0, 200, 200, 200, 200, 200, 0, 0},
		},
	}
}

func TestMeanBrightness(t *testing.T) {
	a := testAnalysis()
	a.ColMeans[1][3] = 100
	avg := meanBrightness(a)
	require.Len(t, avg, 10)
	assert.Equal(t, 0.0, avg[0])
	assert.Equal(t, 150.0, avg[3])
	assert.Equal(t, 200.0, avg[4])

	a.ColMeans = nil
	assert.Equal(t, make([]float64, 10), meanBrightness(a))
}

func TestGraph(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Graph(testAnalysis(), 0.9, 3, 0, "test", &buf))
	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 1920, cfg.Width)
	assert.Equal(t, 1080, cfg.Height)

	buf.Reset()
	require.NoError(t, GraphOpts(testAnalysis(), 0.75, 3, 2, "test", false, &buf))
	assert.NotZero(t, buf.Len())

	a := pillar.Analysis{NFrames: 1, Width: 1, Counts: []int{1}}
	assert.ErrorIs(t, Graph(a, 0.9, 0, 0, "narrow", &buf), ErrTooFewColumns)
}

func TestReport(t *testing.T) {
	dir := t.TempDir()
	a := testAnalysis()
	r, err := pillar.NewResult("clip.mp4", a, 16, 0.9)
	require.NoError(t, err)

	graph := filepath.Join(dir, "graph.png")
	f, err := os.Create(graph)
	require.NoError(t, err)
	require.NoError(t, Graph(a, 0.9, r.LeftPillarPx, r.RightPillarPx, "clip.mp4", f))
	require.NoError(t, f.Close())

	for _, g := range []string{graph, ""} {
		fn := filepath.Join(dir, "report.pdf")
		require.NoError(t, WriteReport(r, g, fn))
		b, err := os.ReadFile(fn)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))
	}

	err = WriteReport(r, filepath.Join(dir, "missing.png"), filepath.Join(dir, "bad.pdf"))
	assert.Error(t, err)
}
