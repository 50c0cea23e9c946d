// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package frames

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"rescribe.xyz/pillarcrop/pillar"
)

// pillarboxed creates an RGBA image with black bars of width bar on
// each side and a light grey middle
func pillarboxed(w, h, bar int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{200, 190, 180, 255}
			if x < bar || x >= w-bar {
				c = color.RGBA{0, 0, 0, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func writeImage(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	switch filepath.Ext(path) {
	case ".png":
		err = png.Encode(f, img)
	case ".bmp":
		err = bmp.Encode(f, img)
	case ".tiff":
		err = tiff.Encode(f, img, nil)
	default:
		t.Fatalf("No encoder for %s", path)
	}
	require.NoError(t, err)
}

func TestLoadGray(t *testing.T) {
	dir := t.TempDir()
	for _, format := range []string{"png", "bmp", "tiff"} {
		t.Run(format, func(t *testing.T) {
			p := filepath.Join(dir, "frame_000001."+format)
			writeImage(t, p, pillarboxed(40, 20, 5))

			gray, err := LoadGray(p, 0)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 40, 20), gray.Bounds())
			assert.Equal(t, uint8(0), gray.GrayAt(0, 0).Y)
			assert.Equal(t, uint8(0), gray.GrayAt(39, 19).Y)
			assert.InDelta(t, 192, int(gray.GrayAt(20, 10).Y), 2)
		})
	}
}

func TestLoadGrayErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadGray(filepath.Join(dir, "missing.png"), 0)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0644))
	_, err = LoadGray(bad, 0)
	assert.ErrorIs(t, err, image.ErrFormat)
}

func TestToGrayOffset(t *testing.T) {
	full := pillarboxed(30, 10, 3)
	sub := full.SubImage(image.Rect(2, 2, 12, 8))
	gray := ToGray(sub)
	assert.Equal(t, image.Rect(0, 0, 10, 6), gray.Bounds())
	assert.Equal(t, uint8(0), gray.GrayAt(0, 0).Y)
	assert.NotEqual(t, uint8(0), gray.GrayAt(1, 0).Y)
}

func TestLuma(t *testing.T) {
	cases := []struct {
		r, g, b uint8
		want    uint8
	}{
		{0, 0, 0, 0},
		{255, 255, 255, 255},
		{255, 0, 0, 76},
		{0, 255, 0, 150},
		{0, 0, 255, 29},
		{200, 190, 180, 192},
		{16, 17, 16, 17},
		// color.GrayModel gives one less for these
		{0, 5, 0, 3},
		{0, 15, 0, 9},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%d,%d,%d", c.r, c.g, c.b), func(t *testing.T) {
			assert.Equal(t, c.want, Luma(c.r, c.g, c.b))
		})
	}
}

func TestToGrayLuma(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 2, 1))
	rgba.Set(0, 0, color.RGBA{0, 5, 0, 255})
	rgba.Set(1, 0, color.RGBA{0, 15, 0, 255})

	nrgba := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	nrgba.Set(2, 1, color.NRGBA{0, 5, 0, 255})
	nrgba.Set(3, 1, color.NRGBA{0, 15, 0, 255})

	for name, img := range map[string]image.Image{
		"rgba":  rgba,
		"nrgba": nrgba.SubImage(image.Rect(2, 1, 4, 2)),
	} {
		t.Run(name, func(t *testing.T) {
			gray := ToGray(img)
			require.Equal(t, image.Rect(0, 0, 2, 1), gray.Bounds())
			assert.Equal(t, uint8(3), gray.GrayAt(0, 0).Y)
			assert.Equal(t, uint8(9), gray.GrayAt(1, 0).Y)
		})
	}
}

func TestScale(t *testing.T) {
	cases := []struct {
		w, h, width, height int
	}{
		{200, 100, 100, 50},
		{100, 50, 800, 400},
		{1920, 1080, 800, 450},
		{1000, 1, 10, 1},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%dx%d_to_%d", c.w, c.h, c.width), func(t *testing.T) {
			scaled := Scale(image.NewGray(image.Rect(0, 0, c.w, c.h)), c.width)
			assert.Equal(t, image.Rect(0, 0, c.width, c.height), scaled.Bounds())
		})
	}
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	for i := 3; i > 0; i-- {
		writeImage(t, filepath.Join(dir, fmt.Sprintf("frame_%06d.png", i)), pillarboxed(80, 40, 10))
	}
	writeImage(t, filepath.Join(dir, "other.png"), pillarboxed(10, 10, 1))

	paths, err := Glob(dir, "png")
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, "frame_000001.png", filepath.Base(paths[0]))
	assert.Equal(t, "frame_000003.png", filepath.Base(paths[2]))

	src := NewDirSource(paths, 40)
	assert.Equal(t, 3, src.Len())
	res, a, err := pillar.Detect("test", src, 16, 0.9)
	require.NoError(t, err)
	assert.Equal(t, 3, a.NFrames)
	assert.Equal(t, [2]int{40, 20}, res.VideoSize)
	assert.InDelta(t, 5, res.LeftPillarPx, 1)
	assert.InDelta(t, 5, res.RightPillarPx, 1)

	_, err = src.NextFrame()
	assert.Equal(t, io.EOF, err)
}

func TestDirSourceBadFrame(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "frame_000001.png")
	bad := filepath.Join(dir, "frame_000002.png")
	writeImage(t, good, pillarboxed(20, 10, 2))
	require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0644))

	imgs, err := NewDirSource([]string{good, bad}, 0).LoadAll()
	assert.Len(t, imgs, 1)
	assert.ErrorIs(t, err, image.ErrFormat)
	assert.Contains(t, err.Error(), bad)
}

func TestParseProbe(t *testing.T) {
	cases := []struct {
		name  string
		out   string
		probe Probe
		err   bool
	}{
		{"normal", `{"streams":[{"width":1920,"height":1080}],"format":{"duration":"12.500000"}}`, Probe{1920, 1080, 12.5}, false},
		{"noduration", `{"streams":[{"width":640,"height":480}],"format":{}}`, Probe{640, 480, 0}, false},
		{"na", `{"streams":[{"width":640,"height":480}],"format":{"duration":"N/A"}}`, Probe{640, 480, 0}, false},
		{"nostreams", `{"streams":[],"format":{"duration":"1.0"}}`, Probe{}, true},
		{"badjson", `{"streams":`, Probe{}, true},
		{"badduration", `{"streams":[{"width":1,"height":1}],"format":{"duration":"x"}}`, Probe{}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := parseProbe([]byte(c.out))
			if c.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.probe, p)
		})
	}

	assert.Equal(t, 25, Probe{Duration: 12.5}.ExpectedFrames(2))
	assert.Equal(t, 3, Probe{Duration: 1.1}.ExpectedFrames(2))
}

func TestFilter(t *testing.T) {
	e := &Extractor{SampleFPS: 0.5, ScaleWidth: 800}
	e.setDefaults()
	assert.Equal(t, "fps=0.5,scale=800:-2", e.filter())
	assert.Equal(t, "ffmpeg", e.FFmpeg)
	assert.Equal(t, "png", e.Format)

	e = &Extractor{}
	e.setDefaults()
	assert.Equal(t, "fps=2", e.filter())
}

func TestExtractMissingFFmpeg(t *testing.T) {
	e := &Extractor{FFmpeg: filepath.Join(t.TempDir(), "no-such-ffmpeg")}
	_, err := e.Extract(context.Background(), "video.mp4", t.TempDir())
	var cmderr *CmdError
	assert.ErrorAs(t, err, &cmderr)
}

// TestExtract creates a short pillarboxed video with ffmpeg, and
// checks that the pillars are found in the extracted frames
func TestExtract(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found; skipping")
	}
	dir := t.TempDir()
	video := filepath.Join(dir, "pillarbox.mp4")
	cmd := exec.Command("ffmpeg", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=c=white:s=240x240:d=2:r=10",
		"-vf", "pad=320:240:40:0:black",
		"-pix_fmt", "yuv420p", video)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))

	e := &Extractor{SampleFPS: 2, ScaleWidth: 160}
	paths, err := e.Extract(context.Background(), video, filepath.Join(dir, "frames"))
	require.NoError(t, err)
	assert.NotEmpty(t, paths)

	res, _, err := pillar.Detect(video, NewDirSource(paths, 0), 16, 0.9)
	require.NoError(t, err)
	assert.Equal(t, 160, res.VideoSize[0])
	assert.Equal(t, 120, res.VideoSize[1])
	assert.InDelta(t, 20, res.LeftPillarPx, 1)
	assert.InDelta(t, 20, res.RightPillarPx, 1)

	if _, err := exec.LookPath("ffprobe"); err == nil {
		p, err := Ffprobe(context.Background(), "", video)
		require.NoError(t, err)
		assert.Equal(t, 320, p.Width)
		assert.Equal(t, 240, p.Height)
	}
}

// fakeFFmpeg writes a shell script which ignores its input and copies
// n pillarboxed frames into the directory of its last argument, the
// output pattern, as ffmpeg would.
func fakeFFmpeg(t *testing.T, n, w, h, bar int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts can't be run as ffmpeg on windows")
	}
	src := t.TempDir()
	for i := 1; i <= n; i++ {
		writeImage(t, filepath.Join(src, fmt.Sprintf("frame_%06d.png", i)), pillarboxed(w, h, bar))
	}
	script := filepath.Join(t.TempDir(), "ffmpeg")
	body := fmt.Sprintf("#!/bin/sh\nfor last; do :; done\ncp '%s'/frame_*.png \"$(dirname \"$last\")\"/\n", src)
	require.NoError(t, os.WriteFile(script, []byte(body), 0755))
	return script
}

func TestExtractFake(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	e := &Extractor{FFmpeg: fakeFFmpeg(t, 3, 100, 50, 10), ScaleWidth: 100}
	paths, err := e.Extract(context.Background(), "video.mp4", dir)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	for i, p := range paths {
		assert.Equal(t, filepath.Join(dir, fmt.Sprintf("frame_%06d.png", i+1)), p)
	}

	res, _, err := pillar.Detect("video.mp4", NewDirSource(paths, 0), 16, 0.9)
	require.NoError(t, err)
	assert.Equal(t, [2]int{100, 50}, res.VideoSize)
	assert.Equal(t, 3, res.NSampledFrames)
	assert.Equal(t, 10, res.LeftPillarPx)
	assert.Equal(t, 10, res.RightPillarPx)
	assert.Equal(t, "crop=80:50:10:0", res.Crop.FFmpegFilter())
}

func TestExtractNoFrames(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts can't be run as ffmpeg on windows")
	}
	script := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nexit 0\n"), 0755))

	e := &Extractor{FFmpeg: script}
	_, err := e.Extract(context.Background(), "video.mp4", t.TempDir())
	assert.ErrorIs(t, err, pillar.ErrNoFrames)
}
