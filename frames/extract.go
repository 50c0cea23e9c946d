// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package frames

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"rescribe.xyz/pillarcrop/pillar"
)

const (
	DefaultSampleFPS  = 2.0
	DefaultScaleWidth = 800
	DefaultFormat     = "png"
)

// CmdError is returned when an external command such as ffmpeg
// fails. Stderr contains anything the command printed to stderr.
type CmdError struct {
	Cmd    string
	Err    error
	Stderr string
}

func (e *CmdError) Error() string {
	return fmt.Sprintf("%s failed: %v\nStderr: %s", e.Cmd, e.Err, e.Stderr)
}

func (e *CmdError) Unwrap() error {
	return e.Err
}

// Extractor samples frames from a video using ffmpeg, scaling them
// to a fixed width (the height keeping the aspect ratio).
type Extractor struct {
	// these can be set before calling Extract, or left to defaults
	FFmpeg     string
	SampleFPS  float64
	ScaleWidth int
	Format     string
	Logger     *log.Logger
}

func (e *Extractor) setDefaults() {
	if e.FFmpeg == "" {
		e.FFmpeg = "ffmpeg"
	}
	if e.SampleFPS <= 0 {
		e.SampleFPS = DefaultSampleFPS
	}
	if e.Format == "" {
		e.Format = DefaultFormat
	}
}

// filter returns the ffmpeg video filter used for sampling
func (e *Extractor) filter() string {
	f := "fps=" + strconv.FormatFloat(e.SampleFPS, 'f', -1, 64)
	if e.ScaleWidth > 0 {
		f += fmt.Sprintf(",scale=%d:-2", e.ScaleWidth)
	}
	return f
}

// Extract writes the sampled frames of video into dir, and returns
// their paths in order. If no frames were produced, an error
// wrapping pillar.ErrNoFrames is returned.
func (e *Extractor) Extract(ctx context.Context, video string, dir string) ([]string, error) {
	e.setDefaults()

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("Failed to create directory %s: %w", dir, err)
	}

	out := filepath.Join(dir, "frame_%06d."+e.Format)
	cmd := exec.CommandContext(ctx, e.FFmpeg,
		"-hide_banner", "-loglevel", "error",
		"-i", video,
		"-vf", e.filter(),
		"-q:v", "2",
		out)
	HideCmd(cmd)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if e.Logger != nil {
		e.Logger.Println("Running", strings.Join(cmd.Args, " "))
	}
	err = cmd.Run()
	if err != nil {
		return nil, &CmdError{Cmd: e.FFmpeg, Err: err, Stderr: stderr.String()}
	}

	paths, err := Glob(dir, e.Format)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("No frames extracted from %s: %w", video, pillar.ErrNoFrames)
	}
	if e.Logger != nil {
		e.Logger.Printf("Extracted %d frames from %s\n", len(paths), video)
	}

	return paths, nil
}

// Glob returns the sorted paths of the frames with the given suffix
// in dir
func Glob(dir string, format string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "frame_*."+format))
	if err != nil {
		return nil, fmt.Errorf("Failed to list frames in %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}
