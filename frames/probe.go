// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package frames

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
)

// Probe holds the properties of a video's first video stream
type Probe struct {
	Width, Height int
	Duration      float64
}

type ffprobeOutput struct {
	Streams []struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func parseProbe(b []byte) (Probe, error) {
	var out ffprobeOutput
	err := json.Unmarshal(b, &out)
	if err != nil {
		return Probe{}, fmt.Errorf("Failed to parse ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return Probe{}, errors.New("ffprobe found no video streams")
	}

	p := Probe{Width: out.Streams[0].Width, Height: out.Streams[0].Height}
	if out.Format.Duration != "" && out.Format.Duration != "N/A" {
		p.Duration, err = strconv.ParseFloat(out.Format.Duration, 64)
		if err != nil {
			return Probe{}, fmt.Errorf("Failed to parse duration %s: %w", out.Format.Duration, err)
		}
	}
	return p, nil
}

// Ffprobe gets the dimensions and duration of a video using the
// ffprobe command. If ffprobe is "", "ffprobe" is used.
func Ffprobe(ctx context.Context, ffprobe string, video string) (Probe, error) {
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height:format=duration",
		"-of", "json",
		video)
	HideCmd(cmd)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		return Probe{}, &CmdError{Cmd: ffprobe, Err: err, Stderr: stderr.String()}
	}
	return parseProbe(stdout.Bytes())
}

// ExpectedFrames estimates how many frames will be sampled from the
// video at fps frames per second
func (p Probe) ExpectedFrames(fps float64) int {
	return int(math.Ceil(p.Duration * fps))
}
