// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pillar

// Result is the outcome of pillar detection for a video, in the
// layout expected by consumers of .crop.json files.
type Result struct {
	Video              string  `json:"video"`
	VideoSize          [2]int  `json:"video_size_used_for_analysis"`
	NSampledFrames     int     `json:"n_sampled_frames"`
	Threshold          int     `json:"threshold"`
	FramePct           float64 `json:"frame_pct"`
	LeftPillarPx       int     `json:"left_pillar_px"`
	RightPillarPx      int     `json:"right_pillar_px"`
	PillarPercentLeft  float64 `json:"pillar_percent_left"`
	PillarPercentRight float64 `json:"pillar_percent_right"`
	Crop               Crop    `json:"crop"`
}

// NewResult finds the pillars and crop from an analysis
func NewResult(video string, a Analysis, threshold int, framePct float64) (Result, error) {
	left, right := FindPillars(a.BlackCols)
	crop, err := ComputeCrop(left, right, a.Width, a.Height)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Video:              video,
		VideoSize:          [2]int{a.Width, a.Height},
		NSampledFrames:     a.NFrames,
		Threshold:          threshold,
		FramePct:           framePct,
		LeftPillarPx:       left,
		RightPillarPx:      right,
		PillarPercentLeft:  Round6(float64(left) / float64(a.Width)),
		PillarPercentRight: Round6(float64(right) / float64(a.Width)),
		Crop:               crop,
	}, nil
}

// Detect analyses every frame from src and returns the resulting
// pillars and crop, along with the analysis they were derived from.
// Nothing is returned if any stage fails.
func Detect(video string, src FrameSource, threshold int, framePct float64) (Result, Analysis, error) {
	a, err := Analyse(src, threshold, framePct)
	if err != nil {
		return Result{}, Analysis{}, err
	}
	r, err := NewResult(video, a, threshold, framePct)
	if err != nil {
		return Result{}, Analysis{}, err
	}
	return r, a, nil
}
