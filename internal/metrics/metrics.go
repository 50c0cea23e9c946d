// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// Package metrics holds the prometheus metrics recorded while
// processing videos, and a server to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VideosProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pillarcrop_videos_processed_total",
		Help: "Total number of videos processed, by status",
	}, []string{"status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pillarcrop_stage_duration_seconds",
		Help:    "Duration of each stage of processing a video",
		Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	FramesSampledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pillarcrop_frames_sampled_total",
		Help: "Total number of frames sampled across all videos",
	})

	PillarWidth = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pillarcrop_pillar_width_ratio",
		Help:    "Width of detected pillars as a proportion of the frame width",
		Buckets: []float64{0, 0.01, 0.05, 0.1, 0.125, 0.15, 0.2, 0.3, 0.5},
	}, []string{"side"})

	ActiveJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pillarcrop_active_jobs",
		Help: "Number of videos currently being processed",
	})
)
