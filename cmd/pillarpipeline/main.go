// Copyright 2019 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// pillarpipeline watches the crop queue for videos, finding the
// pillars in each one and uploading the results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"rescribe.xyz/pillarcrop/internal/config"
	"rescribe.xyz/pillarcrop/internal/logger"
	"rescribe.xyz/pillarcrop/internal/metrics"
	"rescribe.xyz/pillarcrop/internal/pipeline"
)

const usage = `Usage: pillarpipeline [-once] [-shutdown]

Watches the crop queue for video names. When one is found this
general process is followed:

- The video name is hidden from the queue, and a 'heartbeat' is
  started which keeps it hidden (this will time out after 2 minutes
  if the program is terminated)
- The video is downloaded
- Frames are sampled from it, and the pillars and crop found
- The .crop.json result, graph and PDF report are uploaded next to
  the video
- The heartbeat is stopped
- The video name is removed from the queue

Settings are read from the environment:

  PILLARCROP_STORAGE      aws, minio or local (default aws)
  AWS_REGION              AWS region (default eu-west-2)
  MINIO_ENDPOINT          MinIO server (default localhost:9000)
  MINIO_ACCESS_KEY        MinIO access key
  MINIO_SECRET_KEY        MinIO secret key
  MINIO_USE_SSL           use https for MinIO (default false)
  PILLARCROP_BUCKET       storage bucket
  PILLARCROP_QUEUE        queue name (aws only)
  PILLARCROP_THRESHOLD    black column threshold (default 16)
  PILLARCROP_FRAME_PCT    proportion of frames a column must be black (default 0.9)
  PILLARCROP_SAMPLE_FPS   frames per second to sample (default 2)
  PILLARCROP_SCALE_WIDTH  width to scale frames to (default 800)
  FFMPEG                  ffmpeg command (default ffmpeg)
  METRICS_PORT            port to serve /metrics and /healthz on (default 8083, 0 to disable)
  LOG_LEVEL               debug, info, warn or error (default info)
  TEMP_DIR                directory for working files and local queues
`

const PauseBetweenChecks = 1 * time.Minute
const TimeBeforeShutdown = 5 * time.Minute

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func main() {
	once := flag.Bool("once", false, "exit once the queue is empty")
	autoshutdown := flag.Bool("shutdown", false, "exit if no work has been available for 5 minutes")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading configuration:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error setting up logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, err := pipeline.NewConn(cfg, logger.Std(log.With(zap.String("storage", cfg.Storage))))
	if err != nil {
		log.Fatal("failed to create connection", zap.Error(err))
	}
	log.Info("setting up connection", zap.String("storage", cfg.Storage))
	err = conn.Init()
	if err != nil {
		log.Fatal("failed to set up connection", zap.Error(err))
	}

	if cfg.MetricsPort != 0 {
		metrics.StartServer(ctx, cfg.MetricsPort, log)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	opts := pipeline.OptionsFromConfig(cfg)

	checkQueue := time.After(0)
	shutdownIfQuiet := time.NewTimer(TimeBeforeShutdown)
	if !*autoshutdown {
		stopTimer(shutdownIfQuiet)
	}

	for {
		select {
		case sig := <-sigCh:
			log.Info("received shutdown signal", zap.String("signal", sig.String()))
			return
		case <-checkQueue:
			msg, err := conn.CheckQueue(conn.CropQueueId(), pipeline.HeartbeatSeconds*2)
			checkQueue = time.After(PauseBetweenChecks)
			if err != nil {
				log.Error("error checking crop queue", zap.Error(err))
				continue
			}
			if msg.Handle == "" {
				log.Debug("no message received on crop queue, sleeping")
				if *once {
					log.Info("queue empty, exiting")
					return
				}
				continue
			}

			vlog := log.With(zap.String("video", msg.Body))
			vlog.Info("message received on crop queue, processing")
			stopTimer(shutdownIfQuiet)
			start := time.Now()
			jobctx, jobcancel := context.WithCancel(ctx)
			go func() {
				select {
				case sig := <-sigCh:
					vlog.Info("received shutdown signal, stopping", zap.String("signal", sig.String()))
					jobcancel()
					sigCh <- sig
				case <-jobctx.Done():
				}
			}()
			err = pipeline.ProcessVideo(jobctx, msg, conn, opts, conn.CropQueueId())
			jobcancel()
			metrics.StageDuration.WithLabelValues("total").Observe(time.Since(start).Seconds())
			if *autoshutdown {
				shutdownIfQuiet.Reset(TimeBeforeShutdown)
			}
			if err != nil {
				metrics.VideosProcessedTotal.WithLabelValues("failure").Inc()
				vlog.Error("error processing video", zap.Error(err))
				continue
			}
			metrics.VideosProcessedTotal.WithLabelValues("success").Inc()
			vlog.Info("video processed", zap.Duration("duration", time.Since(start)))
			// check again straight away, as there may well be more waiting
			checkQueue = time.After(0)
		case <-shutdownIfQuiet.C:
			log.Info("no work available for a while, shutting down")
			return
		}
	}
}
