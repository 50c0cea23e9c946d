// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// pillarcrop finds the black pillarbox bars at the sides of a video,
// and the crop which removes them.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"rescribe.xyz/pillarcrop"
	"rescribe.xyz/pillarcrop/frames"
	"rescribe.xyz/pillarcrop/internal/pipeline"
	"rescribe.xyz/pillarcrop/pillar"
)

const usage = `Usage: pillarcrop [-v] [-sample-fps fps] [-scale-width px] [-threshold n]
                  [-frame-pct pct] [-out-json file] [-keep-frames]
                  [-graph file.png] [-report file.pdf] [-workers n] video

Detects black pillar bars at the left and right of a video, and the
crop which removes them.

Frames are sampled from the video with ffmpeg and scaled to a fixed
width. A column of a frame is black if its mean brightness is at most
the threshold, and a column is part of a pillar if it is black in at
least the given proportion of frames and is connected to the edge of
the frame by other such columns.

The result is printed to stdout as JSON, and saved to video.crop.json
(or the file given with -out-json). The crop is in pixels of the
scaled frames, and as proportions of the frame size.

Exit codes: 2 if the video is not found, 3 if no frames could be
extracted, 4 if ffmpeg failed, 5 for any other error.
`

const (
	exitMissing  = 2
	exitNoFrames = 3
	exitFFmpeg   = 4
	exitOther    = 5
)

type options struct {
	video      string
	sampleFPS  float64
	scaleWidth int
	threshold  int
	framePct   float64
	outJSON    string
	keepFrames bool
	graph      string
	report     string
	workers    int
	ffmpeg     string
	ffprobe    string
}

// exitError carries the exit code for an error
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// exitCode returns the code the program should exit with for err
func exitCode(err error) int {
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	var cmderr *frames.CmdError
	if errors.As(err, &cmderr) {
		return exitFFmpeg
	}
	if errors.Is(err, pillar.ErrNoFrames) {
		return exitNoFrames
	}
	return exitOther
}

// analyse finds the pillars in the frames at paths, loading them all
// at once to analyse them in parallel if more than one worker is
// requested
func analyse(opts options, paths []string) (pillar.Result, pillar.Analysis, error) {
	if opts.workers == 1 {
		src := frames.NewDirSource(paths, 0)
		return pillar.Detect(opts.video, src, opts.threshold, opts.framePct)
	}

	imgs, err := frames.NewDirSource(paths, 0).LoadAll()
	if err != nil {
		return pillar.Result{}, pillar.Analysis{}, err
	}
	a, err := pillar.AnalyseParallel(imgs, opts.threshold, opts.framePct, opts.workers)
	if err != nil {
		return pillar.Result{}, pillar.Analysis{}, err
	}
	r, err := pillar.NewResult(opts.video, a, opts.threshold, opts.framePct)
	return r, a, err
}

// run does the work of the program, writing the JSON result to
// stdout
func run(ctx context.Context, opts options, stdout io.Writer, verboselog *log.Logger) error {
	_, err := os.Stat(opts.video)
	if err != nil {
		return &exitError{code: exitMissing, err: fmt.Errorf("Input video not found: %s", opts.video)}
	}

	tmpd, err := os.MkdirTemp("", "pillarcrop_")
	if err != nil {
		return fmt.Errorf("Failed to create temporary directory: %w", err)
	}
	if opts.keepFrames {
		defer log.Println("Temporary frames retained at:", tmpd)
	} else {
		defer os.RemoveAll(tmpd)
	}

	ex := frames.Extractor{
		FFmpeg:     opts.ffmpeg,
		SampleFPS:  opts.sampleFPS,
		ScaleWidth: opts.scaleWidth,
		Logger:     verboselog,
	}
	paths, err := ex.Extract(ctx, opts.video, tmpd)
	if err != nil {
		return err
	}

	r, a, err := analyse(opts, paths)
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("Failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(stdout, string(b))
	if err != nil {
		return err
	}

	out := opts.outJSON
	if out == "" {
		out = opts.video + pipeline.ResultSuffix
	}
	err = pipeline.WriteResult(out, r)
	if err != nil {
		return err
	}
	verboselog.Println("Saved result to", out)

	p, err := frames.Ffprobe(ctx, opts.ffprobe, opts.video)
	if err != nil {
		verboselog.Println("Could not probe video size, so not reporting crop at full size:", err)
	} else {
		full := r.Crop.Scale(p.Width, p.Height)
		verboselog.Printf("Crop at full size %dx%d: %s\n", p.Width, p.Height, full.FFmpegFilter())
	}

	if opts.graph != "" {
		made, err := pipeline.WriteGraph(opts.graph, r, a)
		if err != nil {
			return err
		}
		if made {
			verboselog.Println("Saved graph to", opts.graph)
		} else {
			log.Println("Not enough columns to graph, so no graph saved")
		}
	}

	if opts.report != "" {
		graph := opts.graph
		if graph != "" {
			if _, err := os.Stat(graph); err != nil {
				graph = ""
			}
		}
		if graph == "" {
			graph = filepath.Join(tmpd, "graph.png")
			made, err := pipeline.WriteGraph(graph, r, a)
			if err != nil {
				return err
			}
			if !made {
				graph = ""
			}
		}
		err = pillarcrop.WriteReport(r, graph, opts.report)
		if err != nil {
			return err
		}
		verboselog.Println("Saved report to", opts.report)
	}

	return nil
}

func main() {
	var opts options
	verbose := flag.Bool("v", false, "verbose")
	flag.Float64Var(&opts.sampleFPS, "sample-fps", frames.DefaultSampleFPS, "frames per second to sample")
	flag.IntVar(&opts.scaleWidth, "scale-width", frames.DefaultScaleWidth, "width to scale frames to for analysis")
	flag.IntVar(&opts.threshold, "threshold", pillar.DefaultThreshold, "mean brightness (0-255) at or below which a column is black")
	flag.Float64Var(&opts.framePct, "frame-pct", pillar.DefaultFramePct, "proportion of sampled frames in which a column must be black")
	flag.StringVar(&opts.outJSON, "out-json", "", "file to write the JSON result to (default video.crop.json)")
	flag.BoolVar(&opts.keepFrames, "keep-frames", false, "do not delete the extracted frames")
	flag.StringVar(&opts.graph, "graph", "", "write a graph of black columns to this png file")
	flag.StringVar(&opts.report, "report", "", "write a PDF report to this file")
	flag.IntVar(&opts.workers, "workers", 1, "number of frames to analyse in parallel (0 for one per cpu)")
	flag.StringVar(&opts.ffmpeg, "ffmpeg", "ffmpeg", "ffmpeg command")
	flag.StringVar(&opts.ffprobe, "ffprobe", "ffprobe", "ffprobe command")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(exitMissing)
	}
	opts.video = flag.Arg(0)

	log.SetFlags(0)
	log.SetPrefix("pillarcrop: ")

	var verboselog *log.Logger
	if *verbose {
		verboselog = log.New(os.Stderr, "", log.LstdFlags)
	} else {
		var n pipeline.NullWriter
		verboselog = log.New(n, "", 0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, opts, os.Stdout, verboselog)
	if err != nil {
		code := exitCode(err)
		if code == exitFFmpeg {
			log.Println("ERROR: ffmpeg failed. Make sure ffmpeg is installed and on PATH.")
		}
		log.Println("ERROR:", err)
		stop()
		os.Exit(code)
	}
}
