// Copyright 2020 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// pipeline is a package used by the pillarpipeline command, which
// handles the core functionality, using channels heavily to
// coordinate jobs. Note that it is considered an "internal" package,
// not intended for external use, and no guarantee is made of the
// stability of any interfaces provided.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"rescribe.xyz/pillarcrop"
	"rescribe.xyz/pillarcrop/frames"
	"rescribe.xyz/pillarcrop/internal/metrics"
	"rescribe.xyz/pillarcrop/pillar"
)

const HeartbeatSeconds = 60

// Suffixes of the files created for each video
const (
	ResultSuffix = ".crop.json"
	GraphSuffix  = ".graph.png"
	ReportSuffix = ".report.pdf"
)

type Lister interface {
	ListObjects(bucket string, prefix string) ([]string, error)
	Log(v ...interface{})
	StorageId() string
}

type Downloader interface {
	Download(bucket string, key string, fn string) error
	Log(v ...interface{})
	StorageId() string
}

type DownloadLister interface {
	Download(bucket string, key string, fn string) error
	ListObjects(bucket string, prefix string) ([]string, error)
	Log(v ...interface{})
	StorageId() string
}

type Uploader interface {
	Log(v ...interface{})
	Upload(bucket string, key string, path string) error
	StorageId() string
}

type Queuer interface {
	AddToQueue(url string, msg string) error
	CheckQueue(url string, timeout int64) (pillarcrop.Qmsg, error)
	CropQueueId() string
	DelFromQueue(url string, handle string) error
	Log(v ...interface{})
	QueueHeartbeat(msg pillarcrop.Qmsg, qurl string, duration int64) (pillarcrop.Qmsg, error)
}

type UploadQueuer interface {
	Uploader
	Queuer
}

type Pipeliner interface {
	AddToQueue(url string, msg string) error
	CheckQueue(url string, timeout int64) (pillarcrop.Qmsg, error)
	CropQueueId() string
	DelFromQueue(url string, handle string) error
	Download(bucket string, key string, fn string) error
	GetLogger() *log.Logger
	Init() error
	ListObjects(bucket string, prefix string) ([]string, error)
	Log(v ...interface{})
	QueueHeartbeat(msg pillarcrop.Qmsg, qurl string, duration int64) (pillarcrop.Qmsg, error)
	Upload(bucket string, key string, path string) error
	StorageId() string
}

type MinPipeliner interface {
	Pipeliner
	MinimalInit() error
}

// Options control how videos are analysed
type Options struct {
	Threshold  int
	FramePct   float64
	SampleFPS  float64
	ScaleWidth int
	FFmpeg     string
	Graph      bool
	Report     bool
	KeepFrames bool
	// TempDir is where working directories are created; os.TempDir()
	// is used if it is empty
	TempDir string
}

// DefaultOptions returns the options used if none are specified
func DefaultOptions() Options {
	return Options{
		Threshold:  pillar.DefaultThreshold,
		FramePct:   pillar.DefaultFramePct,
		SampleFPS:  frames.DefaultSampleFPS,
		ScaleWidth: frames.DefaultScaleWidth,
		Graph:      true,
		Report:     true,
	}
}

// WorkDir returns a new, uniquely named working directory
func (o Options) WorkDir() (string, error) {
	base := o.TempDir
	if base == "" {
		base = os.TempDir()
	}
	d := filepath.Join(base, "pillarcrop-"+uuid.NewString())
	err := os.MkdirAll(d, 0755)
	if err != nil {
		return "", fmt.Errorf("Failed to create directory %s: %w", d, err)
	}
	return d, nil
}

// WriteResult saves r as indented JSON to path
func WriteResult(path string, r pillar.Result) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("Failed to encode result: %w", err)
	}
	b = append(b, '\n')
	err = os.WriteFile(path, b, 0644)
	if err != nil {
		return fmt.Errorf("Failed to write %s: %w", path, err)
	}
	return nil
}

// ReadResult loads a result saved with WriteResult
func ReadResult(path string) (pillar.Result, error) {
	var r pillar.Result
	b, err := os.ReadFile(path)
	if err != nil {
		return r, err
	}
	err = json.Unmarshal(b, &r)
	if err != nil {
		return r, fmt.Errorf("Failed to decode %s: %w", path, err)
	}
	return r, nil
}

// WriteGraph renders the column graph for an analysis to path. If
// there are too few columns to graph nothing is written and false is
// returned.
func WriteGraph(path string, r pillar.Result, a pillar.Analysis) (bool, error) {
	f, err := os.Create(path)
	if err != nil {
		return false, fmt.Errorf("Error creating file %s: %w", path, err)
	}
	defer f.Close()
	err = pillarcrop.Graph(a, r.FramePct, r.LeftPillarPx, r.RightPillarPx, filepath.Base(r.Video), f)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
	}
	if errors.Is(err, pillarcrop.ErrTooFewColumns) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("Error rendering graph: %w", err)
	}
	return true, nil
}

// download reads file names from a channel and downloads them into
// dir, putting each successfully downloaded file name into the
// process channel. If an error occurs it is sent to the errc channel
// and the function returns early.
func download(ctx context.Context, dl chan string, process chan string, conn Downloader, dir string, errc chan error, logger *log.Logger) {
	for key := range dl {
		select {
		case <-ctx.Done():
			for range dl {
			} // consume the rest of the receiving channel so it isn't blocked
			errc <- ctx.Err()
			close(process)
			return
		default:
		}
		fn := filepath.Join(dir, path.Base(key))
		logger.Println("Downloading", key)
		err := conn.Download(conn.StorageId(), key, fn)
		if err != nil {
			for range dl {
			} // consume the rest of the receiving channel so it isn't blocked
			errc <- err
			close(process)
			return
		}
		process <- fn
	}
	close(process)
}

// up reads file names from a channel and uploads them with the
// prefix/ prefix, removing the local copy of each file once it has
// been successfully uploaded. The done channel is then written to to
// signal completion. If an error occurs it is sent to the errc
// channel and the function returns early.
func up(ctx context.Context, c chan string, done chan bool, conn Uploader, prefix string, errc chan error, logger *log.Logger) {
	for p := range c {
		select {
		case <-ctx.Done():
			for range c {
			} // consume the rest of the receiving channel so it isn't blocked
			errc <- ctx.Err()
			return
		default:
		}
		key := path.Join(prefix, filepath.Base(p))
		logger.Println("Uploading", key)
		err := conn.Upload(conn.StorageId(), key, p)
		if err != nil {
			for range c {
			} // consume the rest of the receiving channel so it isn't blocked
			errc <- err
			return
		}
		err = os.Remove(p)
		if err != nil {
			for range c {
			} // consume the rest of the receiving channel so it isn't blocked
			errc <- err
			return
		}
	}

	done <- true
}

// Crop returns a processing stage which finds the pillars in each
// video it receives, sending the result files it creates to be
// uploaded. Each video is removed once it has been analysed.
func Crop(opts Options) func(context.Context, chan string, chan string, chan error, *log.Logger) {
	return func(ctx context.Context, tocrop chan string, up chan string, errc chan error, logger *log.Logger) {
		defer close(up)
		for video := range tocrop {
			select {
			case <-ctx.Done():
				for range tocrop {
				} // consume the rest of the receiving channel so it isn't blocked
				errc <- ctx.Err()
				return
			default:
			}
			logger.Println("Finding pillars in", video)
			done, err := cropVideo(ctx, video, opts, logger)
			_ = os.Remove(video)
			if err != nil {
				for range tocrop {
				} // consume the rest of the receiving channel so it isn't blocked
				errc <- fmt.Errorf("Error finding pillars in %s: %w", filepath.Base(video), err)
				return
			}
			for _, p := range done {
				up <- p
			}
		}
	}
}

// cropVideo extracts frames from video, detects the pillars, and
// writes the result files next to the video, returning their paths
func cropVideo(ctx context.Context, video string, opts Options, logger *log.Logger) ([]string, error) {
	dir := filepath.Dir(video)
	name := filepath.Base(video)
	framedir := filepath.Join(dir, name+".frames")
	if !opts.KeepFrames {
		defer os.RemoveAll(framedir)
	}

	start := time.Now()
	ex := frames.Extractor{
		FFmpeg:     opts.FFmpeg,
		SampleFPS:  opts.SampleFPS,
		ScaleWidth: opts.ScaleWidth,
		Logger:     logger,
	}
	paths, err := ex.Extract(ctx, video, framedir)
	metrics.StageDuration.WithLabelValues("extract").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	metrics.FramesSampledTotal.Add(float64(len(paths)))

	start = time.Now()
	src := frames.NewDirSource(paths, 0)
	r, a, err := pillar.Detect(name, src, opts.Threshold, opts.FramePct)
	metrics.StageDuration.WithLabelValues("detect").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	metrics.PillarWidth.WithLabelValues("left").Observe(r.PillarPercentLeft)
	metrics.PillarWidth.WithLabelValues("right").Observe(r.PillarPercentRight)
	logger.Printf("Found pillars in %s: left %dpx, right %dpx, %s\n", name, r.LeftPillarPx, r.RightPillarPx, r.Crop.FFmpegFilter())

	var done []string
	fn := filepath.Join(dir, name+ResultSuffix)
	err = WriteResult(fn, r)
	if err != nil {
		return done, err
	}
	done = append(done, fn)

	graph := ""
	if opts.Graph {
		fn = filepath.Join(dir, name+GraphSuffix)
		ok, err := WriteGraph(fn, r, a)
		if err != nil {
			return done, err
		}
		if ok {
			graph = fn
		}
	}

	if opts.Report {
		fn = filepath.Join(dir, name+ReportSuffix)
		err = pillarcrop.WriteReport(r, graph, fn)
		if err != nil {
			return done, err
		}
		done = append(done, fn)
	}

	// the graph is sent last as the report embeds it
	if graph != "" {
		done = append(done, graph)
	}

	return done, nil
}

// heartbeat keeps msg hidden on the queue each time t ticks, until
// ctx is done
func heartbeat(ctx context.Context, conn Queuer, t *time.Ticker, msg pillarcrop.Qmsg, queue string, msgc chan pillarcrop.Qmsg, errc chan error) {
	currentmsg := msg
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		m, err := conn.QueueHeartbeat(currentmsg, queue, HeartbeatSeconds*2)
		if err != nil {
			conn.Log("Error with heartbeat", err)
			t.Stop()
			select {
			case errc <- err:
			default:
			}
			return
		}
		if m.Id != "" {
			conn.Log("Replaced message handle as visibilitytimeout limit was reached")
			currentmsg = m
			select {
			case <-msgc:
			default:
			} // throw away any old msg
			msgc <- m
		}
	}
}

// ProcessVideo downloads the video named in msg, finds its pillars,
// and uploads the results alongside the video in storage. The message
// is deleted from fromQueue once everything has succeeded.
func ProcessVideo(ctx context.Context, msg pillarcrop.Qmsg, conn Pipeliner, opts Options, fromQueue string) error {
	dl := make(chan string)
	msgc := make(chan pillarcrop.Qmsg, 1)
	processc := make(chan string)
	upc := make(chan string)
	// buffered so stages can finish after an early return
	done := make(chan bool, 1)
	errc := make(chan error, 3)

	key := msg.Body
	if key == "" {
		return errors.New("Empty message, no video to process")
	}
	prefix := path.Dir(key)
	if prefix == "." {
		prefix = ""
	}

	d, err := opts.WorkDir()
	if err != nil {
		return err
	}

	metrics.ActiveJobs.Inc()
	defer metrics.ActiveJobs.Dec()

	hbctx, hbcancel := context.WithCancel(ctx)
	defer hbcancel()
	t := time.NewTicker(HeartbeatSeconds * time.Second)
	defer t.Stop()
	go heartbeat(hbctx, conn, t, msg, fromQueue, msgc, errc)

	// these functions will do their jobs when their channels have data
	go download(ctx, dl, processc, conn, d, errc, conn.GetLogger())
	go Crop(opts)(ctx, processc, upc, errc, conn.GetLogger())
	go up(ctx, upc, done, conn, prefix, errc, conn.GetLogger())

	dl <- key
	close(dl)

	// wait for either the done or errc channel to be sent to
	select {
	case err = <-errc:
		_ = os.RemoveAll(d)
		return err
	case <-ctx.Done():
		_ = os.RemoveAll(d)
		return ctx.Err()
	case <-done:
	}

	hbcancel()

	// a failed stage sends its error before the stages after it finish
	select {
	case err = <-errc:
		_ = os.RemoveAll(d)
		return err
	default:
	}

	// check whether we're using a newer msg handle
	select {
	case m := <-msgc:
		msg = m
		conn.Log("Using new message handle to delete message from queue")
	default:
		conn.Log("Using original message handle to delete message from queue")
	}

	conn.Log("Deleting original message from queue", fromQueue)
	err = conn.DelFromQueue(fromQueue, msg.Handle)
	if err != nil {
		_ = os.RemoveAll(d)
		return fmt.Errorf("Error deleting message from queue: %w", err)
	}

	err = os.RemoveAll(d)
	if err != nil {
		return fmt.Errorf("Failed to remove directory %s: %w", d, err)
	}

	return nil
}
