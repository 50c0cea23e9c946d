// Copyright 2021 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"rescribe.xyz/pillarcrop/frames"
)

// ErrNoVideos is returned when a directory contains no videos
var ErrNoVideos = errors.New("No videos found")

// VideoSuffixes are the file suffixes treated as videos
var VideoSuffixes = []string{".mp4", ".m4v", ".mkv", ".mov", ".avi", ".webm", ".mpg", ".mpeg", ".ts"}

// null writer to enable non-verbose logging to be discarded
type NullWriter bool

func (w NullWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}

type fileWalk chan string

// Walk sends the path of all files to the channel, with the exception of
// any file which starts with "."
func (f fileWalk) Walk(p string, info os.FileInfo, err error) error {
	if err != nil {
		return err
	}
	// skip files starting with . to prevent automatically generated
	// files like .DS_Store getting in the way
	base := filepath.Base(p)
	if strings.HasPrefix(base, ".") && base != "." && base != ".." {
		if info.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}
	if !info.IsDir() {
		f <- p
	}
	return nil
}

// IsVideo reports whether a file name has a video suffix
func IsVideo(name string) bool {
	lsuffix := strings.ToLower(filepath.Ext(name))
	for _, s := range VideoSuffixes {
		if lsuffix == s {
			return true
		}
	}
	return false
}

// CheckVideos finds all videos in a directory (recursively, skipping
// dotfiles) and returns their paths in order. If ffprobe is not
// empty each video is probed to check that it contains a video
// stream with a size.
func CheckVideos(ctx context.Context, dir string, ffprobe string) ([]string, error) {
	checker := make(fileWalk)
	walkerr := make(chan error, 1)
	go func() {
		walkerr <- filepath.Walk(dir, checker.Walk)
		close(checker)
	}()

	var videos []string
	for p := range checker {
		if IsVideo(p) {
			videos = append(videos, p)
		}
	}
	err := <-walkerr
	if err != nil {
		return nil, fmt.Errorf("Failed to read directory %s: %w", dir, err)
	}

	if len(videos) == 0 {
		return nil, ErrNoVideos
	}
	sort.Strings(videos)

	if ffprobe == "" {
		return videos, nil
	}
	for _, v := range videos {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		p, err := frames.Ffprobe(ctx, ffprobe, v)
		if err != nil {
			return nil, fmt.Errorf("Probing video %s failed: %w", v, err)
		}
		if p.Width == 0 || p.Height == 0 {
			return nil, fmt.Errorf("Video %s has no size", v)
		}
	}

	return videos, nil
}

// UploadVideos uploads all videos found by CheckVideos in dir into
// conn.StorageId(), prefixed with the given prefix and a slash, and
// returns the keys they were uploaded to. Videos in subdirectories
// keep their relative path.
func UploadVideos(ctx context.Context, dir string, prefix string, conn Uploader) ([]string, error) {
	videos, err := CheckVideos(ctx, dir, "")
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, v := range videos {
		select {
		case <-ctx.Done():
			return keys, ctx.Err()
		default:
		}
		rel, err := filepath.Rel(dir, v)
		if err != nil {
			return keys, fmt.Errorf("Failed to find relative path of %s: %w", v, err)
		}
		key := path.Join(prefix, filepath.ToSlash(rel))
		conn.Log("Uploading", v, "to", key)
		err = conn.Upload(conn.StorageId(), key, v)
		if err != nil {
			return keys, fmt.Errorf("Failed to upload %s: %w", v, err)
		}
		keys = append(keys, key)
	}

	return keys, nil
}

// QueueVideos adds each key to the crop queue
func QueueVideos(keys []string, conn Queuer) error {
	for _, k := range keys {
		conn.Log("Adding", k, "to queue", conn.CropQueueId())
		err := conn.AddToQueue(conn.CropQueueId(), k)
		if err != nil {
			return fmt.Errorf("Error adding %s to queue: %w", k, err)
		}
	}
	return nil
}
