// Copyright 2019 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNoResults is returned when no result files could be found
var ErrNoResults = errors.New("No results found")

// IsResult reports whether a storage key is one of the files created
// by processing a video
func IsResult(key string) bool {
	for _, s := range []string{ResultSuffix, GraphSuffix, ReportSuffix} {
		if strings.HasSuffix(key, s) {
			return true
		}
	}
	return false
}

// DownloadResults downloads the result files for every video whose
// key starts with name into dir.
func DownloadResults(dir string, name string, conn DownloadLister) ([]string, error) {
	objs, err := conn.ListObjects(conn.StorageId(), name)
	if err != nil {
		return nil, fmt.Errorf("Failed to get list of files for %s: %w", name, err)
	}

	var done []string
	for _, o := range objs {
		if !IsResult(o) {
			continue
		}
		fn := filepath.Join(dir, path.Base(o))
		conn.Log("Downloading", o)
		err = conn.Download(conn.StorageId(), o, fn)
		if err != nil {
			_ = os.Remove(fn)
			return done, fmt.Errorf("Failed to download file %s: %w", o, err)
		}
		done = append(done, fn)
	}

	if len(done) == 0 {
		return nil, ErrNoResults
	}
	return done, nil
}

// ListVideos returns the keys of the videos in storage starting with
// prefix, and whether each has a result yet
func ListVideos(prefix string, conn Lister) (map[string]bool, error) {
	objs, err := conn.ListObjects(conn.StorageId(), prefix)
	if err != nil {
		return nil, fmt.Errorf("Failed to list %s: %w", prefix, err)
	}

	videos := make(map[string]bool)
	for _, o := range objs {
		if IsVideo(o) {
			if _, ok := videos[o]; !ok {
				videos[o] = false
			}
		}
	}
	for _, o := range objs {
		if strings.HasSuffix(o, ResultSuffix) {
			v := strings.TrimSuffix(o, ResultSuffix)
			if _, ok := videos[v]; ok {
				videos[v] = true
			}
		}
	}
	return videos, nil
}
