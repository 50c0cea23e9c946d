// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"reflect"
	"testing"

	"rescribe.xyz/pillarcrop"
	"rescribe.xyz/pillarcrop/pillar"
)

func TestResults(t *testing.T) {
	var slog StrLog
	vlog := log.New(&slog, "", 0)
	conn := &pillarcrop.LocalConn{TempDir: t.TempDir(), Logger: vlog}
	err := conn.Init()
	if err != nil {
		t.Fatalf("Could not initialise local connection: %v", err)
	}

	dir := t.TempDir()
	makeFiles(t, dir, "a.mp4", "b.mp4")
	_, err = UploadVideos(context.Background(), dir, "clips", conn)
	if err != nil {
		t.Fatalf("Error uploading videos: %v", err)
	}

	fn := filepath.Join(dir, "a.mp4"+ResultSuffix)
	err = WriteResult(fn, pillar.Result{Video: "a.mp4"})
	if err != nil {
		t.Fatalf("Error writing result: %v", err)
	}
	err = conn.Upload(conn.StorageId(), "clips/a.mp4"+ResultSuffix, fn)
	if err != nil {
		t.Fatalf("Error uploading result: %v", err)
	}

	videos, err := ListVideos("clips", conn)
	if err != nil {
		t.Fatalf("Error listing videos: %v", err)
	}
	expected := map[string]bool{"clips/a.mp4": true, "clips/b.mp4": false}
	if !reflect.DeepEqual(videos, expected) {
		t.Fatalf("Expected %v, got %v", expected, videos)
	}

	out := t.TempDir()
	done, err := DownloadResults(out, "clips", conn)
	if err != nil {
		t.Fatalf("Error downloading results: %v", err)
	}
	if !reflect.DeepEqual(done, []string{filepath.Join(out, "a.mp4"+ResultSuffix)}) {
		t.Fatalf("Unexpected results downloaded: %v", done)
	}
	r, err := ReadResult(done[0])
	if err != nil {
		t.Fatalf("Error reading downloaded result: %v", err)
	}
	if r.Video != "a.mp4" {
		t.Fatalf("Unexpected result %+v", r)
	}

	_, err = DownloadResults(out, "nothing", conn)
	if !errors.Is(err, ErrNoResults) {
		t.Fatalf("Expected ErrNoResults, got %v", err)
	}
}
