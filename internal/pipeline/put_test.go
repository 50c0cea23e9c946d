// Copyright 2021 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"rescribe.xyz/pillarcrop"
)

// makeFiles creates empty files at each path relative to dir
func makeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		fn := filepath.Join(dir, n)
		err := os.MkdirAll(filepath.Dir(fn), 0755)
		if err != nil {
			t.Fatalf("Could not create directory for %s: %v", fn, err)
		}
		err = os.WriteFile(fn, []byte(n), 0644)
		if err != nil {
			t.Fatalf("Could not create %s: %v", fn, err)
		}
	}
}

func TestIsVideo(t *testing.T) {
	cases := []struct {
		name  string
		video bool
	}{
		{"a.mp4", true},
		{"b.MKV", true},
		{"dir/c.mov", true},
		{"d.webm", true},
		{"notes.txt", false},
		{"a.mp4.crop.json", false},
		{"mp4", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if IsVideo(c.name) != c.video {
				t.Fatalf("Expected IsVideo(%s) to be %v", c.name, c.video)
			}
		})
	}
}

func TestCheckVideos(t *testing.T) {
	dir := t.TempDir()
	makeFiles(t, dir, "a.mp4", "b.MKV", "notes.txt", ".hidden.mp4", "sub/c.mov", ".git/d.mp4")

	videos, err := CheckVideos(context.Background(), dir, "")
	if err != nil {
		t.Fatalf("Error checking videos: %v", err)
	}
	expected := []string{
		filepath.Join(dir, "a.mp4"),
		filepath.Join(dir, "b.MKV"),
		filepath.Join(dir, "sub", "c.mov"),
	}
	if !reflect.DeepEqual(videos, expected) {
		t.Fatalf("Expected %v, got %v", expected, videos)
	}

	_, err = CheckVideos(context.Background(), t.TempDir(), "")
	if !errors.Is(err, ErrNoVideos) {
		t.Fatalf("Expected ErrNoVideos, got %v", err)
	}

	_, err = CheckVideos(context.Background(), filepath.Join(dir, "notthere"), "")
	if err == nil {
		t.Fatalf("Expected an error for a missing directory")
	}
}

func TestCheckVideosProbe(t *testing.T) {
	dir := t.TempDir()
	makeVideo(t, filepath.Join(dir, "good.mp4"))

	_, err := CheckVideos(context.Background(), dir, "ffprobe")
	if err != nil {
		t.Fatalf("Error checking good video: %v", err)
	}

	makeFiles(t, dir, "bad.mp4")
	_, err = CheckVideos(context.Background(), dir, "ffprobe")
	if err == nil {
		t.Fatalf("Expected an error probing a bad video")
	}
}

func TestUploadVideos(t *testing.T) {
	var slog StrLog
	vlog := log.New(&slog, "", 0)
	conn := &pillarcrop.LocalConn{TempDir: t.TempDir(), Logger: vlog}
	err := conn.Init()
	if err != nil {
		t.Fatalf("Could not initialise local connection: %v", err)
	}

	dir := t.TempDir()
	makeFiles(t, dir, "a.mp4", "b.MKV", "notes.txt", "sub/c.mov")

	keys, err := UploadVideos(context.Background(), dir, "clips", conn)
	if err != nil {
		t.Fatalf("Error uploading videos: %v\nLog: %s", err, slog.log)
	}
	expected := []string{"clips/a.mp4", "clips/b.MKV", "clips/sub/c.mov"}
	if !reflect.DeepEqual(keys, expected) {
		t.Fatalf("Expected keys %v, got %v", expected, keys)
	}

	err = QueueVideos(keys, conn)
	if err != nil {
		t.Fatalf("Error queueing videos: %v", err)
	}
	avail, _, err := conn.GetQueueDetails(conn.CropQueueId())
	if err != nil {
		t.Fatalf("Error getting queue details: %v", err)
	}
	if avail != "3" {
		t.Fatalf("Expected 3 messages on queue, got %s", avail)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = UploadVideos(ctx, dir, "clips", conn)
	if err != context.Canceled {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}
