// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageAWS, cfg.Storage)
	assert.Equal(t, 16, cfg.Threshold)
	assert.Equal(t, 0.9, cfg.FramePct)
	assert.Equal(t, 2.0, cfg.SampleFPS)
	assert.Equal(t, 800, cfg.ScaleWidth)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("PILLARCROP_STORAGE", "minio")
	t.Setenv("PILLARCROP_THRESHOLD", "24")
	t.Setenv("PILLARCROP_FRAME_PCT", "0.75")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("PILLARCROP_BUCKET", "videos")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMinio, cfg.Storage)
	assert.Equal(t, 24, cfg.Threshold)
	assert.Equal(t, 0.75, cfg.FramePct)
	assert.True(t, cfg.MinIOUseSSL)
	assert.Equal(t, "videos", cfg.Bucket)
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		key, val string
	}{
		{"PILLARCROP_STORAGE", "floppy"},
		{"PILLARCROP_THRESHOLD", "sixteen"},
		{"PILLARCROP_SCALE_WIDTH", "-1"},
		{"PILLARCROP_SAMPLE_FPS", "0"},
	}
	for _, c := range cases {
		t.Run(c.key, func(t *testing.T) {
			t.Setenv(c.key, c.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
