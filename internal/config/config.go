// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// Package config loads the settings for the pipeline daemon from the
// environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

const (
	StorageLocal = "local"
	StorageAWS   = "aws"
	StorageMinio = "minio"
)

type Config struct {
	Storage string `env:"PILLARCROP_STORAGE" envDefault:"aws"`

	AWSRegion string `env:"AWS_REGION" envDefault:"eu-west-2"`

	MinIOEndpoint  string `env:"MINIO_ENDPOINT"   envDefault:"localhost:9000"`
	MinIOAccessKey string `env:"MINIO_ACCESS_KEY" envDefault:"minioadmin"`
	MinIOSecretKey string `env:"MINIO_SECRET_KEY" envDefault:"minioadmin"`
	MinIOUseSSL    bool   `env:"MINIO_USE_SSL"    envDefault:"false"`

	Bucket string `env:"PILLARCROP_BUCKET"`
	Queue  string `env:"PILLARCROP_QUEUE"`

	Threshold  int     `env:"PILLARCROP_THRESHOLD"   envDefault:"16"`
	FramePct   float64 `env:"PILLARCROP_FRAME_PCT"   envDefault:"0.9"`
	SampleFPS  float64 `env:"PILLARCROP_SAMPLE_FPS"  envDefault:"2.0"`
	ScaleWidth int     `env:"PILLARCROP_SCALE_WIDTH" envDefault:"800"`
	FFmpeg     string  `env:"FFMPEG"                 envDefault:"ffmpeg"`

	MetricsPort int    `env:"METRICS_PORT" envDefault:"8083"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`

	TempDir string `env:"TEMP_DIR"`
}

// Load parses the configuration from the environment, checking that
// the values make sense.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	switch cfg.Storage {
	case StorageLocal, StorageAWS, StorageMinio:
	default:
		return nil, fmt.Errorf("Unknown storage type %q, must be one of %s, %s or %s", cfg.Storage, StorageLocal, StorageAWS, StorageMinio)
	}
	if cfg.ScaleWidth < 0 {
		return nil, fmt.Errorf("Invalid scale width %d", cfg.ScaleWidth)
	}
	if cfg.SampleFPS <= 0 {
		return nil, fmt.Errorf("Invalid sample fps %g", cfg.SampleFPS)
	}
	return cfg, nil
}
