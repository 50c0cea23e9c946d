// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"
	"log"

	"rescribe.xyz/pillarcrop"
	"rescribe.xyz/pillarcrop/internal/config"
)

// Conn is everything the commands need from a connection
type Conn interface {
	MinPipeliner
	DeleteObjects(bucket string, keys []string) error
	GetQueueDetails(url string) (string, string, error)
	ListObjectsWithMeta(bucket string, prefix string) ([]pillarcrop.ObjMeta, error)
	MkPipeline() error
}

// NewConn returns an uninitialised connection of the storage type
// set in cfg
func NewConn(cfg *config.Config, logger *log.Logger) (Conn, error) {
	switch cfg.Storage {
	case config.StorageAWS:
		return &pillarcrop.AwsConn{
			Region:    cfg.AWSRegion,
			Bucket:    cfg.Bucket,
			QueueName: cfg.Queue,
			Logger:    logger,
		}, nil
	case config.StorageMinio:
		return &pillarcrop.MinioConn{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			UseSSL:    cfg.MinIOUseSSL,
			Bucket:    cfg.Bucket,
			QueueDir:  cfg.TempDir,
			Logger:    logger,
		}, nil
	case config.StorageLocal:
		return &pillarcrop.LocalConn{TempDir: cfg.TempDir, Logger: logger}, nil
	}
	return nil, fmt.Errorf("Unknown connection type %q", cfg.Storage)
}

// OptionsFromConfig returns the analysis options set in cfg
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	opts.Threshold = cfg.Threshold
	opts.FramePct = cfg.FramePct
	opts.SampleFPS = cfg.SampleFPS
	opts.ScaleWidth = cfg.ScaleWidth
	opts.FFmpeg = cfg.FFmpeg
	opts.TempDir = cfg.TempDir
	return opts
}
