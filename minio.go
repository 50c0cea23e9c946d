// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pillarcrop

import (
	"context"
	"fmt"
	"log"
	"os"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConn stores videos and results in an S3 compatible MinIO
// server, and keeps its queue as a file on the local machine in the
// same way as LocalConn. This suits a single machine processing
// videos held on a shared object store.
type MinioConn struct {
	// these should be set before running Init(), or left to defaults
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	QueueDir  string
	Logger    *log.Logger

	client *miniogo.Client
	queue  LocalConn
}

// MinimalInit sets up the MinIO client and local queue directory
func (a *MinioConn) MinimalInit() error {
	if a.Logger == nil {
		a.Logger = log.New(os.Stdout, "", 0)
	}
	if a.Endpoint == "" {
		a.Endpoint = "localhost:9000"
	}
	if a.Bucket == "" {
		a.Bucket = storageVideos
	}

	var err error
	a.client, err = miniogo.New(a.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(a.AccessKey, a.SecretKey, ""),
		Secure: a.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("Failed to create minio client: %w", err)
	}

	a.queue = LocalConn{TempDir: a.QueueDir, Logger: a.Logger}
	return a.queue.MinimalInit()
}

// Init also checks that the storage bucket exists
func (a *MinioConn) Init() error {
	err := a.MinimalInit()
	if err != nil {
		return err
	}

	exists, err := a.client.BucketExists(context.Background(), a.Bucket)
	if err != nil {
		return fmt.Errorf("Failed to check bucket %s: %w", a.Bucket, err)
	}
	if !exists {
		return fmt.Errorf("Bucket %s does not exist; run mkpipeline first", a.Bucket)
	}
	return nil
}

func (a *MinioConn) CheckQueue(url string, timeout int64) (Qmsg, error) {
	return a.queue.CheckQueue(url, timeout)
}

func (a *MinioConn) QueueHeartbeat(msg Qmsg, qurl string, duration int64) (Qmsg, error) {
	return a.queue.QueueHeartbeat(msg, qurl, duration)
}

func (a *MinioConn) GetQueueDetails(url string) (string, string, error) {
	return a.queue.GetQueueDetails(url)
}

func (a *MinioConn) AddToQueue(url string, msg string) error {
	return a.queue.AddToQueue(url, msg)
}

func (a *MinioConn) DelFromQueue(url string, handle string) error {
	return a.queue.DelFromQueue(url, handle)
}

func (a *MinioConn) CropQueueId() string {
	return a.queue.CropQueueId()
}

func (a *MinioConn) StorageId() string {
	return a.Bucket
}

func (a *MinioConn) ListObjects(bucket string, prefix string) ([]string, error) {
	var names []string
	objs, err := a.ListObjectsWithMeta(bucket, prefix)
	for _, o := range objs {
		names = append(names, o.Name)
	}
	return names, err
}

func (a *MinioConn) ListObjectsWithMeta(bucket string, prefix string) ([]ObjMeta, error) {
	var objs []ObjMeta
	for o := range a.client.ListObjects(context.Background(), bucket, miniogo.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if o.Err != nil {
			return objs, o.Err
		}
		objs = append(objs, ObjMeta{Name: o.Key, Date: o.LastModified})
	}
	return objs, nil
}

// DeleteObjects deletes a list of objects
func (a *MinioConn) DeleteObjects(bucket string, keys []string) error {
	for _, k := range keys {
		err := a.client.RemoveObject(context.Background(), bucket, k, miniogo.RemoveObjectOptions{})
		if err != nil {
			return fmt.Errorf("Failed to remove %s: %w", k, err)
		}
	}
	return nil
}

// CreateBucket creates a bucket if it doesn't already exist
func (a *MinioConn) CreateBucket(name string) error {
	ctx := context.Background()
	exists, err := a.client.BucketExists(ctx, name)
	if err != nil {
		return fmt.Errorf("Error checking bucket %s: %w", name, err)
	}
	if exists {
		a.Logger.Println("Bucket already exists:", name)
		return nil
	}
	err = a.client.MakeBucket(ctx, name, miniogo.MakeBucketOptions{})
	if err != nil {
		return fmt.Errorf("Error creating bucket %s: %w", name, err)
	}
	return nil
}

func (a *MinioConn) Download(bucket string, key string, path string) error {
	return a.client.FGetObject(context.Background(), bucket, key, path, miniogo.GetObjectOptions{})
}

func (a *MinioConn) Upload(bucket string, key string, path string) error {
	_, err := a.client.FPutObject(context.Background(), bucket, key, path, miniogo.PutObjectOptions{})
	return err
}

func (a *MinioConn) GetLogger() *log.Logger {
	return a.Logger
}

// Log records an item in the with the Logger. Arguments are handled
// as with fmt.Println.
func (a *MinioConn) Log(v ...interface{}) {
	a.Logger.Println(v...)
}

// MkPipeline sets up the bucket needed for the pipeline. The queue is
// a local file, created when first used.
func (a *MinioConn) MkPipeline() error {
	return a.CreateBucket(a.Bucket)
}
