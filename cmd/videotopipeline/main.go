// Copyright 2019 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// videotopipeline uploads videos to cloud storage and adds their
// names to the queue ready to be processed by the pillarpipeline tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"

	"rescribe.xyz/pillarcrop/internal/config"
	"rescribe.xyz/pillarcrop/internal/pipeline"
)

const usage = `Usage: videotopipeline [-c conn] [-check] [-v] videodir [prefix]

Uploads the videos in videodir (or a single video) to storage, and
adds each to the crop queue.

If prefix is omitted the last part of videodir is used. Connection
settings other than the type are read from the environment, as
described in pillarpipeline -h.
`

func main() {
	verbose := flag.Bool("v", false, "Verbose")
	conntype := flag.String("c", "aws", "connection type ('aws', 'minio' or 'local')")
	check := flag.Bool("check", false, "check each video with ffprobe before uploading")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		return
	}

	var verboselog *log.Logger
	if *verbose {
		verboselog = log.New(os.Stdout, "", log.LstdFlags)
	} else {
		var n pipeline.NullWriter
		verboselog = log.New(n, "", log.LstdFlags)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalln("Error loading configuration:", err)
	}
	cfg.Storage = *conntype

	conn, err := pipeline.NewConn(cfg, verboselog)
	if err != nil {
		log.Fatalln(err)
	}
	err = conn.Init()
	if err != nil {
		log.Fatalln("Failed to set up cloud connection:", err)
	}

	videodir := filepath.Clean(flag.Arg(0))
	prefix := filepath.Base(videodir)
	if flag.NArg() > 1 {
		prefix = flag.Arg(1)
	}

	ctx := context.Background()

	info, err := os.Stat(videodir)
	if err != nil {
		log.Fatalln(err)
	}

	var keys []string
	if !info.IsDir() {
		if flag.NArg() < 2 {
			prefix = ""
		}
		key := path.Join(prefix, filepath.Base(videodir))
		verboselog.Println("Uploading", videodir, "to", key)
		err = conn.Upload(conn.StorageId(), key, videodir)
		if err != nil {
			log.Fatalln("Failed to upload video:", err)
		}
		keys = append(keys, key)
	} else {
		probe := ""
		if *check {
			probe = "ffprobe"
		}
		verboselog.Println("Checking videos in", videodir)
		_, err = pipeline.CheckVideos(ctx, videodir, probe)
		if err != nil {
			log.Fatalln(err)
		}

		verboselog.Println("Checking that videos haven't already been uploaded with that prefix")
		list, err := conn.ListObjects(conn.StorageId(), prefix+"/")
		if err != nil {
			log.Fatalln(err)
		}
		if len(list) > 0 {
			log.Fatalf("Error: There are already files in storage with the prefix %s", prefix)
		}

		keys, err = pipeline.UploadVideos(ctx, videodir, prefix, conn)
		if err != nil {
			log.Fatalln(err)
		}
	}

	err = pipeline.QueueVideos(keys, conn)
	if err != nil {
		log.Fatalln(err)
	}

	fmt.Printf("Uploaded %d videos to the crop queue\n", len(keys))
}
