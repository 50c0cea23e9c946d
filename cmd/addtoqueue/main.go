// Copyright 2019 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"log"

	"rescribe.xyz/pillarcrop/internal/config"
	"rescribe.xyz/pillarcrop/internal/pipeline"
)

const usage = `Usage: addtoqueue [-c conn] key...

addtoqueue adds the storage keys of videos already uploaded to the
crop queue.

This is handy to reprocess a video, or to work around bugs when
things are misbehaving.
`

func main() {
	conntype := flag.String("c", "aws", "connection type ('aws', 'minio' or 'local')")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		return
	}

	var n pipeline.NullWriter
	quietlog := log.New(n, "", 0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalln("Error loading configuration:", err)
	}
	cfg.Storage = *conntype

	conn, err := pipeline.NewConn(cfg, quietlog)
	if err != nil {
		log.Fatalln(err)
	}
	err = conn.Init()
	if err != nil {
		log.Fatalln("Error setting up cloud connection:", err)
	}

	for _, k := range flag.Args() {
		if !pipeline.IsVideo(k) {
			log.Printf("Warning: %s does not look like a video\n", k)
		}
	}

	err = pipeline.QueueVideos(flag.Args(), conn)
	if err != nil {
		log.Fatalln("Error adding messages to queue:", err)
	}
}
