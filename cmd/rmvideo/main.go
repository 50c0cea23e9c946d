// Copyright 2020 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// rmvideo removes videos and their results from cloud storage.
package main

import (
	"flag"
	"fmt"
	"log"

	"rescribe.xyz/pillarcrop/internal/config"
	"rescribe.xyz/pillarcrop/internal/pipeline"
)

const usage = `Usage: rmvideo [-c conn] [-r] name

Removes all files whose storage key starts with name from cloud
storage. With -r only the results are removed, so the video can be
queued again.
`

func main() {
	conntype := flag.String("c", "aws", "connection type ('aws', 'minio' or 'local')")
	results := flag.Bool("r", false, "only remove results")
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
	verboselog := log.New(n, "", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalln("Error loading configuration:", err)
	}
	cfg.Storage = *conntype

	conn, err := pipeline.NewConn(cfg, verboselog)
	if err != nil {
		log.Fatalln(err)
	}

	fmt.Println("Setting up cloud connection")
	err = conn.MinimalInit()
	if err != nil {
		log.Fatalln("Error setting up cloud connection:", err)
	}

	name := flag.Arg(0)

	fmt.Println("Getting list of files")
	objs, err := conn.ListObjects(conn.StorageId(), name)
	if err != nil {
		log.Fatalln("Error in listing files:", err)
	}

	var todel []string
	for _, o := range objs {
		if *results && !pipeline.IsResult(o) {
			continue
		}
		todel = append(todel, o)
	}

	if len(todel) == 0 {
		log.Fatalln("No files found for:", name)
	}

	fmt.Println("Deleting", len(todel), "files")
	err = conn.DeleteObjects(conn.StorageId(), todel)
	if err != nil {
		log.Fatalln("Error deleting files:", err)
	}

	fmt.Println("Finished deleting files")
}
