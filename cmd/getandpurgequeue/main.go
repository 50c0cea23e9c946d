// Copyright 2019 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// getandpurgequeue gets and deletes all messages from the crop queue.
// This can be useful for debugging queue issues.
package main

import (
	"flag"
	"fmt"
	"log"

	"rescribe.xyz/pillarcrop/internal/config"
	"rescribe.xyz/pillarcrop/internal/pipeline"
)

const usage = `Usage: getandpurgequeue [-c conn] [-n]

getandpurgequeue prints and deletes all messages from the crop queue.

This can be useful for debugging queue issues.
`

func main() {
	conntype := flag.String("c", "aws", "connection type ('aws', 'minio' or 'local')")
	dryrun := flag.Bool("n", false, "only print the first message, without deleting it")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 0 {
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

	qid := conn.CropQueueId()
	for {
		msg, err := conn.CheckQueue(qid, 10)
		if err != nil {
			log.Fatalln("Error checking queue:", err)
		}
		if msg.Handle == "" {
			break
		}
		fmt.Println(msg.Body)
		if *dryrun {
			break
		}
		err = conn.DelFromQueue(qid, msg.Handle)
		if err != nil {
			log.Fatalln("Error deleting message from queue:", err)
		}
	}
}
