// Copyright 2019 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// mkpipeline sets up the necessary bucket and queue for the pipeline.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"rescribe.xyz/pillarcrop/internal/config"
	"rescribe.xyz/pillarcrop/internal/pipeline"
)

const usage = `Usage: mkpipeline [-c conn]

Sets up the necessary bucket and queue for the pipeline.
`

func main() {
	conntype := flag.String("c", "aws", "connection type ('aws', 'minio' or 'local')")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 0 {
		flag.Usage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalln("Error loading configuration:", err)
	}
	cfg.Storage = *conntype

	conn, err := pipeline.NewConn(cfg, log.New(os.Stdout, "", 0))
	if err != nil {
		log.Fatalln(err)
	}
	err = conn.MinimalInit()
	if err != nil {
		log.Fatalln("Failed to set up cloud connection:", err)
	}

	err = conn.MkPipeline()
	if err != nil {
		log.Fatalln("MkPipeline failed:", err)
	}
}
