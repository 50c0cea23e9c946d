// Copyright 2019 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// getpipelinecrop downloads the pipeline results for videos.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"rescribe.xyz/pillarcrop/internal/config"
	"rescribe.xyz/pillarcrop/internal/pipeline"
)

const usage = `Usage: getpipelinecrop [-c conn] [-d dir] [-v] name

Downloads the pipeline results for all videos whose storage key starts
with name: the .crop.json result, the graph and the PDF report. The
crop found for each video is printed.
`

func main() {
	verbose := flag.Bool("v", false, "Verbose")
	conntype := flag.String("c", "aws", "connection type ('aws', 'minio' or 'local')")
	dir := flag.String("d", ".", "directory to save results to")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
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
	verboselog.Println("Setting up cloud connection")
	err = conn.MinimalInit()
	if err != nil {
		log.Fatalln("Error setting up cloud connection:", err)
	}

	err = os.MkdirAll(*dir, 0755)
	if err != nil {
		log.Fatalln("Failed to create directory", *dir, err)
	}

	name := flag.Arg(0)
	done, err := pipeline.DownloadResults(*dir, name, conn)
	if err != nil {
		log.Fatalln(err)
	}

	for _, fn := range done {
		if !strings.HasSuffix(fn, pipeline.ResultSuffix) {
			continue
		}
		r, err := pipeline.ReadResult(fn)
		if err != nil {
			log.Println("Error reading result:", err)
			continue
		}
		fmt.Printf("%s\tleft %d\tright %d\t%s\n", filepath.Base(r.Video), r.LeftPillarPx, r.RightPillarPx, r.Crop.FFmpegFilter())
	}
}
