// Copyright 2019 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// colgraph creates a graph of the black columns found in a directory
// of frames.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"rescribe.xyz/pillarcrop"
	"rescribe.xyz/pillarcrop/frames"
	"rescribe.xyz/pillarcrop/pillar"
)

const usage = `Usage: colgraph [-t threshold] [-p framepct] [-f format] [-nobright] framedir graph.png

colgraph creates a graph showing in how many frames each column of
pixels was black, for frames previously extracted into framedir
(for example with pillarcrop -keep-frames). The edges of the pillars
found are marked.
`

func main() {
	threshold := flag.Int("t", pillar.DefaultThreshold, "mean brightness (0-255) at or below which a column is black")
	framePct := flag.Float64("p", pillar.DefaultFramePct, "fraction of frames in which a column must be black")
	format := flag.String("f", "png", "image format of the frames")
	nobright := flag.Bool("nobright", false, "don't show average column brightness")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		return
	}

	paths, err := frames.Glob(flag.Arg(0), *format)
	if err != nil {
		log.Fatalln(err)
	}

	src := frames.NewDirSource(paths, 0)
	res, a, err := pillar.Detect(flag.Arg(0), src, *threshold, *framePct)
	if err != nil {
		log.Fatalln("Error analysing frames:", err)
	}

	fn := flag.Arg(1)
	f, err := os.Create(fn)
	if err != nil {
		log.Fatalln("Error creating file", fn, err)
	}
	defer f.Close()
	err = pillarcrop.GraphOpts(a, *framePct, res.LeftPillarPx, res.RightPillarPx, filepath.Base(flag.Arg(0)), !*nobright, f)
	if err != nil {
		log.Fatalln("Error creating graph", err)
	}

	fmt.Printf("left %d right %d crop %s\n", res.LeftPillarPx, res.RightPillarPx, res.Crop.FFmpegFilter())
}
