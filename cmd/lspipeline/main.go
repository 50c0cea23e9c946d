// Copyright 2019 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// lspipeline lists useful things related to the crop pipeline.
package main

import (
	"flag"
	"fmt"
	"log"
	"sort"
	"strings"

	"rescribe.xyz/pillarcrop"
	"rescribe.xyz/pillarcrop/internal/config"
	"rescribe.xyz/pillarcrop/internal/pipeline"
)

const usage = `Usage: lspipeline [-c conn] [-novideos] [prefix]

Lists useful things related to the pipeline.

- Messages in the crop queue
- Videos not yet processed
- Videos done, with the date their result was saved
`

type queueDetails struct {
	name, numAvailable, numInProgress string
}

func getQueueDetails(conn pipeline.Conn, qdetails chan queueDetails) {
	avail, inprog, err := conn.GetQueueDetails(conn.CropQueueId())
	if err != nil {
		log.Println("Error getting queue details:", err)
	}
	qdetails <- queueDetails{name: "crop", numAvailable: avail, numInProgress: inprog}
	close(qdetails)
}

type ObjMetas []pillarcrop.ObjMeta

func (o ObjMetas) Len() int           { return len(o) }
func (o ObjMetas) Swap(i, j int)      { o[i], o[j] = o[j], o[i] }
func (o ObjMetas) Less(i, j int) bool { return o[i].Date.Before(o[j].Date) }

// getVideoStatus returns lists of videos without and with results.
// Done videos are sorted by the date of their result file, and
// videos not done by the date of the video itself.
func getVideoStatus(conn pipeline.Conn, prefix string) (inprogress []string, done []string, err error) {
	objs, err := conn.ListObjectsWithMeta(conn.StorageId(), prefix)
	if err != nil {
		return nil, nil, err
	}

	dates := make(map[string]pillarcrop.ObjMeta)
	for _, o := range objs {
		dates[o.Name] = o
	}

	var inprogressmeta, donemeta ObjMetas
	for _, o := range objs {
		if !pipeline.IsVideo(o.Name) {
			continue
		}
		r, ok := dates[o.Name+pipeline.ResultSuffix]
		if ok {
			donemeta = append(donemeta, pillarcrop.ObjMeta{Name: o.Name, Date: r.Date})
		} else {
			inprogressmeta = append(inprogressmeta, o)
		}
	}

	sort.Sort(inprogressmeta)
	for _, i := range inprogressmeta {
		inprogress = append(inprogress, i.Name)
	}
	sort.Sort(donemeta)
	for _, i := range donemeta {
		done = append(done, fmt.Sprintf("%s\t%s", i.Name, i.Date.Format("2006-01-02 15:04")))
	}
	return inprogress, done, nil
}

func main() {
	conntype := flag.String("c", "aws", "connection type ('aws', 'minio' or 'local')")
	novideos := flag.Bool("novideos", false, "disable listing videos completed and not completed")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	var n pipeline.NullWriter
	verboselog := log.New(n, "", 0)

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

	queues := make(chan queueDetails)
	go getQueueDetails(conn, queues)

	fmt.Println("# Queues")
	for i := range queues {
		fmt.Printf("%s: %s available, %s in progress\n", i.name, i.numAvailable, i.numInProgress)
	}

	if *novideos {
		return
	}

	inprogress, done, err := getVideoStatus(conn, strings.TrimPrefix(flag.Arg(0), "/"))
	if err != nil {
		log.Fatalln("Error getting video status:", err)
	}

	fmt.Println("\n# Videos not completed")
	for _, i := range inprogress {
		fmt.Println(i)
	}

	fmt.Println("\n# Videos done")
	for _, i := range done {
		fmt.Println(i)
	}
}
