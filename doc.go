// Copyright 2020 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

/*
The pillarcrop package contains tools and functions to find the black
pillarbox bars at the sides of videos, and the crop which removes them.
Videos can be processed one at a time on the local machine, or
distributed through a queue to any number of computers.

Introduction

Many videos are encoded with black bars at the left and right of each
frame, to fit a narrow picture into a wide frame. The pillar package
finds these by sampling frames from a video, deciding which columns are
black in each, and counting for every column the number of frames in
which it was black. A column which was black in enough of the frames,
and which is connected to an edge of the frame by other such columns,
is part of a pillar. The crop is the rest of the frame.

Central to the project is the pillarcrop command, which analyses
a video on the local machine and prints the result as JSON:
  pillarcrop video.mp4

It can also write a graph of the black columns and a PDF report.

The pipeline

Larger collections of videos can be processed with the pipeline. Videos
are uploaded to storage and their names added to a queue with the
videotopipeline command, and the pillarpipeline command, running on one
or more computers, takes each one from the queue, analyses it, and
uploads the results alongside it. The results can then be retrieved
with getpipelinecrop.

The pipeline can use Amazon's AWS services (S3 for storage and SQS for
the queue), a MinIO server for storage with a queue on the local
machine, or just the local machine for everything. To get the AWS
pipeline to work for you, change the settings in cloudsettings.go, and
create the bucket and queue with the mkpipeline command.

All of the tools give information on what they do and how they work
with the '-h' flag, for example:
  videotopipeline -h
*/
package pillarcrop
