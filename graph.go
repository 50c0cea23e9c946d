// Copyright 2019 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pillarcrop

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"rescribe.xyz/pillarcrop/pillar"
)

const maxticks = 40
const yticknum = 10

// ErrTooFewColumns is returned when an analysis is too narrow to graph
var ErrTooFewColumns = errors.New("Not enough columns to graph")

// createLine creates a horizontal line with a particular y value for
// a graph
func createLine(xvalues []float64, y float64, c drawing.Color) chart.ContinuousSeries {
	var yvalues []float64
	for range xvalues {
		yvalues = append(yvalues, y)
	}
	return chart.ContinuousSeries{
		XValues: xvalues,
		YValues: yvalues,
		Style: chart.Style{
			StrokeColor:     c,
			StrokeDashArray: []float64{5.0, 5.0},
		},
	}
}

// meanBrightness returns the average of each column's mean brightness
// across all frames
func meanBrightness(a pillar.Analysis) []float64 {
	avg := make([]float64, a.Width)
	if len(a.ColMeans) == 0 {
		return avg
	}
	for _, means := range a.ColMeans {
		for x := range avg {
			if x < len(means) {
				avg[x] += means[x]
			}
		}
	}
	for x := range avg {
		avg[x] /= float64(len(a.ColMeans))
	}
	return avg
}

// Graph creates a graph of the number of frames in which each column
// was black, with the count required to be part of a pillar and the
// edges of the pillars found marked.
func Graph(a pillar.Analysis, framePct float64, left, right int, title string, w io.Writer) error {
	return GraphOpts(a, framePct, left, right, title, true, w)
}

// GraphOpts creates a graph of black column counts, optionally also
// showing the average brightness of each column
func GraphOpts(a pillar.Analysis, framePct float64, left, right int, title string, brightness bool, w io.Writer) error {
	if a.Width < 2 || len(a.Counts) != a.Width {
		return ErrTooFewColumns
	}

	var xvalues, yvalues []float64
	var ticks []chart.Tick
	var yticks []chart.Tick
	tickevery := a.Width / maxticks
	if tickevery < 1 {
		tickevery = 1
	}
	for x, c := range a.Counts {
		xvalues = append(xvalues, float64(x))
		yvalues = append(yvalues, float64(c))
		if x%tickevery == 0 {
			ticks = append(ticks, chart.Tick{Value: float64(x), Label: fmt.Sprintf("%d", x)})
		}
	}
	last := float64(a.Width - 1)
	ticks[len(ticks)-1] = chart.Tick{Value: last, Label: fmt.Sprintf("%.0f", last)}
	for i := 0; i <= yticknum; i++ {
		n := float64(i*a.NFrames) / yticknum
		yticks = append(yticks, chart.Tick{Value: n, Label: fmt.Sprintf("%.1f", n)})
	}

	mainSeries := chart.ContinuousSeries{
		Name: "Frames black",
		Style: chart.Style{
			StrokeColor: chart.ColorBlue,
			FillColor:   chart.ColorAlternateBlue,
		},
		XValues: xvalues,
		YValues: yvalues,
	}

	required := float64(pillar.RequiredCount(framePct, a.NFrames))
	requiredSeries := createLine(xvalues, required, chart.ColorRed)

	var annotations []chart.Value2
	annotations = append(annotations, chart.Value2{Label: fmt.Sprintf("required %.0f", required), XValue: last, YValue: required})
	if left > 0 {
		annotations = append(annotations, chart.Value2{Label: fmt.Sprintf("left %dpx", left), XValue: float64(left - 1), YValue: float64(a.Counts[left-1])})
	}
	if right > 0 {
		x := a.Width - right
		annotations = append(annotations, chart.Value2{Label: fmt.Sprintf("right %dpx", right), XValue: float64(x), YValue: float64(a.Counts[x])})
	}

	graph := chart.Chart{
		Title:  title,
		Width:  1920,
		Height: 1080,
		XAxis: chart.XAxis{
			Name: "Column",
			Range: &chart.ContinuousRange{
				Min: 0.0,
				Max: last,
			},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name: "Frames black",
			Range: &chart.ContinuousRange{
				Min: 0.0,
				Max: float64(a.NFrames),
			},
			Ticks: yticks,
		},
		Series: []chart.Series{
			mainSeries,
			requiredSeries,
			chart.AnnotationSeries{
				Annotations: annotations,
			},
		},
	}
	if brightness {
		graph.YAxisSecondary = chart.YAxis{
			Name: "Mean brightness",
			Range: &chart.ContinuousRange{
				Min: 0.0,
				Max: 255.0,
			},
		}
		graph.Series = append(graph.Series, chart.ContinuousSeries{
			Name:  "Mean brightness",
			YAxis: chart.YAxisSecondary,
			Style: chart.Style{
				StrokeColor: chart.ColorOrange,
			},
			XValues: xvalues,
			YValues: meanBrightness(a),
		})
	}
	return graph.Render(chart.PNG, w)
}
