// Copyright 2019 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pillarcrop

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/nickjwhite/gofpdf"

	"rescribe.xyz/pillarcrop/pillar"
)

const margin = 36 // page margin in pts
const lineHeight = 16

// Report is a PDF summarising pillar detection results, one page per
// video
type Report struct {
	fpdf *gofpdf.Fpdf
}

// Setup creates a new PDF with appropriate settings and fonts
func (p *Report) Setup() error {
	p.fpdf = gofpdf.New("P", "pt", "A4", "")
	p.fpdf.SetMargins(margin, margin, margin)
	p.fpdf.SetAutoPageBreak(true, margin)
	p.fpdf.SetFont("Helvetica", "", 11)
	return p.fpdf.Error()
}

// row adds a line of two cells, a label and a value
func (p *Report) row(label string, value string) {
	p.fpdf.SetFont("Helvetica", "B", 11)
	p.fpdf.CellFormat(180, lineHeight, label, "", 0, "L", false, 0, "")
	p.fpdf.SetFont("Helvetica", "", 11)
	p.fpdf.CellFormat(0, lineHeight, value, "", 1, "L", false, 0, "")
}

// AddPage adds a page to the pdf describing r, followed by the graph
// image at graphpath if it is not empty
func (p *Report) AddPage(r pillar.Result, graphpath string) error {
	p.fpdf.AddPage()

	p.fpdf.SetFont("Helvetica", "B", 16)
	p.fpdf.CellFormat(0, 24, filepath.Base(r.Video), "", 1, "L", false, 0, "")
	p.fpdf.Ln(6)

	p.row("Analysis size", fmt.Sprintf("%d x %d", r.VideoSize[0], r.VideoSize[1]))
	p.row("Frames sampled", fmt.Sprintf("%d", r.NSampledFrames))
	p.row("Threshold", fmt.Sprintf("%d", r.Threshold))
	p.row("Frame proportion", fmt.Sprintf("%g", r.FramePct))
	p.row("Left pillar", fmt.Sprintf("%d px (%.2f%%)", r.LeftPillarPx, r.PillarPercentLeft*100))
	p.row("Right pillar", fmt.Sprintf("%d px (%.2f%%)", r.RightPillarPx, r.PillarPercentRight*100))
	p.row("Crop", fmt.Sprintf("x %d, y %d, w %d, h %d", r.Crop.X, r.Crop.Y, r.Crop.W, r.Crop.H))
	p.row("Normalised crop", fmt.Sprintf("x %g, y %g, w %g, h %g", r.Crop.NX, r.Crop.NY, r.Crop.NW, r.Crop.NH))
	p.row("ffmpeg filter", r.Crop.FFmpegFilter())

	if graphpath == "" {
		return p.fpdf.Error()
	}

	f, err := os.Open(graphpath)
	if err != nil {
		return fmt.Errorf("Could not open file %s: %w", graphpath, err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return fmt.Errorf("Could not decode image %s: %w", graphpath, err)
	}

	pagew, _ := p.fpdf.GetPageSize()
	w := pagew - 2*margin
	h := w * float64(cfg.Height) / float64(cfg.Width)
	p.fpdf.Ln(12)
	p.fpdf.ImageOptions(graphpath, margin, p.fpdf.GetY(), w, h, false, gofpdf.ImageOptions{ReadDpi: false}, 0, "")

	return p.fpdf.Error()
}

// Save saves the PDF to the file at path
func (p *Report) Save(path string) error {
	return p.fpdf.OutputFileAndClose(path)
}

// WriteReport writes a single page report for r to path
func WriteReport(r pillar.Result, graphpath string, path string) error {
	var p Report
	err := p.Setup()
	if err != nil {
		return fmt.Errorf("Failed to set up PDF: %w", err)
	}
	err = p.AddPage(r, graphpath)
	if err != nil {
		return fmt.Errorf("Failed to add page to PDF: %w", err)
	}
	err = p.Save(path)
	if err != nil {
		return fmt.Errorf("Failed to save PDF %s: %w", path, err)
	}
	return nil
}
