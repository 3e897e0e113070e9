// Copyright © 2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package wfplot renders a scatter of the query/target offsets an
// extension's diagonals reached at each penalty score, replacing the
// teacher's ASCII-matrix dump with a PNG a human can actually read on a
// reference genome-sized anchor.
package wfplot

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Point is one (query offset, target offset) position reached by the
// wavefront at a given score, the minimal data wfplot needs from a caller
// that walked its own Component/WaveFront state.
type Point struct {
	QueryOffset  float64
	TargetOffset float64
	Score        uint32
}

// Save renders points as a scatter with one series per score band, all
// drawn with the same default glyph color, and writes a PNG to path.
// Points are grouped by score into at most eight series so the
// plot stays legible for the hundreds of scores a high-penalty budget can
// produce.
func Save(points []Point, title, path string, width, height vg.Length) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "query offset"
	p.Y.Label.Text = "target offset"

	byBand := map[uint32]plotter.XYs{}
	var maxScore uint32
	for _, pt := range points {
		if pt.Score > maxScore {
			maxScore = pt.Score
		}
	}
	bands := uint32(8)
	bandSize := maxScore/bands + 1

	for _, pt := range points {
		band := pt.Score / bandSize
		byBand[band] = append(byBand[band], plotter.XY{X: pt.QueryOffset, Y: pt.TargetOffset})
	}

	for band := uint32(0); band < bands; band++ {
		xys, ok := byBand[band]
		if !ok {
			continue
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return errors.Wrap(err, "wfplot: build scatter series")
		}
		sc.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(sc)
	}

	if err := p.Save(width, height, path); err != nil {
		return errors.Wrap(err, "wfplot: save plot")
	}
	return nil
}
