// Copyright (C) 2025, VigilantDoomer
//
// This file is part of MapBSP program.
//
// MapBSP is free software: you can redistribute it
// and/or modify it under the terms of GNU General Public License
// as published by the Free Software Foundation, either version 2 of
// the License, or (at your option) any later version.
//
// MapBSP is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with MapBSP.  If not, see <https://www.gnu.org/licenses/>.
package mapbsp

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	leafFill      = color.RGBA{R: 0xb0, G: 0xc4, B: 0xde, A: 0xff}
	wallColor     = color.RGBA{A: 0xff}
	minisegColor  = color.RGBA{R: 0x46, G: 0x82, B: 0xb4, A: 0xff}
	splitterColor = color.RGBA{R: 0xff, G: 0x45, A: 0xff}
)

// Plot draws leaves filled, real edges solid, minisegs thin and splitters
// dashed
func (t *Tree) Plot(title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	p.Add(plotter.NewGrid())

	for _, id := range t.Leaves() {
		n := &t.Nodes[id]
		xys := make(plotter.XYs, 0, len(n.Edges))
		for _, e := range n.Edges {
			xys = append(xys, plotter.XY{X: e.Start.X, Y: e.Start.Y})
		}
		poly, err := plotter.NewPolygon(xys)
		if err != nil {
			return nil, fmt.Errorf("leaf %q: %w", n.Path, err)
		}
		poly.Color = leafFill
		poly.LineStyle.Width = 0
		p.Add(poly)
	}
	for _, id := range t.Leaves() {
		for _, e := range t.Nodes[id].Edges {
			l, err := plotter.NewLine(plotter.XYs{{X: e.Start.X, Y: e.Start.Y},
				{X: e.End.X, Y: e.End.Y}})
			if err != nil {
				return nil, err
			}
			if e.IsMiniseg() {
				l.LineStyle.Color = minisegColor
				l.LineStyle.Width = vg.Points(0.5)
			} else {
				l.LineStyle.Color = wallColor
				l.LineStyle.Width = vg.Points(1.5)
			}
			p.Add(l)
		}
	}
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if n.Kind != NodeParent {
			continue
		}
		l, err := plotter.NewLine(plotter.XYs{{X: n.Line.Start.X, Y: n.Line.Start.Y},
			{X: n.Line.End.X, Y: n.Line.End.Y}})
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = splitterColor
		l.LineStyle.Width = vg.Points(1)
		l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(l)
	}
	return p, nil
}

// SavePlot renders the tree into the file, format is picked by extension
func (t *Tree) SavePlot(filename string, w, h vg.Length) error {
	p, err := t.Plot(filename)
	if err != nil {
		return err
	}
	if err := p.Save(w, h, filename); err != nil {
		return fmt.Errorf("saving plot: %w", err)
	}
	return nil
}
