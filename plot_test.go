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
	"bytes"
	"path/filepath"
	"testing"

	"github.com/tdewolff/test"
	"gonum.org/v1/plot/vg"
)

func TestPlot(t *testing.T) {
	tree := mustCompile(t, pillarRoom(), nil)
	p, err := tree.Plot("pillar room")
	test.Error(t, err)
	test.T(t, p.Title.Text, "pillar room")
	test.T(t, p.X.Label.Text, "X")

	wt, err := p.WriterTo(4*vg.Inch, 4*vg.Inch, "svg")
	test.Error(t, err)
	var buf bytes.Buffer
	_, err = wt.WriteTo(&buf)
	test.Error(t, err)
	test.That(t, bytes.Contains(buf.Bytes(), []byte("<svg")))
}

func TestSavePlot(t *testing.T) {
	tree := mustCompile(t, bisectedSquare(), nil)
	filename := filepath.Join(t.TempDir(), "tree.png")
	test.Error(t, tree.SavePlot(filename, 3*vg.Inch, 3*vg.Inch))
}
