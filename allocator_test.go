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
	"errors"
	"testing"

	"github.com/tdewolff/test"
)

func twoSidedLine() []LineSide {
	return []LineSide{
		{Start: Point{0, 0}, End: Point{2, 0}, LineID: 7, SideID: 0, Front: true},
		{Start: Point{0, 0}, End: Point{2, 0}, LineID: 7, SideID: 1, Front: false},
	}
}

func TestAddLineSides(t *testing.T) {
	a := NewAllocator(DefaultVertexWeldingEpsilon)
	ids, zero := a.AddLineSides(twoRooms())
	test.T(t, ids, []SegmentID{0, 1, 2, 3, 4, 5, 6, 7})
	test.T(t, len(zero), 0)
	test.T(t, a.Segment(3).Partner, SegmentID(4))
	test.T(t, a.Segment(4).Partner, SegmentID(3))
	for _, id := range []SegmentID{0, 1, 2, 5, 6, 7} {
		test.T(t, a.Segment(id).Partner, NoSegment)
	}
	// back side runs from End to Start
	ps, pe := a.Endpoints(4)
	test.T(t, ps, Point{2, 0})
	test.T(t, pe, Point{2, 2})
	test.T(t, a.Segment(4).Front, false)
	test.T(t, a.Segment(4).Source, 4)
	test.T(t, a.Segment(3).Alias, a.Segment(4).Alias)
	// shared corners are welded
	test.T(t, a.VertexCount(), 6)
}

func TestAddLineSidesZeroLength(t *testing.T) {
	a := NewAllocator(DefaultVertexWeldingEpsilon)
	sides := append(unitSquare(), LineSide{Start: Point{0.5, 0.5},
		End: Point{0.5, 0.5 + DefaultVertexWeldingEpsilon/2}, LineID: 4, Front: true})
	sides = append(sides, LineSide{Start: Point{0, 1}, End: Point{1, 1}, LineID: 5, Front: true})
	ids, zero := a.AddLineSides(sides)
	test.T(t, zero, []int{4})
	test.T(t, ids, []SegmentID{0, 1, 2, 3, 4})
	test.T(t, a.Segment(4).Source, 5)
}

func TestSplitPropagatesToPartner(t *testing.T) {
	a := NewAllocator(DefaultVertexWeldingEpsilon)
	ids, _ := a.AddLineSides(twoSidedLine())
	test.T(t, ids, []SegmentID{0, 1})

	first, second, err := a.Split(0, Point{1, 0})
	test.Error(t, err)
	test.T(t, first, SegmentID(2))
	test.T(t, second, SegmentID(3))
	test.That(t, a.Consumed(0))
	test.That(t, a.Consumed(1), "partner was not split")

	test.T(t, a.Expand([]SegmentID{0, 1}), []SegmentID{2, 3, 4, 5})
	s2, s3, s4, s5 := a.Segment(2), a.Segment(3), a.Segment(4), a.Segment(5)
	test.T(t, s2.End, s3.Start)
	test.T(t, a.Position(s2.End), Point{1, 0})
	// pieces facing each other are partners
	test.T(t, s2.Partner, SegmentID(5))
	test.T(t, s5.Partner, SegmentID(2))
	test.T(t, s3.Partner, SegmentID(4))
	test.T(t, s4.Partner, SegmentID(3))
	test.T(t, s5.Start, s2.End)
	test.T(t, s5.End, s2.Start)
	test.T(t, s4.Source, 1)
	test.T(t, s4.Front, false)

	_, _, err = a.Split(0, Point{0.5, 0})
	test.That(t, err != nil, "consumed segment was split")

	// cut landing on an endpoint
	_, _, err = a.Split(2, Point{DefaultVertexWeldingEpsilon / 2, 0})
	test.That(t, errors.Is(err, ErrWeldingCollision))
	test.That(t, !a.Consumed(2))
}

func TestSplitOfTrimmedPartner(t *testing.T) {
	a := NewAllocator(DefaultVertexWeldingEpsilon)
	a.AddLineSides(twoSidedLine())
	mid := a.Vertex(Point{1, 0})
	trimmed, err := a.Trim(1, a.Segment(1).Start, mid)
	test.Error(t, err)
	test.T(t, a.Segment(trimmed).Partner, NoSegment)
	test.T(t, a.Expand([]SegmentID{1}), []SegmentID{trimmed})

	// partner no longer mirrors segment 0, so it is left alone
	first, second, err := a.Split(0, Point{0.5, 0})
	test.Error(t, err)
	test.T(t, a.Segment(first).Partner, NoSegment)
	test.T(t, a.Segment(second).Partner, NoSegment)
	test.That(t, !a.Consumed(trimmed))

	_, err = a.Trim(trimmed, mid, mid)
	test.That(t, errors.Is(err, ErrWeldingCollision))
}

func TestMinisegs(t *testing.T) {
	a := NewAllocator(DefaultVertexWeldingEpsilon)
	u := a.Vertex(Point{0, 0})
	v := a.Vertex(Point{0, 3})
	f, b, err := a.NewMinisegPair(u, v, 9)
	test.Error(t, err)
	test.T(t, a.Segment(f).Partner, b)
	test.T(t, a.Segment(b).Partner, f)
	test.That(t, a.Segment(f).IsMiniseg())
	test.T(t, a.Segment(f).Front, true)
	test.T(t, a.Segment(b).Start, v)
	test.T(t, a.Segment(b).Alias, 9)

	_, _, err = a.NewMinisegPair(u, u, 9)
	test.That(t, errors.Is(err, ErrWeldingCollision))
	_, err = a.NewMiniseg(v, v, false, NoSegment, 9)
	test.That(t, errors.Is(err, ErrWeldingCollision))

	a.Drop(f)
	test.T(t, len(a.Expand([]SegmentID{f, b})), 1)
}

func TestSnapToLine(t *testing.T) {
	a := NewAllocator(0.01)
	v := a.Vertex(Point{1, 0.005})
	w := a.Vertex(Point{2, 0})
	line := NewLine(Point{0, 0}, Point{4, 0})
	test.That(t, a.SnapToLine(v, line))
	test.T(t, a.Position(v), Point{1, 0})
	// already on it
	test.That(t, !a.SnapToLine(w, line))
	// would land on w
	u := a.Vertex(Point{2.009, 0.008})
	test.That(t, !a.SnapToLine(u, line))
	test.T(t, a.Position(u), Point{2.009, 0.008})
}

func TestSplitWithinTighterTolerance(t *testing.T) {
	a := NewAllocator(0.5)
	ids, _ := a.AddLineSides([]LineSide{
		{Start: Point{5, -0.3}, End: Point{5.1, 10}, LineID: 0, Front: true},
	})
	cut := Point{5.003, 0}
	_, _, err := a.Split(ids[0], cut)
	test.That(t, errors.Is(err, ErrWeldingCollision))
	first, second, err := a.SplitWithin(ids[0], cut, 0.01)
	test.Error(t, err)
	test.T(t, a.Position(a.Segment(first).End), cut)
	test.T(t, a.Segment(second).Start, a.Segment(first).End)
	test.T(t, a.VertexCount(), 3)
}

func TestCarveAndRepair(t *testing.T) {
	a := NewAllocator(DefaultVertexWeldingEpsilon)
	a.AddLineSides([]LineSide{
		{Start: Point{0, 0}, End: Point{4, 0}, LineID: 0, Front: true},
		{Start: Point{0, 0}, End: Point{4, 0}, LineID: 0, Front: false},
	})
	v0, v1 := a.Vertex(Point{0, 0}), a.Vertex(Point{1, 0})
	v3, v4 := a.Vertex(Point{3, 0}), a.Vertex(Point{4, 0})
	// front loses its middle, back loses its west end
	pieces, err := a.Carve(0, [][2]VertexID{{v0, v1}, {v3, v4}})
	test.Error(t, err)
	test.T(t, len(pieces), 2)
	test.T(t, a.Expand([]SegmentID{0}), pieces)
	test.T(t, a.Segment(pieces[1]).Partner, NoSegment)

	back, err := a.Carve(1, [][2]VertexID{{v4, v3}, {v3, v1}})
	test.Error(t, err)
	test.T(t, a.Repair(append(append([]SegmentID(nil), pieces...), back...)), 1)
	// 3->4 found its mirror, 0->1 has none
	test.T(t, a.Segment(pieces[1]).Partner, back[0])
	test.T(t, a.Segment(back[0]).Partner, pieces[1])
	test.T(t, a.Segment(pieces[0]).Partner, NoSegment)
	test.T(t, a.Segment(back[1]).Partner, NoSegment)
	// nothing left to pair
	test.T(t, a.Repair(pieces), 0)

	_, err = a.Carve(pieces[0], [][2]VertexID{{v1, v1}})
	test.That(t, errors.Is(err, ErrWeldingCollision))
}
