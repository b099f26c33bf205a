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
	"testing"

	"github.com/tdewolff/test"
)

func checkSides(sides []LineSide) (ConvexResult, []SegmentID) {
	a := NewAllocator(DefaultVertexWeldingEpsilon)
	ids, _ := a.AddLineSides(sides)
	c := ConvexChecker{Epsilon: DefaultVertexWeldingEpsilon}
	return c.Check(a.Segments(ids), a), ids
}

func TestConvexity(t *testing.T) {
	for _, tt := range []struct {
		name     string
		sides    []LineSide
		state    ConvexState
		rotation Rotation
	}{
		{"square", unitSquare(), ConvexConvex, RotationRight},
		{"counter-clockwise square",
			loop(0, Point{0, 0}, Point{1, 0}, Point{1, 1}, Point{0, 1}),
			ConvexConvex, RotationLeft},
		{"collinear vertex",
			loop(0, Point{0, 0}, Point{0, 1}, Point{0, 2}, Point{2, 2}, Point{2, 0}),
			ConvexConvex, RotationRight},
		{"L shape",
			loop(0, Point{0, 0}, Point{0, 2}, Point{1, 2}, Point{1, 1}, Point{2, 1}, Point{2, 0}),
			ConvexSplittable, RotationOn},
		{"bisected square", bisectedSquare(), ConvexSplittable, RotationOn},
		{"two rooms", twoRooms(), ConvexSplittable, RotationOn},
		{"two squares", append(unitSquare(),
			loop(4, Point{5, 0}, Point{5, 1}, Point{6, 1}, Point{6, 0})...),
			ConvexSplittable, RotationOn},
		{"two segments", unitSquare()[:2], ConvexDegenerate, RotationOn},
		{"collinear", []LineSide{
			{Start: Point{0, 0}, End: Point{1, 0}, LineID: 0, Front: true},
			{Start: Point{1, 0}, End: Point{2, 0}, LineID: 1, Front: true},
			{Start: Point{2, 0}, End: Point{3, 0}, LineID: 2, Front: true},
		}, ConvexDegenerate, RotationOn},
		{"disconnected", []LineSide{
			{Start: Point{0, 0}, End: Point{1, 0}, LineID: 0, Front: true},
			{Start: Point{0, 1}, End: Point{1, 2}, LineID: 1, Front: true},
			{Start: Point{5, 5}, End: Point{6, 5}, LineID: 2, Front: true},
		}, ConvexDegenerate, RotationOn},
	} {
		t.Run(tt.name, func(t *testing.T) {
			res, ids := checkSides(tt.sides)
			test.T(t, res.State, tt.state)
			test.T(t, res.Rotation, tt.rotation)
			if tt.state == ConvexConvex {
				test.T(t, res.Traversal, ids)
			} else {
				test.T(t, len(res.Traversal), 0)
			}
			if tt.state == ConvexDegenerate {
				test.That(t, res.Reason != "")
			}
		})
	}
	test.T(t, ConvexSplittable.String(), "splittable")
}
