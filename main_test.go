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
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/tdewolff/test"
)

// Map fixtures shared by tests. Rooms are wound clockwise, pillars
// counter-clockwise, so the interior is always on the right

// loop makes one-sided line sides along pts, closing back to the first one.
// Line and side ids count up from firstLine
func loop(firstLine int, pts ...Point) []LineSide {
	res := make([]LineSide, 0, len(pts))
	for i := range pts {
		res = append(res, LineSide{
			Start:  pts[i],
			End:    pts[(i+1)%len(pts)],
			LineID: firstLine + i,
			SideID: firstLine + i,
			Front:  true,
		})
	}
	return res
}

func unitSquare() []LineSide {
	return loop(0, Point{0, 0}, Point{0, 1}, Point{1, 1}, Point{1, 0})
}

// bisectedSquare is a 2x2 room with an internal one-sided line x = 1 facing
// east, input index 4
func bisectedSquare() []LineSide {
	sides := loop(0, Point{0, 0}, Point{0, 2}, Point{2, 2}, Point{2, 0})
	return append(sides, LineSide{Start: Point{1, 0}, End: Point{1, 2},
		LineID: 4, SideID: 4, Front: true})
}

// pillarRoom is a 4x4 room with a 1x1 pillar
func pillarRoom() []LineSide {
	sides := loop(0, Point{0, 0}, Point{0, 4}, Point{4, 4}, Point{4, 0})
	return append(sides, loop(4, Point{1, 1}, Point{2, 1}, Point{2, 2}, Point{1, 2})...)
}

// twoRooms are two 2x2 rooms sharing the two-sided line x = 2 (input indices
// 3 and 4)
func twoRooms() []LineSide {
	return []LineSide{
		{Start: Point{0, 0}, End: Point{0, 2}, LineID: 0, SideID: 0, Front: true},
		{Start: Point{0, 2}, End: Point{2, 2}, LineID: 1, SideID: 1, Front: true},
		{Start: Point{2, 0}, End: Point{0, 0}, LineID: 2, SideID: 2, Front: true},
		{Start: Point{2, 2}, End: Point{2, 0}, LineID: 3, SideID: 3, Front: true},
		{Start: Point{2, 2}, End: Point{2, 0}, LineID: 3, SideID: 4, Front: false},
		{Start: Point{2, 2}, End: Point{4, 2}, LineID: 4, SideID: 5, Front: true},
		{Start: Point{4, 2}, End: Point{4, 0}, LineID: 5, SideID: 6, Front: true},
		{Start: Point{4, 0}, End: Point{2, 0}, LineID: 6, SideID: 7, Front: true},
	}
}

// overlappingWalls is a 2x2 room whose south wall is given twice, as two
// overlapping pieces
func overlappingWalls() []LineSide {
	sides := loop(0, Point{0, 0}, Point{0, 2}, Point{2, 2}, Point{2, 0})
	sides = sides[:3]
	return append(sides,
		LineSide{Start: Point{2, 0}, End: Point{0.5, 0}, LineID: 3, SideID: 3, Front: true},
		LineSide{Start: Point{1.5, 0}, End: Point{0, 0}, LineID: 4, SideID: 4, Front: true})
}

// danglingRoom is a 2x2 room with a one-sided line sticking out of the west
// wall into the middle, input index 4
func danglingRoom() []LineSide {
	sides := loop(0, Point{0, 0}, Point{0, 2}, Point{2, 2}, Point{2, 0})
	return append(sides, LineSide{Start: Point{0, 1}, End: Point{1, 1},
		LineID: 4, SideID: 4, Front: true})
}

// pillarGrid is a 64x64 room with 8x8 2x2 pillars, big enough for parallel
// splitter scoring to kick in. Pillars are staggered so that no two of them
// share a line
func pillarGrid() []LineSide {
	sides := loop(0, Point{0, 0}, Point{0, 64}, Point{64, 64}, Point{64, 0})
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			x := float64(8*i+2) + 0.25*float64(j)
			y := float64(8*j+2) + 0.25*float64(i)
			sides = append(sides, loop(len(sides), Point{x, y}, Point{x + 2, y},
				Point{x + 2, y + 2}, Point{x, y + 2})...)
		}
	}
	return sides
}

// jitteredPillarGrid is a 60x60 room with a 4x4 grid of 5x5 pillars in rows.
// Pillar corners are moved at random by up to jitter/2 along each axis, so
// walls of pillars in the same row are almost, but not quite, collinear
func jitteredPillarGrid(seed int64, jitter float64) []LineSide {
	rnd := rand.New(rand.NewSource(seed))
	shake := func(x, y float64) Point {
		return Point{x + (rnd.Float64()-0.5)*jitter, y + (rnd.Float64()-0.5)*jitter}
	}
	sides := loop(0, Point{0, 0}, Point{0, 60}, Point{60, 60}, Point{60, 0})
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			x, y := float64(10+12*i), float64(10+12*j)
			sides = append(sides, loop(len(sides), shake(x, y), shake(x+5, y),
				shake(x+5, y+5), shake(x, y+5))...)
		}
	}
	return sides
}

// sidesArea is the area enclosed by one-sided input, rooms counting positive
// and pillars negative
func sidesArea(sides []LineSide) float64 {
	sum := 0.0
	for _, side := range sides {
		sum -= side.Start.Cross(side.End)
	}
	return sum / 2
}

func mustCompile(t *testing.T, sides []LineSide, cfg *Config) *Tree {
	t.Helper()
	tree, err := Compile(context.Background(), sides, cfg)
	test.Error(t, err)
	if tree == nil {
		t.Fatalf("no tree")
	}
	return tree
}

// leafArea is the area enclosed by leaf's edges
func leafArea(n *Node) float64 {
	sum := 0.0
	for _, e := range n.Edges {
		sum += e.Start.Cross(e.End)
	}
	return math.Abs(sum) / 2
}

func treeArea(tree *Tree) float64 {
	sum := 0.0
	for _, id := range tree.Leaves() {
		sum += leafArea(tree.Node(id))
	}
	return sum
}

func findLeaf(tree *Tree, path string) *Node {
	for i := range tree.Nodes {
		if tree.Nodes[i].Kind == NodeLeaf && tree.Nodes[i].Path == path {
			return &tree.Nodes[i]
		}
	}
	return nil
}
