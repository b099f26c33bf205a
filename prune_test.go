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

func TestPruneDanglingChain(t *testing.T) {
	sides := danglingRoom()
	// extend the dangling line into a chain of two
	sides = append(sides, LineSide{Start: Point{1, 1}, End: Point{1, 1.5},
		LineID: 5, Front: true})
	a := NewAllocator(DefaultVertexWeldingEpsilon)
	ids, _ := a.AddLineSides(sides)
	kept, pruned := PruneDanglingChains(a, ids)
	test.T(t, kept, []SegmentID{0, 1, 2, 3})
	test.T(t, len(pruned), 2)
	test.That(t, a.Consumed(4) && a.Consumed(5))
}

func TestPruneKeepsTwoSidedLines(t *testing.T) {
	a := NewAllocator(DefaultVertexWeldingEpsilon)
	ids, _ := a.AddLineSides(twoSidedLine())
	kept, pruned := PruneDanglingChains(a, ids)
	test.T(t, kept, ids)
	test.T(t, len(pruned), 0)
}

func TestPruneLeavesClosedRooms(t *testing.T) {
	a := NewAllocator(DefaultVertexWeldingEpsilon)
	ids, _ := a.AddLineSides(pillarRoom())
	kept, pruned := PruneDanglingChains(a, ids)
	test.T(t, kept, ids)
	test.T(t, len(pruned), 0)
}
