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

// Dangling chain pruning. A one-sided line that leads nowhere (one of its
// vertices touches nothing else) can't bound any closed region, and left alone
// it ends up as a degenerate branch of the tree. Whole chains of such lines
// are cut away from the terminal end until a junction is reached. Two-sided
// lines are never pruned: their sides close on each other.

// PruneDanglingChains returns the segments that survived, in original order,
// and the ones that were pruned
func PruneDanglingChains(a *Allocator, ids []SegmentID) (kept []SegmentID, pruned []SegmentID) {
	segs := a.Segments(ids)
	incident := make(map[VertexID][]int)
	for i, s := range segs {
		incident[s.Start] = append(incident[s.Start], i)
		incident[s.End] = append(incident[s.End], i)
	}
	removed := make([]bool, len(segs))
	degree := make(map[VertexID]int, len(incident))
	var terminals []VertexID
	for _, s := range segs {
		for _, v := range [2]VertexID{s.Start, s.End} {
			if _, done := degree[v]; done {
				continue
			}
			degree[v] = len(incident[v])
			if degree[v] == 1 {
				terminals = append(terminals, v)
			}
		}
	}
	for len(terminals) > 0 {
		v := terminals[len(terminals)-1]
		terminals = terminals[:len(terminals)-1]
		if degree[v] != 1 {
			continue
		}
		for _, i := range incident[v] {
			if removed[i] {
				continue
			}
			if segs[i].Partner != NoSegment {
				break
			}
			removed[i] = true
			degree[segs[i].Start]--
			degree[segs[i].End]--
			other := segs[i].Start
			if other == v {
				other = segs[i].End
			}
			if degree[other] == 1 {
				terminals = append(terminals, other)
			}
			break
		}
	}
	for i, s := range segs {
		if removed[i] {
			pruned = append(pruned, s.ID)
			a.Drop(s.ID)
		} else {
			kept = append(kept, s.ID)
		}
	}
	return kept, pruned
}
