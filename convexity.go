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

// convexity
package mapbsp

import (
	"math"
)

// ConvexState is the verdict on a segment set
type ConvexState int

const (
	// ConvexDegenerate: can't form a closed region and can't be split into one
	ConvexDegenerate ConvexState = iota
	// ConvexConvex: ready to become a subsector
	ConvexConvex
	// ConvexSplittable: needs a partition line
	ConvexSplittable
)

func (s ConvexState) String() string {
	switch s {
	case ConvexConvex:
		return "convex"
	case ConvexSplittable:
		return "splittable"
	}
	return "degenerate"
}

// ConvexResult carries the traversal that proved a set convex, so that
// subsector edges can be emitted in that order
type ConvexResult struct {
	State     ConvexState
	Traversal []SegmentID
	Rotation  Rotation
	Reason    string // why the set is degenerate
}

// VertexSource resolves vertex positions
type VertexSource interface {
	Position(v VertexID) Point
}

type ConvexChecker struct {
	Epsilon float64
}

// Check walks the set tail to head, starting from its first segment. The set
// is convex if the walk returns to where it started having consumed every
// segment exactly once, all non-collinear turns have the same sign, and the
// turns add up to one full revolution (which rules out star-shaped loops).
// O(n) with vertex->outgoing segment lookup built up front
func (c *ConvexChecker) Check(segs []Segment, vs VertexSource) ConvexResult {
	n := len(segs)
	if n < 3 {
		return ConvexResult{State: ConvexDegenerate,
			Reason: "fewer than 3 segments"}
	}
	outgoing := make(map[VertexID][]int, n)
	incoming := make(map[VertexID]int, n)
	for i, s := range segs {
		outgoing[s.Start] = append(outgoing[s.Start], i)
		incoming[s.End]++
	}
	connected := false
	for _, s := range segs {
		if len(outgoing[s.End]) > 0 {
			connected = true
			break
		}
	}
	if !connected {
		return ConvexResult{State: ConvexDegenerate,
			Reason: "no segment continues into another"}
	}
	if c.allCollinear(segs, vs) {
		return ConvexResult{State: ConvexDegenerate,
			Reason: "all segments are collinear"}
	}

	visited := make([]bool, n)
	order := make([]SegmentID, 0, n)
	rot := RotationOn
	total := 0.0
	cur := 0
	for {
		visited[cur] = true
		order = append(order, segs[cur].ID)
		s := segs[cur]
		nexts := outgoing[s.End]
		if len(nexts) != 1 || incoming[s.End] != 1 {
			return ConvexResult{State: ConvexSplittable}
		}
		nx := nexts[0]
		a, b := vs.Position(s.Start), vs.Position(s.End)
		cc := vs.Position(segs[nx].End)
		turn := Turn(a, b, cc, c.Epsilon)
		if turn == RotationOn && b.Sub(a).Dot(cc.Sub(b)) < 0 {
			// doubles back on itself
			return ConvexResult{State: ConvexSplittable}
		}
		if turn != RotationOn {
			if rot == RotationOn {
				rot = turn
			} else if rot != turn {
				return ConvexResult{State: ConvexSplittable}
			}
		}
		total += turnAngle(b.Sub(a), cc.Sub(b))
		if nx == 0 {
			break
		}
		if visited[nx] {
			return ConvexResult{State: ConvexSplittable}
		}
		cur = nx
	}
	// A simple convex loop turns by exactly 2*pi, a loop that winds twice by
	// 4*pi. Anything in between would be float garbage
	if len(order) != n || rot == RotationOn || math.Abs(total) > 3*math.Pi {
		return ConvexResult{State: ConvexSplittable}
	}
	return ConvexResult{State: ConvexConvex, Traversal: order, Rotation: rot}
}

func (c *ConvexChecker) allCollinear(segs []Segment, vs VertexSource) bool {
	l := NewLine(vs.Position(segs[0].Start), vs.Position(segs[0].End))
	for _, s := range segs[1:] {
		if l.SideOf(vs.Position(s.Start), c.Epsilon) != SideOn ||
			l.SideOf(vs.Position(s.End), c.Epsilon) != SideOn {
			return false
		}
	}
	return true
}
