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
	"math"
	"sort"
)

// Minisegs close the two child regions along the splitter line. The line is
// cut into spans between consecutive vertices lying on it; for every span and
// every side of it, a miniseg is needed when that side is interior to the
// region and no real segment on that side already runs along the span.
//
// Each side is swept on its own, using only the segments of that child. At an
// on-line vertex, the segments of the child touching it are seen as rays
// leaving it, measured by the angle they make with the splitter on the
// child's side of it. The ray nearest to the splitter ahead of the vertex
// bounds the wedge the next span opens into, and tells whether that wedge is
// interior. A vertex with no rays of the child keeps the status of the span
// before it.

// Rays closer than that in angle are considered coincident
const ANGLE_EPSILON = 1e-9

type ray struct {
	angle    float64 // from the splitter, 0 ahead and Pi behind
	outgoing bool    // segment leaves the vertex along the ray
}

// claims tells whether the wedge between the splitter ahead of the vertex and
// the ray is interior to the child on the front (clockwise) or back side
func (r ray) claims(front bool) bool {
	if r.angle == 0 {
		// runs along the span itself
		return front == r.outgoing
	}
	return front != r.outgoing
}

// sideRays collects rays at on-line vertices for one child. Rays of segments
// not collinear with the splitter are kept strictly inside (0, Pi), even when
// welding left their far end a hair on the wrong side of the line
func sideRays(a *Allocator, line Line, ids []SegmentID, collinear []SegmentID,
	onSet map[VertexID]bool, front bool) map[VertexID][]ray {
	col := make(map[SegmentID]bool, len(collinear))
	for _, id := range collinear {
		col[id] = true
	}
	dir := line.delta.Scale(1 / line.length)
	angleOf := func(d Point, along bool) float64 {
		if along {
			if dir.Dot(d) > 0 {
				return 0
			}
			return math.Pi
		}
		cross := dir.Cross(d)
		if front {
			cross = -cross
		}
		t := math.Atan2(cross, dir.Dot(d))
		if t <= 0 {
			if t > -math.Pi/2 {
				t = ANGLE_EPSILON
			} else {
				t = math.Pi - ANGLE_EPSILON
			}
		}
		return math.Min(math.Max(t, ANGLE_EPSILON), math.Pi-ANGLE_EPSILON)
	}
	rays := make(map[VertexID][]ray)
	for _, s := range a.Segments(ids) {
		ps, pe := a.Position(s.Start), a.Position(s.End)
		if onSet[s.Start] {
			rays[s.Start] = append(rays[s.Start],
				ray{angleOf(pe.Sub(ps), col[s.ID]), true})
		}
		if onSet[s.End] {
			rays[s.End] = append(rays[s.End],
				ray{angleOf(ps.Sub(pe), col[s.ID]), false})
		}
	}
	return rays
}

// interiorAfter tells whether the span following the vertex is interior on
// the given side. ok is false when the vertex has no rays on that side
func interiorAfter(rays []ray, front bool) (inside, ok bool) {
	if len(rays) == 0 {
		return false, false
	}
	best := math.Inf(1)
	for _, r := range rays {
		best = math.Min(best, r.angle)
	}
	for _, r := range rays {
		if r.angle-best <= ANGLE_EPSILON {
			inside = inside || r.claims(front)
		}
	}
	return inside, true
}

type onLineVertex struct {
	v VertexID
	t float64
}

type AlongLine []onLineVertex

func (x AlongLine) Len() int { return len(x) }
func (x AlongLine) Less(i, j int) bool {
	if x[i].t != x[j].t {
		return x[i].t < x[j].t
	}
	return x[i].v < x[j].v
}
func (x AlongLine) Swap(i, j int) { x[i], x[j] = x[j], x[i] }

type paramSpan struct {
	lo, hi float64
	id     SegmentID
	// the span's ends in the direction of the splitter line
	from, to VertexID
}

type MinisegGenerator struct {
	alloc *Allocator
	eps   float64
	blog  *BranchLog
}

// Generate creates minisegs for both children of the partition. Minisegs that
// close the same span from both sides are each other's partners. A miniseg
// facing a real segment that spans exactly the same vertices is that
// segment's partner
func (g *MinisegGenerator) Generate(p *Partition) (front, back []SegmentID, err error) {
	a := g.alloc
	line := p.Line
	alias := p.Splitter.Alias

	pts := make(AlongLine, 0, len(p.OnLine))
	onSet := make(map[VertexID]bool, len(p.OnLine))
	for _, v := range p.OnLine {
		pts = append(pts, onLineVertex{v, line.Param(a.Position(v))})
		onSet[v] = true
	}
	sort.Sort(pts)
	if len(pts) < 2 {
		return nil, nil, nil
	}

	frontRays := sideRays(a, line, p.Front, p.FrontCollinear, onSet, true)
	backRays := sideRays(a, line, p.Back, p.BackCollinear, onSet, false)
	frontSpans := g.spansOf(line, p.FrontCollinear)
	backSpans := g.spansOf(line, p.BackCollinear)

	frontInside, backInside := false, false
	for k := 0; k+1 < len(pts); k++ {
		u, v := pts[k], pts[k+1]
		mid := (u.t + v.t) / 2
		frontCover := coveringSpan(frontSpans, mid)
		backCover := coveringSpan(backSpans, mid)
		if in, ok := interiorAfter(frontRays[u.v], true); ok {
			frontInside = in
		}
		if in, ok := interiorAfter(backRays[u.v], false); ok {
			backInside = in
		}
		needFront := frontCover == nil && frontInside
		needBack := backCover == nil && backInside
		switch {
		case needFront && needBack:
			f, b, err := a.NewMinisegPair(u.v, v.v, alias)
			if err != nil {
				return nil, nil, err
			}
			front = append(front, f)
			back = append(back, b)
		case needFront:
			partner := NoSegment
			if backCover != nil && backCover.from == u.v && backCover.to == v.v {
				partner = backCover.id
			}
			f, err := a.NewMiniseg(u.v, v.v, true, partner, alias)
			if err != nil {
				return nil, nil, err
			}
			front = append(front, f)
		case needBack:
			partner := NoSegment
			if frontCover != nil && frontCover.from == u.v && frontCover.to == v.v {
				partner = frontCover.id
			}
			b, err := a.NewMiniseg(v.v, u.v, false, partner, alias)
			if err != nil {
				return nil, nil, err
			}
			back = append(back, b)
		}
	}
	g.blog.Verbose(2, "Minisegs: %d front, %d back over %d spans\n",
		len(front), len(back), len(pts)-1)
	return front, back, nil
}

func (g *MinisegGenerator) spansOf(line Line, ids []SegmentID) []paramSpan {
	res := make([]paramSpan, 0, len(ids))
	for _, s := range g.alloc.Segments(ids) {
		ts := line.Param(g.alloc.Position(s.Start))
		te := line.Param(g.alloc.Position(s.End))
		sp := paramSpan{lo: ts, hi: te, id: s.ID, from: s.Start, to: s.End}
		if ts > te {
			sp.lo, sp.hi = te, ts
			sp.from, sp.to = s.End, s.Start
		}
		res = append(res, sp)
	}
	return res
}

func coveringSpan(spans []paramSpan, t float64) *paramSpan {
	for i := range spans {
		if spans[i].lo <= t && t <= spans[i].hi {
			return &spans[i]
		}
	}
	return nil
}
