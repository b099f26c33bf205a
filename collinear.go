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
	"sort"
)

// Collinear overlap resolution. Segments that lie on the same infinite line
// and face the same way must not overlap, otherwise the same stretch of wall
// would be emitted twice and no convex traversal could be found through it.

// collinearSpan is a segment projected onto the parametric axis of a line
type collinearSpan struct {
	id     SegmentID
	lo, hi float64
	// vertex at lo and hi ends respectively
	loV, hiV VertexID
	forward  bool // runs in the same direction as the line
}

type CollinearSpans []collinearSpan

func (x CollinearSpans) Len() int { return len(x) }
func (x CollinearSpans) Less(i, j int) bool {
	if x[i].lo != x[j].lo {
		return x[i].lo < x[j].lo
	}
	if x[i].hi != x[j].hi {
		// longer first, so the shorter one gets swallowed
		return x[i].hi > x[j].hi
	}
	return x[i].id < x[j].id
}
func (x CollinearSpans) Swap(i, j int) { x[i], x[j] = x[j], x[i] }

func spanOf(a *Allocator, line Line, s Segment) collinearSpan {
	ts, te := line.Param(a.Position(s.Start)), line.Param(a.Position(s.End))
	sp := collinearSpan{id: s.ID, lo: ts, hi: te, loV: s.Start,
		hiV: s.End, forward: true}
	if ts > te {
		sp.lo, sp.hi = te, ts
		sp.loV, sp.hiV = s.End, s.Start
		sp.forward = false
	}
	return sp
}

// oriented returns the vertices from lo to hi in the direction of the span
func (sp collinearSpan) oriented(lo, hi VertexID) [2]VertexID {
	if sp.forward {
		return [2]VertexID{lo, hi}
	}
	return [2]VertexID{hi, lo}
}

// ResolveCollinearOverlaps takes segments lying on the line and all facing
// the same way, and trims them so that they cover their union exactly once.
// Fully swallowed segments are dropped, partially covered ones are replaced
// by the uncovered remainder. The anchor, if it is one of ids, is kept whole
// and the others are carved around it, which may split one in two. Returns
// the resulting ids ordered along the line
func ResolveCollinearOverlaps(a *Allocator, line Line, ids []SegmentID,
	anchor SegmentID) ([]SegmentID, error) {
	if len(ids) < 2 {
		return append([]SegmentID(nil), ids...), nil
	}
	epsParam := a.Epsilon() / line.length
	spans := make(CollinearSpans, 0, len(ids))
	for _, s := range a.Segments(ids) {
		spans = append(spans, spanOf(a, line, s))
	}
	for _, sp := range spans {
		if sp.id != anchor {
			continue
		}
		spans = carveAround(a, line, spans, sp, epsParam)
		if spans == nil {
			return nil, ErrWeldingCollision
		}
		break
	}
	sort.Sort(spans)
	res := make([]SegmentID, 0, len(spans))
	covered := spans[0].hi
	coverV := spans[0].hiV
	res = append(res, spans[0].id)
	for _, sp := range spans[1:] {
		if sp.id == anchor {
			res = append(res, sp.id)
			if sp.hi > covered {
				covered, coverV = sp.hi, sp.hiV
			}
			continue
		}
		if sp.hi <= covered+epsParam {
			// swallowed, or whatever remains is shorter than epsilon
			a.Drop(sp.id)
			continue
		}
		if sp.lo < covered-epsParam {
			rest := sp.oriented(coverV, sp.hiV)
			nid, err := a.Trim(sp.id, rest[0], rest[1])
			if err != nil {
				return nil, err
			}
			res = append(res, nid)
		} else {
			res = append(res, sp.id)
		}
		covered = sp.hi
		coverV = sp.hiV
	}
	return res, nil
}

// carveAround removes the stretch covered by the anchor from every other span.
// Returns nil if a piece could not be made
func carveAround(a *Allocator, line Line, spans CollinearSpans, anc collinearSpan,
	epsParam float64) CollinearSpans {
	res := make(CollinearSpans, 0, len(spans)+1)
	for _, sp := range spans {
		if sp.id == anc.id || sp.hi <= anc.lo+epsParam || sp.lo >= anc.hi-epsParam {
			res = append(res, sp)
			continue
		}
		var cuts [][2]VertexID
		if anc.lo-sp.lo > epsParam && sp.loV != anc.loV {
			cuts = append(cuts, sp.oriented(sp.loV, anc.loV))
		}
		if sp.hi-anc.hi > epsParam && sp.hiV != anc.hiV {
			cuts = append(cuts, sp.oriented(anc.hiV, sp.hiV))
		}
		pieces, err := a.Carve(sp.id, cuts)
		if err != nil {
			return nil
		}
		for _, s := range a.Segments(pieces) {
			res = append(res, spanOf(a, line, s))
		}
	}
	return res
}

// resolveAllCollinear runs overlap resolution over every group of collinear
// same-facing segments in the set, used once on the whole map before
// building. Returns the live segment ids in the original order
func resolveAllCollinear(a *Allocator, ids []SegmentID) ([]SegmentID, error) {
	type groupKey struct {
		alias   int
		forward bool
	}
	groups := make(map[groupKey][]SegmentID)
	var order []groupKey
	refs := make(map[int]Line)
	for _, s := range a.Segments(ids) {
		ps, pe := a.Position(s.Start), a.Position(s.End)
		ref, ok := refs[s.Alias]
		if !ok {
			ref = NewLine(ps, pe)
			refs[s.Alias] = ref
		}
		k := groupKey{s.Alias, ref.SameDirection(ps, pe)}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], s.ID)
	}
	for _, k := range order {
		g := groups[k]
		if len(g) < 2 {
			continue
		}
		if _, err := ResolveCollinearOverlaps(a, refs[k.alias], g, NoSegment); err != nil {
			return nil, err
		}
	}
	res := a.Expand(ids)
	a.Repair(res)
	return res, nil
}
