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
	"math"
	"sync"
)

// VertexID references a welded vertex owned by Allocator
type VertexID int

// SegmentID references a segment owned by Allocator. Segment ids of the input
// line sides follow input order
type SegmentID int

const (
	NoVertex  VertexID  = -1
	NoSegment SegmentID = -1
	NoSource            = -1 // Segment.Source of a miniseg
)

// Segment is a directed edge candidate for partitioning. The region it bounds
// lies on its right. Segments are never modified once created: a split makes
// two new ones and marks the original consumed
type Segment struct {
	ID         SegmentID
	Start, End VertexID
	Source     int  // index of input line side, NoSource for minisegs
	Front      bool // polarity: front side of its line, or for minisegs - bounds the front child of its splitter
	Partner    SegmentID
	Alias      int // identifies the infinite line the segment lies on
}

func (s Segment) IsMiniseg() bool {
	return s.Source == NoSource
}

// Allocator owns every vertex and segment created during one compile. All
// welding is routed through it, and its methods are safe for concurrent use
type Allocator struct {
	mu       sync.Mutex
	vmap     *VertexMap
	segs     []Segment
	replaced map[SegmentID][]SegmentID
	parent   map[SegmentID]SegmentID // split and carved pieces -> what they came from
	aliases  SegAliasHolder
}

func NewAllocator(epsilon float64) *Allocator {
	a := &Allocator{
		vmap:     CreateVertexMap(epsilon),
		replaced: make(map[SegmentID][]SegmentID),
		parent:   make(map[SegmentID]SegmentID),
	}
	a.aliases.Init(epsilon)
	return a
}

func (a *Allocator) Epsilon() float64 {
	return a.vmap.Epsilon
}

// Vertex welds p into the vertex store
func (a *Allocator) Vertex(p Point) VertexID {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.vmap.SelectVertexClose(p.X, p.Y)
}

func (a *Allocator) Position(v VertexID) Point {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.vmap.Vertices[v]
}

// Positions returns a copy of all vertex positions, indexed by VertexID
func (a *Allocator) Positions() []Point {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Point(nil), a.vmap.Vertices...)
}

func (a *Allocator) VertexCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.vmap.Len()
}

func (a *Allocator) SegmentCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.segs)
}

func (a *Allocator) Segment(id SegmentID) Segment {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.segs[id]
}

// Segments returns a snapshot of the segments in the order of ids
func (a *Allocator) Segments(ids []SegmentID) []Segment {
	a.mu.Lock()
	defer a.mu.Unlock()
	res := make([]Segment, len(ids))
	for i, id := range ids {
		res[i] = a.segs[id]
	}
	return res
}

// Endpoints returns positions of segment's start and end
func (a *Allocator) Endpoints(id SegmentID) (Point, Point) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.segs[id]
	return a.vmap.Vertices[s.Start], a.vmap.Vertices[s.End]
}

func (a *Allocator) Consumed(id SegmentID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.replaced[id]
	return ok
}

// Expand replaces consumed segments with the live pieces they were split or
// trimmed into, preserving order along each original segment
func (a *Allocator) Expand(ids []SegmentID) []SegmentID {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.expandLocked(ids)
}

func (a *Allocator) expandLocked(ids []SegmentID) []SegmentID {
	res := make([]SegmentID, 0, len(ids))
	var stack []SegmentID
	for _, id := range ids {
		stack = append(stack[:0], id)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			repl, ok := a.replaced[cur]
			if !ok {
				res = append(res, cur)
				continue
			}
			for i := len(repl) - 1; i >= 0; i-- {
				stack = append(stack, repl[i])
			}
		}
	}
	return res
}

func (a *Allocator) appendLocked(s Segment) SegmentID {
	s.ID = SegmentID(len(a.segs))
	a.segs = append(a.segs, s)
	return s.ID
}

// NewSegment creates a segment from start to end. Zero-length segments are
// refused
func (a *Allocator) NewSegment(start, end VertexID, source int, front bool,
	partner SegmentID) (SegmentID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if start == end {
		return NoSegment, ErrWeldingCollision
	}
	return a.appendLocked(Segment{
		Start:   start,
		End:     end,
		Source:  source,
		Front:   front,
		Partner: partner,
		Alias:   a.aliases.AliasOf(a.vmap.Vertices[start], a.vmap.Vertices[end]),
	}), nil
}

// AddLineSides creates one segment per input line side, in input order. The
// two sides of the same line become partners. Returns ids of created segments
// and indices of sides that were skipped because their endpoints welded into
// one vertex
func (a *Allocator) AddLineSides(sides []LineSide) ([]SegmentID, []int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	type welded struct {
		start, end VertexID
		id         SegmentID
	}
	ws := make([]welded, len(sides))
	var zeroLength []int
	next := SegmentID(len(a.segs))
	for i, side := range sides {
		s := a.vmap.SelectVertexClose(side.Start.X, side.Start.Y)
		e := a.vmap.SelectVertexClose(side.End.X, side.End.Y)
		if !side.Front {
			s, e = e, s
		}
		ws[i] = welded{start: s, end: e, id: NoSegment}
		if s == e {
			zeroLength = append(zeroLength, i)
			continue
		}
		ws[i].id = next
		next++
	}
	// Pair up the sides of two-sided lines
	partner := make(map[int]SegmentID)
	firstOfLine := make(map[int]int)
	for i, side := range sides {
		if ws[i].id == NoSegment {
			continue
		}
		j, seen := firstOfLine[side.LineID]
		if !seen {
			firstOfLine[side.LineID] = i
			continue
		}
		if sides[j].Front != side.Front && ws[j].start == ws[i].end &&
			ws[j].end == ws[i].start {
			partner[i] = ws[j].id
			partner[j] = ws[i].id
		}
	}
	ids := make([]SegmentID, 0, len(sides))
	for i, side := range sides {
		if ws[i].id == NoSegment {
			continue
		}
		p, ok := partner[i]
		if !ok {
			p = NoSegment
		}
		id := a.appendLocked(Segment{
			Start:   ws[i].start,
			End:     ws[i].end,
			Source:  i,
			Front:   side.Front,
			Partner: p,
			Alias: a.aliases.AliasOf(a.vmap.Vertices[ws[i].start],
				a.vmap.Vertices[ws[i].end]),
		})
		if id != ws[i].id {
			panic(fmt.Sprintf("segment id mismatch: %d instead of %d", id, ws[i].id))
		}
		ids = append(ids, id)
	}
	return ids, zeroLength
}

// NewMiniseg creates a single miniseg. partner is NoSegment unless the miniseg
// faces a real segment spanning exactly the same vertices
func (a *Allocator) NewMiniseg(start, end VertexID, front bool, partner SegmentID,
	alias int) (SegmentID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if start == end {
		return NoSegment, ErrWeldingCollision
	}
	return a.appendLocked(Segment{
		Start:   start,
		End:     end,
		Source:  NoSource,
		Front:   front,
		Partner: partner,
		Alias:   alias,
	}), nil
}

// NewMinisegPair creates the front miniseg u->v and back miniseg v->u,
// partnered with each other
func (a *Allocator) NewMinisegPair(u, v VertexID, alias int) (SegmentID, SegmentID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if u == v {
		return NoSegment, NoSegment, ErrWeldingCollision
	}
	frontID := SegmentID(len(a.segs))
	backID := frontID + 1
	a.appendLocked(Segment{Start: u, End: v, Source: NoSource, Front: true,
		Partner: backID, Alias: alias})
	a.appendLocked(Segment{Start: v, End: u, Source: NoSource, Front: false,
		Partner: frontID, Alias: alias})
	return frontID, backID, nil
}

// SnapToLine moves the vertex onto its projection on the line. Vertices lying
// exactly on the line are left alone, and so is a vertex whose projection
// would weld onto another one. Reports whether the vertex was moved
func (a *Allocator) SnapToLine(v VertexID, l Line) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	p := a.vmap.Vertices[v]
	if l.Offset(p) == 0 {
		return false
	}
	q := l.Project(p)
	return a.vmap.Move(v, q.X, q.Y)
}

// Split cuts segment at the point (welded into vertex store) and returns the
// two pieces, first one starting at segment's start. The original is marked
// consumed. If the partner is live and runs exactly opposite, it is split at
// the same vertex too, and the four pieces are partnered pairwise, so that
// partners keep matching endpoints whichever branch they are in.
// ErrWeldingCollision is returned if the point welds onto either endpoint
func (a *Allocator) Split(id SegmentID, at Point) (SegmentID, SegmentID, error) {
	return a.SplitWithin(id, at, a.vmap.Epsilon)
}

// SplitWithin is Split with the point welded only onto a vertex within tol,
// which may be tighter than the allocator's epsilon. A fresh vertex made this
// way can lie closer than epsilon to an existing one
func (a *Allocator) SplitWithin(id SegmentID, at Point, tol float64) (SegmentID, SegmentID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, gone := a.replaced[id]; gone {
		return NoSegment, NoSegment, fmt.Errorf("segment %d is already consumed", id)
	}
	s := a.segs[id]
	v, ok := a.vmap.nearest(at.X, at.Y, math.Min(tol, a.vmap.Epsilon))
	if !ok {
		v = a.vmap.insertVertex(at.X, at.Y)
	}
	if v == s.Start || v == s.End {
		return NoSegment, NoSegment, ErrWeldingCollision
	}
	propagate := false
	var p Segment
	if s.Partner != NoSegment {
		_, gone := a.replaced[s.Partner]
		p = a.segs[s.Partner]
		propagate = !gone && p.Start == s.End && p.End == s.Start
	}
	first := SegmentID(len(a.segs))
	second := first + 1
	pFirst, pSecond := NoSegment, NoSegment
	if propagate {
		pFirst = first + 2
		pSecond = first + 3
	}
	// first = start->v is the reverse of partner's v->end, and so on
	a.appendLocked(Segment{Start: s.Start, End: v, Source: s.Source,
		Front: s.Front, Partner: pSecond, Alias: s.Alias})
	a.appendLocked(Segment{Start: v, End: s.End, Source: s.Source,
		Front: s.Front, Partner: pFirst, Alias: s.Alias})
	a.replaced[id] = []SegmentID{first, second}
	a.parent[first], a.parent[second] = id, id
	if propagate {
		a.appendLocked(Segment{Start: p.Start, End: v, Source: p.Source,
			Front: p.Front, Partner: second, Alias: p.Alias})
		a.appendLocked(Segment{Start: v, End: p.End, Source: p.Source,
			Front: p.Front, Partner: first, Alias: p.Alias})
		a.replaced[p.ID] = []SegmentID{pFirst, pSecond}
		a.parent[pFirst], a.parent[pSecond] = p.ID, p.ID
	}
	return first, second, nil
}

// Trim replaces a segment with a shorter one on the same line, keeping its
// source. The partner link is dropped, since the partner still spans the
// original extent; Repair can restore it later
func (a *Allocator) Trim(id SegmentID, start, end VertexID) (SegmentID, error) {
	pieces, err := a.Carve(id, [][2]VertexID{{start, end}})
	if err != nil {
		return NoSegment, err
	}
	return pieces[0], nil
}

// Carve replaces a segment with pieces over the given spans of its line, in
// the order given. Pieces have no partner. Carving into no spans is the same
// as Drop
func (a *Allocator) Carve(id SegmentID, spans [][2]VertexID) ([]SegmentID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, sp := range spans {
		if sp[0] == sp[1] {
			return nil, ErrWeldingCollision
		}
	}
	s := a.segs[id]
	pieces := make([]SegmentID, 0, len(spans))
	for _, sp := range spans {
		nid := a.appendLocked(Segment{Start: sp[0], End: sp[1], Source: s.Source,
			Front: s.Front, Partner: NoSegment, Alias: s.Alias})
		a.parent[nid] = id
		pieces = append(pieces, nid)
	}
	a.replaced[id] = pieces
	return pieces, nil
}

// Drop marks a segment consumed without replacement
func (a *Allocator) Drop(id SegmentID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.replaced[id] = nil
}

// Repair restores partner links lost to Trim and Carve. A live segment without
// a live partner is paired with a live piece of an ancestor's partner when
// that piece runs exactly opposite and has no live partner either. Only
// Partner fields change. Returns the number of pairs made
func (a *Allocator) Repair(ids []SegmentID) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	made := 0
	for _, id := range ids {
		if !a.unpairedLocked(id) {
			continue
		}
		s := a.segs[id]
		for anc, ok := a.parent[id]; ok; anc, ok = a.parent[anc] {
			op := a.segs[anc].Partner
			if op == NoSegment {
				continue
			}
			found := NoSegment
			for _, q := range a.expandLocked([]SegmentID{op}) {
				c := a.segs[q]
				if q != id && c.Start == s.End && c.End == s.Start && a.unpairedLocked(q) {
					found = q
					break
				}
			}
			if found != NoSegment {
				a.segs[id].Partner = found
				a.segs[found].Partner = id
				made++
				break
			}
		}
	}
	return made
}

func (a *Allocator) unpairedLocked(id SegmentID) bool {
	if _, gone := a.replaced[id]; gone {
		return false
	}
	p := a.segs[id].Partner
	if p == NoSegment {
		return true
	}
	_, gone := a.replaced[p]
	return gone
}
