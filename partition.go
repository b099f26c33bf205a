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
	"fmt"
	"sort"
)

// Partition is the outcome of dividing a segment set with a splitter. Front
// and Back are sorted by id. OnLine holds every vertex lying on the splitter
// line that is an endpoint of a segment in either list, which is where
// minisegs can start and end
type Partition struct {
	Splitter       Segment
	Line           Line
	Front, Back    []SegmentID
	OnLine         []VertexID
	FrontCollinear []SegmentID // collinear with the splitter and facing the same way, splitter included
	BackCollinear  []SegmentID // collinear with the splitter and facing the other way
}

// WELD_RETRY_DIVISOR tightens the welding tolerance for the second attempt at
// a split whose crossing point welded onto an endpoint
const WELD_RETRY_DIVISOR = 8

type Partitioner struct {
	alloc *Allocator
	eps   float64
	blog  *BranchLog
}

// Partition divides the set in two. The splitter goes to the front. Segments
// crossing the splitter line are split at the welded crossing point. A branch
// with one of the sides empty can't make progress, and is reported as
// degenerate input
func (p *Partitioner) Partition(splitter SegmentID, ids []SegmentID) (*Partition, error) {
	a := p.alloc
	s := a.Segment(splitter)
	line := NewLine(a.Endpoints(splitter))
	res := &Partition{Splitter: s, Line: line}
	onLine := make(map[VertexID]bool)
	onLine[s.Start] = true
	onLine[s.End] = true
	var frontCol, backCol []SegmentID

	queue := append([]SegmentID(nil), ids...)
	for i := 0; i < len(queue); i++ {
		id := queue[i]
		if a.Consumed(id) {
			// split in this very pass as partner of another segment
			queue = append(queue, a.Expand([]SegmentID{id})...)
			continue
		}
		if id == splitter {
			frontCol = append(frontCol, id)
			continue
		}
		seg := a.Segment(id)
		ps, pe := a.Endpoints(id)
		c := line.Classify(ps, pe, p.eps)
		if c.TouchStart {
			onLine[seg.Start] = true
		}
		if c.TouchEnd {
			onLine[seg.End] = true
		}
		switch c.Kind {
		case ClassFront:
			res.Front = append(res.Front, id)
		case ClassBack:
			res.Back = append(res.Back, id)
		case ClassCollinear:
			if line.SameDirection(ps, pe) {
				frontCol = append(frontCol, id)
			} else {
				backCol = append(backCol, id)
			}
		case ClassSpanning:
			cut := ps.Lerp(pe, c.T)
			first, second, err := a.Split(id, cut)
			if errors.Is(err, ErrWeldingCollision) {
				first, second, err = a.SplitWithin(id, cut, p.eps/WELD_RETRY_DIVISOR)
				if err == nil {
					p.blog.Verbose(2, "Welding collision splitting seg %d, split with tighter tolerance\n", id)
				}
			}
			if errors.Is(err, ErrWeldingCollision) {
				// Skip the split: the crossing point is an endpoint, so
				// segment lies on the side of the other endpoint
				v := a.Vertex(cut)
				onLine[v] = true
				if v == seg.Start {
					p.appendBySide(res, id, line.SideOf(pe, p.eps))
				} else {
					p.appendBySide(res, id, line.SideOf(ps, p.eps))
				}
				p.blog.Verbose(2, "Welding collision splitting seg %d, kept whole\n", id)
				continue
			}
			if err != nil {
				return nil, err
			}
			onLine[a.Segment(first).End] = true
			p.appendBySide(res, first, line.SideOf(ps, p.eps))
			p.appendBySide(res, second, line.SideOf(pe, p.eps))
		}
	}

	// Put vertices that welded onto the line exactly on it, so that both
	// children see the same position for them
	snapped := make([]VertexID, 0, len(onLine))
	for v := range onLine {
		snapped = append(snapped, v)
	}
	sort.Sort(VertexIDSlice(snapped))
	for _, v := range snapped {
		a.SnapToLine(v, line)
	}

	var err error
	frontCol, err = ResolveCollinearOverlaps(a, line, frontCol, splitter)
	if err != nil {
		return nil, fmt.Errorf("resolving collinear segments: %w", err)
	}
	backCol, err = ResolveCollinearOverlaps(a, line, backCol, s.Partner)
	if err != nil {
		return nil, fmt.Errorf("resolving collinear segments: %w", err)
	}
	a.Repair(append(append([]SegmentID(nil), frontCol...), backCol...))
	res.Front = append(res.Front, frontCol...)
	res.Back = append(res.Back, backCol...)
	sort.Sort(SegmentIDSlice(res.Front))
	sort.Sort(SegmentIDSlice(res.Back))
	sort.Sort(SegmentIDSlice(frontCol))
	sort.Sort(SegmentIDSlice(backCol))
	res.FrontCollinear = frontCol
	res.BackCollinear = backCol

	// Only keep on-line vertices something in the region is attached to
	attached := make(map[VertexID]bool)
	for _, list := range [2][]SegmentID{res.Front, res.Back} {
		for _, seg := range a.Segments(list) {
			for _, v := range [2]VertexID{seg.Start, seg.End} {
				if attached[v] {
					continue
				}
				if onLine[v] || line.SideOf(a.Position(v), p.eps) == SideOn {
					attached[v] = true
					res.OnLine = append(res.OnLine, v)
				}
			}
		}
	}
	sort.Sort(VertexIDSlice(res.OnLine))

	if len(res.Front) == 0 || len(res.Back) == 0 {
		return res, degenerate("splitter %d leaves a side empty (front %d, back %d)",
			splitter, len(res.Front), len(res.Back))
	}
	return res, nil
}

func (p *Partitioner) appendBySide(res *Partition, id SegmentID, side Side) {
	if side == SideBack {
		res.Back = append(res.Back, id)
	} else {
		res.Front = append(res.Front, id)
	}
}
