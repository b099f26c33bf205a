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

func TestWorkQueueIsLIFO(t *testing.T) {
	var q WorkQueue
	_, ok := q.Pop()
	test.That(t, !ok)
	q.Push(WorkItem{Segments: []SegmentID{1}, Path: ""})
	q.Push(WorkItem{Segments: []SegmentID{2}, Path: "R"})
	q.Push(WorkItem{Segments: []SegmentID{3}, Path: "L"})
	test.T(t, q.Len(), 3)
	item, ok := q.Pop()
	test.That(t, ok)
	test.T(t, item.Path, "L")
	test.T(t, item.Depth(), 1)
	q.Push(WorkItem{Segments: []SegmentID{4}, Path: "LR"})
	test.T(t, q.Peak(), 3)
	test.T(t, q.Pushed(), 4)
	var paths []string
	for {
		item, ok := q.Pop()
		if !ok {
			break
		}
		paths = append(paths, item.Path)
	}
	test.T(t, paths, []string{"LR", "R", ""})
}

func TestWorkQueueRejectsDefects(t *testing.T) {
	for _, tt := range []struct {
		name string
		item WorkItem
	}{
		{"empty", WorkItem{Path: "L"}},
		{"bad path", WorkItem{Segments: []SegmentID{0}, Path: "LX"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				test.That(t, recover() != nil, "no panic")
			}()
			var q WorkQueue
			q.Push(tt.item)
		})
	}
}
