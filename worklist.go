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
)

// Worklist of pending branches. The tree is built without recursion: a branch
// that needs splitting pushes its two children here, and the builder keeps
// popping until nothing is left, so stack depth does not grow with the map.

// WorkItem is a branch waiting to be processed: the segments of its region,
// its path from the root and the arena slot its result goes to
type WorkItem struct {
	Segments []SegmentID
	Path     string
	Node     NodeID
}

func (it WorkItem) Depth() int {
	return len(it.Path)
}

// WorkQueue is LIFO, so the tree is built depth-first and the number of
// pending branches stays proportional to tree depth
type WorkQueue struct {
	tasks  []WorkItem
	peak   int // max number of pending branches so far
	pushed int // total number of branches ever pushed
}

// Push enqueues a branch. Empty branches and malformed paths are defects
// of the caller
func (q *WorkQueue) Push(item WorkItem) {
	if len(item.Segments) == 0 {
		panic(fmt.Sprintf("work item %q has no segments", item.Path))
	}
	for _, c := range item.Path {
		if c != 'L' && c != 'R' {
			panic(fmt.Sprintf("work item path %q has symbol %q", item.Path, c))
		}
	}
	q.tasks = append(q.tasks, item)
	q.pushed++
	if len(q.tasks) > q.peak {
		q.peak = len(q.tasks)
	}
}

func (q *WorkQueue) Pop() (WorkItem, bool) {
	if len(q.tasks) == 0 {
		return WorkItem{}, false
	}
	item := q.tasks[len(q.tasks)-1]
	q.tasks[len(q.tasks)-1] = WorkItem{}
	q.tasks = q.tasks[:len(q.tasks)-1]
	return item, true
}

func (q *WorkQueue) Len() int {
	return len(q.tasks)
}

func (q *WorkQueue) Peak() int {
	return q.peak
}

func (q *WorkQueue) Pushed() int {
	return q.pushed
}
