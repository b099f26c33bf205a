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

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// NodeID indexes Tree.Nodes
type NodeID int

const NoNode NodeID = -1

type NodeKind int

const (
	NodePending NodeKind = iota // allocated for a branch not processed yet
	NodeParent
	NodeLeaf
	NodeDegenerate // failed branch, stripped before the tree is returned
)

func (k NodeKind) String() string {
	switch k {
	case NodePending:
		return "pending"
	case NodeParent:
		return "parent"
	case NodeLeaf:
		return "leaf"
	}
	return "degenerate"
}

// Node is either a parent, which divides space along the splitter line, or a
// leaf (subsector), which is a closed convex clockwise loop of edges. Left is
// the back child, Right the front one
type Node struct {
	Kind     NodeKind
	Path     string
	Splitter SegmentID
	Line     Line
	Left     NodeID
	Right    NodeID
	Edges    []SubsectorEdge
	Bound    orb.Bound

	// leaf's segments in the order of convexity traversal, kept so the leaf
	// can be re-emitted if any of them is split afterwards
	segs     []SegmentID
	reversed bool
}

// SubsectorEdge is one edge of a leaf, either a piece of an input line side or
// a miniseg along some splitter
type SubsectorEdge struct {
	Start, End             Point
	StartVertex, EndVertex VertexID
	Segment                SegmentID
	Partner                SegmentID
	Source                 int // index of input line side, NoSource for minisegs
	LineID, SideID         int // -1 for minisegs
	Front                  bool
}

func (e SubsectorEdge) IsMiniseg() bool {
	return e.Source == NoSource
}

// Reverse returns the edge running the other way
func (e SubsectorEdge) Reverse() SubsectorEdge {
	e.Start, e.End = e.End, e.Start
	e.StartVertex, e.EndVertex = e.EndVertex, e.StartVertex
	return e
}

// Ring returns leaf's outline as a closed ring. Nil for non-leaves
func (n *Node) Ring() orb.Ring {
	if n.Kind != NodeLeaf || len(n.Edges) == 0 {
		return nil
	}
	ring := make(orb.Ring, 0, len(n.Edges)+1)
	for _, e := range n.Edges {
		ring = append(ring, e.Start.Orb())
	}
	return append(ring, n.Edges[0].Start.Orb())
}

// Contains tells whether p is inside the leaf (boundary included)
func (n *Node) Contains(p Point) bool {
	ring := n.Ring()
	if ring == nil {
		return false
	}
	return planar.RingContains(ring, p.Orb())
}

// Tree is the result of a compile
type Tree struct {
	Nodes    []Node
	Root     NodeID
	Vertices []Point // welded vertex store, indexed by VertexID
	// Branches that failed and were stripped away. A tree with failures
	// doesn't cover everything that input described
	Failures []BranchFailure
	Pruned   []int // input line sides cut away as dangling chains
}

type TreeStats struct {
	Parents  int
	Leaves   int
	Depth    int // longest path from root to leaf, in splits
	Edges    int
	Minisegs int
}

func (t *Tree) Node(id NodeID) *Node {
	return &t.Nodes[id]
}

// Leaves returns ids of all leaves in arena order
func (t *Tree) Leaves() []NodeID {
	var res []NodeID
	for i := range t.Nodes {
		if t.Nodes[i].Kind == NodeLeaf {
			res = append(res, NodeID(i))
		}
	}
	return res
}

func (t *Tree) Stats() TreeStats {
	var st TreeStats
	for i := range t.Nodes {
		n := &t.Nodes[i]
		switch n.Kind {
		case NodeParent:
			st.Parents++
		case NodeLeaf:
			st.Leaves++
			st.Edges += len(n.Edges)
			for _, e := range n.Edges {
				if e.IsMiniseg() {
					st.Minisegs++
				}
			}
			if len(n.Path) > st.Depth {
				st.Depth = len(n.Path)
			}
		}
	}
	return st
}

// Locate descends from the root to the leaf whose side of every splitter p is
// on. Points on a splitter line go to the front
func (t *Tree) Locate(p Point) NodeID {
	if t.Root == NoNode {
		return NoNode
	}
	cur := t.Root
	for t.Nodes[cur].Kind == NodeParent {
		n := &t.Nodes[cur]
		if n.Line.Offset(p) < 0 {
			cur = n.Left
		} else {
			cur = n.Right
		}
	}
	return cur
}

// FrontToBack visits leaves in order of their distance from view, nearest
// first: at every parent the side view is on goes before the other one.
// Stops when visit returns false
func (t *Tree) FrontToBack(view Point, visit func(NodeID, *Node) bool) {
	if t.Root == NoNode {
		return
	}
	stack := []NodeID{t.Root}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.Nodes[cur]
		if n.Kind != NodeParent {
			if n.Kind == NodeLeaf && !visit(cur, n) {
				return
			}
			continue
		}
		near, far := n.Right, n.Left
		if n.Line.Offset(view) < 0 {
			near, far = far, near
		}
		stack = append(stack, far, near)
	}
}

func (t *Tree) String() string {
	st := t.Stats()
	return fmt.Sprintf("%d parents, %d leaves, depth %d, %d edges (%d minisegs)",
		st.Parents, st.Leaves, st.Depth, st.Edges, st.Minisegs)
}

// stripDegenerateNodes replaces every parent with a degenerate child by the
// other child, and makes a parent degenerate when both are. Children are
// always allocated after their parent, so walking the arena backwards visits
// them first. Replaced nodes become unreachable and go away in compaction
func stripDegenerateNodes(nodes []Node) {
	for i := len(nodes) - 1; i >= 0; i-- {
		n := &nodes[i]
		if n.Kind != NodeParent {
			continue
		}
		leftBad := nodes[n.Left].Kind == NodeDegenerate
		rightBad := nodes[n.Right].Kind == NodeDegenerate
		switch {
		case leftBad && rightBad:
			n.Kind = NodeDegenerate
		case leftBad:
			path := n.Path
			*n = nodes[n.Right]
			n.Path = path
		case rightBad:
			path := n.Path
			*n = nodes[n.Left]
			n.Path = path
		}
	}
}

// compactNodes copies nodes reachable from root into a fresh arena in
// breadth-first order, renumbering children and recomputing paths. Bounds are
// then accumulated from the leaves up
func compactNodes(nodes []Node, root NodeID) []Node {
	res := make([]Node, 0, len(nodes))
	ring := CreateNodeRing(uint32(len(nodes)))
	res = append(res, nodes[root])
	res[0].Path = ""
	// Ring holds new ids. Their nodes already sit in res, still referencing
	// children by old ids until dequeued
	ring.Enqueue(0)
	for !ring.Empty() {
		cur := ring.Dequeue()
		n := &res[cur]
		if n.Kind != NodeParent {
			continue
		}
		oldLeft, oldRight := n.Left, n.Right
		path := n.Path

		left := NodeID(len(res))
		res = append(res, nodes[oldLeft])
		res[left].Path = path + "L"
		ring.Enqueue(left)

		right := NodeID(len(res))
		res = append(res, nodes[oldRight])
		res[right].Path = path + "R"
		ring.Enqueue(right)

		// res may have been reallocated
		res[cur].Left = left
		res[cur].Right = right
	}
	for i := len(res) - 1; i >= 0; i-- {
		n := &res[i]
		switch n.Kind {
		case NodeLeaf:
			n.Bound = n.Ring().Bound()
		case NodeParent:
			n.Bound = res[n.Left].Bound.Union(res[n.Right].Bound)
		}
	}
	return res
}
