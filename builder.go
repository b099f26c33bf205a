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
	"context"
	"errors"
	"fmt"
	"time"
)

// LineSide is one side of an input line. The front side runs from Start to
// End, the back side from End to Start; whatever the side bounds lies on its
// right. Sides sharing LineID with opposite Front are the two sides of one
// two-sided line
type LineSide struct {
	Start, End Point
	LineID     int
	SideID     int
	Front      bool
}

type BuilderState int

const (
	StateNotStarted BuilderState = iota
	StateCheckingConvexity
	StateCreatingLeafNode
	StateFindingSplitter
	StatePartitioningSegments
	StateGeneratingMinisegs
	StateFinishingSplit
	StateComplete
)

// MAX_RESEAL_ROUNDS bounds how many times leaves that stopped being convex
// after their edges were split are sent back to the worklist
const MAX_RESEAL_ROUNDS = 16

func (s BuilderState) String() string {
	switch s {
	case StateNotStarted:
		return "NotStarted"
	case StateCheckingConvexity:
		return "CheckingConvexity"
	case StateCreatingLeafNode:
		return "CreatingLeafNode"
	case StateFindingSplitter:
		return "FindingSplitter"
	case StatePartitioningSegments:
		return "PartitioningSegments"
	case StateGeneratingMinisegs:
		return "GeneratingMinisegs"
	case StateFinishingSplit:
		return "FinishingSplit"
	case StateComplete:
		return "Complete"
	}
	return fmt.Sprintf("BuilderState(%d)", int(s))
}

// Builder compiles line sides into a BSP tree one step at a time. It is not
// safe for concurrent use, though splitter scoring it performs runs on
// several goroutines
type Builder struct {
	cfg   Config
	log   *Logger
	sides []LineSide

	alloc       *Allocator
	checker     ConvexChecker
	selector    *SplitterSelector
	partitioner Partitioner
	minisegs    MinisegGenerator

	queue    WorkQueue
	nodes    []Node
	state    BuilderState
	failures []BranchFailure
	pruned   []int
	splits   int
	reseals  int
	deepest  int
	started  time.Time

	// branch being processed
	item      WorkItem
	blog      *BranchLog
	segs      []Segment
	convex    ConvexResult
	split     SplitterScore
	part      *Partition
	frontMini []SegmentID
	backMini  []SegmentID

	tree *Tree
	err  error
}

// NewBuilder prepares a compile of sides. A nil cfg means DefaultConfig. The
// config is copied, so changing it afterwards affects nothing
func NewBuilder(sides []LineSide, cfg *Config) (*Builder, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	b := &Builder{
		cfg:   *cfg,
		log:   cfg.Logger,
		sides: append([]LineSide(nil), sides...),
		alloc: NewAllocator(cfg.VertexWeldingEpsilon),
		state: StateNotStarted,
	}
	b.checker = ConvexChecker{Epsilon: b.cfg.VertexWeldingEpsilon}
	b.selector = NewSplitterSelector(&b.cfg)
	b.partitioner = Partitioner{alloc: b.alloc, eps: b.cfg.VertexWeldingEpsilon}
	b.minisegs = MinisegGenerator{alloc: b.alloc, eps: b.cfg.VertexWeldingEpsilon}
	return b, nil
}

// Compile builds the tree of sides in one call
func Compile(ctx context.Context, sides []LineSide, cfg *Config) (*Tree, error) {
	b, err := NewBuilder(sides, cfg)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx)
}

func (b *Builder) State() BuilderState {
	return b.state
}

// Tree returns the result once the builder is complete, nil otherwise
func (b *Builder) Tree() *Tree {
	return b.tree
}

// Build steps until complete. Cancellation of ctx is honoured between steps
// and inside splitter scoring; no partial tree is returned then
func (b *Builder) Build(ctx context.Context) (*Tree, error) {
	for b.state != StateComplete {
		if err := b.Step(ctx); err != nil {
			return nil, err
		}
	}
	return b.tree, b.err
}

// Step advances the builder by one state. Failures of individual branches
// don't make Step return an error: they are recorded and the branch is
// dropped. Errors are returned for cancellation, and once complete if no tree
// could be built at all
func (b *Builder) Step(ctx context.Context) error {
	if b.state == StateComplete {
		return b.err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("bsp build interrupted in state %s: %w", b.state, err)
	}
	switch b.state {
	case StateNotStarted:
		return b.start()
	case StateCheckingConvexity:
		b.checkConvexity()
	case StateCreatingLeafNode:
		b.createLeaf()
	case StateFindingSplitter:
		return b.findSplitter(ctx)
	case StatePartitioningSegments:
		b.partition()
	case StateGeneratingMinisegs:
		b.generateMinisegs()
	case StateFinishingSplit:
		b.finishSplit()
	}
	if b.state == StateComplete {
		return b.err
	}
	return nil
}

func (b *Builder) start() error {
	b.started = time.Now()
	ids, zeroLength := b.alloc.AddLineSides(b.sides)
	for _, i := range zeroLength {
		side := b.sides[i]
		err := degenerate("line side %d (line %d, side %d) has zero length",
			i, side.LineID, side.SideID)
		b.failures = append(b.failures, BranchFailure{Path: "", Err: err, Segments: 1})
		b.log.Verbose(1, "Line side %d (line %d) will not be used: its endpoints weld together\n",
			i, side.LineID)
	}
	ids, err := resolveAllCollinear(b.alloc, ids)
	if err != nil {
		return b.abort(fmt.Errorf("resolving collinear overlaps: %w", err), len(ids))
	}
	if b.cfg.PruneDanglingChains {
		var pruned []SegmentID
		ids, pruned = PruneDanglingChains(b.alloc, ids)
		for _, s := range b.alloc.Segments(pruned) {
			b.pruned = append(b.pruned, s.Source)
			b.log.Verbose(1, "Line side %d (line %d) pruned: dangling chain\n",
				s.Source, b.sides[s.Source].LineID)
		}
		if len(pruned) > 0 {
			b.log.Printf("Pruned %d dangling line sides.\n", len(pruned))
		}
	}
	if len(ids) == 0 {
		return b.abort(degenerate("no segments to build from"), 0)
	}
	b.log.Printf("Initial number of segs is %d.\n", len(ids))
	b.nodes = append(b.nodes, Node{Kind: NodePending, Splitter: NoSegment,
		Left: NoNode, Right: NoNode})
	b.queue.Push(WorkItem{Segments: ids, Path: "", Node: 0})
	b.nextItem()
	if b.state == StateComplete {
		return b.err
	}
	return nil
}

// abort fails the whole compile before the root branch exists
func (b *Builder) abort(err error, segs int) error {
	b.failures = append(b.failures, BranchFailure{Path: "", Err: err, Segments: segs})
	b.err = &CompileError{Failures: b.failures}
	b.state = StateComplete
	b.log.Error("%s\n", b.err.Error())
	return b.err
}

// nextItem pops the next branch worth processing, or finishes the tree when
// there are none left
func (b *Builder) nextItem() {
	for {
		item, ok := b.queue.Pop()
		if !ok {
			b.finish()
			return
		}
		b.item = item
		b.item.Segments = b.alloc.Expand(item.Segments)
		b.blog = b.log.Branch()
		b.segs, b.part, b.frontMini, b.backMini = nil, nil, nil, nil
		if len(b.item.Segments) == 0 {
			b.fail(degenerate("no segments left"))
			continue
		}
		if b.item.Depth() > b.cfg.MaxDepth {
			b.fail(degenerate("depth %d exceeds maximum of %d",
				b.item.Depth(), b.cfg.MaxDepth))
			continue
		}
		if d := b.item.Depth(); d > b.deepest {
			b.deepest = d
			b.log.Push(0, "Deepest branch %q has %d segs\n", b.item.Path,
				len(b.item.Segments))
		}
		b.state = StateCheckingConvexity
		return
	}
}

// fail records the current branch as degenerate. Branch logs are only
// surfaced for failed branches
func (b *Builder) fail(err error) {
	b.failures = append(b.failures, BranchFailure{Path: b.item.Path, Err: err,
		Segments: len(b.item.Segments)})
	b.nodes[b.item.Node].Kind = NodeDegenerate
	b.blog.DumpSegs(b.item.Path, b.alloc.Segments(b.item.Segments), b.alloc)
	b.log.Merge(b.blog, fmt.Sprintf("Branch %q (%d segs) failed: %v\n",
		b.item.Path, len(b.item.Segments), err))
}

func (b *Builder) checkConvexity() {
	b.segs = b.alloc.Segments(b.item.Segments)
	b.convex = b.checker.Check(b.segs, b.alloc)
	b.blog.Verbose(2, "Branch %q: %d segs are %s\n", b.item.Path, len(b.segs),
		b.convex.State)
	switch b.convex.State {
	case ConvexConvex:
		b.state = StateCreatingLeafNode
	case ConvexSplittable:
		b.state = StateFindingSplitter
	default:
		b.fail(degenerate("%s", b.convex.Reason))
		b.nextItem()
	}
}

func (b *Builder) createLeaf() {
	n := &b.nodes[b.item.Node]
	n.Kind = NodeLeaf
	n.Path = b.item.Path
	n.segs = b.convex.Traversal
	// traversal going counter-clockwise is emitted backwards
	n.reversed = b.convex.Rotation == RotationLeft
	b.log.Verbose(3, "Subsector %q: %d edges\n", n.Path, len(n.segs))
	b.nextItem()
}

func (b *Builder) findSplitter(ctx context.Context) error {
	best, err := b.selector.Select(ctx, b.segs, b.alloc)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("bsp build interrupted in state %s: %w", b.state, err)
		}
		b.blog.Printf("No splitter among %d segs of branch %q\n", len(b.segs), b.item.Path)
		b.fail(err)
		b.nextItem()
		return nil
	}
	b.split = best
	b.blog.Verbose(1, "Branch %q: splitter %d (score %d, front %d, back %d, splits %d, near %d)\n",
		b.item.Path, best.Segment, best.Score, best.Front, best.Back, best.Splits, best.Near)
	b.state = StatePartitioningSegments
	return nil
}

func (b *Builder) partition() {
	b.partitioner.blog = b.blog
	part, err := b.partitioner.Partition(b.split.Segment, b.item.Segments)
	if err != nil {
		if part != nil {
			b.blog.Printf("Splitter %d left %d segs in front, %d behind\n",
				b.split.Segment, len(part.Front), len(part.Back))
		}
		b.fail(err)
		b.nextItem()
		return
	}
	b.part = part
	b.state = StateGeneratingMinisegs
}

func (b *Builder) generateMinisegs() {
	b.minisegs.blog = b.blog
	front, back, err := b.minisegs.Generate(b.part)
	if err != nil {
		b.fail(fmt.Errorf("generating minisegs: %w", err))
		b.nextItem()
		return
	}
	b.frontMini, b.backMini = front, back
	b.state = StateFinishingSplit
}

// finishSplit turns the branch's node into a parent and queues its children.
// Front is pushed first, so back is processed first
func (b *Builder) finishSplit() {
	left := NodeID(len(b.nodes))
	right := left + 1
	b.nodes = append(b.nodes,
		Node{Kind: NodePending, Splitter: NoSegment, Left: NoNode, Right: NoNode},
		Node{Kind: NodePending, Splitter: NoSegment, Left: NoNode, Right: NoNode})
	n := &b.nodes[b.item.Node]
	n.Kind = NodeParent
	n.Path = b.item.Path
	n.Splitter = b.split.Segment
	n.Line = b.part.Line
	n.Left = left
	n.Right = right
	b.nodes[left].Path = b.item.Path + "L"
	b.nodes[right].Path = b.item.Path + "R"
	b.splits++

	frontSegs := append(append([]SegmentID(nil), b.part.Front...), b.frontMini...)
	backSegs := append(append([]SegmentID(nil), b.part.Back...), b.backMini...)
	b.queue.Push(WorkItem{Segments: frontSegs, Path: b.item.Path + "R", Node: right})
	b.queue.Push(WorkItem{Segments: backSegs, Path: b.item.Path + "L", Node: left})
	b.nextItem()
}

// emitEdges makes subsector edges of a leaf out of its segments in traversal
// order. Partner links to segments that were consumed since are dropped
func (b *Builder) emitEdges(ids []SegmentID, reversed bool) []SubsectorEdge {
	segs := b.alloc.Segments(ids)
	edges := make([]SubsectorEdge, 0, len(segs))
	for _, s := range segs {
		e := SubsectorEdge{
			Start:       b.alloc.Position(s.Start),
			End:         b.alloc.Position(s.End),
			StartVertex: s.Start,
			EndVertex:   s.End,
			Segment:     s.ID,
			Partner:     s.Partner,
			Source:      s.Source,
			LineID:      -1,
			SideID:      -1,
			Front:       s.Front,
		}
		if !s.IsMiniseg() {
			e.LineID = b.sides[s.Source].LineID
			e.SideID = b.sides[s.Source].SideID
		}
		if e.Partner != NoSegment && b.alloc.Consumed(e.Partner) {
			e.Partner = NoSegment
		}
		edges = append(edges, e)
	}
	if reversed {
		for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
			edges[i], edges[j] = edges[j], edges[i]
		}
		for i := range edges {
			edges[i] = edges[i].Reverse()
		}
	}
	return edges
}

// recheckLeaves brings every leaf up to date with splits and vertex moves made
// after it was created. A leaf whose edges no longer make a convex traversal
// goes back to the worklist. Returns the number of leaves requeued
func (b *Builder) recheckLeaves() int {
	resealed, requeued := 0, 0
	for i := range b.nodes {
		n := &b.nodes[i]
		if n.Kind != NodeLeaf {
			continue
		}
		ids := b.alloc.Expand(n.segs)
		if len(ids) != len(n.segs) {
			resealed++
		}
		res := b.checker.Check(b.alloc.Segments(ids), b.alloc)
		if res.State == ConvexConvex {
			n.segs = res.Traversal
			n.reversed = res.Rotation == RotationLeft
			continue
		}
		item := WorkItem{Segments: ids, Path: n.Path, Node: NodeID(i)}
		if b.reseals >= MAX_RESEAL_ROUNDS {
			b.item = item
			b.blog = b.log.Branch()
			b.blog.Printf("Subsector %q is %s now\n", n.Path, res.State)
			b.fail(degenerate("subsector is no longer convex after its edges were split %d times over",
				MAX_RESEAL_ROUNDS))
			continue
		}
		n.Kind = NodePending
		b.queue.Push(item)
		requeued++
	}
	if resealed > 0 {
		b.log.Verbose(1, "Resealed %d subsectors that had their segs split afterwards\n",
			resealed)
	}
	if requeued > 0 {
		b.reseals++
		b.log.Verbose(1, "Requeued %d subsectors that are no longer convex\n", requeued)
	}
	return requeued
}

// finish rechecks leaves, strips failed branches and compacts the arena
func (b *Builder) finish() {
	if b.recheckLeaves() > 0 {
		b.nextItem()
		return
	}
	b.state = StateComplete
	b.blog = nil
	for i := range b.nodes {
		n := &b.nodes[i]
		if n.Kind == NodeLeaf {
			n.Edges = b.emitEdges(n.segs, n.reversed)
		}
	}
	b.log.Flush()

	stripDegenerateNodes(b.nodes)
	if k := b.nodes[0].Kind; k != NodeParent && k != NodeLeaf {
		b.err = &CompileError{Failures: b.failures}
		b.log.Error("%s\n", b.err.Error())
		return
	}
	nodes := compactNodes(b.nodes, 0)
	b.tree = &Tree{
		Nodes:    nodes,
		Root:     0,
		Vertices: b.alloc.Positions(),
		Failures: b.failures,
		Pruned:   b.pruned,
	}
	if len(b.failures) > 0 {
		b.log.Error("Warning: %d branches failed and were stripped, the tree doesn't cover all of the map\n",
			len(b.failures))
	}
	st := b.tree.Stats()
	b.log.Printf("Created %d subsectors, %d nodes. Got %d segs. Split %d times.\n",
		st.Leaves, st.Parents, st.Edges, b.splits)
	b.log.Printf("Max depth %d, peak worklist length %d, %d branches queued in total\n",
		st.Depth, b.queue.Peak(), b.queue.Pushed())
	b.log.Printf("Made %d vertices and %d segs on the way\n", b.alloc.VertexCount(),
		b.alloc.SegmentCount())
	b.log.Printf("Nodes took %s\n", time.Since(b.started))
}
