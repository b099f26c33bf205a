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
	"math"

	"golang.org/x/sync/errgroup"
)

// Splitter selection. Every segment of the set is tried as a partition line
// against all the others; cost goes up for imbalance, diagonal partition
// lines, segs split and cuts landing close to an endpoint. Collinear
// candidates produce the same partition line, so only the first of them (by
// id) is tried.

// INFINITE_COST marks candidates that can't partition anything: nothing is
// split and one of the sides is empty
const INFINITE_COST = int64(math.MaxInt64)

// Below this many classifications per selection the goroutines are not worth
// their overhead
const PARALLEL_SCORING_THRESHOLD = 1 << 14

type SplitterScore struct {
	Segment SegmentID
	Index   int // position in the set
	Score   int64
	Front   int
	Back    int
	Splits  int
	Near    int
}

func (s SplitterScore) betterThan(o SplitterScore) bool {
	if s.Score != o.Score {
		return s.Score < o.Score
	}
	return s.Segment < o.Segment
}

type SplitterSelector struct {
	cfg     *Config
	aliases SegAliasHolder
}

func NewSplitterSelector(cfg *Config) *SplitterSelector {
	ss := &SplitterSelector{cfg: cfg}
	ss.aliases.Init(cfg.VertexWeldingEpsilon)
	return ss
}

type segEnds struct {
	a, b Point
}

// Select returns the best splitter of the set. Real segments are preferred:
// minisegs are only tried when no real segment scored finite.
// ErrSplitterNotFound (wrapped as degenerate input) is returned when no
// candidate is finite
func (ss *SplitterSelector) Select(ctx context.Context, segs []Segment,
	vs VertexSource) (SplitterScore, error) {
	ends := make([]segEnds, len(segs))
	for i, s := range segs {
		ends[i] = segEnds{vs.Position(s.Start), vs.Position(s.End)}
	}
	best, err := ss.selectAmong(ctx, segs, ends, false)
	if err != nil {
		return best, err
	}
	if best.Score == INFINITE_COST {
		best, err = ss.selectAmong(ctx, segs, ends, true)
		if err != nil {
			return best, err
		}
	}
	if best.Score == INFINITE_COST {
		return best, splitterNotFound()
	}
	return best, nil
}

func (ss *SplitterSelector) selectAmong(ctx context.Context, segs []Segment,
	ends []segEnds, minisegs bool) (SplitterScore, error) {
	ss.aliases.UnvisitAll() // remove marks from previous calls
	var cands []int
	for i, s := range segs {
		if s.IsMiniseg() != minisegs {
			continue
		}
		if ss.aliases.MarkAndRecall(s.Alias) {
			continue
		}
		cands = append(cands, i)
	}
	none := SplitterScore{Segment: NoSegment, Index: -1, Score: INFINITE_COST}
	if len(cands) == 0 {
		return none, nil
	}

	workers := ss.cfg.workerCount()
	if workers > len(cands) {
		workers = len(cands)
	}
	if workers <= 1 || len(cands)*len(segs) < PARALLEL_SCORING_THRESHOLD {
		return ss.evalCandidates(ctx, cands, segs, ends)
	}

	// Each worker takes a contiguous chunk, so ids within a chunk ascend and
	// merging the per-chunk winners by (score, id) gives the same answer as
	// a single pass would
	chunk := (len(cands) + workers - 1) / workers
	results := make([]SplitterScore, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		lo := w * chunk
		hi := lo + chunk
		if hi > len(cands) {
			hi = len(cands)
		}
		results[w] = none
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			res, err := ss.evalCandidates(gctx, cands[lo:hi], segs, ends)
			results[w] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return none, err
	}
	best := none
	for _, r := range results {
		if r.betterThan(best) {
			best = r
		}
	}
	return best, nil
}

func (ss *SplitterSelector) evalCandidates(ctx context.Context, cands []int,
	segs []Segment, ends []segEnds) (SplitterScore, error) {
	best := SplitterScore{Segment: NoSegment, Index: -1, Score: INFINITE_COST}
	for k, i := range cands {
		if k&63 == 0 {
			if err := ctx.Err(); err != nil {
				return best, err
			}
		}
		sc := ss.score(i, segs, ends, best.Score)
		if sc.betterThan(best) {
			best = sc
		}
	}
	return best, nil
}

// score evaluates segs[i] as partition line. Evaluation is abandoned (and
// INFINITE_COST returned) as soon as split cost alone exceeds bestcost: such
// candidate can't win. Candidates that could tie are evaluated in full, so
// that the tie goes to the lower id whatever the evaluation order
func (ss *SplitterSelector) score(i int, segs []Segment, ends []segEnds,
	bestcost int64) SplitterScore {
	w := ss.cfg.SplitWeights
	eps := ss.cfg.VertexWeldingEpsilon
	punish := ss.cfg.PunishableEndpointDistance
	line := NewLine(ends[i].a, ends[i].b)
	res := SplitterScore{Segment: segs[i].ID, Index: i}
	splitCost := w.ScoreFactor * w.Split
	for j := range segs {
		if j == i {
			continue
		}
		c := line.Classify(ends[j].a, ends[j].b, eps)
		switch c.Kind {
		case ClassFront:
			res.Front++
		case ClassBack:
			res.Back++
		case ClassSpanning:
			res.Splits++
			if splitCost > 0 && splitCost*int64(res.Splits) > bestcost {
				res.Score = INFINITE_COST
				return res
			}
		}
		if c.Near > eps && c.Near < punish {
			res.Near++
		}
	}
	if res.Splits == 0 && (res.Front == 0 || res.Back == 0) {
		res.Score = INFINITE_COST
		return res
	}
	diff := int64(res.Front - res.Back)
	if diff < 0 {
		diff = -diff
	}
	sum := w.Imbalance*diff + w.NearEndpoint*int64(res.Near) +
		w.Split*int64(res.Splits)
	if !line.AxisAligned(eps) {
		sum += w.NotAxisAligned
	}
	res.Score = w.ScoreFactor * sum
	return res
}
