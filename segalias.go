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

// segalias
package mapbsp

import (
	"math"
)

// Cheap integer aliases for collinear segs. Test one seg as a partition per all
// the collinear ones and receive a discount on execution time. Aliases are
// also what the collinear overlap resolver groups segments by
type SegAliasHolder struct {
	visited  map[int]bool
	lines    map[aliasKey]int
	maxAlias int // max known alias so far. Incremented by Generate
	epsilon  float64
}

type aliasKey struct {
	angle, offset int64
}

// aliasAngleStep is quantization of line direction, in radians
const aliasAngleStep = 1e-7

// Init must be called before SegAliasHolder can be used for the first time,
// and is intended to be called only once
func (s *SegAliasHolder) Init(epsilon float64) {
	s.visited = make(map[int]bool)
	s.lines = make(map[aliasKey]int)
	s.maxAlias = 0
	s.epsilon = epsilon
}

// Generate returns a new available alias that was not in use AND marks
// it as visited. Minimal return value is 1, so that you can use 0 to mean
// "no alias was assigned"
func (s *SegAliasHolder) Generate() int {
	s.maxAlias++
	s.visited[s.maxAlias] = true
	return s.maxAlias
}

// AliasOf returns the alias of infinite line through a and b, regardless of
// its direction, generating one if the line was not seen before
func (s *SegAliasHolder) AliasOf(a, b Point) int {
	d := b.Sub(a)
	l := d.Len()
	if l == 0 {
		return 0
	}
	d = d.Scale(1 / l)
	// Canonical direction: angle in [0, pi)
	if d.Y < 0 || (d.Y == 0 && d.X < 0) {
		d = d.Scale(-1)
	}
	angle := math.Atan2(d.Y, d.X)
	if angle >= math.Pi-aliasAngleStep/2 {
		angle = 0
		d = Point{1, 0}
	}
	key := aliasKey{
		angle:  int64(math.Round(angle / aliasAngleStep)),
		offset: int64(math.Round(d.Cross(a) / s.epsilon)),
	}
	if alias, ok := s.lines[key]; ok {
		return alias
	}
	alias := s.Generate()
	s.lines[key] = alias
	return alias
}

// MarkAndRecall marks alias as visited but returns whether it was visited already
func (s *SegAliasHolder) MarkAndRecall(alias int) bool {
	b := s.visited[alias] // remember whether it was visited before
	if !b {               // if not
		s.visited[alias] = true // mark as visited now
	}
	return b // and return the previous value
}

// UnvisitAll marks all aliases as not yet visited - used in beginning of
// splitter selection before loop on candidates, so that values from previous
// calls are not retained
func (s *SegAliasHolder) UnvisitAll() {
	// sorry, nothing more efficient exists
	s.visited = make(map[int]bool)
}
