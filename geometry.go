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

	"github.com/paulmach/orb"
)

// Geometry primitives. Everything here works in map units with float64
// precision; every predicate that decides "on the line or not" takes the
// welding epsilon so that classification agrees with vertex welding.

// Point is a position in map space
type Point struct {
	X, Y float64
}

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }
func (p Point) Cross(q Point) float64 { return p.X*q.Y - p.Y*q.X }
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }
func (p Point) Dist(q Point) float64 { return p.Sub(q).Len() }
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Orb converts point to the representation used for interchange (GeoJSON,
// bounds, containment tests)
func (p Point) Orb() orb.Point {
	return orb.Point{p.X, p.Y}
}

// Side tells on which side of a directed line something lies. Front is the
// right-hand side when walking from line's start to its end, which is also
// where the region bounded by a segment is
type Side int

const (
	SideOn Side = iota
	SideFront
	SideBack
)

func (s Side) String() string {
	switch s {
	case SideFront:
		return "front"
	case SideBack:
		return "back"
	}
	return "on"
}

// Rotation is the direction of a turn at a pivot
type Rotation int

const (
	RotationOn    Rotation = iota // collinear
	RotationRight                 // clockwise
	RotationLeft                  // counter-clockwise
)

func (r Rotation) String() string {
	switch r {
	case RotationRight:
		return "right"
	case RotationLeft:
		return "left"
	}
	return "on"
}

// Line is an infinite directed line through two points, used as splitter
type Line struct {
	Start, End Point
	delta      Point
	length     float64
}

func NewLine(start, end Point) Line {
	d := end.Sub(start)
	return Line{
		Start:  start,
		End:    end,
		delta:  d,
		length: d.Len(),
	}
}

// Offset returns signed perpendicular distance from line to p, positive on the
// front (right) side
func (l Line) Offset(p Point) float64 {
	if l.length == 0 {
		return 0
	}
	return -l.delta.Cross(p.Sub(l.Start)) / l.length
}

// Param returns the projection of p onto the line, 0 at Start, 1 at End
func (l Line) Param(p Point) float64 {
	lsq := l.length * l.length
	if lsq == 0 {
		return 0
	}
	return p.Sub(l.Start).Dot(l.delta) / lsq
}

// Project returns the foot of the perpendicular from p to the line
func (l Line) Project(p Point) Point {
	return l.Start.Add(l.delta.Scale(l.Param(p)))
}

func (l Line) SideOf(p Point, eps float64) Side {
	return sideFromOffset(l.Offset(p), eps)
}

func sideFromOffset(off, eps float64) Side {
	if math.Abs(off) <= eps {
		return SideOn
	}
	if off > 0 {
		return SideFront
	}
	return SideBack
}

// AxisAligned is true for horizontal and vertical lines
func (l Line) AxisAligned(eps float64) bool {
	return math.Abs(l.delta.X) <= eps || math.Abs(l.delta.Y) <= eps
}

// SameDirection reports whether a->b runs the same way as the line
func (l Line) SameDirection(a, b Point) bool {
	return b.Sub(a).Dot(l.delta) > 0
}

// Classification kinds
const (
	ClassFront = iota
	ClassBack
	ClassCollinear
	ClassSpanning
)

// Classification is the verdict on where a segment a->b lies relative to a
// splitter line. For spanning segments, T is the parameter along a->b where
// the line is crossed (strictly between the endpoints, farther than epsilon
// from either of them). TouchStart/TouchEnd are set when the respective
// endpoint lies on the line, including the case when the crossing point is
// so close to an endpoint that the crossing is treated as a touch
type Classification struct {
	Kind       int
	T          float64
	TouchStart bool
	TouchEnd   bool
	// Near is the distance between the point where the segment's own line
	// crosses the splitter and the nearest endpoint of the segment; -1 if
	// they are parallel or segment touches the splitter
	Near float64
}

// Classify works out placement of segment a->b against the line. eps is the
// welding epsilon, so that anything that would weld onto an endpoint is not
// split
func (l Line) Classify(a, b Point, eps float64) Classification {
	da := l.Offset(a)
	db := l.Offset(b)
	sa := sideFromOffset(da, eps)
	sb := sideFromOffset(db, eps)
	c := Classification{Near: -1}
	c.TouchStart = sa == SideOn
	c.TouchEnd = sb == SideOn
	switch {
	case sa == SideOn && sb == SideOn:
		c.Kind = ClassCollinear
		return c
	case sa == SideOn:
		c.Kind = sideToClass(sb)
		return c
	case sb == SideOn:
		c.Kind = sideToClass(sa)
		return c
	}
	segLen := a.Dist(b)
	if da != db {
		t := da / (da - db)
		switch {
		case t < 0:
			c.Near = -t * segLen
		case t > 1:
			c.Near = (t - 1) * segLen
		default:
			c.Near = math.Min(t, 1-t) * segLen
		}
		c.T = t
	}
	if sa == sb {
		c.Kind = sideToClass(sa)
		return c
	}
	// Opposite sides. Crossing point that would weld onto an endpoint means
	// segment merely touches the splitter there
	cut := a.Lerp(b, c.T)
	if cut.Dist(a) <= eps {
		c.Kind = sideToClass(sb)
		c.TouchStart = true
		c.Near = -1
		return c
	}
	if cut.Dist(b) <= eps {
		c.Kind = sideToClass(sa)
		c.TouchEnd = true
		c.Near = -1
		return c
	}
	c.Kind = ClassSpanning
	return c
}

func sideToClass(s Side) int {
	if s == SideFront {
		return ClassFront
	}
	return ClassBack
}

// Turn computes the rotation at pivot b when going a -> b -> c. The turn is
// collinear when the far end of the shorter edge lies within eps of the line
// through the longer one. This gives the same verdict for c -> b -> a with the
// rotation mirrored, and keeps a vertex welded up to eps off a long edge from
// reading as a sharp turn
func Turn(a, b, c Point, eps float64) Rotation {
	d1, d2 := b.Sub(a), c.Sub(b)
	longest := math.Max(d1.Len(), d2.Len())
	cross := d1.Cross(d2)
	if longest == 0 || math.Abs(cross) <= eps*longest {
		return RotationOn
	}
	if cross < 0 {
		return RotationRight
	}
	return RotationLeft
}

// turnAngle returns signed turning angle at the pivot between directions d1
// and d2, negative for clockwise turns
func turnAngle(d1, d2 Point) float64 {
	return math.Atan2(d1.Cross(d2), d1.Dot(d2))
}
