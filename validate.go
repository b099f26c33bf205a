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

	"github.com/paulmach/orb"
)

// Validate checks the structural promises of a compiled tree: every node is
// a finished parent or leaf, children are in range, and every leaf is a
// closed loop of at least three edges turning clockwise only. Returns all
// problems found, joined
func (t *Tree) Validate(eps float64) error {
	var errs []error
	if len(t.Nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	if t.Root < 0 || int(t.Root) >= len(t.Nodes) {
		return fmt.Errorf("root %d out of range", t.Root)
	}
	for i := range t.Nodes {
		n := &t.Nodes[i]
		switch n.Kind {
		case NodeParent:
			for _, c := range [2]NodeID{n.Left, n.Right} {
				if c < 0 || int(c) >= len(t.Nodes) || c == NodeID(i) {
					errs = append(errs, fmt.Errorf("node %d (%q): child %d out of range",
						i, n.Path, c))
				}
			}
		case NodeLeaf:
			if err := validateLeaf(n, eps); err != nil {
				errs = append(errs, fmt.Errorf("node %d (%q): %w", i, n.Path, err))
			}
		default:
			errs = append(errs, fmt.Errorf("node %d (%q) is %s", i, n.Path, n.Kind))
		}
	}
	return errors.Join(errs...)
}

func validateLeaf(n *Node, eps float64) error {
	cnt := len(n.Edges)
	if cnt < 3 {
		return fmt.Errorf("leaf has %d edges", cnt)
	}
	for i, e := range n.Edges {
		next := n.Edges[(i+1)%cnt]
		if e.EndVertex != next.StartVertex {
			return fmt.Errorf("edge %d ends at vertex %d, edge %d starts at %d",
				i, e.EndVertex, (i+1)%cnt, next.StartVertex)
		}
		if rot := Turn(e.Start, e.End, next.End, eps); rot == RotationLeft {
			return fmt.Errorf("edge %d turns %s into edge %d", i, rot, (i+1)%cnt)
		}
	}
	if o := n.Ring().Orientation(); o != orb.CW {
		return fmt.Errorf("leaf ring is not clockwise (orientation %d)", o)
	}
	return nil
}
