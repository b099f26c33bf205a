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

func TestVertexWelding(t *testing.T) {
	eps := DefaultVertexWeldingEpsilon
	vm := CreateVertexMap(eps)
	a := vm.SelectVertexClose(10, 10)
	test.T(t, vm.SelectVertexClose(10, 10), a)
	test.T(t, vm.SelectVertexClose(10+eps/2, 10-eps/2), a)
	b := vm.SelectVertexClose(10+2*eps, 10)
	test.That(t, a != b, "vertices 2 epsilons apart were welded")
	test.T(t, vm.Len(), 2)
	// welded position is that of the first insertion
	test.T(t, vm.Vertices[a], Point{10, 10})
}

func TestVertexWeldingAcrossBlocks(t *testing.T) {
	eps := DefaultVertexWeldingEpsilon
	vm := CreateVertexMap(eps)
	a := vm.SelectVertexClose(VMAP_BLOCK_SIZE-eps/4, -eps/4)
	test.T(t, vm.SelectVertexClose(VMAP_BLOCK_SIZE+eps/4, eps/4), a)
	_, ok := vm.Lookup(VMAP_BLOCK_SIZE+eps/4, -eps/4)
	test.That(t, ok)
	_, ok = vm.Lookup(VMAP_BLOCK_SIZE, 1)
	test.That(t, !ok)
}

func TestVertexMove(t *testing.T) {
	eps := DefaultVertexWeldingEpsilon
	vm := CreateVertexMap(eps)
	a := vm.SelectVertexClose(1, 1)
	b := vm.SelectVertexClose(VMAP_BLOCK_SIZE-eps/4, 1)
	// onto another vertex
	test.That(t, !vm.Move(a, VMAP_BLOCK_SIZE-eps/2, 1))
	test.T(t, vm.Vertices[a], Point{1, 1})

	// across a block boundary, and out of the blocks it was in
	test.That(t, vm.Move(b, VMAP_BLOCK_SIZE+1, 1))
	id, ok := vm.Lookup(VMAP_BLOCK_SIZE+1, 1)
	test.That(t, ok)
	test.T(t, id, b)
	_, ok = vm.Lookup(VMAP_BLOCK_SIZE-eps/4, 1)
	test.That(t, !ok)
	test.T(t, vm.SelectVertexClose(VMAP_BLOCK_SIZE-eps/4, 1), VertexID(2))
}

func TestLookupPicksNearest(t *testing.T) {
	eps := DefaultVertexWeldingEpsilon
	vm := CreateVertexMap(eps)
	vm.SelectVertexClose(0, 0)
	b := vm.SelectVertexClose(1.5*eps, 0)
	id, ok := vm.Lookup(0.9*eps, 0)
	test.That(t, ok)
	test.T(t, id, b)
}
