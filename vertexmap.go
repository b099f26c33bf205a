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
)

// VertexMap utils go here

// VMAP_BLOCK_SIZE is the side of a grid block, in map units. Blocks are much
// bigger than welding epsilon, so a vertex near a block boundary is stored in
// up to 4 blocks and a lookup only ever needs to inspect one
const VMAP_BLOCK_SIZE = 64.0

type blockKey struct {
	x, y int64
}

// VertexMap welds close-enough vertices into one identity. Unlike ZDBSP's
// grid it is not bounded by the map's extents: blocks are created on demand,
// so intersection vertices slightly outside the bounds need no mitigation
type VertexMap struct {
	Grid     map[blockKey][]VertexID
	Vertices []Point
	Epsilon  float64
}

func CreateVertexMap(epsilon float64) *VertexMap {
	return &VertexMap{
		Grid:    make(map[blockKey][]VertexID),
		Epsilon: epsilon,
	}
}

func (vm *VertexMap) GetBlock(x, y float64) blockKey {
	return blockKey{
		x: int64(math.Floor(x / VMAP_BLOCK_SIZE)),
		y: int64(math.Floor(y / VMAP_BLOCK_SIZE)),
	}
}

// Lookup returns the nearest vertex within epsilon of (x, y), if there is one
func (vm *VertexMap) Lookup(x, y float64) (VertexID, bool) {
	return vm.nearest(x, y, vm.Epsilon)
}

// SelectVertexClose returns id of existing vertex within epsilon, or creates
// a new one at exactly (x, y). Inserting the same point twice always returns
// the same id
func (vm *VertexMap) SelectVertexClose(x, y float64) VertexID {
	if id, ok := vm.Lookup(x, y); ok {
		return id
	}
	return vm.insertVertex(x, y)
}

func (vm *VertexMap) insertVertex(x, y float64) VertexID {
	id := VertexID(len(vm.Vertices))
	vm.Vertices = append(vm.Vertices, Point{x, y})
	vm.addToBlocks(id, x, y)
	return id
}

// If a vertex is near a block boundary, then it will be inserted on both
// sides of the boundary so that Lookup can find it by checking in only one
// block.
func (vm *VertexMap) blocksAround(x, y float64) []blockKey {
	eps := vm.Epsilon
	blk := [4]blockKey{vm.GetBlock(x-eps, y-eps),
		vm.GetBlock(x+eps, y-eps),
		vm.GetBlock(x-eps, y+eps),
		vm.GetBlock(x+eps, y+eps)}
	res := make([]blockKey, 0, 4)
	for i := 0; i < 4; i++ {
		dupe := false
		for j := 0; j < i; j++ {
			if blk[j] == blk[i] {
				dupe = true
				break
			}
		}
		if !dupe {
			res = append(res, blk[i])
		}
	}
	return res
}

func (vm *VertexMap) addToBlocks(id VertexID, x, y float64) {
	for _, b := range vm.blocksAround(x, y) {
		vm.Grid[b] = append(vm.Grid[b], id)
	}
}

func (vm *VertexMap) removeFromBlocks(id VertexID, x, y float64) {
	for _, b := range vm.blocksAround(x, y) {
		list := vm.Grid[b]
		for i, other := range list {
			if other == id {
				vm.Grid[b] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
}

// Move relocates an existing vertex. It is refused, returning false, when the
// new position is within epsilon of another vertex, so vertices stay apart
func (vm *VertexMap) Move(id VertexID, x, y float64) bool {
	p := Point{x, y}
	for _, other := range vm.Grid[vm.GetBlock(x, y)] {
		if other != id && vm.Vertices[other].Dist(p) <= vm.Epsilon {
			return false
		}
	}
	old := vm.Vertices[id]
	vm.removeFromBlocks(id, old.X, old.Y)
	vm.Vertices[id] = p
	vm.addToBlocks(id, x, y)
	return true
}

// nearest returns the closest vertex within tolerance of (x, y). tol must not
// exceed Epsilon
func (vm *VertexMap) nearest(x, y, tol float64) (VertexID, bool) {
	p := Point{x, y}
	best, bestDist := NoVertex, math.Inf(1)
	for _, id := range vm.Grid[vm.GetBlock(x, y)] {
		if d := vm.Vertices[id].Dist(p); d <= tol && d < bestDist {
			best, bestDist = id, d
		}
	}
	return best, best != NoVertex
}

func (vm *VertexMap) Len() int {
	return len(vm.Vertices)
}
