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

// Implements ring buffer (a fixed size power of two queue) of node ids. Not
// intended to be thread-safe or such, just a fast queue for breadth-first
// walks of the tree arena.
// https://www.snellman.net/blog/archive/2016-12-13-ring-buffers/

const MAX_RING_CAPACITY = uint32(2147483648)

// NodeRing performs no overflow or underflow checking for Enqueue's and
// Dequeue's. The caller is responsible to ascertain they don't dequeue an
// empty ring or enqueue a full ring.
type NodeRing struct {
	read     uint32
	write    uint32
	capacity uint32 // never changes after initialization
	buf      []NodeID
}

// The argument capacity is how much data you expect to hold in ring buffer.
// It is upsized automatically to a power of two.
func CreateNodeRing(capacity uint32) *NodeRing {
	iCap := RoundPOW2_Uint32(capacity)
	if iCap < capacity {
		panic(fmt.Sprintf("Integer overflow when computing ring capacity (before rounding up to power of two: %d). Specified capacity clearly exceeds the possible maximum",
			capacity))
	}
	if iCap > MAX_RING_CAPACITY {
		panic(fmt.Sprintf("Exceeds maximum ring capacity: %d (%d rounded up to power of two)",
			iCap, capacity))
	}
	return &NodeRing{
		capacity: iCap,
		buf:      make([]NodeID, iCap),
	}
}

func RoundPOW2_Uint32(x uint32) uint32 {
	if x <= 2 {
		if x == 0 {
			return 1
		}
		return x
	}

	x--

	for tmp := x >> 1; tmp != 0; tmp >>= 1 {
		x |= tmp
	}

	return x + 1
}

func (r *NodeRing) mask(val uint32) uint32 {
	return val & (r.capacity - 1)
}

func (r *NodeRing) Enqueue(item NodeID) {
	r.buf[r.mask(r.write)] = item
	r.write++
}

func (r *NodeRing) Dequeue() NodeID {
	res := r.buf[r.mask(r.read)]
	r.read++
	return res
}

func (r *NodeRing) Empty() bool {
	return r.read == r.write
}

func (r *NodeRing) Size() uint32 {
	return r.write - r.read
}
