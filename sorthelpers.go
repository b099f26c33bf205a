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

// sorthelpers
package mapbsp

// Implementations of sort.Interface for plain id slices go here.
// Note: don't add implementations of sort.Interface of structured types, keep
// those in the file where those are declared

type SegmentIDSlice []SegmentID

func (x SegmentIDSlice) Len() int           { return len(x) }
func (x SegmentIDSlice) Less(i, j int) bool { return x[i] < x[j] }
func (x SegmentIDSlice) Swap(i, j int)      { x[i], x[j] = x[j], x[i] }

type VertexIDSlice []VertexID

func (x VertexIDSlice) Len() int           { return len(x) }
func (x VertexIDSlice) Less(i, j int) bool { return x[i] < x[j] }
func (x VertexIDSlice) Swap(i, j int)      { x[i], x[j] = x[j], x[i] }
