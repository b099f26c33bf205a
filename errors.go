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
	"strings"
)

var (
	// ErrDegenerateInput means a branch's segment set can't form a closed
	// region
	ErrDegenerateInput = errors.New("degenerate input")
	// ErrWeldingCollision means a cut point welded onto an endpoint of the
	// segment being cut, so the split would produce a zero-length segment
	ErrWeldingCollision = errors.New("welding collision")
	// ErrSplitterNotFound means no candidate scored finite
	ErrSplitterNotFound = errors.New("splitter not found")
)

// BranchFailure is a compile failure localized to one branch of the tree
type BranchFailure struct {
	Path     string // branch path, "" is root
	Err      error
	Segments int // how many segments the branch had
}

func (f BranchFailure) Error() string {
	path := f.Path
	if path == "" {
		path = "<root>"
	}
	return fmt.Sprintf("branch %s (%d segs): %v", path, f.Segments, f.Err)
}

func (f BranchFailure) Unwrap() error {
	return f.Err
}

// CompileError is returned when no tree could be produced
type CompileError struct {
	Failures []BranchFailure
}

func (e *CompileError) Error() string {
	var sb strings.Builder
	sb.WriteString("bsp compile failed")
	for i, f := range e.Failures {
		if i == 0 {
			sb.WriteString(": ")
		} else {
			sb.WriteString("; ")
		}
		sb.WriteString(f.Error())
	}
	return sb.String()
}

func (e *CompileError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f)
	}
	return errs
}

func degenerate(reason string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDegenerateInput, fmt.Sprintf(reason, a...))
}

func splitterNotFound() error {
	return fmt.Errorf("%w: %w", ErrDegenerateInput, ErrSplitterNotFound)
}
