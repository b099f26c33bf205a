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

// Log of the compiler. Nothing here is global: a Logger is handed in through
// Config, and a nil Logger discards everything
package mapbsp

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"sync"
)

type Logger struct {
	// Writing to the same slot allows to clobber stuff so that we don't see the
	// same thing written over and over again
	slots []string
	segs  bytes.Buffer
	// Mutex is used to order writes to out and err
	mu        sync.Mutex
	out       *log.Logger
	err       *log.Logger
	verbosity int
	dumpSegs  bool
}

// Logs specific to one branch of the tree. Their output is not forwarded to
// the Logger, but is instead buffered until merged into it. Most of such logs
// are getting discarded altogether: only failed branches are worth reading
// about
type BranchLog struct {
	buf       bytes.Buffer
	segs      bytes.Buffer
	verbosity int
	dumpSegs  bool
}

func NewLogger(out, errOut io.Writer, verbosity int) *Logger {
	return &Logger{
		out:       log.New(out, "", 0),
		err:       log.New(errOut, "", 0),
		verbosity: verbosity,
	}
}

// SetDumpSegs makes branches record their segments, to be retrieved with
// GetDumpedSegs for the branches that failed
func (l *Logger) SetDumpSegs(on bool) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dumpSegs = on
}

func (l *Logger) Verbosity() int {
	if l == nil {
		return -1
	}
	return l.verbosity
}

// Your generic printf to let user see things
func (l *Logger) Printf(s string, a ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Printf(s, a...)
}

// As generic as printf, but writes to error output instead
// Does NOT interrupt execution of the program
func (l *Logger) Error(s string, a ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err.Printf(s, a...)
}

// For advanced users or users that are curious, or programmers, there is
// stuff they might want to see but only when they can really bother to spend
// time reading it
func (l *Logger) Verbose(verbosityLevel int, s string, a ...interface{}) {
	if l == nil || verbosityLevel > l.verbosity {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Printf(s, a...)
}

// Writes to the slot, clobbering whatever was there before us in that same slot
func (l *Logger) Push(slotNumber int, s string, a ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for slotNumber >= len(l.slots) {
		l.slots = append(l.slots, "")
	}
	l.slots[slotNumber] = fmt.Sprintf(s, a...)
}

// Now that slots have been written over multiple times, time to see what was
// written to begin with
func (l *Logger) Flush() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, slot := range l.slots {
		l.out.Print(slot)
	}
	l.slots = nil
}

func (l *Logger) GetDumpedSegs() string {
	if l == nil {
		return ""
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.segs.String()
}

// Branch creates a log for one branch. Returns nil (which discards) if
// logger is nil
func (l *Logger) Branch() *BranchLog {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return &BranchLog{verbosity: l.verbosity, dumpSegs: l.dumpSegs}
}

func (l *Logger) Merge(blog *BranchLog, preface string) {
	if l == nil || blog == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(preface) > 0 {
		l.out.Print(preface)
	}
	content := blog.buf.String()
	if len(content) > 0 {
		l.out.Print(content)
	}
	segs := blog.segs.String()
	if len(segs) > 0 {
		l.segs.WriteString(segs)
	}
}

func (blog *BranchLog) Printf(s string, a ...interface{}) {
	if blog == nil {
		return
	}
	blog.buf.WriteString(fmt.Sprintf(s, a...))
}

func (blog *BranchLog) Verbose(verbosityLevel int, s string, a ...interface{}) {
	if blog == nil || verbosityLevel > blog.verbosity {
		return
	}
	blog.buf.WriteString(fmt.Sprintf(s, a...))
}

// DumpSegs records the segments of the branch, to be seen when branch fails
func (blog *BranchLog) DumpSegs(path string, segs []Segment, vs VertexSource) {
	if blog == nil || !blog.dumpSegs {
		return
	}
	blog.segs.WriteString(fmt.Sprintf("Branch %q:\n", path))
	for _, s := range segs {
		ps, pe := vs.Position(s.Start), vs.Position(s.End)
		if s.IsMiniseg() {
			blog.segs.WriteString(fmt.Sprintf(
				"  Seg %d: miniseg partner %d (%v,%v) - (%v,%v)\n",
				s.ID, s.Partner, ps.X, ps.Y, pe.X, pe.Y))
			continue
		}
		blog.segs.WriteString(fmt.Sprintf(
			"  Seg %d: side %d front %v partner %d (%v,%v) - (%v,%v)\n",
			s.ID, s.Source, s.Front, s.Partner, ps.X, ps.Y, pe.X, pe.Y))
	}
}
