// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package diff computes line and inline differences between two texts.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContext is the number of unchanged lines kept around each change.
const DefaultContext = 3

// Op is the kind of an edit. The set is closed: OpEqual, OpDelete, OpInsert.
type Op int

const (
	OpEqual Op = iota
	OpDelete
	OpInsert
)

func (o Op) String() string {
	switch o {
	case OpEqual:
		return "equal"
	case OpDelete:
		return "delete"
	case OpInsert:
		return "insert"
	}
	panic(fmt.Sprintf("diff: unknown op %d", int(o)))
}

// Sign is the unified diff prefix of the op.
func (o Op) Sign() string {
	switch o {
	case OpEqual:
		return " "
	case OpDelete:
		return "-"
	case OpInsert:
		return "+"
	}
	panic(fmt.Sprintf("diff: unknown op %d", int(o)))
}

func fromDMP(op diffmatchpatch.Operation) Op {
	switch op {
	case diffmatchpatch.DiffEqual:
		return OpEqual
	case diffmatchpatch.DiffDelete:
		return OpDelete
	case diffmatchpatch.DiffInsert:
		return OpInsert
	}
	panic(fmt.Sprintf("diff: unknown diffmatchpatch operation %d", int(op)))
}

// Line is one line of a line-level diff.
type Line struct {
	Op Op

	// Text excludes the line terminator
	Text string

	// NoNewline is set on a final line that had no terminator
	NoNewline bool

	// OldNum and NewNum are 1-based; zero when the line is absent on that side
	OldNum int
	NewNum int
}

// Lines returns the line-level edit script turning before into after.
func Lines(before, after string) []Line {
	dmp := diffmatchpatch.New()
	a, b, index := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffMainRunes(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, index)

	var out []Line
	oldNum, newNum := 0, 0
	for _, d := range diffs {
		op := fromDMP(d.Type)
		for _, raw := range splitLines(d.Text) {
			text, terminated := strings.CutSuffix(raw, "\n")
			l := Line{Op: op, Text: text, NoNewline: !terminated}

			switch op {
			case OpEqual:
				oldNum++
				newNum++
				l.OldNum, l.NewNum = oldNum, newNum
			case OpDelete:
				oldNum++
				l.OldNum = oldNum
			case OpInsert:
				newNum++
				l.NewNum = newNum
			}
			out = append(out, l)
		}
	}
	return out
}

// splitLines splits s after every newline, dropping the empty tail.
func splitLines(s string) []string {
	parts := strings.SplitAfter(s, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// Hunk is a group of changes with surrounding context.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// Header renders the unified diff range line.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%s +%s @@", hunkRange(h.OldStart, h.OldLines), hunkRange(h.NewStart, h.NewLines))
}

func hunkRange(start, count int) string {
	if count == 1 {
		return fmt.Sprintf("%d", start)
	}
	return fmt.Sprintf("%d,%d", start, count)
}

// Hunks groups changed lines with up to context unchanged lines on either
// side. Changes separated by at most 2*context unchanged lines share a hunk.
func Hunks(lines []Line, context int) []Hunk {
	if context < 0 {
		context = 0
	}

	var hunks []Hunk
	i := 0
	for i < len(lines) {
		if lines[i].Op == OpEqual {
			i++
			continue
		}

		start := max(0, i-context)
		end := i
		j := i
		for j < len(lines) {
			if lines[j].Op != OpEqual {
				j++
				end = j
				continue
			}
			k := j
			for k < len(lines) && lines[k].Op == OpEqual {
				k++
			}
			if k < len(lines) && k-j <= 2*context {
				j = k
				continue
			}
			break
		}
		stop := min(len(lines), end+context)

		hunks = append(hunks, newHunk(lines, start, stop))
		i = stop
	}
	return hunks
}

func newHunk(lines []Line, start, stop int) Hunk {
	oldBefore, newBefore := 0, 0
	for _, l := range lines[:start] {
		if l.Op != OpInsert {
			oldBefore++
		}
		if l.Op != OpDelete {
			newBefore++
		}
	}

	h := Hunk{Lines: lines[start:stop]}
	for _, l := range h.Lines {
		if l.Op != OpInsert {
			h.OldLines++
		}
		if l.Op != OpDelete {
			h.NewLines++
		}
	}

	h.OldStart = oldBefore
	if h.OldLines > 0 {
		h.OldStart++
	}
	h.NewStart = newBefore
	if h.NewLines > 0 {
		h.NewStart++
	}
	return h
}

// Span is a run of text inside a line. Emphasized spans are the parts that
// were actually inserted or deleted.
type Span struct {
	Text       string
	Emphasized bool
}

// Inline compares a block of deleted lines with the block of inserted lines
// that replaced it and returns, per line, which spans changed.
func Inline(deleted, inserted []Line) (del, ins [][]Span) {
	before := joinText(deleted)
	after := joinText(inserted)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var oldSpans, newSpans []Span
	for _, d := range diffs {
		switch fromDMP(d.Type) {
		case OpEqual:
			oldSpans = append(oldSpans, Span{Text: d.Text})
			newSpans = append(newSpans, Span{Text: d.Text})
		case OpDelete:
			oldSpans = append(oldSpans, Span{Text: d.Text, Emphasized: true})
		case OpInsert:
			newSpans = append(newSpans, Span{Text: d.Text, Emphasized: true})
		}
	}

	return splitSpans(oldSpans, len(deleted)), splitSpans(newSpans, len(inserted))
}

func joinText(lines []Line) string {
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
	}
	return strings.Join(texts, "\n")
}

// splitSpans breaks spans at newlines into n lines of spans.
func splitSpans(spans []Span, n int) [][]Span {
	out := make([][]Span, n)
	if n == 0 {
		return out
	}

	line := 0
	for _, s := range spans {
		parts := strings.Split(s.Text, "\n")
		for i, p := range parts {
			if i > 0 && line < n-1 {
				line++
			}
			if p != "" {
				out[line] = append(out[line], Span{Text: p, Emphasized: s.Emphasized})
			}
		}
	}
	return out
}
