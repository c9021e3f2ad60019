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

// Package render turns a replacement result into a file write, a diff
// preview, or a highlighted output line.
package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/walteh/fnr/pkg/diff"
	"github.com/walteh/fnr/pkg/log"
	"github.com/walteh/fnr/pkg/pattern"
	"github.com/walteh/fnr/pkg/termcap"
	"github.com/walteh/fnr/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// Mode selects what happens to a changed file.
type Mode int

const (
	// ModePreview prints a diff and leaves the file alone
	ModePreview Mode = iota
	// ModeApply overwrites the file
	ModeApply
)

// Style selects the diff layout used in preview mode.
type Style int

const (
	// StyleContext groups changes into hunks with context and inline emphasis
	StyleContext Style = iota
	// StyleChangesOnly lists changed lines only
	StyleChangesOnly
)

// 🔧 Options configures a Renderer
type Options struct {
	Mode    Mode
	Style   Style
	Context int
	Caps    termcap.Capabilities
}

// ❌ WriteError is returned when a changed file cannot be written back.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

type palette struct {
	header  *color.Color
	hunk    *color.Color
	del     *color.Color
	ins     *color.Color
	delEmph *color.Color
	insEmph *color.Color
	match   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		header:  color.New(color.Bold),
		hunk:    color.New(color.FgCyan),
		del:     color.New(color.FgRed),
		ins:     color.New(color.FgGreen),
		delEmph: color.New(color.FgRed, color.Bold, color.Underline),
		insEmph: color.New(color.FgGreen, color.Bold, color.Underline),
		match:   color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.header, p.hunk, p.del, p.ins, p.delEmph, p.insEmph, p.match} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// 🎨 Renderer writes or previews changes. It holds no per-item state.
type Renderer struct {
	out    io.Writer
	opts   Options
	colors palette
}

// 🏭 New creates a Renderer that prints to out. Writes are reported to the
// status logger carried by the context passed to Render.
func New(out io.Writer, opts Options) *Renderer {
	if opts.Context <= 0 {
		opts.Context = diff.DefaultContext
	}
	return &Renderer{
		out:    out,
		opts:   opts,
		colors: newPalette(opts.Caps.Color),
	}
}

// Render handles one file's result. Unmodified results produce no output and
// no write.
func (r *Renderer) Render(ctx context.Context, path string, cs *text.ReplacementResult) (log.FileStatus, error) {
	if !cs.WasModified {
		return log.FileUnchanged, nil
	}

	switch r.opts.Mode {
	case ModeApply:
		if err := writeBack(path, cs.ModifiedContent); err != nil {
			return log.FileUnchanged, err
		}
		log.FromContext(ctx).LogFileOperation(ctx, log.FileOperation{
			Path:         path,
			Status:       log.FileChanged,
			Replacements: cs.ReplacementCount,
		})
		return log.FileChanged, nil
	case ModePreview:
		if err := r.preview(path, string(cs.OriginalContent), string(cs.ModifiedContent)); err != nil {
			return log.FileUnchanged, errors.Errorf("printing diff for %s: %w", path, err)
		}
		log.FromContext(ctx).LogFileOperation(ctx, log.FileOperation{
			Path:         path,
			Status:       log.FilePreviewed,
			Replacements: cs.ReplacementCount,
		})
		return log.FilePreviewed, nil
	}
	return log.FileUnchanged, errors.Errorf("unknown render mode %d", r.opts.Mode)
}

// writeBack truncates and rewrites an existing file, keeping its permissions.
func writeBack(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WithStack(&WriteError{Path: path, Err: err})
	}
	return nil
}

func (r *Renderer) preview(name, before, after string) error {
	var b strings.Builder

	b.WriteString(r.colors.header.Sprintf("--- a/%s", name))
	b.WriteByte('\n')
	b.WriteString(r.colors.header.Sprintf("+++ b/%s", name))
	b.WriteByte('\n')

	lines := diff.Lines(before, after)
	switch r.opts.Style {
	case StyleChangesOnly:
		r.writeChangesOnly(&b, lines)
	default:
		r.writeHunks(&b, diff.Hunks(lines, r.opts.Context))
	}

	_, err := io.WriteString(r.out, b.String())
	return err
}

func (r *Renderer) writeChangesOnly(b *strings.Builder, lines []diff.Line) {
	for _, l := range lines {
		switch l.Op {
		case diff.OpEqual:
			continue
		case diff.OpDelete:
			b.WriteString(r.colors.del.Sprint("-" + l.Text))
		case diff.OpInsert:
			b.WriteString(r.colors.ins.Sprint("+" + l.Text))
		}
		b.WriteByte('\n')
	}
}

func (r *Renderer) writeHunks(b *strings.Builder, hunks []diff.Hunk) {
	for _, h := range hunks {
		b.WriteString(r.colors.hunk.Sprint(h.Header()))
		b.WriteByte('\n')

		lines := h.Lines
		for i := 0; i < len(lines); {
			if lines[i].Op == diff.OpEqual {
				r.writeLine(b, lines[i], []diff.Span{{Text: lines[i].Text}})
				i++
				continue
			}

			// a block of deletions followed by the insertions replacing it
			j := i
			for j < len(lines) && lines[j].Op == diff.OpDelete {
				j++
			}
			k := j
			for k < len(lines) && lines[k].Op == diff.OpInsert {
				k++
			}

			del, ins := diff.Inline(lines[i:j], lines[j:k])
			for n, l := range lines[i:j] {
				r.writeLine(b, l, del[n])
			}
			for n, l := range lines[j:k] {
				r.writeLine(b, l, ins[n])
			}
			i = k
		}
	}
}

func (r *Renderer) writeLine(b *strings.Builder, l diff.Line, spans []diff.Span) {
	var sign, emph *color.Color
	switch l.Op {
	case diff.OpEqual:
		b.WriteString(l.Op.Sign())
	case diff.OpDelete:
		sign, emph = r.colors.del, r.colors.delEmph
	case diff.OpInsert:
		sign, emph = r.colors.ins, r.colors.insEmph
	}

	if sign != nil {
		b.WriteString(sign.Sprint(l.Op.Sign()))
	}
	for _, s := range spans {
		if s.Emphasized && emph != nil {
			b.WriteString(emph.Sprint(s.Text))
			continue
		}
		b.WriteString(s.Text)
	}
	b.WriteByte('\n')

	if l.NoNewline {
		b.WriteString("\\ No newline at end of file\n")
	}
}

// RenderLine prints one transformed standard input line, highlighting the
// replacement text when color is enabled.
func (r *Renderer) RenderLine(rep pattern.Replacement) error {
	var b strings.Builder
	b.Grow(len(rep.Text) + 1)

	last := 0
	for _, s := range rep.Spans {
		b.WriteString(rep.Text[last:s.Start])
		if s.End > s.Start {
			b.WriteString(r.colors.match.Sprint(rep.Text[s.Start:s.End]))
		}
		last = s.End
	}
	b.WriteString(rep.Text[last:])
	b.WriteByte('\n')

	if _, err := io.WriteString(r.out, b.String()); err != nil {
		return errors.Errorf("writing line: %w", err)
	}
	return nil
}
