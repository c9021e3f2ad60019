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

// Package pattern compiles find expressions and applies replacement templates.
package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🔍 Pattern is a compiled find expression. It is safe for concurrent use.
type Pattern struct {
	re      *regexp.Regexp
	source  string
	literal bool
}

// ❌ Error is returned by Compile when a find expression is not a valid regex.
type Error struct {
	Pattern string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("tried to parse %q as a regex, but failed.\n"+
		"try using -s to interpret <FIND> as a string, or fix your regex.\n\n%v", e.Pattern, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// 🏭 Compile builds a Pattern from find. In literal mode every regex
// metacharacter is escaped, so the pattern only matches find itself.
func Compile(find string, literal bool) (*Pattern, error) {
	expr := find
	if literal {
		expr = regexp.QuoteMeta(find)
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		if literal {
			// QuoteMeta output always compiles
			return nil, errors.Errorf("compiling literal pattern %q: %w", find, err)
		}
		return nil, errors.WithStack(&Error{Pattern: find, Err: err})
	}

	return &Pattern{re: re, source: find, literal: literal}, nil
}

// String returns the find expression as the user wrote it.
func (p *Pattern) String() string {
	return p.source
}

// Literal reports whether the pattern was compiled in literal mode.
func (p *Pattern) Literal() bool {
	return p.literal
}

// MatchString reports whether s contains at least one match.
func (p *Pattern) MatchString(s string) bool {
	return p.re.MatchString(s)
}

// Span is a half-open byte range [Start, End).
type Span struct {
	Start int
	End   int
}

// 🔄 Replacement is the outcome of applying a template to one input.
type Replacement struct {
	// Text is the input with every match replaced
	Text string

	// Spans locate the expanded replacement text inside Text
	Spans []Span

	// Count is the number of matches replaced
	Count int
}

// Replace substitutes every match in src with tmpl, expanding group
// references. The output matches regexp.ReplaceAllString.
func (p *Pattern) Replace(src string, tmpl Template) Replacement {
	matches := p.re.FindAllStringSubmatchIndex(src, -1)
	if len(matches) == 0 {
		return Replacement{Text: src}
	}

	var b strings.Builder
	b.Grow(len(src))

	spans := make([]Span, 0, len(matches))
	last := 0
	var buf []byte
	for _, m := range matches {
		b.WriteString(src[last:m[0]])

		buf = p.re.ExpandString(buf[:0], string(tmpl), src, m)
		start := b.Len()
		b.Write(buf)
		spans = append(spans, Span{Start: start, End: b.Len()})

		last = m[1]
	}
	b.WriteString(src[last:])

	return Replacement{
		Text:  b.String(),
		Spans: spans,
		Count: len(matches),
	}
}
