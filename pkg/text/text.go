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

// Package text applies a compiled find pattern to whole documents.
package text

import (
	"bytes"
	"context"
	"io"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/walteh/fnr/pkg/pattern"
	"gitlab.com/tozd/go/errors"
)

// ErrNotText is returned when content is not valid UTF-8.
var ErrNotText = errors.Base("content is not valid utf-8 text")

// ReplacementResult contains the results of a text replacement operation
type ReplacementResult struct {
	// WasModified indicates the modified content differs from the original
	WasModified bool

	// ReplacementCount is the number of replacements made
	ReplacementCount int

	// OriginalContent is the content before replacements
	OriginalContent []byte

	// ModifiedContent is the content after replacements
	ModifiedContent []byte

	// Spans locate the replacement text inside ModifiedContent
	Spans []pattern.Span
}

// TextReplacer defines the interface for text replacement operations
type TextReplacer interface {
	// ReplaceText reads all of content and applies the replacement to it
	ReplaceText(ctx context.Context, content io.Reader) (*ReplacementResult, error)

	// ReplaceBytes applies the replacement to content
	ReplaceBytes(ctx context.Context, content []byte) (*ReplacementResult, error)
}

// PatternReplacer implements TextReplacer with a compiled pattern and a
// normalized template. Both are computed once and shared by every call.
type PatternReplacer struct {
	find *pattern.Pattern
	tmpl pattern.Template
}

var _ TextReplacer = (*PatternReplacer)(nil)

// NewPatternReplacer creates a new PatternReplacer
func NewPatternReplacer(find *pattern.Pattern, tmpl pattern.Template) *PatternReplacer {
	return &PatternReplacer{find: find, tmpl: tmpl}
}

// ReplaceText implements TextReplacer.ReplaceText
func (r *PatternReplacer) ReplaceText(ctx context.Context, content io.Reader) (*ReplacementResult, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}
	return r.ReplaceBytes(ctx, data)
}

// ReplaceBytes implements TextReplacer.ReplaceBytes
func (r *PatternReplacer) ReplaceBytes(ctx context.Context, content []byte) (*ReplacementResult, error) {
	if !utf8.Valid(content) {
		return nil, errors.WithStack(ErrNotText)
	}

	src := string(content)
	if !r.find.MatchString(src) {
		return &ReplacementResult{OriginalContent: content, ModifiedContent: content}, nil
	}

	rep := r.find.Replace(src, r.tmpl)
	modified := []byte(rep.Text)

	result := &ReplacementResult{
		OriginalContent:  content,
		ModifiedContent:  modified,
		ReplacementCount: rep.Count,
		Spans:            rep.Spans,
		WasModified:      !bytes.Equal(content, modified),
	}

	zerolog.Ctx(ctx).Trace().
		Int("replacements", result.ReplacementCount).
		Bool("modified", result.WasModified).
		Msg("applied replacement")

	return result, nil
}

// ReplaceLine applies the replacement to a single line of text.
func (r *PatternReplacer) ReplaceLine(line string) pattern.Replacement {
	return r.find.Replace(line, r.tmpl)
}
