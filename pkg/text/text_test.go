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

package text

import (
	"context"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/fnr/pkg/pattern"
	"gitlab.com/tozd/go/errors"
)

func newReplacer(t *testing.T, find string, literal bool, tmpl string) *PatternReplacer {
	t.Helper()
	p, err := pattern.Compile(find, literal)
	require.NoError(t, err)
	return NewPatternReplacer(p, pattern.Normalize(tmpl))
}

func TestPatternReplacer_ReplaceText(t *testing.T) {
	tests := []struct {
		name         string
		find         string
		literal      bool
		tmpl         string
		content      string
		want         string
		wantCount    int
		wantError    string
		wantModified bool
	}{
		{
			name:         "simple_replacement",
			find:         "World",
			literal:      true,
			tmpl:         "Universe",
			content:      "Hello World",
			want:         "Hello Universe",
			wantCount:    1,
			wantModified: true,
		},
		{
			name:         "multiple_replacements",
			find:         "World",
			literal:      true,
			tmpl:         "Universe",
			content:      "Hello World World",
			want:         "Hello Universe Universe",
			wantCount:    2,
			wantModified: true,
		},
		{
			name:         "group_reference",
			find:         `foo(\d+)`,
			tmpl:         "bar$1",
			content:      "foo123\n",
			want:         "bar123\n",
			wantCount:    1,
			wantModified: true,
		},
		{
			name:         "no_match",
			find:         "Goodbye",
			tmpl:         "Hi",
			content:      "Hello World",
			want:         "Hello World",
			wantModified: false,
		},
		{
			name:         "empty_matches_everywhere",
			find:         "x*",
			tmpl:         "-",
			content:      "ab",
			want:         "-a-b-",
			wantCount:    3,
			wantModified: true,
		},
		{
			name:         "match_with_identical_replacement",
			find:         "World",
			tmpl:         "World",
			content:      "Hello World",
			want:         "Hello World",
			wantCount:    1,
			wantModified: false,
		},
		{
			name:         "empty_content",
			find:         "World",
			tmpl:         "Universe",
			content:      "",
			want:         "",
			wantModified: false,
		},
		{
			name:      "binary_content",
			find:      "a",
			tmpl:      "b",
			content:   "a\xff\xfe",
			wantError: "not valid utf-8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replacer := newReplacer(t, tt.find, tt.literal, tt.tmpl)
			result, err := replacer.ReplaceText(context.Background(), strings.NewReader(tt.content))

			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				assert.True(t, errors.Is(err, ErrNotText))
				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.content, string(result.OriginalContent))
			assert.Equal(t, tt.want, string(result.ModifiedContent))
			assert.Equal(t, tt.wantCount, result.ReplacementCount)
			assert.Equal(t, tt.wantModified, result.WasModified)
		})
	}
}

func TestPatternReplacer_ReadFailure(t *testing.T) {
	replacer := newReplacer(t, "a", true, "b")

	_, err := replacer.ReplaceText(context.Background(), iotest.ErrReader(errors.New("is a directory")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
	assert.False(t, errors.Is(err, ErrNotText))
}

func TestPatternReplacer_Idempotent(t *testing.T) {
	replacer := newReplacer(t, `foo(\d+)`, false, "bar$1")

	first, err := replacer.ReplaceBytes(context.Background(), []byte("foo1\nfoo2\n"))
	require.NoError(t, err)
	require.True(t, first.WasModified)

	second, err := replacer.ReplaceBytes(context.Background(), first.ModifiedContent)
	require.NoError(t, err)
	assert.False(t, second.WasModified)
	assert.Equal(t, string(first.ModifiedContent), string(second.ModifiedContent))
}

func TestPatternReplacer_ReplaceLine(t *testing.T) {
	replacer := newReplacer(t, "world", true, "there")

	got := replacer.ReplaceLine("hello world")
	assert.Equal(t, "hello there", got.Text)
	assert.Equal(t, []pattern.Span{{Start: 6, End: 11}}, got.Spans)
}
