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

package pattern

import "strings"

// 📝 Template is a replacement template whose group references are
// brace-delimited. Build one with Normalize.
type Template string

// Normalize rewrites positional group references so that they cannot run
// into neighbouring text: `$1` becomes `${1}` and `$12` becomes `${12}`.
//
// The grammar is a single left-to-right pass:
//
//	\$          copied as is, never a reference
//	$ digits    rewritten to ${digits}, taking the longest digit run
//
// Everything else is copied unchanged. A doubled dollar is not special:
// `$$1` becomes `$${1}`, which expands to the literal text `${1}`.
func Normalize(tmpl string) Template {
	if !strings.Contains(tmpl, "$") {
		return Template(tmpl)
	}

	var b strings.Builder
	b.Grow(len(tmpl) + 8)

	for i := 0; i < len(tmpl); i++ {
		ch := tmpl[i]
		switch {
		case ch == '\\' && i+1 < len(tmpl) && tmpl[i+1] == '$':
			b.WriteString(`\$`)
			i++
		case ch == '$':
			end := i + 1
			for end < len(tmpl) && isDigit(tmpl[end]) {
				end++
			}
			if end == i+1 {
				b.WriteByte('$')
				continue
			}
			b.WriteString("${")
			b.WriteString(tmpl[i+1 : end])
			b.WriteByte('}')
			i = end - 1
		default:
			b.WriteByte(ch)
		}
	}

	return Template(b.String())
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
