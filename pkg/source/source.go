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

// Package source decides where work items come from and produces them.
package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

// Mode is where a run takes its work items from.
type Mode int

const (
	// ModeExplicit processes the files named on the command line
	ModeExplicit Mode = iota
	// ModeStdin filters standard input line by line
	ModeStdin
	// ModeWalk walks the working directory
	ModeWalk
)

func (m Mode) String() string {
	switch m {
	case ModeExplicit:
		return "explicit"
	case ModeStdin:
		return "stdin"
	case ModeWalk:
		return "walk"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Classify picks the source. Named files win over piped input, and piped
// input wins over walking the directory.
func Classify(hasFiles, stdinPiped bool) Mode {
	switch {
	case hasFiles:
		return ModeExplicit
	case stdinPiped:
		return ModeStdin
	default:
		return ModeWalk
	}
}

// ❌ StdinError is returned when standard input cannot be read as text.
type StdinError struct {
	Line int
	Err  error
}

func (e *StdinError) Error() string {
	return fmt.Sprintf("reading standard input line %d: %v", e.Line, e.Err)
}

func (e *StdinError) Unwrap() error {
	return e.Err
}

var errInvalidUTF8 = errors.Base("stream did not contain valid utf-8")

// Lines calls fn for every line of r, in order, with the line terminator
// (`\n` or `\r\n`) removed. Only one line is held in memory at a time.
func Lines(ctx context.Context, r io.Reader, fn func(line string) error) error {
	br := bufio.NewReader(r)
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return errors.WithStack(err)
		}

		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return errors.WithStack(&StdinError{Line: n, Err: err})
		}
		if line == "" && err != nil {
			return nil
		}

		if trimmed, ok := strings.CutSuffix(line, "\n"); ok {
			line = strings.TrimSuffix(trimmed, "\r")
		}
		if !utf8.ValidString(line) {
			return errors.WithStack(&StdinError{Line: n, Err: errInvalidUTF8})
		}

		if ferr := fn(line); ferr != nil {
			return ferr
		}
		if err != nil {
			return nil
		}
	}
}
