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

// Package log writes user-facing status notices and mirrors them to zerolog.
package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎯 FileStatus is what happened to one work item
type FileStatus int

const (
	FileChanged   FileStatus = iota // content was rewritten in place
	FilePreviewed                   // a diff was printed
	FileUnchanged                   // nothing matched, or the result was identical
	FileSkipped                     // the file could not be read as text
)

func (s FileStatus) String() string {
	switch s {
	case FileChanged:
		return "changed"
	case FilePreviewed:
		return "previewed"
	case FileUnchanged:
		return "unchanged"
	case FileSkipped:
		return "skipped"
	}
	return fmt.Sprintf("FileStatus(%d)", int(s))
}

// 🎯 FileOperation represents a file operation for logging
type FileOperation struct {
	Path         string     // File path as shown to the user
	Status       FileStatus // Outcome
	Replacements int        // Number of replacements made
	Err          error      // Why the file was skipped
}

// 🎯 Logger writes status notices to the console (standard error) and
// structured events to zerolog. Notices never go to standard output so
// piped output stays clean.
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex

	pathColor *color.Color
}

// 🏭 New creates a new logger. colorize comes from the terminal snapshot
// taken at startup.
func New(console io.Writer, zlog zerolog.Logger, colorize bool) *Logger {
	l := &Logger{
		zlog:      zlog,
		console:   console,
		pathColor: color.New(color.FgCyan),
	}
	if colorize {
		l.pathColor.EnableColor()
	} else {
		l.pathColor.DisableColor()
	}
	return l
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 LogFileOperation records what happened to a file. Only rewrites are
// shown on the console; everything else is a debug event.
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if op.Status == FileChanged {
		fmt.Fprintf(l.console, "%s: File was changed.\n", l.pathColor.Sprint(op.Path))
	}

	l.zlog.Debug().
		Str("file", op.Path).
		Str("status", op.Status.String()).
		Int("replacements", op.Replacements).
		AnErr("reason", op.Err).
		Msg("file operation")
}
