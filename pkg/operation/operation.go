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

// Package operation runs one find/replace invocation over its work items.
package operation

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/walteh/fnr/pkg/log"
	"github.com/walteh/fnr/pkg/pattern"
	"github.com/walteh/fnr/pkg/source"
	"github.com/walteh/fnr/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🔄 Replacer transforms whole files and single lines
type Replacer interface {
	text.TextReplacer
	ReplaceLine(line string) pattern.Replacement
}

// 🎨 Sink receives the outcome of each work item
type Sink interface {
	// Render writes or previews a file result
	Render(ctx context.Context, path string, cs *text.ReplacementResult) (log.FileStatus, error)
	// RenderLine prints one transformed stdin line
	RenderLine(rep pattern.Replacement) error
}

// 🚶 Walker enumerates files under a directory
type Walker interface {
	Walk(ctx context.Context, root string, fn func(path string) error) error
}

// 🔧 Options contains the collaborators for a run
type Options struct {
	// Replacer holds the compiled pattern and normalized template
	Replacer Replacer
	// Sink writes, previews and prints
	Sink Sink
	// Walker is used when no files are named and stdin is a terminal
	Walker Walker
	// Stdin is read in ModeStdin
	Stdin io.Reader
	// Root is the directory walked in ModeWalk
	Root string
}

// 🏃 Runner processes work items one at a time
type Runner struct {
	opts Options
}

// 🏭 New creates a new runner with the given options
func New(opts Options) (*Runner, error) {
	if opts.Replacer == nil {
		return nil, errors.Errorf("replacer is required")
	}
	if opts.Sink == nil {
		return nil, errors.Errorf("sink is required")
	}
	if opts.Root == "" {
		opts.Root = "."
	}
	return &Runner{opts: opts}, nil
}

// 🏃 Run processes every work item of the given mode. Unreadable files are
// skipped; write failures, stdin failures and cancellation stop the run.
// Skipped and unchanged files are reported to the status logger carried by
// ctx (see log.NewContext).
func (r *Runner) Run(ctx context.Context, mode source.Mode, files []string) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("mode", mode.String()).Int("files", len(files)).Msg("starting run")

	switch mode {
	case source.ModeExplicit:
		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return errors.WithStack(err)
			}
			if err := r.processFile(ctx, path); err != nil {
				return err
			}
		}
		return nil
	case source.ModeStdin:
		if r.opts.Stdin == nil {
			return errors.Errorf("stdin mode requires an input stream")
		}
		return source.Lines(ctx, r.opts.Stdin, func(line string) error {
			return r.opts.Sink.RenderLine(r.opts.Replacer.ReplaceLine(line))
		})
	case source.ModeWalk:
		if r.opts.Walker == nil {
			return errors.Errorf("walk mode requires a walker")
		}
		if err := r.opts.Walker.Walk(ctx, r.opts.Root, func(path string) error {
			return r.processFile(ctx, path)
		}); err != nil {
			return errors.Errorf("walking %s: %w", r.opts.Root, err)
		}
		return nil
	}
	return errors.Errorf("unknown source mode %s", mode)
}

// processFile reads, replaces and renders one file. Read failures, including
// content that is not text, are not errors: the file is logged as skipped and
// the run goes on.
func (r *Runner) processFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		r.skip(ctx, path, err)
		return nil
	}
	defer f.Close()

	result, err := r.opts.Replacer.ReplaceText(ctx, f)
	if err != nil {
		r.skip(ctx, path, err)
		return nil
	}

	status, err := r.opts.Sink.Render(ctx, path, result)
	if err != nil {
		return err
	}

	if status == log.FileUnchanged {
		log.FromContext(ctx).LogFileOperation(ctx, log.FileOperation{
			Path:         path,
			Status:       log.FileUnchanged,
			Replacements: result.ReplacementCount,
		})
	}
	return nil
}

func (r *Runner) skip(ctx context.Context, path string, err error) {
	log.FromContext(ctx).LogFileOperation(ctx, log.FileOperation{
		Path:   path,
		Status: log.FileSkipped,
		Err:    err,
	})
}
