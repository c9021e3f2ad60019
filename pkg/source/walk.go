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

package source

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/boyter/gocodewalker"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🔧 WalkOptions controls which files a directory walk visits
type WalkOptions struct {
	// Include keeps only files matching at least one glob (when set)
	Include []string
	// Exclude drops files matching any glob
	Exclude []string
	// Hidden visits dot files and dot directories
	Hidden bool
	// NoIgnore disregards .gitignore and .ignore files
	NoIgnore bool
}

// ValidateGlobs reports the first glob that doublestar cannot parse.
func ValidateGlobs(globs []string) error {
	for _, g := range globs {
		if !doublestar.ValidatePattern(g) {
			return errors.Errorf("invalid glob pattern %q", g)
		}
	}
	return nil
}

// 🚶 Walker enumerates the regular files under a directory, honoring ignore
// files the way git does.
type Walker struct {
	opts WalkOptions
}

// NewWalker validates the glob filters and returns a Walker.
func NewWalker(opts WalkOptions) (*Walker, error) {
	if err := ValidateGlobs(opts.Include); err != nil {
		return nil, errors.Errorf("include: %w", err)
	}
	if err := ValidateGlobs(opts.Exclude); err != nil {
		return nil, errors.Errorf("exclude: %w", err)
	}
	return &Walker{opts: opts}, nil
}

// Walk calls fn for every selected file under root, one at a time, in the
// order the walker finds them. When fn fails or ctx is cancelled the walker is
// terminated, what it already queued is drained without calling fn again, and
// the error is returned.
func (w *Walker) Walk(ctx context.Context, root string, fn func(path string) error) error {
	logger := zerolog.Ctx(ctx)

	queue := make(chan *gocodewalker.File, 64)
	fw := gocodewalker.NewFileWalker(root, queue)
	fw.IncludeHidden = w.opts.Hidden
	fw.IgnoreGitIgnore = w.opts.NoIgnore
	fw.IgnoreIgnoreFile = w.opts.NoIgnore
	fw.SetErrorHandler(func(err error) bool {
		logger.Debug().Err(err).Msg("skipping unreadable path during walk")
		return true
	})

	stop := context.AfterFunc(ctx, fw.Terminate)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := fw.Start(); err != nil && !errors.Is(err, gocodewalker.ErrTerminateWalk) {
			return errors.Errorf("walking %s: %w", root, err)
		}
		return nil
	})

	g.Go(func() error {
		var failed error
		fail := func(err error) {
			failed = err
			fw.Terminate()
		}

		for f := range queue {
			if failed != nil {
				continue
			}
			if err := gctx.Err(); err != nil {
				fail(errors.WithStack(err))
				continue
			}

			ok, err := w.selected(root, f.Location)
			if err != nil {
				fail(err)
				continue
			}
			if !ok {
				logger.Trace().Str("file", f.Location).Msg("filtered out")
				continue
			}

			if err := fn(f.Location); err != nil {
				fail(err)
			}
		}
		return failed
	})

	if err := g.Wait(); err != nil {
		return err
	}
	// a cancelled walk may end before anything reached the consumer
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// selected applies the regular-file check and the glob filters.
func (w *Walker) selected(root, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false, nil
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false, errors.Errorf("relative path of %s: %w", path, err)
	}
	rel = filepath.ToSlash(rel)

	if len(w.opts.Include) > 0 {
		matched, err := matchAny(w.opts.Include, rel)
		if err != nil || !matched {
			return false, err
		}
	}

	excluded, err := matchAny(w.opts.Exclude, rel)
	if err != nil {
		return false, err
	}
	return !excluded, nil
}

func matchAny(globs []string, rel string) (bool, error) {
	for _, g := range globs {
		matched, err := doublestar.Match(g, rel)
		if err != nil {
			return false, errors.Errorf("matching glob %q: %w", g, err)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}
