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

package main

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/fnr/pkg/config"
	"github.com/walteh/fnr/pkg/log"
	"github.com/walteh/fnr/pkg/operation"
	"github.com/walteh/fnr/pkg/pattern"
	"github.com/walteh/fnr/pkg/render"
	"github.com/walteh/fnr/pkg/source"
	"github.com/walteh/fnr/pkg/termcap"
	"github.com/walteh/fnr/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// streams are the process's standard streams, swapped out in tests
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// detectFunc takes the terminal snapshot; tests pass a fixed one
type detectFunc func(termcap.ColorMode) termcap.Capabilities

// newRootCmd creates the fnr command
func newRootCmd(std streams, detect detectFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fnr <find> <replace_with> [files...]",
		Short: "Find and replace text in files or standard input",
		Long: `fnr replaces every match of <find> with <replace_with>.

Where the text comes from:
  files named on the command line   each file is processed in order
  piped standard input              each line is transformed and printed
  neither                           the current directory is walked,
                                    honoring .gitignore and .ignore files

Files are only previewed as a diff unless --force is given.
<replace_with> may reference capture groups as $1, $12 or ${name}.`,
		Args:          cobra.MinimumNArgs(2),
		Version:       FormatVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.NewViper(cmd.Flags())
			if err != nil {
				return err
			}

			ctx := setupLogging(cmd.Context(), std.err, v.GetBool(config.FlagDebug))

			opts, err := config.Resolve(ctx, v, cmd.Flags(), args)
			if err != nil {
				return err
			}

			return run(ctx, opts, std, detect(opts.Color))
		},
	}

	cmd.SetIn(std.in)
	cmd.SetOut(std.out)
	cmd.SetErr(std.err)
	config.AddFlags(cmd.Flags())

	return cmd
}

// setupLogging configures zerolog based on flags
func setupLogging(ctx context.Context, w io.Writer, debug bool) context.Context {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(level).
		With().Timestamp().Logger()
	return logger.WithContext(ctx)
}

// run compiles the pattern and template once, then hands every work item to
// the runner.
func run(ctx context.Context, opts *config.Options, std streams, caps termcap.Capabilities) error {
	find, err := pattern.Compile(opts.Find, opts.StringMode)
	if err != nil {
		return err
	}
	tmpl := pattern.Normalize(opts.Replace)

	zerolog.Ctx(ctx).Debug().
		Str("pattern", find.String()).
		Bool("literal", find.Literal()).
		Str("template", string(tmpl)).
		Msg("compiled pattern")

	status := log.New(std.err, *zerolog.Ctx(ctx), caps.StatusColor)
	ctx = log.NewContext(ctx, status)

	renderOpts := render.Options{
		Mode:  render.ModePreview,
		Style: render.StyleContext,
		Caps:  caps,
	}
	if opts.Force {
		renderOpts.Mode = render.ModeApply
	}
	if opts.ChangesOnly {
		renderOpts.Style = render.StyleChangesOnly
	}

	walker, err := source.NewWalker(opts.Walk)
	if err != nil {
		return errors.Errorf("creating walker: %w", err)
	}

	runner, err := operation.New(operation.Options{
		Replacer: text.NewPatternReplacer(find, tmpl),
		Sink:     render.New(std.out, renderOpts),
		Walker:   walker,
		Stdin:    std.in,
		Root:     ".",
	})
	if err != nil {
		return errors.Errorf("creating runner: %w", err)
	}

	mode := source.Classify(len(opts.Files) > 0, caps.StdinPiped)
	return runner.Run(ctx, mode, opts.Files)
}
