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

// Package config resolves command-line flags and FNR_* environment variables
// into the options for one run. There is no configuration file.
package config

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/walteh/fnr/pkg/source"
	"github.com/walteh/fnr/pkg/termcap"
	"gitlab.com/tozd/go/errors"
)

// EnvPrefix prefixes every environment variable, e.g. FNR_FORCE.
const EnvPrefix = "FNR"

// Flag names, shared with the command definition.
const (
	FlagStringMode  = "string-mode"
	FlagForce       = "force"
	FlagChangesOnly = "changes-only"
	FlagColor       = "color"
	FlagInclude     = "include"
	FlagExclude     = "exclude"
	FlagHidden      = "hidden"
	FlagNoIgnore    = "no-ignore"
	FlagDebug       = "debug"
)

// 📚 Options is everything one invocation needs
type Options struct {
	Find    string   // Find expression
	Replace string   // Replacement template, before normalization
	Files   []string // Explicit files; empty means stdin or a walk

	StringMode  bool              // Treat Find as a literal string
	Force       bool              // Write changes instead of previewing
	ChangesOnly bool              // Preview changed lines only
	Color       termcap.ColorMode // auto, always or never
	Debug       bool              // Debug logging

	Walk source.WalkOptions // Directory walk filters
}

// AddFlags registers every option flag on fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.BoolP(FlagStringMode, "s", false, "treat <find> as a literal string instead of a regular expression")
	fs.BoolP(FlagForce, "f", false, "write changes to files instead of printing a diff")
	fs.Bool(FlagChangesOnly, false, "print only changed lines, without context or inline highlighting")
	fs.String(FlagColor, string(termcap.ColorAuto), "color output: auto, always or never")
	fs.StringArray(FlagInclude, nil, "only walk files matching this glob (repeatable)")
	fs.StringArray(FlagExclude, nil, "skip walked files matching this glob (repeatable)")
	fs.Bool(FlagHidden, false, "walk hidden files and directories")
	fs.Bool(FlagNoIgnore, false, "do not honor .gitignore and .ignore files while walking")
	fs.Bool(FlagDebug, false, "enable debug logging")
}

// NewViper binds fs to a viper instance that also reads FNR_* variables.
// Flags set on the command line win over the environment.
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, errors.Errorf("binding flags: %w", err)
	}
	return v, nil
}

// Resolve builds validated Options from positional args, the bound viper
// instance, and the glob flags (read from fs so commas in globs survive).
func Resolve(ctx context.Context, v *viper.Viper, fs *pflag.FlagSet, args []string) (*Options, error) {
	if len(args) < 2 {
		return nil, errors.Errorf("expected <find> <replace_with> [files...], got %d argument(s)", len(args))
	}

	include, err := fs.GetStringArray(FlagInclude)
	if err != nil {
		return nil, errors.Errorf("reading --%s: %w", FlagInclude, err)
	}
	exclude, err := fs.GetStringArray(FlagExclude)
	if err != nil {
		return nil, errors.Errorf("reading --%s: %w", FlagExclude, err)
	}

	color, err := termcap.ParseColorMode(v.GetString(FlagColor))
	if err != nil {
		return nil, errors.Errorf("reading --%s: %w", FlagColor, err)
	}

	opts := &Options{
		Find:        args[0],
		Replace:     args[1],
		Files:       args[2:],
		StringMode:  v.GetBool(FlagStringMode),
		Force:       v.GetBool(FlagForce),
		ChangesOnly: v.GetBool(FlagChangesOnly),
		Color:       color,
		Debug:       v.GetBool(FlagDebug),
		Walk: source.WalkOptions{
			Include:  orNil(include),
			Exclude:  orNil(exclude),
			Hidden:   v.GetBool(FlagHidden),
			NoIgnore: v.GetBool(FlagNoIgnore),
		},
	}

	if err := opts.Validate(); err != nil {
		return nil, errors.Errorf("validating options: %w", err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("find", opts.Find).
		Str("replace", opts.Replace).
		Strs("files", opts.Files).
		Bool("string_mode", opts.StringMode).
		Bool("force", opts.Force).
		Msg("resolved options")

	return opts, nil
}

// ✅ Validate checks option combinations that flag parsing cannot.
func (o *Options) Validate() error {
	if _, err := termcap.ParseColorMode(string(o.Color)); err != nil {
		return err
	}
	if err := source.ValidateGlobs(o.Walk.Include); err != nil {
		return errors.Errorf("--%s: %w", FlagInclude, err)
	}
	if err := source.ValidateGlobs(o.Walk.Exclude); err != nil {
		return errors.Errorf("--%s: %w", FlagExclude, err)
	}
	return nil
}

func orNil(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
