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

// Package termcap takes a one-time snapshot of what the terminal supports.
package termcap

import (
	"os"

	"github.com/mattn/go-isatty"
	"gitlab.com/tozd/go/errors"
)

// ColorMode is the user's color preference.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a --color value.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(s); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	case "":
		return ColorAuto, nil
	}
	return "", errors.Errorf("invalid color mode %q: must be one of auto, always, never", s)
}

// Capabilities is read once at startup and passed to whoever renders.
// Nothing downstream should query the terminal again.
type Capabilities struct {
	// StdinPiped is set when standard input is not an interactive terminal
	StdinPiped bool

	// StdoutTerminal is set when standard output is an interactive terminal
	StdoutTerminal bool

	// Color enables ANSI styling on standard output
	Color bool

	// StatusColor enables ANSI styling of status notices on standard error
	StatusColor bool
}

// streams records which standard streams are interactive terminals.
type streams struct {
	stdin, stdout, stderr bool
}

// Detect inspects the process's standard streams.
func Detect(mode ColorMode) Capabilities {
	tty := streams{
		stdin:  isTerminal(os.Stdin),
		stdout: isTerminal(os.Stdout),
		stderr: isTerminal(os.Stderr),
	}
	return detect(tty, noColorEnv(), mode)
}

func detect(tty streams, noColor bool, mode ColorMode) Capabilities {
	caps := Capabilities{
		StdinPiped:     !tty.stdin,
		StdoutTerminal: tty.stdout,
	}

	switch mode {
	case ColorAlways:
		caps.Color = true
		caps.StatusColor = true
	case ColorNever:
	default:
		caps.Color = tty.stdout && !noColor
		caps.StatusColor = tty.stderr && !noColor
	}
	return caps
}

// noColorEnv follows https://no-color.org and TERM=dumb.
func noColorEnv() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	return os.Getenv("TERM") == "dumb"
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Plain is a snapshot with no terminal and no color, used in tests and when
// output is redirected.
func Plain() Capabilities {
	return Capabilities{}
}
