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
	"os"
	"os/signal"

	"github.com/pterm/pterm"
	"github.com/walteh/fnr/pkg/termcap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	std := streams{in: os.Stdin, out: os.Stdout, err: os.Stderr}
	rootCmd := newRootCmd(std, termcap.Detect)

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
}

// printError shows a fatal error on standard error
func printError(err error) {
	pterm.Error.WithWriter(os.Stderr).Println(err.Error())
}
