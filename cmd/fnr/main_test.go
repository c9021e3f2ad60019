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
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/fnr/pkg/pattern"
	"github.com/walteh/fnr/pkg/termcap"
	"gitlab.com/tozd/go/errors"
)

type invocation struct {
	args  []string
	stdin io.Reader
	caps  termcap.Capabilities
}

type outcome struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, inv invocation) outcome {
	t.Helper()

	if inv.stdin == nil {
		inv.stdin = strings.NewReader("")
	}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cmd := newRootCmd(streams{in: inv.stdin, out: stdout, err: stderr}, func(termcap.ColorMode) termcap.Capabilities {
		return inv.caps
	})
	cmd.SetArgs(inv.args)

	err := cmd.ExecuteContext(context.Background())
	return outcome{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// chdir moves into dir for the rest of the test
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestFnr_ForceRewritesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "input.txt", "foo123")

	got := execute(t, invocation{args: []string{"-f", `foo(\d+)`, "bar$1", path}})
	require.NoError(t, got.err)

	assert.Equal(t, "bar123", readFile(t, path))
	assert.Empty(t, got.stdout)
	assert.Contains(t, got.stderr, path+": File was changed.")
}

func TestFnr_PreviewPrintsDiff(t *testing.T) {
	path := writeFile(t, t.TempDir(), "input.txt", "foo123\n")

	got := execute(t, invocation{args: []string{`foo(\d+)`, "bar$1", path}})
	require.NoError(t, got.err)

	assert.Equal(t, "foo123\n", readFile(t, path))
	want := "--- a/" + path + "\n" +
		"+++ b/" + path + "\n" +
		"@@ -1 +1 @@\n" +
		"-foo123\n" +
		"+bar123\n"
	assert.Equal(t, want, got.stdout)
	assert.NotContains(t, got.stderr, "File was changed")
}

func TestFnr_ChangesOnlyPreview(t *testing.T) {
	path := writeFile(t, t.TempDir(), "input.txt", "keep\nfoo1\nkeep\n")

	got := execute(t, invocation{args: []string{"--changes-only", "foo", "bar", path}})
	require.NoError(t, got.err)

	assert.Equal(t, "--- a/"+path+"\n+++ b/"+path+"\n-foo1\n+bar1\n", got.stdout)
}

func TestFnr_StdinFilter(t *testing.T) {
	got := execute(t, invocation{
		args:  []string{"-s", "world", "there"},
		stdin: strings.NewReader("hello world\n"),
		caps:  termcap.Capabilities{StdinPiped: true},
	})
	require.NoError(t, got.err)

	assert.Equal(t, "hello there\n", got.stdout)
}

func TestFnr_FilesWinOverStdin(t *testing.T) {
	path := writeFile(t, t.TempDir(), "input.txt", "foo\n")

	got := execute(t, invocation{
		args:  []string{"-f", "foo", "bar", path},
		stdin: strings.NewReader("foo from stdin\n"),
		caps:  termcap.Capabilities{StdinPiped: true},
	})
	require.NoError(t, got.err)

	assert.Equal(t, "bar\n", readFile(t, path))
	assert.Empty(t, got.stdout, "stdin must be ignored when files are named")
}

func TestFnr_InvalidRegexFailsBeforeIO(t *testing.T) {
	path := writeFile(t, t.TempDir(), "input.txt", "(unterminated\n")

	got := execute(t, invocation{args: []string{"-f", "(unterminated", "x", path}})
	require.Error(t, got.err)

	var perr *pattern.Error
	assert.True(t, errors.As(got.err, &perr))
	assert.Contains(t, got.err.Error(), "try using -s")
	assert.Equal(t, "(unterminated\n", readFile(t, path))
	assert.Empty(t, got.stdout)
}

func TestFnr_WalkSkipsBinaryFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "foo\n")
	writeFile(t, dir, "b.bin", "foo\xff\xfe\n")
	writeFile(t, dir, "c.txt", "foo\n")
	chdir(t, dir)

	got := execute(t, invocation{args: []string{"-f", "foo", "bar"}})
	require.NoError(t, got.err)

	assert.Equal(t, "bar\n", readFile(t, filepath.Join(dir, "a.txt")))
	assert.Equal(t, "foo\xff\xfe\n", readFile(t, filepath.Join(dir, "b.bin")))
	assert.Equal(t, "bar\n", readFile(t, filepath.Join(dir, "c.txt")))

	lines := strings.Split(strings.TrimSpace(got.stderr), "\n")
	sort.Strings(lines)
	assert.Equal(t, []string{"a.txt: File was changed.", "c.txt: File was changed."}, lines)
}

func TestFnr_WalkExcludeGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "foo\n")
	writeFile(t, dir, "a.md", "foo\n")
	chdir(t, dir)

	got := execute(t, invocation{args: []string{"-f", "--exclude", "*.md", "foo", "bar"}})
	require.NoError(t, got.err)

	assert.Equal(t, "bar\n", readFile(t, filepath.Join(dir, "a.txt")))
	assert.Equal(t, "foo\n", readFile(t, filepath.Join(dir, "a.md")))
}

func TestFnr_MissingArguments(t *testing.T) {
	got := execute(t, invocation{args: []string{"only-find"}})
	require.Error(t, got.err)
	assert.Contains(t, got.err.Error(), "requires at least 2 arg(s)")
}

func TestFnr_NoChangesIsSuccess(t *testing.T) {
	path := writeFile(t, t.TempDir(), "input.txt", "nothing here\n")

	got := execute(t, invocation{args: []string{"-f", "absent", "x", path}})
	require.NoError(t, got.err)
	assert.Empty(t, got.stdout)
	assert.Empty(t, got.stderr)
}

func TestFnr_DebugDescribesPattern(t *testing.T) {
	got := execute(t, invocation{
		args:  []string{"--debug", "-s", "world", "there"},
		stdin: strings.NewReader("hello world\n"),
		caps:  termcap.Capabilities{StdinPiped: true},
	})
	require.NoError(t, got.err)

	assert.Equal(t, "hello there\n", got.stdout)
	assert.Contains(t, got.stderr, "compiled pattern")
	assert.Contains(t, got.stderr, "literal=true")
	assert.Contains(t, got.stderr, "pattern=world")
}
