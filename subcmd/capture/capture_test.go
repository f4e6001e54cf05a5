// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package capture

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/compdb/compdb"
	"go.chromium.org/infra/build/compdb/intercept"
)

// fakeLib writes a file standing in for the interception library, so
// CheckLibrary passes. The dynamic linker ignores a preload it cannot
// load, so the build command still runs.
func fakeLib(t *testing.T) string {
	t.Helper()
	lib := filepath.Join(t.TempDir(), "libcompdbtrace.so")
	err := os.WriteFile(lib, []byte("not a real library"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	return lib
}

func newCaptureRun(t *testing.T, dbPath, traceLib string, build ...string) *captureRun {
	t.Helper()
	c := &captureRun{}
	c.init()
	err := c.Flags.Parse(append([]string{"-o", dbPath, "-trace_lib", traceLib, "--"}, build...))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no sh on windows")
	}
	ctx := context.Background()
	srcDir := t.TempDir()
	aC := filepath.Join(srcDir, "a.c")
	err := os.WriteFile(aC, []byte("int main() { return 0; }\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	// the build script plays the role of the interception library and
	// writes one trace file for a compile of a.c.
	// \036 and \037 are the record and unit separators.
	script := fmt.Sprintf(`printf '9\0361\036execve\036%s\036cc\037-c\037a.c\037' > "$%s/cmd.9"`, srcDir, intercept.EnvOutput)
	dbPath := filepath.Join(t.TempDir(), "compile_commands.json")
	c := newCaptureRun(t, dbPath, fakeLib(t), "sh", "-c", script)

	exitCode, err := c.run(ctx)
	if err != nil {
		t.Fatalf("run=%v; want nil", err)
	}
	if exitCode != 0 {
		t.Errorf("exitCode=%d; want 0", exitCode)
	}

	got, err := compdb.Load(ctx, dbPath)
	if err != nil {
		t.Fatalf("Load=%v; want nil", err)
	}
	want := []compdb.Entry{
		{
			Command:   "cc -c a.c",
			Directory: srcDir,
			File:      aC,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("database: diff -want +got:\n%s", diff)
	}
}

func TestRunBuildFailed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no sh on windows")
	}
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "compile_commands.json")
	c := newCaptureRun(t, dbPath, fakeLib(t), "sh", "-c", "exit 7")

	exitCode, err := c.run(ctx)
	if err != nil {
		t.Fatalf("run=%v; want nil", err)
	}
	// the build's exit code propagates, and collection still ran.
	if exitCode != 7 {
		t.Errorf("exitCode=%d; want 7", exitCode)
	}
	got, err := compdb.Load(ctx, dbPath)
	if err != nil {
		t.Fatalf("Load=%v; want nil", err)
	}
	if len(got) != 0 {
		t.Errorf("database=%v; want no entries", got)
	}
}

func TestRunNoBuildCommand(t *testing.T) {
	ctx := context.Background()
	c := &captureRun{}
	c.init()
	err := c.Flags.Parse([]string{"-trace_lib", fakeLib(t)})
	if err != nil {
		t.Fatal(err)
	}
	exitCode, err := c.run(ctx)
	if !errors.Is(err, flag.ErrHelp) {
		t.Errorf("run=%v; want %v", err, flag.ErrHelp)
	}
	if exitCode != 2 {
		t.Errorf("exitCode=%d; want 2", exitCode)
	}
}

func TestRunMissingLibrary(t *testing.T) {
	ctx := context.Background()
	c := &captureRun{}
	c.init()
	err := c.Flags.Parse([]string{"-trace_lib", filepath.Join(t.TempDir(), "no_such.so"), "--", "sh", "-c", "true"})
	if err != nil {
		t.Fatal(err)
	}
	exitCode, err := c.run(ctx)
	if err == nil {
		t.Error("run=nil; want error")
	}
	// reported before the build is attempted.
	if exitCode != 2 {
		t.Errorf("exitCode=%d; want 2", exitCode)
	}
}
