// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package collect

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/compdb/compdb"
	"go.chromium.org/infra/build/compdb/intercept"
)

// writeTrace writes one raw trace file for command run in dir.
func writeTrace(t *testing.T, traceDir, pid, dir string, command []string) {
	t.Helper()
	var sb strings.Builder
	for _, field := range []string{pid, "1", "execve", dir} {
		sb.WriteString(field)
		sb.WriteString("\x1e")
	}
	for _, arg := range command {
		sb.WriteString(arg)
		sb.WriteString("\x1f")
	}
	err := os.WriteFile(filepath.Join(traceDir, intercept.TracePrefix+pid), []byte(sb.String()), 0644)
	if err != nil {
		t.Fatal(err)
	}
}

func writeSource(t *testing.T, dir, name string) string {
	t.Helper()
	fname := filepath.Join(dir, name)
	err := os.WriteFile(fname, []byte("int main() { return 0; }\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	return fname
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	srcDir := t.TempDir()
	traceDir := t.TempDir()
	aC := writeSource(t, srcDir, "a.c")

	// one compiler invocation and one spawned binary; only the former
	// contributes a database entry.
	writeTrace(t, traceDir, "100", srcDir, []string{"cc", "-c", "a.c", "-o", "a.o"})
	writeTrace(t, traceDir, "101", srcDir, []string{filepath.Join(srcDir, "a.out")})

	dbPath := filepath.Join(t.TempDir(), "compile_commands.json")
	c := &collectRun{dir: traceDir, dbPath: dbPath}
	err := c.run(ctx)
	if err != nil {
		t.Fatalf("run=%v; want nil", err)
	}

	got, err := compdb.Load(ctx, dbPath)
	if err != nil {
		t.Fatalf("Load=%v; want nil", err)
	}
	want := []compdb.Entry{
		{
			Command:   "cc -c a.c -o a.o",
			Directory: srcDir,
			File:      aC,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("database: diff -want +got:\n%s", diff)
	}
}

func TestRunAppend(t *testing.T) {
	ctx := context.Background()
	srcDir := t.TempDir()
	traceDir := t.TempDir()
	aC := writeSource(t, srcDir, "a.c")

	dbPath := filepath.Join(t.TempDir(), "compile_commands.json")
	existing := []compdb.Entry{
		{Command: "cc -c a.c -o a.o", Directory: srcDir, File: aC},
	}
	err := compdb.Save(ctx, dbPath, existing)
	if err != nil {
		t.Fatal(err)
	}

	// recompile of the same file with a different compiler alias but
	// otherwise identical arguments; the existing entry wins.
	writeTrace(t, traceDir, "200", srcDir, []string{"clang", "-c", "a.c", "-o", "a.o"})

	c := &collectRun{dir: traceDir, dbPath: dbPath, appendDB: true}
	err = c.run(ctx)
	if err != nil {
		t.Fatalf("run=%v; want nil", err)
	}

	got, err := compdb.Load(ctx, dbPath)
	if err != nil {
		t.Fatalf("Load=%v; want nil", err)
	}
	if diff := cmp.Diff(existing, got); diff != "" {
		t.Errorf("database: diff -want +got:\n%s", diff)
	}
}

func TestRunDeletedSource(t *testing.T) {
	ctx := context.Background()
	srcDir := t.TempDir()
	traceDir := t.TempDir()
	gone := writeSource(t, srcDir, "gone.c")

	writeTrace(t, traceDir, "300", srcDir, []string{"cc", "-c", "gone.c"})
	// the source is deleted between the build and the merge.
	err := os.Remove(gone)
	if err != nil {
		t.Fatal(err)
	}

	dbPath := filepath.Join(t.TempDir(), "compile_commands.json")
	c := &collectRun{dir: traceDir, dbPath: dbPath}
	err = c.run(ctx)
	if err != nil {
		t.Fatalf("run=%v; want nil", err)
	}
	got, err := compdb.Load(ctx, dbPath)
	if err != nil {
		t.Fatalf("Load=%v; want nil", err)
	}
	if len(got) != 0 {
		t.Errorf("database=%v; want no entries", got)
	}
}

func TestRunRaw(t *testing.T) {
	ctx := context.Background()
	srcDir := t.TempDir()
	traceDir := t.TempDir()
	writeTrace(t, traceDir, "400", srcDir, []string{"cc", "-c", "a.c"})

	out := filepath.Join(t.TempDir(), "records.json")
	c := &collectRun{dir: traceDir, dbPath: out, raw: true}
	err := c.run(ctx)
	if err != nil {
		t.Fatalf("run=%v; want nil", err)
	}
	buf, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(buf), `"pid": "400"`) {
		t.Errorf("raw dump does not contain record:\n%s", buf)
	}
}

func TestRunNoDir(t *testing.T) {
	ctx := context.Background()
	c := &collectRun{dbPath: filepath.Join(t.TempDir(), "cdb.json")}
	err := c.run(ctx)
	if err == nil {
		t.Error("run=nil; want error")
	}
}
