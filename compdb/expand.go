// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compdb

import (
	"context"
	"path/filepath"

	"go.chromium.org/infra/build/compdb/intercept"
	"go.chromium.org/infra/build/compdb/o11y/clog"
	"go.chromium.org/infra/build/compdb/toolsupport/shutil"
)

// Expand expands intercepted process records into compilation database
// entries, one entry per source file compiled.
//
// Records that are not compiler driver invocations contribute nothing.
// For the rest, c decides whether the command is a compile action and
// which of its operands are source files.
func Expand(ctx context.Context, c Classifier, records []intercept.Record) []Entry {
	var entries []Entry
	for _, record := range records {
		if !IsCompilerCall(record.Command) {
			continue
		}
		rctx := clog.NewLabels(ctx, map[string]string{"pid": record.PID})
		cls := c.Classify(record.Command)
		if cls.Action != ActionCompile {
			if clog.FromContext(rctx).V(1) {
				clog.Infof(rctx, "skip %s action: %q", cls.Action, record.Command)
			}
			continue
		}
		command := shutil.Join(record.Command)
		for _, file := range cls.Files {
			if !filepath.IsAbs(file) {
				file = filepath.Join(record.Directory, file)
			}
			entries = append(entries, Entry{
				Command:   command,
				Directory: record.Directory,
				File:      filepath.Clean(file),
			})
		}
	}
	return entries
}
