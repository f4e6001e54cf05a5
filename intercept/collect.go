// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package intercept

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"go.chromium.org/infra/build/compdb/o11y/clog"
)

// Collect parses all trace files in the scratch directory dir.
//
// Directory listing order is filesystem dependent, so callers must not
// rely on the order of the returned records. A malformed or unreadable
// trace file is skipped with a warning; one corrupt file must not
// invalidate an entire build's worth of captured data.
func Collect(ctx context.Context, dir string) []Record {
	matches, err := filepath.Glob(filepath.Join(dir, TracePrefix+"*"))
	if err != nil {
		clog.Warningf(ctx, "failed to list trace files in %s: %v", dir, err)
		return nil
	}
	var records []Record
	for _, fname := range matches {
		record, err := ParseFile(fname)
		if err != nil {
			clog.Warningf(ctx, "skip malformed trace file: %v", err)
			continue
		}
		records = append(records, record)
	}
	clog.Infof(ctx, "collected %d records from %d trace files in %s: %s", len(records), len(matches), dir, traceMetrics)
	return records
}

// WriteRecords dumps records to fname as indented JSON, for debugging
// the interception output.
func WriteRecords(ctx context.Context, fname string, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	buf, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return err
	}
	buf = append(buf, '\n')
	err = os.WriteFile(fname, buf, 0644)
	traceMetrics.WriteDone(len(buf), err)
	if err != nil {
		return err
	}
	clog.Infof(ctx, "wrote %d raw records to %s", len(records), fname)
	return nil
}
