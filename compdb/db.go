// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compdb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.chromium.org/infra/build/compdb/o11y/clog"
	"go.chromium.org/infra/build/compdb/o11y/iometrics"
)

var dbMetrics = iometrics.New("compdb")

// Load loads database entries from fname.
// A missing database is not an error; it returns no entries, so an
// append run over a fresh tree starts from an empty database.
func Load(ctx context.Context, fname string) ([]Entry, error) {
	buf, err := os.ReadFile(fname)
	dbMetrics.ReadDone(len(buf), err)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []Entry
	err = json.Unmarshal(buf, &entries)
	if err != nil {
		return nil, fmt.Errorf("malformed database %s: %w", fname, err)
	}
	clog.Infof(ctx, "loaded %d entries from %s", len(entries), fname)
	return entries, nil
}

// Save persists entries to fname.
//
// Entries are sorted by field values and written with a fixed
// indentation, so repeated runs over the same inputs produce
// byte-identical output. The database is written to a temporary file
// and renamed into place, so a failed write never leaves a truncated
// database behind.
func Save(ctx context.Context, fname string, entries []Entry) error {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].File != entries[j].File {
			return entries[i].File < entries[j].File
		}
		if entries[i].Directory != entries[j].Directory {
			return entries[i].Directory < entries[j].Directory
		}
		return entries[i].Command < entries[j].Command
	})
	if entries == nil {
		entries = []Entry{}
	}
	buf, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return err
	}
	buf = append(buf, '\n')

	f, err := os.CreateTemp(filepath.Dir(fname), filepath.Base(fname)+".*")
	if err != nil {
		return err
	}
	_, err = f.Write(buf)
	dbMetrics.WriteDone(len(buf), err)
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	err = f.Close()
	if err != nil {
		os.Remove(f.Name())
		return err
	}
	err = os.Chmod(f.Name(), 0644)
	if err != nil {
		os.Remove(f.Name())
		return err
	}
	err = os.Rename(f.Name(), fname)
	if err != nil {
		os.Remove(f.Name())
		return err
	}
	clog.Infof(ctx, "wrote %d entries to %s: %s", len(entries), fname, dbMetrics)
	return nil
}
