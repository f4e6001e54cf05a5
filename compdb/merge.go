// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compdb

import "os"

// Merge merges the existing database entries with newly collected ones.
//
// Entries whose source file no longer exists are dropped before any
// duplicate bookkeeping. Of the remaining entries the first occurrence
// of a dedup key wins, so an entry in existing supersedes an equivalent
// entry in incoming and repeated append runs converge instead of
// accumulating duplicates.
func Merge(existing, incoming []Entry) []Entry {
	seen := make(map[key]bool)
	merged := make([]Entry, 0, len(existing)+len(incoming))
	for _, entries := range [][]Entry{existing, incoming} {
		for _, e := range entries {
			if _, err := os.Stat(e.File); err != nil {
				// stale entry, its source file has been removed.
				continue
			}
			k := entryKey(e)
			if seen[k] {
				continue
			}
			seen[k] = true
			merged = append(merged, e)
		}
	}
	return merged
}
