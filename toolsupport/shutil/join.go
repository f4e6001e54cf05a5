// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package shutil provides utilities for shell command lines.
package shutil

import "strings"

// Join joins command line args to a single string.
//
// Args are joined with single spaces, so an arg that itself contains
// whitespace (e.g. -D_KEY="Value with spaces") does not round-trip.
// This is an accepted approximation of the persisted command format.
func Join(args []string) string {
	return strings.Join(args, " ")
}
