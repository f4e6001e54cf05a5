// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"os"
)

// TermUI is a terminal-based UI.
type TermUI struct{}

// Infof reports to stdout.
func (TermUI) Infof(format string, args ...any) {
	fmt.Fprintf(os.Stdout, format, args...)
	fmt.Fprintln(os.Stdout)
}

// Warningf reports to stderr.
func (TermUI) Warningf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[33m"+format+"\033[0m", args...)
	fmt.Fprintln(os.Stderr)
}

// Errorf reports to stderr.
func (TermUI) Errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m"+format+"\033[0m", args...)
	fmt.Fprintln(os.Stderr)
}
