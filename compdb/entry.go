// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package compdb builds a compilation database from intercepted
// process records.
//
// A compilation database is a list of {directory, file, command}
// entries describing how each source file is compiled, consumed by
// static-analysis tooling.
package compdb

import (
	"strings"

	"github.com/google/shlex"

	"go.chromium.org/infra/build/compdb/toolsupport/shutil"
)

// Entry is one row of the compilation database.
// Field order matches the sorted key order of the persisted format.
type Entry struct {
	// Command is the full compiler argument vector joined to a single string.
	Command string `json:"command"`

	// Directory is the working directory of the compiler invocation.
	Directory string `json:"directory"`

	// File is the absolute path of the compiled source file.
	File string `json:"file"`
}

// key identifies equivalent entries for deduplication.
// The first token of the command is excluded because several compiler
// driver aliases (e.g. cc and clang, or c++ and clang++) resolve to the
// same underlying compiler and would otherwise be recorded as distinct
// commands for the same actual compilation.
type key struct {
	file      string
	directory string
	command   string
}

func entryKey(e Entry) key {
	args, err := shlex.Split(e.Command)
	if err != nil {
		// unbalanced quotes etc. fall back to whitespace splitting.
		args = strings.Fields(e.Command)
	}
	if len(args) > 0 {
		args = args[1:]
	}
	return key{
		file:      e.File,
		directory: e.Directory,
		command:   shutil.Join(args),
	}
}
