// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package intercept manages the build interception mechanism.
//
// The interception library is loaded into every process the build
// spawns via the dynamic linker preload mechanism. It records each
// process invocation into its own file in a scratch directory named by
// an environment variable. This package owns the scratch directory
// lifecycle, the environment injection that activates the library, and
// the parsing of the trace files it leaves behind.
package intercept

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Environment variables read by the interception library.
const (
	// EnvOutput names the scratch directory for trace files.
	EnvOutput = "COMPDB_TRACE_OUTPUT"

	// envPreload and envPreloadDarwin name the library to load into
	// every spawned process.
	envPreload       = "LD_PRELOAD"
	envPreloadDarwin = "DYLD_INSERT_LIBRARIES"

	// envFlatDarwin forces a flat namespace so the inserted library
	// can interpose libc symbols.
	envFlatDarwin = "DYLD_FORCE_FLAT_NAMESPACE"
)

// TracePrefix is the file name prefix of trace files in the scratch
// directory. The interception library appends a distinguishing suffix,
// e.g. the process id.
const TracePrefix = "cmd."

var once sync.Once
var defaultLib string

// DefaultLibrary returns the interception library installed next to
// the executable, or "" if none is found there.
func DefaultLibrary() string {
	once.Do(func() {
		exe, err := os.Executable()
		if err != nil {
			log.Warnf("failed to locate executable: %v", err)
			return
		}
		lib := filepath.Join(filepath.Dir(exe), libraryName())
		_, err = os.Stat(lib)
		if err != nil {
			log.Warnf("interception library is not found: %v", err)
			return
		}
		defaultLib = lib
	})
	return defaultLib
}

func libraryName() string {
	if runtime.GOOS == "darwin" {
		return "libcompdbtrace.dylib"
	}
	return "libcompdbtrace.so"
}

// CheckLibrary checks that lib exists.
func CheckLibrary(lib string) error {
	if lib == "" {
		return fmt.Errorf("no interception library. install %s next to the executable or set -trace_lib", libraryName())
	}
	_, err := os.Stat(lib)
	if err != nil {
		return fmt.Errorf("interception library: %w", err)
	}
	return nil
}

// TraceDir is the scratch directory that trace files are collected in.
// It is owned exclusively by one run.
type TraceDir struct {
	name string
}

// NewTraceDir creates a new scratch directory for trace files.
func NewTraceDir() (*TraceDir, error) {
	dir := filepath.Join(os.TempDir(), fmt.Sprintf("compdb-%s", uuid.New()))
	err := os.Mkdir(dir, 0755)
	if err != nil {
		return nil, err
	}
	return &TraceDir{name: dir}, nil
}

// Name returns the scratch directory name.
func (t *TraceDir) Name() string {
	return t.name
}

// Environ returns a copy of environ with the interception library lib
// activated and directed at the scratch directory. Each writer owns
// exactly one trace file, so concurrent build processes need no
// coordination beyond these variables.
func (t *TraceDir) Environ(environ []string, lib string) []string {
	env := make([]string, len(environ), len(environ)+3)
	copy(env, environ)
	env = append(env, EnvOutput+"="+t.name)
	if runtime.GOOS == "darwin" {
		env = append(env, envPreloadDarwin+"="+lib, envFlatDarwin+"=1")
		return env
	}
	return append(env, envPreload+"="+lib)
}

// Close removes the scratch directory and all trace files in it.
func (t *TraceDir) Close() {
	err := os.RemoveAll(t.name)
	if err != nil {
		log.Warnf("failed to remove %s: %v", t.name, err)
	}
}
