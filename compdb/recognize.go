// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compdb

import "regexp"

// compilerPatterns match known compiler driver names, with an arbitrary
// directory prefix and an optional target triple or version suffix.
// e.g. cc, /usr/bin/c++, arm-none-eabi-gcc, g++-4.9, clang-3.8.
var compilerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^([^/]*/)*c(c|\+\+)$`),
	regexp.MustCompile(`^([^/]*/)*([^-]*-)*g(cc|\+\+)(-\d{1,2}(\.\d{1,2})?)?$`),
	regexp.MustCompile(`^([^/]*/)*([^-]*-)*clang(\+\+)?(-\d{1,2}(\.\d{1,2})?)?$`),
	regexp.MustCompile(`^([^/]*/)*llvm-g(cc|\+\+)$`),
}

// IsCompilerCall reports whether command is a compiler driver invocation.
//
// It matches command[0] against the known compiler driver names.
// An invocation with a -cc1 argument is a compiler-internal front end
// spawned by the driver itself; it is rejected so the same compilation
// is not counted twice.
func IsCompilerCall(command []string) bool {
	if len(command) == 0 {
		return false
	}
	if !knownCompiler(command[0]) {
		return false
	}
	for _, arg := range command[1:] {
		if arg == "-cc1" {
			return false
		}
	}
	return true
}

func knownCompiler(executable string) bool {
	for _, pattern := range compilerPatterns {
		if pattern.MatchString(executable) {
			return true
		}
	}
	return false
}
