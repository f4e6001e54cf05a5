// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package ccutil provides utilities of cc-like compiler command lines.
package ccutil

import (
	"path/filepath"
	"strings"

	"go.chromium.org/infra/build/compdb/compdb"
)

// sourceExts are extensions of source file operands, as the compiler
// driver recognizes them. Headers and objects are intentionally absent.
var sourceExts = map[string]bool{
	".c":   true,
	".C":   true,
	".cc":  true,
	".CC":  true,
	".cpp": true,
	".CPP": true,
	".cxx": true,
	".CXX": true,
	".c++": true,
	".i":   true,
	".ii":  true,
	".m":   true,
	".mm":  true,
	".s":   true,
	".S":   true,
}

// valueFlags take their value as a separate argument, so the value must
// not be mistaken for a source file operand.
var valueFlags = map[string]bool{
	"-o":             true,
	"-x":             true,
	"-D":             true,
	"-U":             true,
	"-I":             true,
	"-include":       true,
	"-imacros":       true,
	"-isystem":       true,
	"-iquote":        true,
	"-idirafter":     true,
	"-isysroot":      true,
	"-arch":          true,
	"-target":        true,
	"-MF":            true,
	"-MT":            true,
	"-MQ":            true,
	"-Xlinker":       true,
	"-Xpreprocessor": true,
	"-Xassembler":    true,
	"-Xclang":        true,
	"--sysroot":      true,
	"-u":             true,
	"-z":             true,
	"-T":             true,
	"-L":             true,
	"-l":             true,
}

// Classifier classifies cc-like compiler command lines.
type Classifier struct{}

// New returns a classifier of cc-like compiler command lines.
func New() Classifier {
	return Classifier{}
}

// Classify decides the action of command and extracts its source file
// operands.
//
// -c marks a compile, -E a preprocessor-only run; a driver invocation
// with source operands and neither flag compiles and links in one step
// and is classified as a link.
func (Classifier) Classify(command []string) compdb.Classification {
	var cls compdb.Classification
	if len(command) == 0 {
		return cls
	}
	compile, preprocess := false, false
	skip := false
	for _, arg := range command[1:] {
		if skip {
			skip = false
			continue
		}
		switch arg {
		case "-c":
			compile = true
			continue
		case "-E", "-M", "-MM":
			preprocess = true
			continue
		case "-S":
			compile = true
			continue
		}
		if valueFlags[arg] {
			skip = true
			continue
		}
		if strings.HasPrefix(arg, "-") {
			continue
		}
		if sourceExts[filepath.Ext(arg)] {
			cls.Files = append(cls.Files, arg)
		}
	}
	switch {
	case preprocess:
		cls.Action = compdb.ActionPreprocess
	case compile:
		cls.Action = compdb.ActionCompile
	case len(cls.Files) > 0:
		cls.Action = compdb.ActionLink
	default:
		cls.Action = compdb.ActionOther
	}
	return cls
}
