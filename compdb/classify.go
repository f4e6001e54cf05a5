// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compdb

// Action is the category of a command line.
type Action int

const (
	// ActionOther is a command that is none of the below.
	ActionOther Action = iota
	// ActionCompile compiles source files to object files.
	ActionCompile
	// ActionLink links objects to an executable or library.
	ActionLink
	// ActionPreprocess runs the preprocessor only.
	ActionPreprocess
)

// String returns the name of the action.
func (a Action) String() string {
	switch a {
	case ActionCompile:
		return "compile"
	case ActionLink:
		return "link"
	case ActionPreprocess:
		return "preprocess"
	default:
		return "other"
	}
}

// Classification is the result of classifying a command line.
type Classification struct {
	// Action is the category of the command.
	Action Action
	// Files are the source file operands of the command,
	// as written on the command line.
	Files []string
}

// Classifier classifies a command line and extracts its source file
// operands. It is authoritative for what counts as a compile action.
type Classifier interface {
	Classify(command []string) Classification
}
