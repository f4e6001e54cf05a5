// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package execute runs commands.
package execute

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"go.chromium.org/infra/build/compdb/toolsupport/shutil"
)

// Executor is an interface to run the cmd.
type Executor interface {
	Run(ctx context.Context, cmd *Cmd) error
}

// Cmd includes all the information required to run a command.
type Cmd struct {
	// ID is used as a unique identifier for this command in logs.
	ID string

	// Desc is a short, human-readable identifier that is shown to the user
	// when referencing this command in the UI or a log file.
	Desc string

	// Args holds command line arguments.
	Args []string

	// Env specifies the environment of the process.
	// Each entry is of the form "key=value".
	Env []string

	// Dir specifies the working directory of the cmd.
	Dir string

	stdoutWriter, stderrWriter io.Writer
	stdoutBuffer, stderrBuffer bytes.Buffer
}

// String returns a string representation of the cmd.
func (c *Cmd) String() string {
	return fmt.Sprintf("%s %s", c.ID, c.Desc)
}

// Command returns a joined command line of the cmd.
func (c *Cmd) Command() string {
	return shutil.Join(c.Args)
}

// SetStdoutWriter sets w as the stdout writer in addition to the
// stdout buffer.
func (c *Cmd) SetStdoutWriter(w io.Writer) {
	c.stdoutWriter = w
}

// SetStderrWriter sets w as the stderr writer in addition to the
// stderr buffer.
func (c *Cmd) SetStderrWriter(w io.Writer) {
	c.stderrWriter = w
}

// StdoutWriter returns a writer set by SetStdoutWriter, and resets
// the stdout buffer.
func (c *Cmd) StdoutWriter() io.Writer {
	c.stdoutBuffer.Reset()
	if c.stdoutWriter == nil {
		return &c.stdoutBuffer
	}
	return io.MultiWriter(c.stdoutWriter, &c.stdoutBuffer)
}

// StderrWriter returns a writer set by SetStderrWriter, and resets
// the stderr buffer.
func (c *Cmd) StderrWriter() io.Writer {
	c.stderrBuffer.Reset()
	if c.stderrWriter == nil {
		return &c.stderrBuffer
	}
	return io.MultiWriter(c.stderrWriter, &c.stderrBuffer)
}

// Stdout returns stdout output of the cmd.
func (c *Cmd) Stdout() []byte {
	return c.stdoutBuffer.Bytes()
}

// Stderr returns stderr output of the cmd.
func (c *Cmd) Stderr() []byte {
	return c.stderrBuffer.Bytes()
}

// ExitError is an error of cmd exit.
type ExitError struct {
	ExitCode int
}

func (e ExitError) Error() string {
	return fmt.Sprintf("exit=%d", e.ExitCode)
}
