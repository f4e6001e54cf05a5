// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package localexec implements local command execution.
package localexec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"go.chromium.org/infra/build/compdb/execute"
	"go.chromium.org/infra/build/compdb/o11y/clog"
	"go.chromium.org/infra/build/compdb/sync/semaphore"
)

// LocalExec implements execute.Executor interface that runs commands locally.
type LocalExec struct{}

// Run runs cmd with LocalExec.
func Run(ctx context.Context, cmd *execute.Cmd) error {
	return LocalExec{}.Run(ctx, cmd)
}

// fork of a child process may fail when the system is short on memory,
// so throttle concurrent forks.
var forkSema = semaphore.New("fork", runtime.NumCPU())

// Run runs a cmd.
// When the command runs and exits non-zero, it returns *execute.ExitError
// holding the exit code.
func (LocalExec) Run(ctx context.Context, cmd *execute.Cmd) error {
	if len(cmd.Args) == 0 {
		return fmt.Errorf("no arguments in the command. ID: %s", cmd.ID)
	}
	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	c.Env = cmd.Env
	c.Dir = cmd.Dir
	stdoutPipe, err := c.StdoutPipe()
	if err != nil {
		return err
	}
	stderrPipe, err := c.StderrPipe()
	if err != nil {
		return err
	}
	s := time.Now()
	err = forkSema.Do(ctx, func(ctx context.Context) error {
		return c.Start()
	})
	if err != nil {
		return err
	}
	var eg errgroup.Group
	stdoutWriter := cmd.StdoutWriter()
	stderrWriter := cmd.StderrWriter()
	eg.Go(func() error {
		_, err := io.Copy(stdoutWriter, stdoutPipe)
		return err
	})
	eg.Go(func() error {
		_, err := io.Copy(stderrWriter, stderrPipe)
		return err
	})
	perr := eg.Wait()
	err = c.Wait()
	if perr != nil && err == nil {
		err = perr
	}
	var eerr *exec.ExitError
	if errors.As(err, &eerr) {
		code := eerr.ExitCode()
		clog.Infof(ctx, "%s exit=%d in %s", cmd, code, time.Since(s))
		return &execute.ExitError{ExitCode: code}
	}
	if err != nil {
		clog.Warningf(ctx, "failed to run %s: %v", cmd, err)
		return err
	}
	clog.Infof(ctx, "%s exit=0 in %s", cmd, time.Since(s))
	return nil
}
