// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package capture implements the subcommand `capture` which runs a
// build under the interception library and condenses the trace files
// it leaves behind into a compilation database.
package capture

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/compdb/compdb"
	"go.chromium.org/infra/build/compdb/execute"
	"go.chromium.org/infra/build/compdb/execute/localexec"
	"go.chromium.org/infra/build/compdb/intercept"
	"go.chromium.org/infra/build/compdb/toolsupport/ccutil"
	"go.chromium.org/infra/build/compdb/ui"
)

const usage = `run a build under interception and write the compilation database.

 $ compdb capture [-o <db>] [-append] [-trace_lib <lib>] -- <build command>...

The build command runs with the interception library preloaded into
every process it spawns. After the build finishes, the captured trace
files are condensed into the compilation database.

Collection is attempted whether or not the build succeeded, since a
failed build can still produce partial, useful trace data, and the
exit code is the build command's exit code.
`

// Cmd returns the Command for the `capture` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "capture <args>...",
		ShortDesc: "run a build under interception",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &captureRun{}
			c.init()
			return c
		},
	}
}

type captureRun struct {
	subcommands.CommandRunBase

	// flag values
	dbPath    string
	appendDB  bool
	raw       bool
	traceLib  string
	keepTrace bool
}

func (c *captureRun) init() {
	c.Flags.StringVar(&c.dbPath, "o", "compile_commands.json", "compilation database to write")
	c.Flags.BoolVar(&c.appendDB, "append", false, "append new entries to the existing compilation database")
	c.Flags.BoolVar(&c.raw, "n", false, "disable filter, dump raw process records")
	c.Flags.StringVar(&c.traceLib, "trace_lib", intercept.DefaultLibrary(), "interception library preloaded into build processes")
	c.Flags.BoolVar(&c.keepTrace, "keep_trace", false, "keep the scratch trace directory for later `compdb collect`")
}

func (c *captureRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	exitCode, err := c.run(ctx)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		default:
			ui.Default.Errorf("Error: %v", err)
		}
		if exitCode == 0 {
			exitCode = 1
		}
	}
	return exitCode
}

func (c *captureRun) run(ctx context.Context) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	build := c.Flags.Args()
	if len(build) == 0 {
		// report before any build is attempted.
		return 2, fmt.Errorf("no build command: %w", flag.ErrHelp)
	}
	err := intercept.CheckLibrary(c.traceLib)
	if err != nil {
		return 2, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return 1, err
	}
	td, err := intercept.NewTraceDir()
	if err != nil {
		return 1, err
	}
	if c.keepTrace {
		defer ui.Default.Infof("trace files kept in %s", td.Name())
	} else {
		defer td.Close()
	}

	started := time.Now()
	cmd := &execute.Cmd{
		ID:   "build",
		Desc: build[0],
		Args: build,
		Env:  td.Environ(os.Environ(), c.traceLib),
		Dir:  cwd,
	}
	cmd.SetStdoutWriter(os.Stdout)
	cmd.SetStderrWriter(os.Stderr)
	exitCode := 0
	err = localexec.Run(ctx, cmd)
	var eerr *execute.ExitError
	switch {
	case err == nil:
	case errors.As(err, &eerr):
		// the build failed, but collect whatever it traced.
		exitCode = eerr.ExitCode
	default:
		return 1, err
	}

	records := intercept.Collect(ctx, td.Name())
	if c.raw {
		err = intercept.WriteRecords(ctx, c.dbPath, records)
		if err != nil {
			return exitCode, err
		}
		ui.Default.Infof("%d raw records in %s %s", len(records), c.dbPath, ui.FormatDuration(time.Since(started)))
		return exitCode, nil
	}
	var existing []compdb.Entry
	if c.appendDB {
		existing, err = compdb.Load(ctx, c.dbPath)
		if err != nil {
			return exitCode, err
		}
	}
	entries := compdb.Merge(existing, compdb.Expand(ctx, ccutil.New(), records))
	err = compdb.Save(ctx, c.dbPath, entries)
	if err != nil {
		return exitCode, err
	}
	ui.Default.Infof("%d entries in %s (build exit=%d) %s", len(entries), c.dbPath, exitCode, ui.FormatDuration(time.Since(started)))
	return exitCode, nil
}
