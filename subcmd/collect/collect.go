// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package collect implements the subcommand `collect` which condenses
// an existing trace directory into a compilation database, without
// running a build.
package collect

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/compdb/compdb"
	"go.chromium.org/infra/build/compdb/intercept"
	"go.chromium.org/infra/build/compdb/toolsupport/ccutil"
	"go.chromium.org/infra/build/compdb/ui"
)

const usage = `condense an existing trace directory into the compilation database.

 $ compdb collect -dir <trace dir> [-o <db>] [-append]

<trace dir> is a scratch directory produced by an earlier
` + "`compdb capture -keep_trace`" + ` run.
`

// Cmd returns the Command for the `collect` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "collect -dir <trace dir> [-o <db>]",
		ShortDesc: "condense a trace directory into a compilation database",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &collectRun{}
			c.init()
			return c
		},
	}
}

type collectRun struct {
	subcommands.CommandRunBase

	// flag values
	dir      string
	dbPath   string
	appendDB bool
	raw      bool
}

func (c *collectRun) init() {
	c.Flags.StringVar(&c.dir, "dir", "", "trace directory to collect from")
	c.Flags.StringVar(&c.dbPath, "o", "compile_commands.json", "compilation database to write")
	c.Flags.BoolVar(&c.appendDB, "append", false, "append new entries to the existing compilation database")
	c.Flags.BoolVar(&c.raw, "n", false, "disable filter, dump raw process records")
}

func (c *collectRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		default:
			ui.Default.Errorf("Error: %v", err)
		}
		return 1
	}
	return 0
}

func (c *collectRun) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	if c.dir == "" {
		return fmt.Errorf("no trace directory: %w", flag.ErrHelp)
	}
	fi, err := os.Stat(c.dir)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", c.dir)
	}

	records := intercept.Collect(ctx, c.dir)
	if c.raw {
		err = intercept.WriteRecords(ctx, c.dbPath, records)
		if err != nil {
			return err
		}
		ui.Default.Infof("%d raw records in %s", len(records), c.dbPath)
		return nil
	}
	var existing []compdb.Entry
	if c.appendDB {
		existing, err = compdb.Load(ctx, c.dbPath)
		if err != nil {
			return err
		}
	}
	entries := compdb.Merge(existing, compdb.Expand(ctx, ccutil.New(), records))
	err = compdb.Save(ctx, c.dbPath, entries)
	if err != nil {
		return err
	}
	ui.Default.Infof("%d entries in %s", len(entries), c.dbPath)
	return nil
}
