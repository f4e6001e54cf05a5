// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package intercept

import (
	"fmt"
	"os"
	"strings"

	"go.chromium.org/infra/build/compdb/o11y/iometrics"
)

// Trace file field separators.
// Fields are separated by the ASCII record separator. The command
// field is itself tokens separated by the ASCII unit separator, with a
// trailing separator after the final token.
const (
	recordSep = "\x1e"
	unitSep   = "\x1f"
)

var traceMetrics = iometrics.New("trace")

// Record is one intercepted process invocation.
type Record struct {
	// PID and PPID identify the process and its parent.
	// They are opaque strings used only for provenance.
	PID  string `json:"pid"`
	PPID string `json:"ppid"`

	// Function is the name of the interception hook that captured the
	// invocation, e.g. "execve". Informational only.
	Function string `json:"function"`

	// Directory is the absolute working directory of the process at
	// invocation time.
	Directory string `json:"directory"`

	// Command is the argument vector. Command[0] is the executable
	// path or name as invoked.
	Command []string `json:"command"`
}

// ParseFile parses one trace file into a Record.
func ParseFile(fname string) (Record, error) {
	buf, err := os.ReadFile(fname)
	traceMetrics.ReadDone(len(buf), err)
	if err != nil {
		return Record{}, err
	}
	fields := strings.Split(string(buf), recordSep)
	if len(fields) < 5 {
		return Record{}, fmt.Errorf("%s: %d fields, want 5", fname, len(fields))
	}
	command := strings.Split(fields[4], unitSep)
	// drop the empty token after the trailing separator.
	if n := len(command); n > 0 && command[n-1] == "" {
		command = command[:n-1]
	}
	return Record{
		PID:       fields[0],
		PPID:      fields[1],
		Function:  fields[2],
		Directory: fields[3],
		Command:   command,
	}, nil
}
