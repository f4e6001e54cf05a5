// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package clog_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"cloud.google.com/go/logging"

	"go.chromium.org/infra/build/compdb/o11y/clog"
)

func pidFormatter(e logging.Entry) string {
	pid := e.Labels["pid"]
	if pid == "" {
		return fmt.Sprintf("%v", e.Payload)
	}
	return fmt.Sprintf("pid:%s %v", pid, e.Payload)
}

func TestLabels(t *testing.T) {
	ctx := context.Background()

	l := clog.New(ctx)
	defer l.Close()
	l.Formatter = pidFormatter
	ctx = clog.NewContext(ctx, l)

	clog.Infof(ctx, "Info")
	clog.Warningf(ctx, "Warning")
	clog.Errorf(ctx, "Error")

	var wg sync.WaitGroup
	for _, pid := range []string{"1001", "1002"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx := clog.NewLabels(ctx, map[string]string{"pid": pid})
			clog.Infof(cctx, "record Info")
			clog.Warningf(cctx, "record Warning")
		}()
	}
	wg.Wait()
}

func TestFromContextUnset(t *testing.T) {
	ctx := context.Background()
	l := clog.FromContext(ctx)
	if l == nil {
		t.Fatal("FromContext=nil; want non-nil default logger")
	}
	// Should not panic without a formatter or labels.
	clog.Infof(ctx, "Info without logger")
}
