// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package iometrics manages I/O metrics.
package iometrics

import (
	"fmt"
	"sync"
)

// IOMetrics holds I/O metrics, e.g. of trace file reads or database writes.
type IOMetrics struct {
	name string

	mu sync.Mutex

	ops     int64
	opsErrs int64
	rOps    int64
	rBytes  int64
	rErrs   int64
	wOps    int64
	wBytes  int64
	wErrs   int64
}

// New returns new iometrics for name.
func New(name string) *IOMetrics {
	return &IOMetrics{name: name}
}

// Name returns name of the metrics.
func (m *IOMetrics) Name() string {
	if m == nil {
		return ""
	}
	return m.name
}

// OpsDone counts when a non read/write I/O operation is done. err is an I/O operation error.
// e.g. stat, mkdir, remove etc
func (m *IOMetrics) OpsDone(err error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops++
	if err != nil {
		m.opsErrs++
	}
}

// ReadDone counts when a read operation is done.
// n is the number of bytes, and err is a read error.
func (m *IOMetrics) ReadDone(n int, err error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rOps++
	m.rBytes += int64(n)
	if err != nil {
		m.rErrs++
	}
}

// WriteDone counts when a write operation is done.
// n is the number of bytes, and err is a write error.
func (m *IOMetrics) WriteDone(n int, err error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wOps++
	m.wBytes += int64(n)
	if err != nil {
		m.wErrs++
	}
}

// Stats is a snapshot of the metrics.
type Stats struct {
	Ops     int64
	OpsErrs int64
	ROps    int64
	RBytes  int64
	RErrs   int64
	WOps    int64
	WBytes  int64
	WErrs   int64
}

// Stats returns a snapshot of the metrics.
func (m *IOMetrics) Stats() Stats {
	if m == nil {
		return Stats{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		Ops:     m.ops,
		OpsErrs: m.opsErrs,
		ROps:    m.rOps,
		RBytes:  m.rBytes,
		RErrs:   m.rErrs,
		WOps:    m.wOps,
		WBytes:  m.wBytes,
		WErrs:   m.wErrs,
	}
}

// String returns a human readable summary of the metrics.
func (m *IOMetrics) String() string {
	s := m.Stats()
	return fmt.Sprintf("%s: ops=%d(err:%d) r=%d(err:%d) %dB w=%d(err:%d) %dB",
		m.Name(), s.Ops, s.OpsErrs, s.ROps, s.RErrs, s.RBytes, s.WOps, s.WErrs, s.WBytes)
}
