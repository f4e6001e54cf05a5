// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package semaphore

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestDo(t *testing.T) {
	ctx := context.Background()
	s := New("test", 2)
	var mu sync.Mutex
	active, maxActive := 0, 0

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Do(ctx, func(ctx context.Context) error {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()
				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
			if err != nil {
				t.Errorf("Do=%v; want nil", err)
			}
		}()
	}
	wg.Wait()
	if maxActive > s.Capacity() {
		t.Errorf("maxActive=%d; want <= %d", maxActive, s.Capacity())
	}
	if got := s.NumRequests(); got != 10 {
		t.Errorf("NumRequests=%d; want 10", got)
	}
}

func TestDoCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New("test-canceled", 1)
	_, done, err := s.WaitAcquire(ctx)
	if err != nil {
		t.Fatalf("WaitAcquire=%v; want nil", err)
	}
	defer done()
	cancel()
	err = s.Do(ctx, func(ctx context.Context) error {
		t.Error("Do run under canceled context")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do=%v; want %v", err, context.Canceled)
	}
}
