// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package discoverytest

import (
	"time"

	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"
)

// WatcherC wraps the changes channel of a watcher under test with
// assertions about what the stream delivers next.
type WatcherC[T any] struct {
	c       *gc.C
	changes <-chan T
}

// NewWatcherC returns a WatcherC observing changes.
func NewWatcherC[T any](c *gc.C, changes <-chan T) WatcherC[T] {
	return WatcherC[T]{c: c, changes: changes}
}

// AssertChange fails unless the watcher delivers expect, deeply equal,
// within LongWait.
func (wc WatcherC[T]) AssertChange(expect T) {
	select {
	case value, ok := <-wc.changes:
		if !ok {
			wc.c.Fatalf("watcher channel closed, expected %#v", expect)
		}
		wc.c.Assert(value, jc.DeepEquals, expect)
	case <-time.After(LongWait):
		wc.c.Fatalf("watcher did not deliver %#v", expect)
	}
}

// Next returns the next value delivered, failing the test if the
// channel closes or nothing arrives within LongWait.
func (wc WatcherC[T]) Next() T {
	select {
	case value, ok := <-wc.changes:
		if !ok {
			wc.c.Fatalf("watcher channel closed, expected a value")
		}
		return value
	case <-time.After(LongWait):
		wc.c.Fatalf("watcher did not deliver a value")
	}
	panic("unreachable")
}

// AssertNoChange fails if the watcher delivers anything, or closes its
// channel, within ShortWait.
func (wc WatcherC[T]) AssertNoChange() {
	select {
	case value, ok := <-wc.changes:
		if ok {
			wc.c.Fatalf("watcher delivered unexpected %#v", value)
		}
		wc.c.Fatalf("watcher channel closed unexpectedly")
	case <-time.After(ShortWait):
	}
}

// AssertClosed fails unless the watcher closes its channel, without
// delivering anything further, within LongWait.
func (wc WatcherC[T]) AssertClosed() {
	select {
	case value, ok := <-wc.changes:
		if ok {
			wc.c.Fatalf("watcher delivered unexpected %#v", value)
		}
	case <-time.After(LongWait):
		wc.c.Fatalf("watcher channel was not closed")
	}
}
