// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package discoverytest provides test doubles and assertion helpers
// for code built around discovery watchers.
package discoverytest

import (
	"time"

	"gopkg.in/tomb.v2"
)

const (
	// LongWait is the upper bound on how long a test should wait for
	// something that is expected to happen.
	LongWait = 10 * time.Second

	// ShortWait is how long a test observes a channel on which
	// nothing is expected to arrive.
	ShortWait = 50 * time.Millisecond
)

// Watcher is a test-driven stream. The test supplies values on the
// channel passed to NewWatcher, then terminates the stream with Kill
// for clean completion or KillErr for failure. The channel is closed
// on termination, as the watcher contract requires.
type Watcher[T any] struct {
	tomb tomb.Tomb
	ch   chan T
}

// NewWatcher returns a Watcher delivering whatever the test sends on
// ch. The watcher owns ch from this point and will close it.
func NewWatcher[T any](ch chan T) *Watcher[T] {
	w := &Watcher[T]{ch: ch}
	w.tomb.Go(func() error {
		<-w.tomb.Dying()
		close(w.ch)
		return tomb.ErrDying
	})
	return w
}

// Changes returns the stream channel.
func (w *Watcher[T]) Changes() <-chan T {
	return w.ch
}

// Kill terminates the stream cleanly: the channel closes and Wait
// returns nil, which consumers treat as completion.
func (w *Watcher[T]) Kill() {
	w.tomb.Kill(nil)
}

// KillErr terminates the stream with err, which consumers treat as
// failure.
func (w *Watcher[T]) KillErr(err error) {
	w.tomb.Kill(err)
}

// Wait is part of the worker.Worker interface.
func (w *Watcher[T]) Wait() error {
	return w.tomb.Wait()
}
