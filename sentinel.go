// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package discovery

import (
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/worker/v3/catacomb"
)

// SentinelConfig holds the dependencies and parameters of a
// SentinelWatcher.
type SentinelConfig[T any] struct {
	// Source is a change stream that emits no sentinel markers of
	// its own, or emits them too rarely to be useful.
	Source Watcher[Change[T]]

	// Clock times the quiet period.
	Clock clock.Clock

	// QuietPeriod is how long the source must remain idle, after at
	// least one data change, before a sentinel is emitted on its
	// behalf.
	QuietPeriod time.Duration
}

// Validate returns an error if the config cannot drive a
// SentinelWatcher.
func (config SentinelConfig[T]) Validate() error {
	if config.Source == nil {
		return errors.NotValidf("nil Source")
	}
	if config.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if config.QuietPeriod <= 0 {
		return errors.NotValidf("non-positive QuietPeriod")
	}
	return nil
}

// SentinelWatcher relays a change stream unmodified, injecting a
// sentinel marker whenever the stream goes quiet after data changes.
// It adapts sources that never delimit their own batches so that a
// BatchWatcher can be stacked on top. Markers already present in the
// source are relayed and reset the quiet period, so a source that
// delimits its own batches passes through untouched.
type SentinelWatcher[T any] struct {
	catacomb catacomb.Catacomb
	config   SentinelConfig[T]
	out      chan Change[T]
}

// NewSentinelWatcher returns a SentinelWatcher with the supplied
// config. The watcher takes ownership of the config's Source.
func NewSentinelWatcher[T any](config SentinelConfig[T]) (*SentinelWatcher[T], error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	w := &SentinelWatcher[T]{
		config: config,
		out:    make(chan Change[T]),
	}
	err := catacomb.Invoke(catacomb.Plan{
		Site: &w.catacomb,
		Work: w.loop,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return w, nil
}

func (w *SentinelWatcher[T]) loop() error {
	defer close(w.out)
	if err := w.catacomb.Add(w.config.Source); err != nil {
		return errors.Trace(err)
	}
	// quiet is nil, and hence unselectable, until a data change arms
	// it. A sentinel from either side disarms it again, so at most one
	// marker is emitted per burst of changes.
	var quiet <-chan time.Time
	for {
		select {
		case <-w.catacomb.Dying():
			return w.catacomb.ErrDying()
		case change, ok := <-w.config.Source.Changes():
			if !ok {
				return errors.Trace(w.config.Source.Wait())
			}
			if err := w.deliver(change); err != nil {
				return errors.Trace(err)
			}
			if change.IsSentinel() {
				quiet = nil
				continue
			}
			quiet = w.config.Clock.After(w.config.QuietPeriod)
		case <-quiet:
			quiet = nil
			logger.Tracef("source quiet for %v, emitting sentinel", w.config.QuietPeriod)
			if err := w.deliver(Change[T]{Kind: Sentinel}); err != nil {
				return errors.Trace(err)
			}
		}
	}
}

func (w *SentinelWatcher[T]) deliver(change Change[T]) error {
	select {
	case <-w.catacomb.Dying():
		return w.catacomb.ErrDying()
	case w.out <- change:
		return nil
	}
}

// Changes returns the relayed stream, sentinels included. It is closed
// when the source terminates or the watcher is killed.
func (w *SentinelWatcher[T]) Changes() <-chan Change[T] {
	return w.out
}

// Kill is part of the worker.Worker interface.
func (w *SentinelWatcher[T]) Kill() {
	w.catacomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (w *SentinelWatcher[T]) Wait() error {
	return w.catacomb.Wait()
}
