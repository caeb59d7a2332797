// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package discovery

import (
	"github.com/juju/errors"
	"github.com/juju/worker/v3/catacomb"
)

// BatchWatcher collects the changes of a source stream into batches
// delimited by sentinel markers. Only non-empty batches are emitted, so
// consecutive sentinels collapse and a batch never straddles a marker.
//
// Clean completion of the source acts as one final sentinel: whatever
// has accumulated since the last marker is flushed before the output
// channel closes. Failure of the source discards the accumulated
// changes and is reported through Wait.
type BatchWatcher[T any] struct {
	catacomb catacomb.Catacomb
	source   Watcher[Change[T]]
	out      chan []Change[T]
}

// NewBatchWatcher returns a BatchWatcher reading from source. The
// watcher takes ownership of source: killing the watcher stops the
// source, and the source's failure kills the watcher.
func NewBatchWatcher[T any](source Watcher[Change[T]]) (*BatchWatcher[T], error) {
	if source == nil {
		return nil, errors.NotValidf("nil source")
	}
	w := &BatchWatcher[T]{
		source: source,
		out:    make(chan []Change[T]),
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

func (w *BatchWatcher[T]) loop() error {
	defer close(w.out)
	if err := w.catacomb.Add(w.source); err != nil {
		return errors.Trace(err)
	}
	var buffer []Change[T]
	for {
		select {
		case <-w.catacomb.Dying():
			return w.catacomb.ErrDying()
		case change, ok := <-w.source.Changes():
			if !ok {
				// The source has terminated. On failure the buffer is
				// discarded; on completion it is flushed as a final
				// batch, as if the stream had ended with a sentinel.
				if err := w.source.Wait(); err != nil {
					return errors.Trace(err)
				}
				if len(buffer) == 0 {
					return nil
				}
				return w.deliver(buffer)
			}
			if !change.IsSentinel() {
				buffer = append(buffer, change)
				continue
			}
			if len(buffer) == 0 {
				// Nothing since the last boundary; swallow the marker.
				continue
			}
			if err := w.deliver(buffer); err != nil {
				return errors.Trace(err)
			}
			buffer = nil
		}
	}
}

func (w *BatchWatcher[T]) deliver(batch []Change[T]) error {
	logger.Tracef("delivering batch of %d changes", len(batch))
	select {
	case <-w.catacomb.Dying():
		return w.catacomb.ErrDying()
	case w.out <- batch:
		return nil
	}
}

// Changes returns the channel of batches. It is closed when the source
// stream terminates or the watcher is killed.
func (w *BatchWatcher[T]) Changes() <-chan []Change[T] {
	return w.out
}

// Kill is part of the worker.Worker interface.
func (w *BatchWatcher[T]) Kill() {
	w.catacomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (w *BatchWatcher[T]) Wait() error {
	return w.catacomb.Wait()
}
