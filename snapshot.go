// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package discovery

import (
	"github.com/juju/errors"
	"github.com/juju/worker/v3/catacomb"
)

// SnapshotWatcher folds a stream of change batches into a stream of
// membership snapshots. Added and Modified changes insert the item
// and Removed deletes it; items are reported in the order they first
// arrived. A snapshot is emitted for a batch only when membership
// actually changed; re-adding a known item or removing an unknown one
// is not a change. An emitted snapshot is an independent copy, never
// mutated afterwards, and may be empty.
//
// Membership is by value. A Modified change whose data differs from
// every member inserts the new value; the stale one stays until its
// own Removed arrives.
type SnapshotWatcher[T comparable] struct {
	catacomb catacomb.Catacomb
	source   Watcher[[]Change[T]]
	set      *orderedSet[T]
	out      chan []T
}

// NewSnapshotWatcher returns a SnapshotWatcher reading batches from
// source, typically a BatchWatcher. The watcher takes ownership of
// source.
func NewSnapshotWatcher[T comparable](source Watcher[[]Change[T]]) (*SnapshotWatcher[T], error) {
	if source == nil {
		return nil, errors.NotValidf("nil source")
	}
	w := &SnapshotWatcher[T]{
		source: source,
		set:    newOrderedSet[T](),
		out:    make(chan []T),
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

func (w *SnapshotWatcher[T]) loop() error {
	defer close(w.out)
	if err := w.catacomb.Add(w.source); err != nil {
		return errors.Trace(err)
	}
	for {
		select {
		case <-w.catacomb.Dying():
			return w.catacomb.ErrDying()
		case batch, ok := <-w.source.Changes():
			if !ok {
				return errors.Trace(w.source.Wait())
			}
			if !w.apply(batch) {
				continue
			}
			snapshot := w.set.items()
			logger.Tracef("delivering snapshot of %d items", len(snapshot))
			select {
			case <-w.catacomb.Dying():
				return w.catacomb.ErrDying()
			case w.out <- snapshot:
			}
		}
	}
}

// apply folds the batch into the membership set and reports whether
// anything changed.
func (w *SnapshotWatcher[T]) apply(batch []Change[T]) bool {
	changed := false
	for _, change := range batch {
		switch change.Kind {
		case Added, Modified:
			changed = w.set.add(change.Data) || changed
		case Removed:
			changed = w.set.remove(change.Data) || changed
		}
	}
	return changed
}

// Changes returns the channel of snapshots. It is closed when the
// source stream terminates or the watcher is killed.
func (w *SnapshotWatcher[T]) Changes() <-chan []T {
	return w.out
}

// Kill is part of the worker.Worker interface.
func (w *SnapshotWatcher[T]) Kill() {
	w.catacomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (w *SnapshotWatcher[T]) Wait() error {
	return w.catacomb.Wait()
}

// orderedSet holds a set of items in first-insertion order.
type orderedSet[T comparable] struct {
	members map[T]struct{}
	order   []T
}

func newOrderedSet[T comparable]() *orderedSet[T] {
	return &orderedSet[T]{members: make(map[T]struct{})}
}

// add inserts the item, reporting whether it was not already present.
func (s *orderedSet[T]) add(item T) bool {
	if _, found := s.members[item]; found {
		return false
	}
	s.members[item] = struct{}{}
	s.order = append(s.order, item)
	return true
}

// remove deletes the item, reporting whether it was present.
func (s *orderedSet[T]) remove(item T) bool {
	if _, found := s.members[item]; !found {
		return false
	}
	delete(s.members, item)
	for i, member := range s.order {
		if member == item {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// items returns an independent copy of the membership, in insertion
// order. The copy is never nil, so an empty set is reported as an
// empty slice.
func (s *orderedSet[T]) items() []T {
	items := make([]T, len(s.order))
	copy(items, s.order)
	return items
}
