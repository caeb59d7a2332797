// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package discovery

import (
	"fmt"
)

// Kind classifies a change to the set of items a stream describes.
type Kind int

const (
	// Added indicates that the item joined the set.
	Added Kind = iota
	// Modified indicates that an item already in the set changed.
	Modified
	// Removed indicates that the item left the set.
	Removed
	// Sentinel marks the boundary between consecutive batches of
	// changes. A sentinel carries no data and never reaches a consumer
	// directly; BatchWatcher consumes it to delimit batches.
	Sentinel
)

// String is part of the fmt.Stringer interface.
func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	case Sentinel:
		return "sentinel"
	}
	return fmt.Sprintf("unknown kind %d", int(k))
}

// Change describes a single delta in a stream of registry data. The
// Data field is meaningful for every kind except Sentinel, for which it
// holds the zero value and must be ignored.
type Change[T any] struct {
	Kind Kind
	Data T
}

// IsSentinel reports whether the change is a batch boundary marker
// rather than a data-bearing change.
func (c Change[T]) IsSentinel() bool {
	return c.Kind == Sentinel
}

// GoString is part of the fmt.GoStringer interface, to keep test
// failures involving change slices readable.
func (c Change[T]) GoString() string {
	if c.Kind == Sentinel {
		return "sentinel"
	}
	return fmt.Sprintf("%s %#v", c.Kind, c.Data)
}
