// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package discovery

import (
	"github.com/juju/loggo"
	"github.com/juju/worker/v3"
)

var logger = loggo.GetLogger("discovery")

// Watcher is a worker that delivers a stream of values over a channel.
//
// The stream obeys a small contract:
//
//   - Values are delivered one at a time, in the order they were
//     produced. Delivery of one value completes before the next begins,
//     so a consumer reading the channel from a single goroutine needs
//     no further synchronisation.
//   - The channel is closed when, and only when, the watcher's work is
//     finished. After the close, Wait reports how the stream ended: nil
//     for clean completion, anything else for failure.
//   - Killing the watcher abandons the stream. The channel still closes,
//     and Wait reports nil unless the watcher had already failed.
//
// A Watcher that consumes another Watcher owns it: killing the outer
// watcher stops the source, and the source's failure becomes the outer
// watcher's failure.
type Watcher[T any] interface {
	worker.Worker

	// Changes returns the channel on which the stream is delivered.
	// It returns the same channel on every call.
	Changes() <-chan T
}
