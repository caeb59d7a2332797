// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package discovery transforms raw service-registry change streams into
// forms a client can consume directly: batches of changes delimited by
// sentinel markers, and ordered snapshots of the currently known items.
//
// A stream is represented by a Watcher, which couples a worker lifetime
// to a channel of values. The producer closes the channel when the stream
// terminates; Wait then reports nil for clean completion or the error that
// ended the stream. Killing a watcher abandons the stream without error.
//
// Watchers compose. A registry client might expose its interest channel
// as a Watcher[Change[Instance]], and a consumer wanting a coherent view
// of membership would stack the transforms:
//
//	batches, err := discovery.NewBatchWatcher(source)
//	...
//	snapshots, err := discovery.NewSnapshotWatcher(batches)
//
// Each emitted snapshot is then a self-consistent picture of the registry
// taken at a batch boundary. Sources that never emit their own sentinel
// markers can be adapted with NewSentinelWatcher, which injects a marker
// after the stream has been quiet for a configured period.
//
// Values are pushed strictly in order, one at a time, so consumers need
// no locking of their own. None of the watchers here retry: any failure
// in a source stream is passed straight through, and recovery policy is
// left to the caller.
package discovery
