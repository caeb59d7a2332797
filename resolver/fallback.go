// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package resolver

import (
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/worker/v3"
	"gopkg.in/tomb.v2"

	"github.com/juju/discovery"
)

var logger = loggo.GetLogger("discovery.resolver")

// NewFallback returns a resolver that resolves against primary,
// switching to fallback when the primary fails, whether at Resolve
// time or later in the resolution stream. The switch happens at most
// once per Resolve call: if the fallback fails too, the failure is
// reported to the subscriber. Deeper chains are built by nesting, with
// a NewFallback resolver as the fallback of another.
func NewFallback(primary, fallback Resolver) Resolver {
	return &fallbackResolver{
		primary:  primary,
		fallback: fallback,
	}
}

type fallbackResolver struct {
	primary  Resolver
	fallback Resolver
}

// Resolve is part of the Resolver interface.
func (r *fallbackResolver) Resolve() (discovery.Watcher[Server], error) {
	primary, err := r.primary.Resolve()
	if err != nil {
		logger.Warningf("primary resolver failed: %v; resolving against fallback", err)
		w, err := r.fallback.Resolve()
		return w, errors.Trace(err)
	}
	w := &fallbackWatcher{
		primary:  primary,
		fallback: r.fallback,
		out:      make(chan Server),
	}
	w.tomb.Go(w.loop)
	return w, nil
}

// Close is part of the Resolver interface. Both underlying resolvers
// are closed, whichever of them served resolution, and the first error
// encountered is returned.
func (r *fallbackResolver) Close() error {
	primaryErr := r.primary.Close()
	fallbackErr := r.fallback.Close()
	if primaryErr != nil {
		return errors.Trace(primaryErr)
	}
	return errors.Trace(fallbackErr)
}

// fallbackWatcher relays the primary resolution stream, switching to a
// stream freshly resolved from the fallback resolver if the primary
// stream fails.
type fallbackWatcher struct {
	tomb     tomb.Tomb
	primary  discovery.Watcher[Server]
	fallback Resolver
	out      chan Server
}

func (w *fallbackWatcher) loop() error {
	defer close(w.out)
	err := w.relay(w.primary)
	if err == nil || errors.Cause(err) == tomb.ErrDying {
		return err
	}
	logger.Warningf("primary resolution stream failed: %v; switching to fallback", err)
	sub, err := w.fallback.Resolve()
	if err != nil {
		return errors.Trace(err)
	}
	return w.relay(sub)
}

// relay copies servers from sub to the output channel until sub
// terminates or the watcher is killed. It returns nil on clean
// completion of sub and the stream error on failure. When the watcher
// is killed it stops sub and returns tomb.ErrDying.
func (w *fallbackWatcher) relay(sub discovery.Watcher[Server]) error {
	for {
		select {
		case <-w.tomb.Dying():
			_ = worker.Stop(sub)
			return tomb.ErrDying
		case server, ok := <-sub.Changes():
			if !ok {
				return errors.Trace(sub.Wait())
			}
			select {
			case <-w.tomb.Dying():
				_ = worker.Stop(sub)
				return tomb.ErrDying
			case w.out <- server:
			}
		}
	}
}

// Changes is part of the discovery.Watcher interface.
func (w *fallbackWatcher) Changes() <-chan Server {
	return w.out
}

// Kill is part of the worker.Worker interface.
func (w *fallbackWatcher) Kill() {
	w.tomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (w *fallbackWatcher) Wait() error {
	return w.tomb.Wait()
}
