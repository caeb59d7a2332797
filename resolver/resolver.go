// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package resolver defines how clients obtain the addresses of the
// servers they should talk to, as a stream of candidates rather than a
// single answer, so that a resolution can be refreshed for as long as
// the subscription is held open.
package resolver

import (
	"net"
	"strconv"

	"github.com/juju/discovery"
)

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/resolver_mock.go github.com/juju/discovery/resolver Resolver

// Server identifies a single endpoint offering the resolved service.
type Server struct {
	Host string
	Port int
}

// String returns the server in dialable host:port form.
func (s Server) String() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Resolver produces streams of candidate servers. How candidates are
// found is the implementation's business; DNS lookup, a static list
// and a registry subscription all fit behind this interface.
type Resolver interface {
	// Resolve opens a new resolution stream. The returned watcher
	// delivers candidate servers until the stream terminates, per
	// the watcher contract. Each call opens an independent stream.
	Resolve() (discovery.Watcher[Server], error)

	// Close releases any resources held by the resolver. Streams
	// already open are not required to survive it.
	Close() error
}
