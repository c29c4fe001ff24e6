// Package store persists conversation snapshots. Three backends share
// the domain.SessionStore contract: postgres for deployments, sqlite for
// single-host setups, and an in-memory store for tests and the REPL.
package store

import "errors"

var ErrNotFound = errors.New("not found")
