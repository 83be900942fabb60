// Package connector defines the contract between itemscript and its
// storage backends.
//
// A Connector serves one or more schemes. Get returns a nil value with a
// nil error when nothing is found at the locator; every other failure is
// an error. Optional capabilities (posting, dumping, watching) are
// separate interfaces discovered by type assertion.
package connector

import (
	"context"
	"errors"

	"github.com/signadot/itemscript/locator"
	"github.com/signadot/itemscript/value"
)

var (
	ErrInvalidPath      = errors.New("invalid path")
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrBadQuery         = errors.New("bad query")
	ErrNotSupported     = errors.New("not supported")
	ErrNotFound         = errors.New("not found")
)

type Connector interface {
	Get(ctx context.Context, u *locator.URL) (*value.Value, error)
	// Put stores v at u and returns the stored value.
	Put(ctx context.Context, u *locator.URL, v *value.Value) (*value.Value, error)
	// Remove removes the value at u and returns it, or nil if there was
	// nothing to remove.
	Remove(ctx context.Context, u *locator.URL) (*value.Value, error)
}

// Poster stores values under a connector-generated final path segment.
type Poster interface {
	Post(ctx context.Context, u *locator.URL, v *value.Value) (*value.Value, error)
}

// Dumper exports and imports whole subtrees.
type Dumper interface {
	Dump(ctx context.Context, u *locator.URL) (*value.Value, error)
	Load(ctx context.Context, u *locator.URL, dump *value.Value) error
}

// Watcher delivers changes at u until ctx is done.
type Watcher interface {
	Watch(ctx context.Context, u *locator.URL, h value.Handler) error
}
