// Package status declares error constants returned by the object store.
package status

import "github.com/oneconcern/strata/pkg/errors"

var (
	// ErrNotFound indicates that a commit, tree, conflict or file could not be found in the store
	ErrNotFound = errors.New("object not found")

	// ErrCorrupt indicates that a stored object does not match its id, or cannot be decoded
	ErrCorrupt = errors.New("corrupt object")

	// ErrWrite indicates that an object could not be written to the store
	ErrWrite = errors.New("cannot write object")

	// ErrInvalidTree indicates an attempt to build a tree with an invalid entry
	ErrInvalidTree = errors.New("invalid tree entry")
)
