// Package status declares error constants returned by
// the repo package.
package status

import (
	"github.com/oneconcern/strata/pkg/errors"
)

var (
	// ErrNotInitialized indicates that the operation log of the repository has no head
	ErrNotInitialized = errors.New("repository is not initialized")

	// ErrAlreadyInitialized indicates an attempt to initialize a repository twice
	ErrAlreadyInitialized = errors.New("repository is already initialized")

	// ErrInit indicates a failure when initializing a repository
	ErrInit = errors.New("failed to initialize repository")

	// ErrLoad indicates a failure when loading a repository at some operation
	ErrLoad = errors.New("failed to load repository")

	// ErrCommitNotFound indicates that no reachable commit matches an id prefix
	ErrCommitNotFound = errors.New("no commit matches this id")

	// ErrAmbiguousCommit indicates that several reachable commits match an id prefix
	ErrAmbiguousCommit = errors.New("commit id prefix is ambiguous")
)
