// Package status defines errors for repository contexts
package status

import (
	"github.com/oneconcern/strata/pkg/errors"
)

var (
	// ErrInvalidContext indicates that a context descriptor is incomplete or not supported
	ErrInvalidContext = errors.New("invalid context")

	// ErrInitMetadata indicates that we could not initialize the metadata store for this context
	ErrInitMetadata = errors.New("failed to initialize metadata store")

	// ErrInitBlob indicates that we could not initialize the blob store for this context
	ErrInitBlob = errors.New("failed to initialize blob store")

	// ErrInitOpLog indicates that we could not initialize the operation log store for this context
	ErrInitOpLog = errors.New("failed to initialize operation log store")
)
