// Package status declares error constants returned by
// the oplog package.
package status

import (
	"github.com/oneconcern/strata/pkg/errors"
)

var (
	// ErrOperationNotFound indicates that an operation is not present in the log
	ErrOperationNotFound = errors.New("operation not found")

	// ErrViewNotFound indicates that a view is not present in the log
	ErrViewNotFound = errors.New("view not found")

	// ErrCorrupt indicates that a view or operation cannot be decoded, or does not match its id
	ErrCorrupt = errors.New("corrupt operation log entry")

	// ErrWriteView indicates a failure when writing a view
	ErrWriteView = errors.New("failed to write view")

	// ErrWriteOperation indicates a failure when writing an operation
	ErrWriteOperation = errors.New("failed to write operation")

	// ErrKSUID indicates that we failed to generate a new ksuid.
	// An error here is telling of an issue with the random generator.
	ErrKSUID = errors.New("failed to generate ksuid")

	// ErrInvalidToken indicates an operation id which is not a valid ksuid
	ErrInvalidToken = errors.New("invalid operation token")

	// ErrMaxCount indicates a wrong max count parameter (should be strictly positive)
	ErrMaxCount = errors.New("max count needs to be greater than 0")

	// ErrGetTokens indicates a failure when retrieving operation ids
	ErrGetTokens = errors.New("failed to get operation tokens")

	// ErrHeads indicates a failure when reading or updating the op heads
	ErrHeads = errors.New("failed to access op heads")

	// ErrNoHead indicates that the operation log has no head: the repository has not been initialized
	ErrNoHead = errors.New("operation log has no head")
)
