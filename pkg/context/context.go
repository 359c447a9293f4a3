/*
 * Copyright © 2019 One Concern
 *
 */

package context

import (
	"bytes"
	"context"
	"fmt"

	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/storage"
)

// Stores defines the complete set of stores backing a repository
type Stores interface {
	// Metadata yields the storage for commits, trees, conflicts and views
	Metadata() storage.Store
	// SetMetadata sets the storage for commits, trees, conflicts and views
	SetMetadata(metadata storage.Store)

	// Blob yields the storage for file contents
	Blob() storage.Store
	// SetBlob sets the storage for file contents
	SetBlob(blob storage.Store)

	// OpLog yields the storage for the operation log
	OpLog() storage.Store
	// SetOpLog sets the storage for the operation log
	SetOpLog(opLog storage.Store)

	// Close releases the resources held by the underlying stores, if any
	Close() error
}

// type safeguard
var _ Stores = &defaultStores{}

// defaultStores is the default implementation of Stores
type defaultStores struct {
	metadata storage.Store
	blob     storage.Store
	opLog    storage.Store
	closers  []func() error
	_        struct{}
}

// New creates a new empty instance of context stores, to be set with the Setxxx methods.
func New() Stores {
	return &defaultStores{}
}

// NewStores creates a new instance of context stores
func NewStores(metadata, blob, opLog storage.Store) Stores {
	return &defaultStores{metadata: metadata, blob: blob, opLog: opLog}
}

// SetMetadata sets the storage for commits, trees, conflicts and views
func (c *defaultStores) SetMetadata(metadata storage.Store) {
	c.metadata = metadata
}

// SetBlob sets the storage for file contents
func (c *defaultStores) SetBlob(blob storage.Store) {
	c.blob = blob
}

// SetOpLog sets the storage for the operation log
func (c *defaultStores) SetOpLog(opLog storage.Store) {
	c.opLog = opLog
}

// Metadata yields the storage for commits, trees, conflicts and views
func (c *defaultStores) Metadata() storage.Store {
	return c.metadata
}

// Blob yields the storage for file contents
func (c *defaultStores) Blob() storage.Store {
	return c.blob
}

// OpLog yields the storage for the operation log
func (c *defaultStores) OpLog() storage.Store {
	return c.opLog
}

// Close releases the stores in the reverse order they were opened
func (c *defaultStores) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

func (c *defaultStores) String() string {
	return fmt.Sprintf("metadata: %q, blob: %q, oplog: %q", c.metadata, c.blob, c.opLog)
}

// CreateContext marshals and persists a context in the config store
func CreateContext(ctx context.Context, configStore storage.Store, context model.Context) error {
	// 1. Validate
	err := model.ValidateContext(context)
	if err != nil {
		return fmt.Errorf("validation for new context %s failed, err: %w", context.Name, err)
	}
	// 2. Serialize
	b, err := model.MarshalContext(&context)
	if err != nil {
		return fmt.Errorf("failed to serialize context: %w", err)
	}
	// 3. Create only
	err = configStore.Put(ctx, model.GetPathToContext(), bytes.NewReader(b), storage.NoOverWrite)
	if err != nil {
		return fmt.Errorf("failed to write context %s: %w", context.Name, err)
	}
	return nil
}

// GetContext downloads and unmarshals a context
func GetContext(ctx context.Context, configStore storage.Store) (*model.Context, error) {
	b, err := storage.ReadAll(ctx, configStore, model.GetPathToContext())
	if err != nil {
		return nil, err
	}
	context, err := model.UnmarshalContext(b)
	if err != nil {
		return nil, err
	}
	if err = model.ValidateContext(*context); err != nil {
		return nil, err
	}
	return context, nil
}
