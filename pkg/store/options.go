package store

import (
	"context"

	"go.uber.org/zap"
)

// Option configures an object store
type Option func(*Store)

// Logger sets a logger for the object store
func Logger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.l = l
		}
	}
}

// CommitCacheSize sets the number of commits kept in memory. Defaults to 1024.
func CommitCacheSize(size int) Option {
	return func(s *Store) {
		if size > 0 {
			s.cacheSize = size
		}
	}
}

// Contexter sets the function producing a context for every storage call
func Contexter(fn func() context.Context) Option {
	return func(s *Store) {
		if fn != nil {
			s.contexter = fn
		}
	}
}

func backgroundContexter() context.Context {
	return context.Background()
}
