package context

import (
	"path/filepath"

	"github.com/oneconcern/strata/pkg/context/status"
	"github.com/oneconcern/strata/pkg/errors"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/storage"
	"github.com/oneconcern/strata/pkg/storage/bdgr"
	"github.com/oneconcern/strata/pkg/storage/localfs"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Option configures how stores are opened from a context descriptor
type Option func(*openSettings)

type openSettings struct {
	fs       afero.Fs
	l        *zap.Logger
	metrics  *storage.Metrics
	inMemory bool
}

// Fs sets the file system used by the localfs backend. Defaults to the OS file system.
func Fs(fs afero.Fs) Option {
	return func(s *openSettings) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// Logger sets the logger passed to the stores
func Logger(l *zap.Logger) Option {
	return func(s *openSettings) {
		if l != nil {
			s.l = l
		}
	}
}

// Metrics instruments every opened store with the given collectors
func Metrics(m *storage.Metrics) Option {
	return func(s *openSettings) {
		s.metrics = m
	}
}

// InMemory opens badger backends without touching the disk
func InMemory(enabled bool) Option {
	return func(s *openSettings) {
		s.inMemory = enabled
	}
}

// Open builds the stores described by a context, with locations relative to root.
//
// Stores sharing the same location share the same underlying store.
func Open(root string, c model.Context, opts ...Option) (Stores, error) {
	s := openSettings{
		fs: afero.NewOsFs(),
		l:  zap.NewNop(),
	}
	for _, apply := range opts {
		apply(&s)
	}
	if err := model.ValidateContext(c); err != nil {
		return nil, status.ErrInvalidContext.Wrap(err)
	}

	stores := &defaultStores{}
	opened := make(map[string]storage.Store, 3)
	open := func(location string, sentinel *errors.Error) (storage.Store, error) {
		if store, ok := opened[location]; ok {
			return store, nil
		}
		store, err := s.openOne(root, c.Backend, location, stores)
		if err != nil {
			return nil, sentinel.Wrap(err)
		}
		if s.metrics != nil {
			store = storage.Instrument(store, s.l, s.metrics)
		}
		opened[location] = store
		return store, nil
	}

	var err error
	if stores.metadata, err = open(c.Metadata, status.ErrInitMetadata); err != nil {
		_ = stores.Close()
		return nil, err
	}
	if stores.blob, err = open(c.Blob, status.ErrInitBlob); err != nil {
		_ = stores.Close()
		return nil, err
	}
	if stores.opLog, err = open(c.OpLog, status.ErrInitOpLog); err != nil {
		_ = stores.Close()
		return nil, err
	}
	return stores, nil
}

func (s openSettings) openOne(root string, backend model.Backend, location string, stores *defaultStores) (storage.Store, error) {
	dir := filepath.Join(root, location)
	switch backend {
	case model.Badger:
		db, err := bdgr.New(dir, bdgr.InMemory(s.inMemory), bdgr.Logger(s.l))
		if err != nil {
			return nil, err
		}
		stores.closers = append(stores.closers, db.Close)
		return db, nil
	default:
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		return localfs.NewAtomic(afero.NewBasePathFs(s.fs, dir))
	}
}
