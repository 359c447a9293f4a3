// Package bdgr implements the storage.Store interface on top of an embedded badger database.
package bdgr

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dgraph-io/badger/v3"
	"github.com/oneconcern/strata/pkg/errors"
	"github.com/oneconcern/strata/pkg/storage"
	"github.com/oneconcern/strata/pkg/storage/status"
	"go.uber.org/zap"
)

var _ storage.Store = &Store{}

// Option configures a badger store
type Option func(*settings)

type settings struct {
	inMemory bool
	l        *zap.Logger
	retry    time.Duration
}

// InMemory runs badger without persisting anything on disk. This is mostly useful for tests.
func InMemory(enabled bool) Option {
	return func(s *settings) {
		s.inMemory = enabled
	}
}

// Logger sets a logger for the badger database
func Logger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.l = l
		}
	}
}

// RetryInterval sets the constant backoff interval used when a badger transaction conflicts
func RetryInterval(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.retry = d
		}
	}
}

// Store is a badger-backed key/value store
type Store struct {
	*badger.DB
	dir   string
	retry time.Duration
}

// New opens (or creates) a badger database located at dir
func New(dir string, opts ...Option) (*Store, error) {
	s := settings{
		l:     zap.NewNop(),
		retry: 10 * time.Millisecond,
	}
	for _, apply := range opts {
		apply(&s)
	}

	options := badger.DefaultOptions(dir).WithLogger(badgerLogger{SugaredLogger: s.l.Sugar()})
	if s.inMemory {
		options = options.WithDir("").WithValueDir("").WithInMemory(true)
	}

	db, err := badger.Open(options)
	if err != nil {
		return nil, status.ErrStorageAPI.Wrap(err)
	}
	return &Store{DB: db, dir: dir, retry: s.retry}, nil
}

func badgerKey(key string) []byte {
	return []byte(strings.TrimPrefix(key, "/"))
}

func (s *Store) String() string {
	if s.dir == "" {
		return "badger"
	}
	return "badger@" + s.dir
}

func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	err := s.DB.View(func(txn *badger.Txn) error {
		_, e := txn.Get(badgerKey(key))
		return e
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return false, nil
		}

		// some technical error occurred: interrupt
		return false, err
	}

	return true, nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	var value []byte
	err := s.DB.View(func(txn *badger.Txn) error {
		item, e := txn.Get(badgerKey(key))
		if e != nil {
			return e
		}
		value, e = item.ValueCopy(nil)

		return e
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, status.ErrNotExists.WrapMessage("key: %s", key)
		}
		return nil, err
	}
	return ioutil.NopCloser(bytes.NewReader(value)), nil
}

// Put sets a value. Conflicting concurrent transactions are retried.
func (s *Store) Put(ctx context.Context, key string, source io.Reader, exclusive bool) error {
	value, err := ioutil.ReadAll(source)
	if err != nil {
		return err
	}
	k := badgerKey(key)

	return backoff.Retry(func() error {
		err := s.DB.Update(func(txn *badger.Txn) error {
			if exclusive {
				_, e := txn.Get(k)
				if e == nil {
					return status.ErrExists.WrapMessage("key: %s", key)
				}
				if !errors.Is(e, badger.ErrKeyNotFound) {
					return e
				}
			}

			return txn.Set(k, value)
		})
		return retryOnConflict(err)
	},
		backoff.WithContext(backoff.NewConstantBackOff(s.retry), ctx),
	)
}

// retryOnConflict only lets badger transaction conflicts be retried
func retryOnConflict(err error) error {
	if err == nil || errors.Is(err, badger.ErrConflict) {
		return err
	}
	return backoff.Permanent(err)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return backoff.Retry(func() error {
		return retryOnConflict(s.DB.Update(func(txn *badger.Txn) error {
			return txn.Delete(badgerKey(key))
		}))
	},
		backoff.WithContext(backoff.NewConstantBackOff(s.retry), ctx),
	)
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	return s.prefixed(ctx, "")
}

func (s *Store) prefixed(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0, 100)
	p := badgerKey(prefix)
	err := s.DB.View(func(txn *badger.Txn) error {
		iterator := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: false,
			Prefix:         p,
		})
		defer iterator.Close()

		for iterator.Seek(p); iterator.ValidForPrefix(p); iterator.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			keys = append(keys, string(iterator.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys, err
}

func (s *Store) KeysPrefix(ctx context.Context, pageToken, prefix, delimiter string, count int) ([]string, string, error) {
	all, err := s.prefixed(ctx, prefix)
	if err != nil {
		return nil, "", err
	}
	keys, next := storage.PageKeys(all, pageToken, prefix, delimiter, count)
	return keys, next, nil
}

func (s *Store) Clear(ctx context.Context) error {
	return s.DB.DropAll()
}

// badgerLogger adapts a zap sugared logger to the badger logging interface
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.SugaredLogger.Warnf(format, args...)
}
