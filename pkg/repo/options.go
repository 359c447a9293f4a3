package repo

import (
	"fmt"
	"time"

	"github.com/oneconcern/strata/pkg/oplog"
	"github.com/oneconcern/strata/pkg/store"
	"go.uber.org/zap"
)

// LeakHandler is called when a transaction is released while neither committed nor discarded
type LeakHandler func(description string, startTime time.Time)

// Option configures a repository
type Option func(*options)

type options struct {
	l            *zap.Logger
	onLeak       LeakHandler
	storeOptions []store.Option
	opLogOptions []oplog.Option
}

// Logger sets a logger for the repository
func Logger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.l = l
		}
	}
}

// OnLeak sets the handler reporting transactions released while still open.
// The default handler logs an error then panics.
func OnLeak(handler LeakHandler) Option {
	return func(o *options) {
		if handler != nil {
			o.onLeak = handler
		}
	}
}

// StoreOptions are passed to the object store
func StoreOptions(opts ...store.Option) Option {
	return func(o *options) {
		o.storeOptions = append(o.storeOptions, opts...)
	}
}

// OpLogOptions are passed to the operation log
func OpLogOptions(opts ...oplog.Option) Option {
	return func(o *options) {
		o.opLogOptions = append(o.opLogOptions, opts...)
	}
}

func defaultOptions(opts []Option) options {
	o := options{l: zap.NewNop()}
	for _, apply := range opts {
		apply(&o)
	}
	if o.onLeak == nil {
		o.onLeak = panicOnLeak(o.l)
	}
	return o
}

func panicOnLeak(l *zap.Logger) LeakHandler {
	return func(description string, startTime time.Time) {
		l.Error("transaction released without being committed or discarded",
			zap.String("description", description),
			zap.Time("startTime", startTime),
		)
		panic(fmt.Sprintf("dev error: transaction %q was neither committed nor discarded", description))
	}
}
