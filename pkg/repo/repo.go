// Package repo exposes repositories and the transactions mutating them.
//
// A ReadonlyRepo is an immutable snapshot of a repository, at some operation. Changes are
// made in a Transaction started from a ReadonlyRepo: the transaction works on private copies
// of the view and of the evolution index, then is either committed as a new operation or
// discarded.
//
// A Transaction must be committed or discarded exactly once.
package repo

import (
	"sort"
	"time"

	context2 "github.com/oneconcern/strata/pkg/context"
	"github.com/oneconcern/strata/pkg/errors"
	"github.com/oneconcern/strata/pkg/evolution"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/oplog"
	oplogstatus "github.com/oneconcern/strata/pkg/oplog/status"
	"github.com/oneconcern/strata/pkg/repo/status"
	"github.com/oneconcern/strata/pkg/settings"
	"github.com/oneconcern/strata/pkg/store"
	"github.com/oneconcern/strata/pkg/view"
	"go.uber.org/zap"
)

// Repo is the read contract shared by readonly and mutable repositories
type Repo interface {
	Store() *store.Store
	View() view.View
	Evolution() evolution.Evolution
}

var (
	_ Repo = &ReadonlyRepo{}
	_ Repo = &MutableRepo{}
)

// ReadonlyRepo is a repository loaded at some operation
type ReadonlyRepo struct {
	settings  *settings.UserSettings
	stores    context2.Stores
	store     *store.Store
	opLog     *oplog.OpLog
	operation *oplog.Operation
	view      *view.ReadonlyView
	evolution *evolution.ReadonlyEvolution
	opts      []Option
	options
}

func newRepo(us *settings.UserSettings, stores context2.Stores, opts []Option) *ReadonlyRepo {
	o := defaultOptions(opts)
	if us == nil {
		us = settings.New()
	}
	return &ReadonlyRepo{
		settings: us,
		stores:   stores,
		store:    store.New(stores, append([]store.Option{store.Logger(o.l)}, o.storeOptions...)...),
		opLog: oplog.New(stores.OpLog(),
			append([]oplog.Option{oplog.Logger(o.l), oplog.Host(us.Hostname(), us.Username())}, o.opLogOptions...)...),
		opts:    opts,
		options: o,
	}
}

// Init a new repository on some stores.
//
// The repository starts with a closed root commit and an open, empty working commit on top of it.
func Init(us *settings.UserSettings, stores context2.Stores, opts ...Option) (*ReadonlyRepo, error) {
	r := newRepo(us, stores, opts)
	startTime := model.Now()

	heads, err := r.opLog.Heads()
	if err != nil {
		return nil, status.ErrInit.Wrap(err)
	}
	if len(heads) > 0 {
		return nil, status.ErrAlreadyInitialized.WrapMessage("op heads: %v", heads)
	}

	emptyTree, err := r.store.WriteTree(model.TreeDescriptor{})
	if err != nil {
		return nil, status.ErrInit.Wrap(err)
	}
	root, err := r.store.WriteCommit(ForNewCommit(r.settings, r.store, emptyTree).desc)
	if err != nil {
		return nil, status.ErrInit.Wrap(err)
	}
	working, err := r.store.WriteCommit(ForOpenCommit(r.settings, r.store, root.ID(), emptyTree).desc)
	if err != nil {
		return nil, status.ErrInit.Wrap(err)
	}

	op, err := r.opLog.Append(
		model.ViewDescriptor{HeadIDs: []model.CommitID{working.ID()}, Checkout: working.ID()},
		model.OperationDescriptor{
			Description: "initialize repo",
			StartTime:   startTime,
			EndTime:     model.Now(),
		},
	)
	if err != nil {
		return nil, status.ErrInit.Wrap(err)
	}
	r.l.Info("repository initialized", zap.String("operation", string(op.ID)), zap.String("checkout", string(working.ID())))

	if err := r.loadAt(op); err != nil {
		return nil, err
	}
	return r, nil
}

// Load a repository at its current op head.
//
// When the operation log has several heads, the most recent operation is loaded.
func Load(us *settings.UserSettings, stores context2.Stores, opts ...Option) (*ReadonlyRepo, error) {
	r := newRepo(us, stores, opts)
	op, err := r.currentHead()
	if err != nil {
		return nil, err
	}
	if err := r.loadAt(op); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *ReadonlyRepo) currentHead() (*oplog.Operation, error) {
	heads, err := r.opLog.Heads()
	if err != nil {
		return nil, status.ErrLoad.Wrap(err)
	}
	if len(heads) == 0 {
		return nil, status.ErrNotInitialized.Wrap(oplogstatus.ErrNoHead)
	}

	ops := make([]*oplog.Operation, 0, len(heads))
	for _, head := range heads {
		op, err := r.opLog.Resolve(head)
		if err != nil {
			return nil, status.ErrLoad.Wrap(err)
		}
		ops = append(ops, op)
	}
	if len(ops) > 1 {
		r.l.Warn("operation log has several heads: loading the most recent one", zap.Int("heads", len(ops)))
		sort.Slice(ops, func(i, j int) bool {
			ei, ej := ops[i].Descriptor.EndTime, ops[j].Descriptor.EndTime
			if !ei.Equal(ej) {
				return ei.After(ej)
			}
			return ops[i].ID > ops[j].ID
		})
	}
	return ops[0], nil
}

func (r *ReadonlyRepo) loadAt(op *oplog.Operation) error {
	v := view.NewReadonlyView(r.store, r.opLog, op, r.l)
	e, err := evolution.NewReadonly(r.store, v)
	if err != nil {
		return status.ErrLoad.Wrap(err)
	}
	r.operation = op
	r.view = v
	r.evolution = e
	return nil
}

// LoadAt loads this repository at some operation
func (r *ReadonlyRepo) LoadAt(id model.OperationID) (*ReadonlyRepo, error) {
	op, err := r.opLog.Resolve(id)
	if err != nil {
		return nil, status.ErrLoad.Wrap(err)
	}
	other := newRepo(r.settings, r.stores, r.opts)
	if err := other.loadAt(op); err != nil {
		return nil, err
	}
	return other, nil
}

// Reload this repository at its current op head
func (r *ReadonlyRepo) Reload() (*ReadonlyRepo, error) {
	return Load(r.settings, r.stores, r.opts...)
}

// StartTransaction opens a transaction on this repository
func (r *ReadonlyRepo) StartTransaction(description string) *Transaction {
	return NewTransaction(r, r.view, r.evolution, description)
}

// Store yields the object store
func (r *ReadonlyRepo) Store() *store.Store { return r.store }

// View yields the view at the loaded operation
func (r *ReadonlyRepo) View() view.View { return r.view }

// ReadonlyView yields the view at the loaded operation
func (r *ReadonlyRepo) ReadonlyView() *view.ReadonlyView { return r.view }

// Evolution yields the evolution of the view at the loaded operation
func (r *ReadonlyRepo) Evolution() evolution.Evolution { return r.evolution }

// ReadonlyEvolution yields the evolution of the view at the loaded operation
func (r *ReadonlyRepo) ReadonlyEvolution() *evolution.ReadonlyEvolution { return r.evolution }

// Operation yields the loaded operation
func (r *ReadonlyRepo) Operation() *oplog.Operation { return r.operation }

// OpLog yields the operation log
func (r *ReadonlyRepo) OpLog() *oplog.OpLog { return r.opLog }

// Settings yields the user settings of this repository
func (r *ReadonlyRepo) Settings() *settings.UserSettings { return r.settings }

// Logger of this repository
func (r *ReadonlyRepo) Logger() *zap.Logger { return r.l }

// IsNotInitialized tells if some error reports an uninitialized repository
func IsNotInitialized(err error) bool {
	return errors.Is(err, status.ErrNotInitialized)
}

func now() time.Time {
	return model.Now()
}
