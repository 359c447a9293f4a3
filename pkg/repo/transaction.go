package repo

import (
	"runtime"
	"time"

	"github.com/oneconcern/strata/pkg/evolution"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/oplog"
	"github.com/oneconcern/strata/pkg/store"
	"github.com/oneconcern/strata/pkg/view"
	"go.uber.org/zap"
)

// Transaction is a session of changes on a repository.
//
// All changes are made on private copies of the base view and evolution index: they are
// not visible to other transactions started from the same base. A transaction must be
// closed exactly once, by Commit or Discard. Using a closed transaction panics, and a
// transaction released while still open is reported to the leak handler of its repository.
type Transaction struct {
	repo        *MutableRepo // nil once closed
	description string
	startTime   time.Time
	l           *zap.Logger
}

// NewTransaction starts a transaction from a base repository and consistent snapshots of its view and evolution
func NewTransaction(base *ReadonlyRepo, baseView *view.ReadonlyView, baseEvolution *evolution.ReadonlyEvolution, description string) *Transaction {
	tx := &Transaction{
		repo:        newMutableRepo(base, baseView.StartModification(), baseEvolution.StartModification()),
		description: description,
		startTime:   now(),
		l:           base.l,
	}

	onLeak := base.onLeak
	runtime.SetFinalizer(tx, func(t *Transaction) {
		if t.repo != nil {
			onLeak(t.description, t.startTime)
		}
	})
	tx.l.Debug("transaction started", zap.String("description", description), zap.String("base", string(baseView.OperationID())))
	return tx
}

func (tx *Transaction) mustBeOpen() *MutableRepo {
	if tx.repo == nil {
		panic("dev error: transaction used after it was committed or discarded")
	}
	return tx.repo
}

// close the transaction and hand over its mutable view
func (tx *Transaction) close() *view.MutableView {
	v := tx.mustBeOpen().detach()
	tx.repo = nil
	runtime.SetFinalizer(tx, nil)
	return v
}

// Description of the transaction
func (tx *Transaction) Description() string { return tx.description }

// StartTime of the transaction
func (tx *Transaction) StartTime() time.Time { return tx.startTime }

// IsClosed tells if the transaction has been committed or discarded
func (tx *Transaction) IsClosed() bool { return tx.repo == nil }

// BaseRepo yields the repository this transaction started from
func (tx *Transaction) BaseRepo() *ReadonlyRepo {
	return tx.mustBeOpen().BaseRepo()
}

// Store yields the object store
func (tx *Transaction) Store() *store.Store {
	return tx.mustBeOpen().Store()
}

// AsRepo exposes the current state of the transaction through the read contract of repositories
func (tx *Transaction) AsRepo() Repo {
	return tx.mustBeOpen()
}

// AsRepoMut exposes the mutable repository
func (tx *Transaction) AsRepoMut() *MutableRepo {
	return tx.mustBeOpen()
}

// WriteCommit persists a new commit and makes it a head
func (tx *Transaction) WriteCommit(desc model.CommitDescriptor) (*store.Commit, error) {
	return tx.mustBeOpen().WriteCommit(desc)
}

// SetCheckout overwrites the checkout. The commit is not checked.
func (tx *Transaction) SetCheckout(id model.CommitID) {
	tx.mustBeOpen().SetCheckout(id)
}

// AddHead makes a commit a head
func (tx *Transaction) AddHead(c *store.Commit) {
	tx.mustBeOpen().AddHead(c)
}

// RemoveHead removes a commit from the heads
func (tx *Transaction) RemoveHead(c *store.Commit) {
	tx.mustBeOpen().RemoveHead(c)
}

// SetView replaces the whole view
func (tx *Transaction) SetView(data model.ViewDescriptor) {
	tx.mustBeOpen().SetView(data)
}

// Commit closes the transaction and persists its view as a new operation.
//
// The transaction is closed even when the operation cannot be persisted.
func (tx *Transaction) Commit() (*oplog.Operation, error) {
	v := tx.close()
	op, err := v.Save(tx.description, tx.startTime)
	if err != nil {
		tx.l.Error("transaction closed but not persisted", zap.String("description", tx.description), zap.Error(err))
		return nil, err
	}
	return op, nil
}

// Discard closes the transaction without persisting anything
func (tx *Transaction) Discard() {
	tx.close()
	tx.l.Debug("transaction discarded", zap.String("description", tx.description))
}
