// Package view holds the set of head commits and the checkout of a repository.
//
// A ReadonlyView is a frozen snapshot, loaded from an operation. A MutableView is a private working
// copy derived from a ReadonlyView: every mutation bumps its version, so that derived indexes can
// tell whether they are stale.
package view

import (
	"sort"
	"time"

	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/oplog"
	"github.com/oneconcern/strata/pkg/store"
	"go.uber.org/zap"
)

// View is the read contract shared by readonly and mutable views
type View interface {
	// Checkout yields the commit the user is working on
	Checkout() model.CommitID
	// HeadIDs yields the sorted head commits
	HeadIDs() []model.CommitID
	// HasHead tells if a commit is a head
	HasHead(model.CommitID) bool
	// Version is bumped on every mutation
	Version() uint64
	// Store yields the object store holding the commits of this view
	Store() *store.Store
}

var (
	_ View = &ReadonlyView{}
	_ View = &MutableView{}
)

type heads map[model.CommitID]struct{}

func newHeads(ids []model.CommitID) heads {
	h := make(heads, len(ids))
	for _, id := range ids {
		h[id] = struct{}{}
	}
	return h
}

func (h heads) sorted() []model.CommitID {
	ids := make([]model.CommitID, 0, len(h))
	for id := range h {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ReadonlyView is the view resulting from some operation
type ReadonlyView struct {
	store    *store.Store
	opLog    *oplog.OpLog
	op       model.OperationID
	checkout model.CommitID
	heads    heads
	l        *zap.Logger
}

// NewReadonlyView builds the view resulting from an operation
func NewReadonlyView(s *store.Store, opLog *oplog.OpLog, op *oplog.Operation, l *zap.Logger) *ReadonlyView {
	if l == nil {
		l = zap.NewNop()
	}
	return &ReadonlyView{
		store:    s,
		opLog:    opLog,
		op:       op.ID,
		checkout: op.View.Checkout,
		heads:    newHeads(op.View.HeadIDs),
		l:        l,
	}
}

// OperationID yields the operation this view results from
func (v *ReadonlyView) OperationID() model.OperationID { return v.op }

// Checkout yields the commit the user is working on
func (v *ReadonlyView) Checkout() model.CommitID { return v.checkout }

// HeadIDs yields the sorted head commits
func (v *ReadonlyView) HeadIDs() []model.CommitID { return v.heads.sorted() }

// HasHead tells if a commit is a head
func (v *ReadonlyView) HasHead(id model.CommitID) bool {
	_, ok := v.heads[id]
	return ok
}

// Version of a readonly view is always 0
func (v *ReadonlyView) Version() uint64 { return 0 }

// Store yields the object store
func (v *ReadonlyView) Store() *store.Store { return v.store }

// Descriptor yields the serializable form of this view
func (v *ReadonlyView) Descriptor() model.ViewDescriptor {
	return model.ViewDescriptor{HeadIDs: v.heads.sorted(), Checkout: v.checkout}
}

// StartModification derives a private mutable copy of this view
func (v *ReadonlyView) StartModification() *MutableView {
	return &MutableView{
		store:    v.store,
		opLog:    v.opLog,
		base:     v.op,
		checkout: v.checkout,
		heads:    newHeads(v.HeadIDs()),
		l:        v.l,
	}
}

// MutableView is a working copy of a view
type MutableView struct {
	store    *store.Store
	opLog    *oplog.OpLog
	base     model.OperationID
	checkout model.CommitID
	heads    heads
	version  uint64
	l        *zap.Logger
}

// BaseOperationID yields the operation this view was derived from
func (v *MutableView) BaseOperationID() model.OperationID { return v.base }

// Checkout yields the commit the user is working on
func (v *MutableView) Checkout() model.CommitID { return v.checkout }

// HeadIDs yields the sorted head commits
func (v *MutableView) HeadIDs() []model.CommitID { return v.heads.sorted() }

// HasHead tells if a commit is a head
func (v *MutableView) HasHead(id model.CommitID) bool {
	_, ok := v.heads[id]
	return ok
}

// Version is bumped on every mutation
func (v *MutableView) Version() uint64 { return v.version }

// Store yields the object store
func (v *MutableView) Store() *store.Store { return v.store }

// Descriptor yields the serializable form of this view
func (v *MutableView) Descriptor() model.ViewDescriptor {
	return model.ViewDescriptor{HeadIDs: v.heads.sorted(), Checkout: v.checkout}
}

// SetCheckout overwrites the checkout
func (v *MutableView) SetCheckout(id model.CommitID) {
	v.checkout = id
	v.version++
}

// AddHead makes a commit a head. Its parents are no longer heads.
func (v *MutableView) AddHead(c *store.Commit) {
	v.heads[c.ID()] = struct{}{}
	for _, parent := range c.ParentIDs() {
		delete(v.heads, parent)
	}
	v.version++
}

// RemoveHead removes a commit from the heads. Its parents become heads.
func (v *MutableView) RemoveHead(c *store.Commit) {
	delete(v.heads, c.ID())
	for _, parent := range c.ParentIDs() {
		v.heads[parent] = struct{}{}
	}
	v.version++
}

// SetView replaces the whole content of the view
func (v *MutableView) SetView(data model.ViewDescriptor) {
	v.heads = newHeads(data.HeadIDs)
	v.checkout = data.Checkout
	v.version++
}

// Save persists this view as the result of a new operation, based on the operation this view was derived from.
// The new operation replaces its parent as an op head.
func (v *MutableView) Save(description string, startTime time.Time) (*oplog.Operation, error) {
	data := v.Descriptor()
	desc := model.OperationDescriptor{
		Description: description,
		StartTime:   startTime.UTC(),
		EndTime:     model.Now(),
	}
	if v.base != "" {
		desc.Parents = []model.OperationID{v.base}
	}
	op, err := v.opLog.Append(data, desc)
	if err != nil {
		return nil, err
	}
	v.l.Info("operation saved",
		zap.String("operation", string(op.ID)),
		zap.String("description", description),
		zap.Int("heads", len(data.HeadIDs)),
		zap.String("checkout", string(data.Checkout)),
	)
	return op, nil
}
