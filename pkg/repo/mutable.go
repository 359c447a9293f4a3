package repo

import (
	"github.com/oneconcern/strata/pkg/evolution"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/store"
	"github.com/oneconcern/strata/pkg/view"
)

const detachedMessage = "dev error: mutable repo used after its transaction was closed"

// MutableRepo is the state of a repository inside a transaction.
//
// It borrows its base repository, and owns a mutable view and a mutable evolution index.
// Any change to the heads or to the whole view invalidates the evolution index.
type MutableRepo struct {
	base      *ReadonlyRepo
	view      *view.MutableView
	evolution *evolution.MutableEvolution
	detached  bool
}

func newMutableRepo(base *ReadonlyRepo, v *view.MutableView, e *evolution.MutableEvolution) *MutableRepo {
	return &MutableRepo{base: base, view: v, evolution: e}
}

func (r *MutableRepo) mustBeAttached() {
	if r.detached {
		panic(detachedMessage)
	}
}

// detach hands the mutable view over and makes any retained handle on this repo unusable
func (r *MutableRepo) detach() *view.MutableView {
	r.mustBeAttached()
	v := r.view
	r.detached = true
	r.view = nil
	r.evolution = nil
	return v
}

// BaseRepo yields the repository this mutable repo derives from
func (r *MutableRepo) BaseRepo() *ReadonlyRepo {
	r.mustBeAttached()
	return r.base
}

// Store yields the object store
func (r *MutableRepo) Store() *store.Store {
	r.mustBeAttached()
	return r.base.store
}

// View yields the current state of the mutable view, through the read contract
func (r *MutableRepo) View() view.View {
	r.mustBeAttached()
	return r.view
}

// MutableView yields the mutable view for direct changes.
//
// Changes made this way do not invalidate the evolution index explicitly:
// the index still detects them through the view version.
func (r *MutableRepo) MutableView() *view.MutableView {
	r.mustBeAttached()
	return r.view
}

// Evolution binds the mutable evolution to the current view. The result must not be retained.
func (r *MutableRepo) Evolution() evolution.Evolution {
	r.mustBeAttached()
	return r.evolution.Bind(r.view)
}

// EvolutionMut yields the mutable evolution index. The result must not be retained.
func (r *MutableRepo) EvolutionMut() *evolution.MutableEvolution {
	r.mustBeAttached()
	return r.evolution
}

// WriteCommit persists a new commit and makes it a head
func (r *MutableRepo) WriteCommit(desc model.CommitDescriptor) (*store.Commit, error) {
	r.mustBeAttached()
	commit, err := r.base.store.WriteCommit(desc)
	if err != nil {
		return nil, err
	}
	r.AddHead(commit)
	return commit, nil
}

// SetCheckout overwrites the checkout. The commit is not checked.
func (r *MutableRepo) SetCheckout(id model.CommitID) {
	r.mustBeAttached()
	r.view.SetCheckout(id)
}

// AddHead makes a commit a head
func (r *MutableRepo) AddHead(c *store.Commit) {
	r.mustBeAttached()
	r.view.AddHead(c)
	r.evolution.Invalidate()
}

// RemoveHead removes a commit from the heads
func (r *MutableRepo) RemoveHead(c *store.Commit) {
	r.mustBeAttached()
	r.view.RemoveHead(c)
	r.evolution.Invalidate()
}

// SetView replaces the whole view
func (r *MutableRepo) SetView(data model.ViewDescriptor) {
	r.mustBeAttached()
	r.view.SetView(data)
	r.evolution.Invalidate()
}
