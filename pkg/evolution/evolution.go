package evolution

import (
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/store"
	"github.com/oneconcern/strata/pkg/view"
)

// Evolution answers obsolescence questions about the commits of a view
type Evolution interface {
	Successors(model.CommitID) ([]model.CommitID, error)
	NewSuccessors(model.CommitID) ([]model.CommitID, error)
	IsObsolete(model.CommitID) (bool, error)
	IsOrphan(model.CommitID) (bool, error)
	IsDivergent(model.ChangeID) (bool, error)
}

var (
	_ Evolution = &ReadonlyEvolution{}
	_ Evolution = bound{}
)

// ReadonlyEvolution is computed once over a readonly view
type ReadonlyEvolution struct {
	store *store.Store
	state *State
}

// NewReadonly computes the evolution of a readonly view
func NewReadonly(s *store.Store, v *view.ReadonlyView) (*ReadonlyEvolution, error) {
	state, err := Compute(s, v)
	if err != nil {
		return nil, err
	}
	return &ReadonlyEvolution{store: s, state: state}, nil
}

// Successors yields the commits rewriting some commit
func (e *ReadonlyEvolution) Successors(id model.CommitID) ([]model.CommitID, error) {
	return e.state.Successors(id), nil
}

// NewSuccessors yields the live commits superseding some commit
func (e *ReadonlyEvolution) NewSuccessors(id model.CommitID) ([]model.CommitID, error) {
	return e.state.NewSuccessors(id), nil
}

// IsObsolete tells if a commit has been rewritten
func (e *ReadonlyEvolution) IsObsolete(id model.CommitID) (bool, error) {
	return e.state.IsObsolete(id), nil
}

// IsOrphan tells if a live commit descends from an obsolete or pruned commit
func (e *ReadonlyEvolution) IsOrphan(id model.CommitID) (bool, error) {
	return e.state.IsOrphan(id), nil
}

// IsDivergent tells if a change has more than one live commit
func (e *ReadonlyEvolution) IsDivergent(change model.ChangeID) (bool, error) {
	return e.state.IsDivergent(change), nil
}

// StartModification derives a mutable evolution, valid for the initial version of a view derived from the same readonly view
func (e *ReadonlyEvolution) StartModification() *MutableEvolution {
	return &MutableEvolution{
		store:   e.store,
		state:   e.state,
		version: 0,
	}
}

// MutableEvolution caches the evolution state of a mutable view.
//
// The cached state is tagged with the version of the view it was computed for.
// It is recomputed whenever it has been invalidated or the view version has changed.
// MutableEvolution does not hold on its view: queries go through Bind.
type MutableEvolution struct {
	store        *store.Store
	state        *State
	version      uint64
	computations int
}

// Invalidate drops the cached state
func (e *MutableEvolution) Invalidate() {
	e.state = nil
}

// Bind the evolution to the current state of a view, for the duration of a query
func (e *MutableEvolution) Bind(v view.View) Evolution {
	return bound{evolution: e, view: v}
}

func (e *MutableEvolution) stateFor(v view.View) (*State, error) {
	if e.state != nil && e.version == v.Version() {
		return e.state, nil
	}
	state, err := Compute(e.store, v)
	if err != nil {
		return nil, err
	}
	e.state = state
	e.version = v.Version()
	e.computations++
	return state, nil
}

type bound struct {
	evolution *MutableEvolution
	view      view.View
}

func (b bound) Successors(id model.CommitID) ([]model.CommitID, error) {
	state, err := b.evolution.stateFor(b.view)
	if err != nil {
		return nil, err
	}
	return state.Successors(id), nil
}

func (b bound) NewSuccessors(id model.CommitID) ([]model.CommitID, error) {
	state, err := b.evolution.stateFor(b.view)
	if err != nil {
		return nil, err
	}
	return state.NewSuccessors(id), nil
}

func (b bound) IsObsolete(id model.CommitID) (bool, error) {
	state, err := b.evolution.stateFor(b.view)
	if err != nil {
		return false, err
	}
	return state.IsObsolete(id), nil
}

func (b bound) IsOrphan(id model.CommitID) (bool, error) {
	state, err := b.evolution.stateFor(b.view)
	if err != nil {
		return false, err
	}
	return state.IsOrphan(id), nil
}

func (b bound) IsDivergent(change model.ChangeID) (bool, error) {
	state, err := b.evolution.stateFor(b.view)
	if err != nil {
		return false, err
	}
	return state.IsDivergent(change), nil
}
