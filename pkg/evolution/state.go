// Package evolution indexes the rewrites of commits reachable from a view.
//
// A commit is obsolete when some reachable commit names it as a predecessor. A commit is orphan
// when it is neither obsolete nor pruned but one of its parents is obsolete, pruned or itself orphan.
// A change is divergent when more than one of its commits is neither obsolete nor pruned.
package evolution

import (
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/store"
	"github.com/oneconcern/strata/pkg/view"
)

type commitSet map[model.CommitID]struct{}

// State is the evolution index computed over a view
type State struct {
	successors map[model.CommitID]commitSet
	obsolete   commitSet
	pruned     commitSet
	orphan     commitSet
	divergent  map[model.ChangeID]commitSet
}

// Compute the evolution state over all the commits reachable from the heads and the checkout of a view,
// following parents and predecessors.
func Compute(s *store.Store, v view.View) (*State, error) {
	commits, err := reachable(s, v)
	if err != nil {
		return nil, err
	}

	state := &State{
		successors: make(map[model.CommitID]commitSet),
		obsolete:   make(commitSet),
		pruned:     make(commitSet),
		orphan:     make(commitSet),
		divergent:  make(map[model.ChangeID]commitSet),
	}
	for id, c := range commits {
		if c.IsPruned() {
			state.pruned[id] = struct{}{}
		}
		for _, predecessor := range c.PredecessorIDs() {
			successors, ok := state.successors[predecessor]
			if !ok {
				successors = make(commitSet)
				state.successors[predecessor] = successors
			}
			successors[id] = struct{}{}
			state.obsolete[predecessor] = struct{}{}
		}
	}

	visited := make(map[model.CommitID]bool, len(commits))
	var isOrphan func(model.CommitID) bool
	isOrphan = func(id model.CommitID) bool {
		if orphan, done := visited[id]; done {
			return orphan
		}
		visited[id] = false
		c, ok := commits[id]
		if !ok || state.isObsoleteOrPruned(id) {
			return false
		}
		for _, parent := range c.ParentIDs() {
			if state.isObsoleteOrPruned(parent) || isOrphan(parent) {
				visited[id] = true
				state.orphan[id] = struct{}{}
				return true
			}
		}
		return false
	}

	live := make(map[model.ChangeID]commitSet)
	for id, c := range commits {
		isOrphan(id)
		if state.isObsoleteOrPruned(id) {
			continue
		}
		set, ok := live[c.ChangeID()]
		if !ok {
			set = make(commitSet)
			live[c.ChangeID()] = set
		}
		set[id] = struct{}{}
	}
	for change, set := range live {
		if len(set) > 1 {
			state.divergent[change] = set
		}
	}
	return state, nil
}

// reachable loads every commit reachable from the view
func reachable(s *store.Store, v view.View) (map[model.CommitID]*store.Commit, error) {
	stack := v.HeadIDs()
	if checkout := v.Checkout(); checkout != "" {
		stack = append(stack, checkout)
	}
	commits := make(map[model.CommitID]*store.Commit)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, done := commits[id]; done {
			continue
		}
		c, err := s.GetCommit(id)
		if err != nil {
			return nil, err
		}
		commits[id] = c
		stack = append(stack, c.ParentIDs()...)
		stack = append(stack, c.PredecessorIDs()...)
	}
	return commits, nil
}

func (s *State) isObsoleteOrPruned(id model.CommitID) bool {
	_, obsolete := s.obsolete[id]
	_, pruned := s.pruned[id]
	return obsolete || pruned
}

// Successors yields the sorted commits rewriting some commit
func (s *State) Successors(id model.CommitID) []model.CommitID {
	return model.SortedCommitIDs(s.successors[id])
}

// IsObsolete tells if a commit has been rewritten
func (s *State) IsObsolete(id model.CommitID) bool {
	_, ok := s.obsolete[id]
	return ok
}

// IsOrphan tells if a live commit descends from an obsolete or pruned commit
func (s *State) IsOrphan(id model.CommitID) bool {
	_, ok := s.orphan[id]
	return ok
}

// IsDivergent tells if a change has more than one live commit
func (s *State) IsDivergent(change model.ChangeID) bool {
	_, ok := s.divergent[change]
	return ok
}

// NewSuccessors follows rewrites from some commit down to the live commits superseding it.
// A live commit is its own new successor.
func (s *State) NewSuccessors(id model.CommitID) []model.CommitID {
	result := make(commitSet)
	seen := make(commitSet)
	stack := []model.CommitID{id}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, done := seen[current]; done {
			continue
		}
		seen[current] = struct{}{}
		successors, ok := s.successors[current]
		if !ok || len(successors) == 0 {
			if _, pruned := s.pruned[current]; !pruned {
				result[current] = struct{}{}
			}
			continue
		}
		for successor := range successors {
			stack = append(stack, successor)
		}
	}
	return model.SortedCommitIDs(result)
}
