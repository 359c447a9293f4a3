package repo

import (
	"sort"
	"strings"

	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/repo/status"
	"github.com/oneconcern/strata/pkg/store"
)

// Commits yields every commit reachable from the heads and the checkout of a repository, following
// parents and predecessors. Commits are sorted from the most recently committed.
func Commits(r Repo) ([]*store.Commit, error) {
	s := r.Store()
	v := r.View()
	stack := v.HeadIDs()
	if checkout := v.Checkout(); checkout != "" {
		stack = append(stack, checkout)
	}

	seen := make(map[model.CommitID]struct{})
	var commits []*store.Commit
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, done := seen[id]; done {
			continue
		}
		seen[id] = struct{}{}
		c, err := s.GetCommit(id)
		if err != nil {
			return nil, err
		}
		commits = append(commits, c)
		stack = append(stack, c.ParentIDs()...)
		stack = append(stack, c.PredecessorIDs()...)
	}

	sort.SliceStable(commits, func(i, j int) bool {
		ti, tj := commits[i].Committer().Timestamp, commits[j].Committer().Timestamp
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return commits[i].ID() < commits[j].ID()
	})
	return commits, nil
}

// ResolveCommit finds the reachable commit with some id prefix
func ResolveCommit(r Repo, prefix string) (*store.Commit, error) {
	if prefix == "" {
		return nil, status.ErrCommitNotFound.WrapMessage("empty commit id")
	}
	if prefix == "@" {
		return r.Store().GetCommit(r.View().Checkout())
	}
	commits, err := Commits(r)
	if err != nil {
		return nil, err
	}
	var found *store.Commit
	for _, c := range commits {
		if !strings.HasPrefix(string(c.ID()), prefix) {
			continue
		}
		if found != nil {
			return nil, status.ErrAmbiguousCommit.WrapMessage("prefix: %s", prefix)
		}
		found = c
	}
	if found == nil {
		return nil, status.ErrCommitNotFound.WrapMessage("prefix: %s", prefix)
	}
	return found, nil
}
