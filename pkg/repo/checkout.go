package repo

import (
	"bytes"
	"fmt"

	"github.com/oneconcern/strata/pkg/conflicts"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/settings"
	"github.com/oneconcern/strata/pkg/store"
	"go.uber.org/zap"
)

// CheckOut moves the checkout to some target commit, and yields the new checkout.
//
// The commit being left is pruned when it is empty, not pruned and not obsolete. The conflicts
// of the target tree are materialized as regular files. A closed target is never checked out
// directly: a new open commit is created on top of it. An open target is rewritten when
// materializing conflicts changes its tree, and used as is otherwise.
//
// Leaving a closed checkout panics.
func (tx *Transaction) CheckOut(us *settings.UserSettings, target *store.Commit) (*store.Commit, error) {
	repo := tx.mustBeOpen()
	s := repo.Store()

	current, err := s.GetCommit(repo.View().Checkout())
	if err != nil {
		return nil, err
	}
	if !current.IsOpen() {
		panic(fmt.Sprintf("dev error: leaving a closed checkout: %s", current.ID()))
	}
	if err := tx.pruneIfEmpty(us, current); err != nil {
		return nil, err
	}

	treeID, err := materializeConflicts(s, target)
	if err != nil {
		return nil, err
	}

	var commit *store.Commit
	switch {
	case !target.IsOpen():
		commit, err = ForOpenCommit(us, s, target.ID(), treeID).WriteToTransaction(tx)
	case treeID != target.TreeID():
		commit, err = ForRewriteFrom(us, s, target).SetTree(treeID).WriteToTransaction(tx)
	default:
		commit = target
	}
	if err != nil {
		return nil, err
	}

	repo.MutableView().SetCheckout(commit.ID())
	tx.l.Debug("checked out",
		zap.String("from", string(current.ID())),
		zap.String("target", string(target.ID())),
		zap.String("checkout", string(commit.ID())),
	)
	return commit, nil
}

func (tx *Transaction) pruneIfEmpty(us *settings.UserSettings, current *store.Commit) error {
	if current.IsPruned() {
		return nil
	}
	empty, err := current.IsEmpty()
	if err != nil || !empty {
		return err
	}
	obsolete, err := tx.repo.Evolution().IsObsolete(current.ID())
	if err != nil || obsolete {
		return err
	}
	_, err = ForRewriteFrom(us, tx.repo.Store(), current).SetPruned(true).WriteToTransaction(tx)
	return err
}

// materializeConflicts replaces every conflict of a commit tree by a regular file
func materializeConflicts(s *store.Store, target *store.Commit) (model.TreeID, error) {
	tree, err := target.Tree()
	if err != nil {
		return "", err
	}
	builder := s.TreeBuilder(target.TreeID())
	for _, entry := range tree.Conflicts() {
		conflict, err := s.ReadConflict(model.ConflictID(entry.Value.ID))
		if err != nil {
			return "", err
		}
		var buf bytes.Buffer
		if err := conflicts.Materialize(s, entry.Path, conflict, &buf); err != nil {
			return "", err
		}
		fileID, err := s.WriteFile(entry.Path, &buf)
		if err != nil {
			return "", err
		}
		builder.Set(entry.Path, model.NormalFileValue(fileID, false))
	}
	return builder.WriteTree()
}
