package repo

import (
	"github.com/google/uuid"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/settings"
	"github.com/oneconcern/strata/pkg/store"
)

// CommitBuilder prepares a new commit, which enters a transaction with WriteToTransaction
type CommitBuilder struct {
	store *store.Store
	desc  model.CommitDescriptor
}

func newChangeID() model.ChangeID {
	return model.ChangeID(uuid.New().String())
}

// ForNewCommit prepares a closed commit without parents, for a new change
func ForNewCommit(us *settings.UserSettings, s *store.Store, tree model.TreeID) *CommitBuilder {
	signature := us.Signature()
	return &CommitBuilder{
		store: s,
		desc: model.CommitDescriptor{
			RootTree:  tree,
			ChangeID:  newChangeID(),
			Author:    signature,
			Committer: signature,
		},
	}
}

// ForOpenCommit prepares an open commit on top of some parent, for a new change
func ForOpenCommit(us *settings.UserSettings, s *store.Store, parent model.CommitID, tree model.TreeID) *CommitBuilder {
	b := ForNewCommit(us, s, tree)
	b.desc.Parents = []model.CommitID{parent}
	b.desc.IsOpen = true
	return b
}

// ForRewriteFrom prepares a rewrite of some commit. The author is preserved.
func ForRewriteFrom(us *settings.UserSettings, s *store.Store, predecessor *store.Commit) *CommitBuilder {
	desc := predecessor.Descriptor()
	desc.Predecessors = []model.CommitID{predecessor.ID()}
	desc.Committer = us.Signature()
	return &CommitBuilder{store: s, desc: desc}
}

// SetParents of the new commit
func (b *CommitBuilder) SetParents(parents ...model.CommitID) *CommitBuilder {
	b.desc.Parents = append([]model.CommitID(nil), parents...)
	return b
}

// SetTree of the new commit
func (b *CommitBuilder) SetTree(tree model.TreeID) *CommitBuilder {
	b.desc.RootTree = tree
	return b
}

// SetDescription of the new commit
func (b *CommitBuilder) SetDescription(description string) *CommitBuilder {
	b.desc.Description = description
	return b
}

// SetOpen marks the new commit as open or closed
func (b *CommitBuilder) SetOpen(open bool) *CommitBuilder {
	b.desc.IsOpen = open
	return b
}

// SetPruned marks the new commit as pruned
func (b *CommitBuilder) SetPruned(pruned bool) *CommitBuilder {
	b.desc.IsPruned = pruned
	return b
}

// SetAuthor of the new commit
func (b *CommitBuilder) SetAuthor(author model.Signature) *CommitBuilder {
	b.desc.Author = author
	return b
}

// GenerateNewChangeID detaches the new commit from the change of its predecessors
func (b *CommitBuilder) GenerateNewChangeID() *CommitBuilder {
	b.desc.ChangeID = newChangeID()
	return b
}

// Descriptor yields the commit data prepared so far
func (b *CommitBuilder) Descriptor() model.CommitDescriptor {
	return b.desc.Clone()
}

// WriteToTransaction writes the new commit in a transaction, as a new head
func (b *CommitBuilder) WriteToTransaction(tx *Transaction) (*store.Commit, error) {
	return tx.WriteCommit(b.desc)
}
