package store

import (
	"github.com/oneconcern/strata/pkg/model"
)

// Commit is an immutable commit, as persisted in the store
type Commit struct {
	id    model.CommitID
	desc  model.CommitDescriptor
	store *Store
}

// ID of the commit
func (c *Commit) ID() model.CommitID { return c.id }

// Descriptor yields a copy of the persisted commit data
func (c *Commit) Descriptor() model.CommitDescriptor { return c.desc.Clone() }

// ParentIDs of the commit
func (c *Commit) ParentIDs() []model.CommitID { return append([]model.CommitID(nil), c.desc.Parents...) }

// PredecessorIDs are the commits this commit is a rewrite of
func (c *Commit) PredecessorIDs() []model.CommitID {
	return append([]model.CommitID(nil), c.desc.Predecessors...)
}

// TreeID of the root tree
func (c *Commit) TreeID() model.TreeID { return c.desc.RootTree }

// ChangeID shared by all rewrites of this commit
func (c *Commit) ChangeID() model.ChangeID { return c.desc.ChangeID }

// Description of the commit
func (c *Commit) Description() string { return c.desc.Description }

// Author of the commit
func (c *Commit) Author() model.Signature { return c.desc.Author }

// Committer of the commit
func (c *Commit) Committer() model.Signature { return c.desc.Committer }

// IsOpen tells if the commit may still be amended
func (c *Commit) IsOpen() bool { return c.desc.IsOpen }

// IsPruned tells if the commit has been abandoned
func (c *Commit) IsPruned() bool { return c.desc.IsPruned }

// Parents loads the parent commits
func (c *Commit) Parents() ([]*Commit, error) {
	parents := make([]*Commit, 0, len(c.desc.Parents))
	for _, id := range c.desc.Parents {
		parent, err := c.store.GetCommit(id)
		if err != nil {
			return nil, err
		}
		parents = append(parents, parent)
	}
	return parents, nil
}

// Tree loads the root tree
func (c *Commit) Tree() (*Tree, error) {
	return c.store.GetTree(c.desc.RootTree)
}

// IsEmpty tells if the commit brings no change: its tree is the same as its first parent's tree,
// or the empty tree if the commit has no parent.
func (c *Commit) IsEmpty() (bool, error) {
	if len(c.desc.Parents) == 0 {
		return c.desc.RootTree == c.store.EmptyTreeID(), nil
	}
	parent, err := c.store.GetCommit(c.desc.Parents[0])
	if err != nil {
		return false, err
	}
	return parent.desc.RootTree == c.desc.RootTree, nil
}

func (c *Commit) String() string {
	return string(c.id)
}
