package model

import "sort"

// ViewDescriptor is the persisted form of a view: the head commits and the checkout.
type ViewDescriptor struct {
	HeadIDs  []CommitID `json:"heads" yaml:"heads"`
	Checkout CommitID   `json:"checkout" yaml:"checkout"`
	_        struct{}
}

// Clone performs a deep copy of the descriptor
func (v ViewDescriptor) Clone() ViewDescriptor {
	c := v
	c.HeadIDs = append([]CommitID(nil), v.HeadIDs...)
	return c
}

// Normalize sorts heads and removes duplicates
func (v *ViewDescriptor) Normalize() {
	set := make(map[CommitID]struct{}, len(v.HeadIDs))
	for _, id := range v.HeadIDs {
		set[id] = struct{}{}
	}
	ids := make(CommitIDs, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Sort(ids)
	v.HeadIDs = ids
}
