package model

import (
	"sort"
	"time"
)

// CommitID identifies a commit by the hash of its descriptor
type CommitID string

// TreeID identifies a tree by the hash of its descriptor
type TreeID string

// FileID identifies file contents by their hash
type FileID string

// ConflictID identifies a conflict by the hash of its descriptor
type ConflictID string

// ViewID identifies a persisted view by the hash of its descriptor
type ViewID string

// OperationID identifies an operation. Operation ids are time-sortable KSUIDs.
type OperationID string

// ChangeID is shared by all the successive rewrites of a commit
type ChangeID string

const shortHexLength = 12

func short(s string) string {
	if len(s) <= shortHexLength {
		return s
	}
	return s[:shortHexLength]
}

// Short representation of a commit id, for display
func (id CommitID) Short() string { return short(string(id)) }

func (id CommitID) String() string { return string(id) }

// Short representation of a tree id, for display
func (id TreeID) Short() string { return short(string(id)) }

func (id TreeID) String() string { return string(id) }

func (id FileID) String() string { return string(id) }

func (id ConflictID) String() string { return string(id) }

func (id ViewID) String() string { return string(id) }

func (id OperationID) String() string { return string(id) }

// Short representation of a change id, for display
func (id ChangeID) Short() string { return short(string(id)) }

// CommitIDs is a sortable slice of CommitID
type CommitIDs []CommitID

func (c CommitIDs) Len() int           { return len(c) }
func (c CommitIDs) Less(i, j int) bool { return c[i] < c[j] }
func (c CommitIDs) Swap(i, j int)      { c[i], c[j] = c[j], c[i] }

// Contains tells if some id is part of this slice
func (c CommitIDs) Contains(id CommitID) bool {
	for _, member := range c {
		if member == id {
			return true
		}
	}
	return false
}

// SortedCommitIDs yields the sorted, duplicate-free keys of a set of commit ids
func SortedCommitIDs(set map[CommitID]struct{}) CommitIDs {
	ids := make(CommitIDs, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Sort(ids)
	return ids
}

// Now yields the current time as stored in descriptors
func Now() time.Time {
	return time.Now().UTC()
}
