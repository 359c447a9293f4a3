package model

import (
	"sort"
	"strings"
)

// TreeValueKind tells which kind of object a tree entry refers to
type TreeValueKind string

const (
	// NormalFile is a regular file entry
	NormalFile TreeValueKind = "file"

	// Symlink is a symbolic link entry
	Symlink TreeValueKind = "symlink"

	// Conflict is an unresolved conflict entry
	Conflict TreeValueKind = "conflict"
)

// IsValid checks the value of a tree value kind
func (k TreeValueKind) IsValid() bool {
	switch k {
	case NormalFile, Symlink, Conflict:
		return true
	default:
		return false
	}
}

// TreeValue is the value of a tree entry
type TreeValue struct {
	Kind       TreeValueKind `json:"kind" yaml:"kind"`
	ID         string        `json:"id" yaml:"id"`
	Executable bool          `json:"executable,omitempty" yaml:"executable,omitempty"`
	_          struct{}
}

// NormalFileValue builds the tree value for a regular file
func NormalFileValue(id FileID, executable bool) TreeValue {
	return TreeValue{Kind: NormalFile, ID: string(id), Executable: executable}
}

// ConflictValue builds the tree value for a conflict
func ConflictValue(id ConflictID) TreeValue {
	return TreeValue{Kind: Conflict, ID: string(id)}
}

// TreeEntry is a path in a tree, with its value
type TreeEntry struct {
	Path  string    `json:"path" yaml:"path"`
	Value TreeValue `json:"value" yaml:"value"`
	_     struct{}
}

// TreeDescriptor is the persisted form of a tree, with entries sorted by path
type TreeDescriptor struct {
	Entries []TreeEntry `json:"entries" yaml:"entries"`
	_       struct{}
}

// Sort entries by path
func (t *TreeDescriptor) Sort() {
	sort.Slice(t.Entries, func(i, j int) bool { return t.Entries[i].Path < t.Entries[j].Path })
}

// Get the value at some path
func (t TreeDescriptor) Get(pth string) (TreeValue, bool) {
	pth = CleanRepoPath(pth)
	idx := sort.Search(len(t.Entries), func(i int) bool { return t.Entries[i].Path >= pth })
	if idx < len(t.Entries) && t.Entries[idx].Path == pth {
		return t.Entries[idx].Value, true
	}
	return TreeValue{}, false
}

// CleanRepoPath normalizes a slash-separated path within a repository
func CleanRepoPath(pth string) string {
	return strings.Trim(pth, "/")
}
