package store

import (
	"sort"

	"github.com/oneconcern/strata/pkg/model"
)

// Tree is an immutable flat tree, as persisted in the store
type Tree struct {
	id   model.TreeID
	desc model.TreeDescriptor
}

// ID of the tree
func (t *Tree) ID() model.TreeID { return t.id }

// Entries of the tree, sorted by path
func (t *Tree) Entries() []model.TreeEntry {
	return append([]model.TreeEntry(nil), t.desc.Entries...)
}

// Value at some path
func (t *Tree) Value(pth string) (model.TreeValue, bool) {
	return t.desc.Get(pth)
}

// Conflicts yields the entries holding an unresolved conflict
func (t *Tree) Conflicts() []model.TreeEntry {
	var conflicts []model.TreeEntry
	for _, entry := range t.desc.Entries {
		if entry.Value.Kind == model.Conflict {
			conflicts = append(conflicts, entry)
		}
	}
	return conflicts
}

// TreeBuilder builds a new tree by applying changes to a base tree
type TreeBuilder struct {
	store     *Store
	base      model.TreeID
	overrides map[string]*model.TreeValue // a nil value removes the path
}

// Set the value at some path
func (b *TreeBuilder) Set(pth string, value model.TreeValue) {
	v := value
	b.overrides[model.CleanRepoPath(pth)] = &v
}

// Remove some path
func (b *TreeBuilder) Remove(pth string) {
	b.overrides[model.CleanRepoPath(pth)] = nil
}

// WriteTree persists the resulting tree. Without changes, this yields the base tree id.
func (b *TreeBuilder) WriteTree() (model.TreeID, error) {
	if len(b.overrides) == 0 {
		return b.base, nil
	}
	base, err := b.store.GetTree(b.base)
	if err != nil {
		return "", err
	}

	merged := make(map[string]model.TreeValue, len(base.desc.Entries)+len(b.overrides))
	for _, entry := range base.desc.Entries {
		merged[entry.Path] = entry.Value
	}
	for pth, value := range b.overrides {
		if value == nil {
			delete(merged, pth)
			continue
		}
		merged[pth] = *value
	}

	desc := model.TreeDescriptor{Entries: make([]model.TreeEntry, 0, len(merged))}
	for pth, value := range merged {
		desc.Entries = append(desc.Entries, model.TreeEntry{Path: pth, Value: value})
	}
	sort.Slice(desc.Entries, func(i, j int) bool { return desc.Entries[i].Path < desc.Entries[j].Path })
	return b.store.WriteTree(desc)
}
