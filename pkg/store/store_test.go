package store

import (
	"bytes"
	"context"
	"io/ioutil"
	"testing"

	"github.com/oneconcern/strata/internal/rand"
	context2 "github.com/oneconcern/strata/pkg/context"
	"github.com/oneconcern/strata/pkg/errors"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/storage"
	"github.com/oneconcern/strata/pkg/storage/localfs"
	"github.com/oneconcern/strata/pkg/store/status"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testStore(t testing.TB) (*Store, storage.Store) {
	meta := localfs.New(afero.NewMemMapFs())
	blob := localfs.New(afero.NewMemMapFs())
	return New(context2.NewStores(meta, blob, nil), Logger(zaptest.NewLogger(t)), CommitCacheSize(2)), meta
}

func TestCommitRoundTrip(t *testing.T) {
	s, meta := testStore(t)

	desc := model.CommitDescriptor{
		RootTree:    s.EmptyTreeID(),
		ChangeID:    "change-1",
		Description: "root",
		Author:      model.Signature{Name: "jane", Email: "jane@example.com", Timestamp: model.Now()},
	}
	desc.Committer = desc.Author

	c, err := s.WriteCommit(desc)
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID())

	again, err := s.WriteCommit(desc)
	require.NoError(t, err)
	assert.Equal(t, c.ID(), again.ID(), "commit ids are content addressed")

	// bypass the cache
	fresh := New(context2.NewStores(meta, nil, nil))
	got, err := fresh.GetCommit(c.ID())
	require.NoError(t, err)
	assert.Equal(t, "root", got.Description())
	assert.Equal(t, model.ChangeID("change-1"), got.ChangeID())
	assert.False(t, got.IsOpen())
	assert.False(t, got.IsPruned())

	empty, err := got.IsEmpty()
	require.NoError(t, err)
	assert.True(t, empty)

	child, err := s.WriteCommit(model.CommitDescriptor{
		Parents:  []model.CommitID{c.ID()},
		RootTree: s.EmptyTreeID(),
		ChangeID: "change-2",
		IsOpen:   true,
	})
	require.NoError(t, err)
	parents, err := child.Parents()
	require.NoError(t, err)
	require.Len(t, parents, 1)
	assert.Equal(t, c.ID(), parents[0].ID())
	assert.True(t, child.IsOpen())
}

func TestGetCommitNotFound(t *testing.T) {
	s, _ := testStore(t)
	_, err := s.GetCommit("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrNotFound))
}

func TestGetCommitCorrupt(t *testing.T) {
	s, meta := testStore(t)
	require.NoError(t, meta.Put(context.Background(), model.GetPathToCommit("abc"), bytes.NewBufferString("changeID: x\n"), storage.NoOverWrite))
	_, err := s.GetCommit("abc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrCorrupt))
}

func TestTreeBuilder(t *testing.T) {
	s, _ := testStore(t)

	f1, err := s.WriteFile("a.txt", bytes.NewBufferString("hello\n"))
	require.NoError(t, err)
	f2, err := s.WriteFile("dir/b.txt", bytes.NewBufferString("world\n"))
	require.NoError(t, err)

	builder := s.TreeBuilder(s.EmptyTreeID())
	unchanged, err := builder.WriteTree()
	require.NoError(t, err)
	assert.Equal(t, s.EmptyTreeID(), unchanged)

	builder.Set("a.txt", model.NormalFileValue(f1, false))
	builder.Set("/dir/b.txt", model.NormalFileValue(f2, true))
	treeID, err := builder.WriteTree()
	require.NoError(t, err)

	tree, err := s.GetTree(treeID)
	require.NoError(t, err)
	entries := tree.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a.txt", entries[0].Path)
	assert.Equal(t, "dir/b.txt", entries[1].Path)
	assert.Empty(t, tree.Conflicts())

	next := s.TreeBuilder(treeID)
	next.Remove("a.txt")
	next.Set("c", model.ConflictValue("c1"))
	nextID, err := next.WriteTree()
	require.NoError(t, err)
	nextTree, err := s.GetTree(nextID)
	require.NoError(t, err)
	_, ok := nextTree.Value("a.txt")
	assert.False(t, ok)
	require.Len(t, nextTree.Conflicts(), 1)
	assert.Equal(t, "c", nextTree.Conflicts()[0].Path)

	rdr, err := s.ReadFile("dir/b.txt", f2)
	require.NoError(t, err)
	b, err := ioutil.ReadAll(rdr)
	require.NoError(t, err)
	assert.Equal(t, "world\n", string(b))

	_, err = s.ReadFile("x", "missing")
	assert.True(t, errors.Is(err, status.ErrNotFound))
}

func TestWriteTreeInvalid(t *testing.T) {
	s, _ := testStore(t)
	_, err := s.WriteTree(model.TreeDescriptor{Entries: []model.TreeEntry{
		{Path: "a", Value: model.NormalFileValue("f", false)},
		{Path: "/a", Value: model.NormalFileValue("g", false)},
	}})
	assert.True(t, errors.Is(err, status.ErrInvalidTree))

	_, err = s.WriteTree(model.TreeDescriptor{Entries: []model.TreeEntry{
		{Path: "a", Value: model.TreeValue{Kind: "dir"}},
	}})
	assert.True(t, errors.Is(err, status.ErrInvalidTree))

	id, err := s.WriteTree(model.TreeDescriptor{})
	require.NoError(t, err)
	assert.Equal(t, s.EmptyTreeID(), id)
}

func TestConflictRoundTrip(t *testing.T) {
	s, _ := testStore(t)
	desc := model.ConflictDescriptor{
		Removes: []model.ConflictPart{{Value: model.NormalFileValue("base", false)}},
		Adds: []model.ConflictPart{
			{Value: model.NormalFileValue("left", false)},
			{Value: model.NormalFileValue("right", false)},
		},
	}
	id, err := s.WriteConflict(desc)
	require.NoError(t, err)

	got, err := s.ReadConflict(id)
	require.NoError(t, err)
	assert.Equal(t, desc, got)

	_, err = s.ReadConflict("missing")
	assert.True(t, errors.Is(err, status.ErrNotFound))
}

func TestFileRoundTrip(t *testing.T) {
	s, _ := testStore(t)

	content := rand.Text(100, 40)
	id, err := s.WriteFile("big.txt", bytes.NewBufferString(content))
	require.NoError(t, err)

	again, err := s.WriteFile("other/path.txt", bytes.NewBufferString(content))
	require.NoError(t, err)
	assert.Equal(t, id, again, "files are content addressed")

	rdr, err := s.ReadFile("big.txt", id)
	require.NoError(t, err)
	defer func() { _ = rdr.Close() }()
	b, err := ioutil.ReadAll(rdr)
	require.NoError(t, err)
	assert.Equal(t, content, string(b))
}
