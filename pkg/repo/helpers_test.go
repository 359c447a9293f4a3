package repo

import (
	"bytes"
	"strings"
	"testing"

	context2 "github.com/oneconcern/strata/pkg/context"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/settings"
	"github.com/oneconcern/strata/pkg/storage/localfs"
	"github.com/oneconcern/strata/pkg/store"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testSettings() *settings.UserSettings {
	return settings.New(settings.Values(map[string]interface{}{
		"user.name":  "Test User",
		"user.email": "test.user@example.com",
	}))
}

func testStores() context2.Stores {
	return context2.NewStores(
		localfs.New(afero.NewMemMapFs()),
		localfs.New(afero.NewMemMapFs()),
		localfs.New(afero.NewMemMapFs()),
	)
}

func initRepo(t *testing.T, opts ...Option) *ReadonlyRepo {
	r, err := Init(testSettings(), testStores(), append([]Option{Logger(zaptest.NewLogger(t))}, opts...)...)
	require.NoError(t, err)
	return r
}

// treeWith writes a tree with some files, given as path/content pairs
func treeWith(t *testing.T, s *store.Store, files ...string) model.TreeID {
	require.Zero(t, len(files)%2)
	builder := s.TreeBuilder(s.EmptyTreeID())
	for i := 0; i < len(files); i += 2 {
		id, err := s.WriteFile(files[i], strings.NewReader(files[i+1]))
		require.NoError(t, err)
		builder.Set(files[i], model.NormalFileValue(id, false))
	}
	tree, err := builder.WriteTree()
	require.NoError(t, err)
	return tree
}

// conflictTree writes a tree holding a 3-way conflict at some path
func conflictTree(t *testing.T, s *store.Store, pth, base, left, right string) model.TreeID {
	part := func(content string) model.ConflictPart {
		id, err := s.WriteFile(pth, strings.NewReader(content))
		require.NoError(t, err)
		return model.ConflictPart{Value: model.NormalFileValue(id, false)}
	}
	conflictID, err := s.WriteConflict(model.ConflictDescriptor{
		Removes: []model.ConflictPart{part(base)},
		Adds:    []model.ConflictPart{part(left), part(right)},
	})
	require.NoError(t, err)

	builder := s.TreeBuilder(s.EmptyTreeID())
	builder.Set(pth, model.ConflictValue(conflictID))
	tree, err := builder.WriteTree()
	require.NoError(t, err)
	return tree
}

func readFile(t *testing.T, s *store.Store, tree model.TreeID, pth string) string {
	tr, err := s.GetTree(tree)
	require.NoError(t, err)
	value, ok := tr.Value(pth)
	require.True(t, ok)
	require.Equal(t, model.NormalFile, value.Kind)
	rdr, err := s.ReadFile(pth, model.FileID(value.ID))
	require.NoError(t, err)
	defer func() { _ = rdr.Close() }()
	var b bytes.Buffer
	_, err = b.ReadFrom(rdr)
	require.NoError(t, err)
	return b.String()
}
