// Copyright © 2018 One Concern

package localfs

import (
	"bytes"
	"context"
	"io/ioutil"
	"strconv"
	"strings"
	"testing"

	"github.com/oneconcern/strata/pkg/errors"
	"github.com/oneconcern/strata/pkg/storage"
	"github.com/oneconcern/strata/pkg/storage/status"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHas(t *testing.T) {
	for _, bs := range setupStores(t) {
		has, err := bs.Has(context.Background(), "sixteentons")
		require.NoError(t, err)
		require.True(t, has)

		has, err = bs.Has(context.Background(), "/seventeentons")
		require.NoError(t, err)
		require.True(t, has)

		has, err = bs.Has(context.Background(), "fifteentons")
		require.NoError(t, err)
		require.False(t, has)
	}
}

func TestGet(t *testing.T) {
	for _, bs := range setupStores(t) {
		rdr, err := bs.Get(context.Background(), "sixteentons")
		require.NoError(t, err)
		b, err := ioutil.ReadAll(rdr)
		require.NoError(t, err)
		require.NoError(t, rdr.Close())
		assert.Equal(t, "this is the text", string(b))

		_, err = bs.Get(context.Background(), "fifteentons")
		require.Error(t, err)
		assert.True(t, errors.Is(err, status.ErrNotExists))
	}
}

func TestKeys(t *testing.T) {
	for _, bs := range setupStores(t) {
		keys, err := bs.Keys(context.Background())
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"sixteentons", "seventeentons"}, keys)
	}
}

func TestDelete(t *testing.T) {
	for _, bs := range setupStores(t) {
		require.NoError(t, bs.Delete(context.Background(), "seventeentons"))
		k, _ := bs.Keys(context.Background())
		assert.Len(t, k, 1)

		// deleting a missing key is not an error
		require.NoError(t, bs.Delete(context.Background(), "seventeentons"))
	}
}

func TestClear(t *testing.T) {
	for _, bs := range setupStores(t) {
		require.NoError(t, bs.Clear(context.Background()))
		k, _ := bs.Keys(context.Background())
		require.Empty(t, k)
	}
}

func TestPut(t *testing.T) {
	for _, bs := range setupStores(t) {
		content := bytes.NewBufferString("here we go once again")
		err := bs.Put(context.Background(), "nested/eighteentons", content, storage.NoOverWrite)
		require.NoError(t, err)

		rdr, err := bs.Get(context.Background(), "nested/eighteentons")
		require.NoError(t, err)
		b, err := ioutil.ReadAll(rdr)
		require.NoError(t, err)
		require.NoError(t, rdr.Close())

		assert.Equal(t, "here we go once again", string(b))

		k, _ := bs.Keys(context.Background())
		assert.Len(t, k, 3)
		assert.Contains(t, k, "nested/eighteentons")

		err = bs.Put(context.Background(), "nested/eighteentons", strings.NewReader("clobber"), storage.NoOverWrite)
		require.Error(t, err)
		assert.True(t, errors.Is(err, status.ErrExists), "got: %v", err)

		err = bs.Put(context.Background(), "nested/eighteentons", strings.NewReader("clobber"), storage.OverWrite)
		require.NoError(t, err)
		b, err = storage.ReadAll(context.Background(), bs, "nested/eighteentons")
		require.NoError(t, err)
		assert.Equal(t, "clobber", string(b))
	}
}

func TestAtomicRejectsStagingKeys(t *testing.T) {
	bs, err := NewAtomic(afero.NewMemMapFs())
	require.NoError(t, err)

	err = bs.Put(context.Background(), nestedPutStageName+"/x", strings.NewReader("x"), storage.OverWrite)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrInvalidResource))

	require.NoError(t, bs.Put(context.Background(), "x", strings.NewReader("x"), storage.OverWrite))
	keys, err := bs.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, keys)
}

func TestKeysPrefix(t *testing.T) {
	store := New(afero.NewMemMapFs())
	for i := 0; i < 10; i++ {
		fakeFile(t, store, "/a/b/c/e"+strconv.Itoa(i))
		fakeFile(t, store, "/a/d/f"+strconv.Itoa(i))
	}

	var (
		keys []string
		next string
		err  error
	)

	i := 0
	search := "/a"
	for keys, next, err = store.KeysPrefix(context.Background(), "", search, "", 3); next != ""; keys, next, err = store.KeysPrefix(context.Background(), next, search, "", 3) {
		require.NoError(t, err)
		assert.Len(t, keys, 3)
		i++
	}
	require.NoError(t, err)
	assert.Len(t, keys, 2)
	assert.Equal(t, 6, i)

	i = 0
	search = "a/d/f"
	for keys, next, err = store.KeysPrefix(context.Background(), "", search, "", 4); next != ""; keys, next, err = store.KeysPrefix(context.Background(), next, search, "", 4) {
		require.NoError(t, err)
		assert.Len(t, keys, 4)
		for _, key := range keys {
			assert.False(t, strings.HasPrefix(key, "/"))
		}
		i++
	}
	require.NoError(t, err)
	assert.Len(t, keys, 2)
	assert.Equal(t, 2, i)

	// with unsuccessful search
	keys, next, err = store.KeysPrefix(context.Background(), "", "/z", "", 5)
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Empty(t, next)

	// with a token past all keys
	keys, next, err = store.KeysPrefix(context.Background(), "nowhere", "/a", "", 5)
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Empty(t, next)

	// with delimiters and deduplication
	keys, next, err = store.KeysPrefix(context.Background(), "", "a/", "/", 10)
	require.NoError(t, err)
	assert.Empty(t, next)
	assert.Equal(t, []string{"a/b/", "a/d/"}, keys)
}

func fakeFile(t testing.TB, store storage.Store, file string) {
	require.NoError(t, store.Put(context.Background(), file, strings.NewReader("this is the text"), storage.OverWrite))
}

func setupStores(t testing.TB) []storage.Store {
	t.Helper()

	atomic, err := NewAtomic(afero.NewMemMapFs())
	require.NoError(t, err)

	stores := []storage.Store{
		New(afero.NewMemMapFs()),
		New(afero.NewBasePathFs(afero.NewOsFs(), t.TempDir())),
		atomic,
	}
	for _, store := range stores {
		fakeFile(t, store, "sixteentons")
		require.NoError(t, store.Put(context.Background(), "seventeentons",
			strings.NewReader("this is the text for another thing"), storage.NoOverWrite))
	}
	return stores
}
