/*
 * Copyright © 2019 One Concern
 *
 */

package context

import (
	"bytes"
	"context"
	"testing"

	"github.com/oneconcern/strata/pkg/context/status"
	"github.com/oneconcern/strata/pkg/errors"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/storage"
	"github.com/oneconcern/strata/pkg/storage/localfs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(backend model.Backend) model.Context {
	return model.Context{
		Name:     "test",
		Backend:  backend,
		Metadata: "store",
		Blob:     "store",
		OpLog:    "op_store",
		Version:  model.CurrentContextVersion,
	}
}

func TestNewStores(t *testing.T) {
	s1 := localfs.New(afero.NewMemMapFs())
	s2 := localfs.New(afero.NewMemMapFs())
	s3 := localfs.New(afero.NewMemMapFs())

	stores := NewStores(s1, s2, s3)
	assert.Equal(t, s1, stores.Metadata())
	assert.Equal(t, s2, stores.Blob())
	assert.Equal(t, s3, stores.OpLog())

	empty := New()
	assert.Nil(t, empty.Metadata())
	empty.SetMetadata(s3)
	empty.SetBlob(s1)
	empty.SetOpLog(s2)
	assert.Equal(t, s3, empty.Metadata())
	assert.Equal(t, s1, empty.Blob())
	assert.Equal(t, s2, empty.OpLog())
	require.NoError(t, empty.Close())
}

func TestCreateGetContext(t *testing.T) {
	ctx := context.Background()
	configStore := localfs.New(afero.NewMemMapFs())

	c := testContext(model.LocalFS)
	require.NoError(t, CreateContext(ctx, configStore, c))

	got, err := GetContext(ctx, configStore)
	require.NoError(t, err)
	assert.Equal(t, c, *got)

	// create only
	require.Error(t, CreateContext(ctx, configStore, c))

	invalid := c
	invalid.Name = ""
	require.Error(t, CreateContext(ctx, localfs.New(afero.NewMemMapFs()), invalid))

	_, err = GetContext(ctx, localfs.New(afero.NewMemMapFs()))
	require.Error(t, err)
}

func TestOpenLocalFS(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()

	stores, err := Open("/repo/.strata", testContext(model.LocalFS), Fs(fs),
		Metrics(storage.NewMetrics(prometheus.NewRegistry())))
	require.NoError(t, err)
	defer func() { require.NoError(t, stores.Close()) }()

	require.NoError(t, stores.Metadata().Put(ctx, "commits/abc", bytes.NewBufferString("x"), storage.NoOverWrite))
	has, err := stores.Blob().Has(ctx, "commits/abc")
	require.NoError(t, err)
	assert.True(t, has, "metadata and blob share the same location")

	has, err = stores.OpLog().Has(ctx, "commits/abc")
	require.NoError(t, err)
	assert.False(t, has)

	exists, err := afero.Exists(fs, "/repo/.strata/store/commits/abc")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestOpenBadger(t *testing.T) {
	ctx := context.Background()
	stores, err := Open(t.TempDir(), testContext(model.Badger), InMemory(true))
	require.NoError(t, err)

	require.NoError(t, stores.OpLog().Put(ctx, "op_heads/x", bytes.NewBufferString(""), storage.NoOverWrite))
	keys, err := stores.OpLog().Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"op_heads/x"}, keys)
	require.NoError(t, stores.Close())
}

func TestOpenInvalid(t *testing.T) {
	c := testContext("gcs")
	_, err := Open("/", c, Fs(afero.NewMemMapFs()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrInvalidContext))
}
