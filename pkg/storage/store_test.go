package storage_test

import (
	"context"
	"strings"
	"testing"

	"github.com/oneconcern/strata/pkg/storage"
	"github.com/oneconcern/strata/pkg/storage/localfs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestPageKeys(t *testing.T) {
	all := []string{"/b/2", "a/1", "b/1", "b/3", "c/x/1", "c/x/2", "c/y"}

	keys, next := storage.PageKeys(all, "", "b/", "", 2)
	assert.Equal(t, []string{"b/1", "b/2"}, keys)
	assert.Equal(t, "b/3", next)

	keys, next = storage.PageKeys(all, next, "b/", "", 2)
	assert.Equal(t, []string{"b/3"}, keys)
	assert.Empty(t, next)

	keys, next = storage.PageKeys(all, "", "c/", "/", 0)
	assert.Equal(t, []string{"c/x/", "c/y"}, keys)
	assert.Empty(t, next)

	keys, next = storage.PageKeys(all, "zzz", "", "", 10)
	assert.Empty(t, keys)
	assert.Empty(t, next)
}

func TestInstrument(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewPedanticRegistry()
	metrics := storage.NewMetrics(reg)
	store := storage.Instrument(localfs.New(afero.NewMemMapFs()), zaptest.NewLogger(t), metrics)

	require.NoError(t, store.Put(ctx, "k", strings.NewReader("v"), storage.NoOverWrite))
	require.Error(t, store.Put(ctx, "k", strings.NewReader("v"), storage.NoOverWrite))
	_, err := store.Get(ctx, "missing")
	require.Error(t, err)

	b, err := storage.ReadAll(ctx, store, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(b))

	count, err := testutil.GatherAndCount(reg, "strata_storage_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "localfs", store.String())
}
