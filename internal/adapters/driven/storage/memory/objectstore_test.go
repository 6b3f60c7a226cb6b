package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medichat/internal/core/domain"
)

func TestObjectStore_PutGetStat(t *testing.T) {
	ctx := context.Background()
	store := NewObjectStore()

	url, err := store.Put(ctx, "documents/cbc.pdf", []byte("pdf bytes"))
	require.NoError(t, err)
	assert.Equal(t, "memory://documents/cbc.pdf", url)

	exists, err := store.Exists(ctx, "documents/cbc.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := store.Get(ctx, "documents/cbc.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf bytes"), data)

	info, err := store.Stat(ctx, "documents/cbc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "cbc.pdf", info.Filename)
	assert.Equal(t, int64(9), info.SizeBytes)
	assert.False(t, info.LastModified.IsZero())
}

func TestObjectStore_Missing(t *testing.T) {
	ctx := context.Background()
	store := NewObjectStore()

	exists, err := store.Exists(ctx, "documents/none.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Get(ctx, "documents/none.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.Stat(ctx, "documents/none.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	docs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestObjectStore_CopiesData(t *testing.T) {
	ctx := context.Background()
	store := NewObjectStore()
	data := []byte("abc")

	_, err := store.Put(ctx, "k", data)
	require.NoError(t, err)
	data[0] = 'z'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestObjectStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	store := NewObjectStore()
	store.Unavailable = true

	_, err := store.Exists(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	_, err = store.Put(ctx, "k", nil)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	_, err = store.List(ctx)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
