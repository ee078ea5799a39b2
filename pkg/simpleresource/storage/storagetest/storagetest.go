// Package storagetest holds the behaviour every simpleresource.Backend must
// share, so each implementation can run the same assertions.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-resource/pkg/simpleresource"
)

// Factory returns an empty backend for one subtest
type Factory func(t *testing.T) simpleresource.Backend

// Run exercises the backend contract against fresh backends from newBackend
func Run(t *testing.T, newBackend Factory) {
	t.Helper()

	t.Run("MissingName", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		exists, err := b.Exists(ctx, "missing.txt")
		require.NoError(t, err)
		assert.False(t, exists)

		_, err = b.Read(ctx, "missing.txt")
		assert.ErrorIs(t, err, simpleresource.ErrNotFound)

		err = b.Delete(ctx, "missing.txt")
		assert.ErrorIs(t, err, simpleresource.ErrNotFound)
	})

	t.Run("WriteReadDelete", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		require.NoError(t, b.Write(ctx, "a.csv", []byte("h1,h2\nv1,v2")))

		exists, err := b.Exists(ctx, "a.csv")
		require.NoError(t, err)
		assert.True(t, exists)

		data, err := b.Read(ctx, "a.csv")
		require.NoError(t, err)
		assert.Equal(t, "h1,h2\nv1,v2", string(data))

		require.NoError(t, b.Delete(ctx, "a.csv"))

		exists, err = b.Exists(ctx, "a.csv")
		require.NoError(t, err)
		assert.False(t, exists)

		assert.ErrorIs(t, b.Delete(ctx, "a.csv"), simpleresource.ErrNotFound)
	})

	t.Run("WriteOverwrites", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		require.NoError(t, b.Write(ctx, "x.json", []byte(`{"k":"v","long":"value"}`)))
		require.NoError(t, b.Write(ctx, "x.json", []byte(`{"k":"w"}`)))

		data, err := b.Read(ctx, "x.json")
		require.NoError(t, err)
		assert.Equal(t, `{"k":"w"}`, string(data))
	})

	t.Run("ListBaseNames", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		names, err := b.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, names)

		for _, name := range []string{"b.json", "a.csv", "c.txt"} {
			require.NoError(t, b.Write(ctx, name, []byte("data\nmore")))
		}

		names, err = b.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a.csv", "b.json", "c.txt"}, names)

		// enumeration is stable between calls
		again, err := b.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, names, again)
	})
}
