package memory_test

import (
	"context"
	"testing"

	"github.com/lokalku/lokalku"
	"github.com/lokalku/lokalku/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("missing key returns ErrNotFound", func(t *testing.T) {
		t.Parallel()
		kv := memory.New()
		_, err := kv.Get(ctx, "nope")
		assert.ErrorIs(t, err, lokalku.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		t.Parallel()
		var kv memory.KeyValue
		require.NoError(t, kv.Set(ctx, "k", "v1"))
		require.NoError(t, kv.Set(ctx, "k", "v2"))
		got, err := kv.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v2", got)
		keys, err := kv.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"k"}, keys)
	})

	t.Run("keys are sorted", func(t *testing.T) {
		t.Parallel()
		kv := memory.New()
		for _, k := range []string{"b", "c", "a"} {
			require.NoError(t, kv.Set(ctx, k, "v"))
		}
		keys, err := kv.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, keys)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		t.Parallel()
		kv := memory.New()
		require.NoError(t, kv.Set(ctx, "k", "v"))
		require.NoError(t, kv.Remove(ctx, "k"))
		require.NoError(t, kv.Remove(ctx, "k"))
		_, err := kv.Get(ctx, "k")
		assert.ErrorIs(t, err, lokalku.ErrNotFound)
		keys, err := kv.Keys(ctx)
		require.NoError(t, err)
		assert.Empty(t, keys)
	})
}
