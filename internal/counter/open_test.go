package counter

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("file", func(t *testing.T) {
		c, closer, err := Open(ctx, Backend{Kind: "file", Path: filepath.Join(t.TempDir(), "contador.txt")})
		require.NoError(t, err)
		defer closer.Close()
		assert.IsType(t, &FileCounter{}, c)

		v, err := c.Up(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)
	})

	t.Run("unguarded", func(t *testing.T) {
		c, closer, err := Open(ctx, Backend{Kind: "unguarded", Path: filepath.Join(t.TempDir(), "contador.txt")})
		require.NoError(t, err)
		defer closer.Close()
		assert.IsType(t, &UnguardedFileCounter{}, c)
	})

	t.Run("memory", func(t *testing.T) {
		c, _, err := Open(ctx, Backend{Kind: "memory"})
		require.NoError(t, err)
		assert.IsType(t, &MemoryCounter{}, c)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		c, closer, err := Open(ctx, Backend{Kind: "redis", RedisAddr: mr.Addr(), Name: "contador"})
		require.NoError(t, err)
		defer closer.Close()

		v, err := c.Up(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		addr := mr.Addr()
		mr.Close()

		_, _, err = Open(ctx, Backend{Kind: "redis", RedisAddr: addr, Name: "contador"})
		assert.Error(t, err)
	})

	for _, b := range []Backend{
		{Kind: "file"},
		{Kind: "redis", RedisAddr: "localhost:0"},
		{Kind: "postgres", Name: "contador"},
		{Kind: "datastore"},
		{Kind: "sqlite"},
	} {
		t.Run("invalid "+b.Kind, func(t *testing.T) {
			_, _, err := Open(ctx, b)
			assert.Error(t, err)
		})
	}
}
