package counter

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, redis.UniversalClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	cl := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cl.Close() })
	return mr, cl
}

func TestRedisCounter(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, cl := newTestRedis(t)
		c := NewRedisCounter(cl, "contador")

		v, err := c.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), v)

		v, err = c.Up(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)
	})

	t.Run("stored as text", func(t *testing.T) {
		mr, cl := newTestRedis(t)
		require.NoError(t, mr.Set("contador", "9"))
		c := NewRedisCounter(cl, "contador")

		v, err := c.Up(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(10), v)

		s, err := mr.Get("contador")
		require.NoError(t, err)
		assert.Equal(t, "10", s)
	})

	t.Run("corrupt value", func(t *testing.T) {
		mr, cl := newTestRedis(t)
		require.NoError(t, mr.Set("contador", "abc"))
		c := NewRedisCounter(cl, "contador")

		_, err := c.Get(ctx)
		assert.ErrorIs(t, err, ErrCorrupt)

		_, err = c.Up(ctx)
		assert.Error(t, err)
	})

	t.Run("concurrent", func(t *testing.T) {
		_, cl := newTestRedis(t)
		c := NewRedisCounter(cl, "contador")

		got, failed := upConcurrently(t, c, 20)
		assert.Zero(t, failed)
		assert.Equal(t, seq(1, 20), got)
	})

	t.Run("shared between instances", func(t *testing.T) {
		_, cl := newTestRedis(t)
		a := NewRedisCounter(cl, "contador")
		b := NewRedisCounter(cl, "contador")

		_, err := a.Up(ctx)
		require.NoError(t, err)
		v, err := b.Up(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), v)
	})
}
