package counter

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnguardedFileCounterSequential(t *testing.T) {
	c := NewUnguardedFileCounter(filepath.Join(t.TempDir(), "contador.txt"), 0)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		v, err := c.Up(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
}

// Lost updates are not guaranteed on every run, so several trials are made.
func TestUnguardedFileCounterLosesUpdates(t *testing.T) {
	const n = 20

	lost := false
	for trial := 0; trial < 5 && !lost; trial++ {
		c := NewUnguardedFileCounter(filepath.Join(t.TempDir(), "contador.txt"), 10*time.Millisecond)
		got, _ := upConcurrently(t, c, n)

		final, err := c.Get(context.Background())
		require.NoError(t, err)
		t.Logf("trial=%d final=%d returned=%v", trial, final, got)

		if final < n {
			lost = true
		}
	}
	assert.True(t, lost, "expected at least one trial to lose updates")
}
