package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("writes json at level", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "out.log")
		zl, err := NewLogger(WithLogLevel("warn"), WithOutputPaths(out))
		require.NoError(t, err)

		zl.Info("hidden")
		zl.Warn("shown")
		_ = zl.Sync()

		b, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.NotContains(t, string(b), "hidden")
		assert.Contains(t, string(b), `"msg":"shown"`)
	})

	t.Run("bad level", func(t *testing.T) {
		_, err := NewLogger(WithLogLevel("loud"))
		assert.Error(t, err)
	})

	t.Run("bad encoding", func(t *testing.T) {
		_, err := NewLogger(WithEncoding("xml"))
		assert.Error(t, err)
	})
}

func TestMust(t *testing.T) {
	assert.Panics(t, func() {
		Must(NewLogger(WithLogLevel("loud")))
	})
	assert.NotNil(t, OrNop(nil))
}
