package loadgen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tckz/go-vuln-defense/internal/counter"
	"github.com/tckz/go-vuln-defense/internal/server"
)

func newCounterServer(t *testing.T, c counter.Counter) *httptest.Server {
	t.Helper()
	s, err := server.New(server.Config{Counter: c, BaseDir: t.TempDir()})
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestBurstValidation(t *testing.T) {
	_, err := (&Burst{Concurrency: 1}).Run(context.Background())
	assert.Error(t, err)
	_, err = (&Burst{Target: "http://localhost"}).Run(context.Background())
	assert.Error(t, err)
}

func TestBurstDefendedCounter(t *testing.T) {
	p := filepath.Join(t.TempDir(), "contador.txt")
	srv := newCounterServer(t, counter.NewFileCounter(p))

	r, err := (&Burst{Target: srv.URL + "/escrever", Concurrency: 20}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 20, r.Sent)
	assert.Equal(t, 20, r.Succeeded)
	assert.Zero(t, r.Failed)
	assert.Equal(t, map[int]int{http.StatusOK: 20}, r.StatusCodes)
	assert.Empty(t, r.Duplicates)
	assert.True(t, r.Contiguous)
	assert.True(t, r.Serialized())
	assert.Equal(t, int64(1), r.Values[0])
	assert.Equal(t, int64(20), r.Values[19])

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "20", string(b))
}

// The unguarded counter is expected to lose updates, though not on every run.
func TestBurstUnguardedCounter(t *testing.T) {
	lost := false
	for trial := 0; trial < 5 && !lost; trial++ {
		p := filepath.Join(t.TempDir(), "contador.txt")
		c := counter.NewUnguardedFileCounter(p, 10*time.Millisecond)
		srv := newCounterServer(t, c)

		r, err := (&Burst{Target: srv.URL + "/escrever", Concurrency: 20}).Run(context.Background())
		require.NoError(t, err)
		t.Logf("trial=%d %s", trial, r)

		final, err := c.Get(context.Background())
		require.NoError(t, err)
		if final < 20 {
			lost = true
			assert.False(t, r.Serialized())
		}
	}
	assert.True(t, lost, "expected at least one trial to lose updates")
}

func TestBurstWaitsForFailures(t *testing.T) {
	var n int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&n, 1)
		time.Sleep(20 * time.Millisecond)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r, err := (&Burst{Target: srv.URL, Concurrency: 10}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(10), atomic.LoadInt32(&n))
	assert.Equal(t, 10, r.Failed)
	assert.Equal(t, map[int]int{http.StatusInternalServerError: 10}, r.StatusCodes)
	assert.Empty(t, r.Values)
	assert.False(t, r.Serialized())
}

func TestBurstTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r, err := (&Burst{Target: url, Concurrency: 5}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, r.Failed)
	assert.Empty(t, r.StatusCodes)
}
