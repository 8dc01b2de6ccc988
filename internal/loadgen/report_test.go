package loadgen

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewReport(t *testing.T) {
	ok := func(v int64) Hit { return Hit{Status: 200, Value: v, HasValue: true, Latency: time.Millisecond} }

	t.Run("contiguous", func(t *testing.T) {
		r := newReport("t", []Hit{ok(3), ok(1), ok(2)}, time.Second)
		assert.Equal(t, []int64{1, 2, 3}, r.Values)
		assert.True(t, r.Contiguous)
		assert.True(t, r.Serialized())
		assert.Contains(t, r.String(), "values=1..3 contiguous=true")
	})

	t.Run("duplicates", func(t *testing.T) {
		r := newReport("t", []Hit{ok(1), ok(1), ok(2)}, time.Second)
		assert.Equal(t, []int64{1}, r.Duplicates)
		assert.False(t, r.Contiguous)
		assert.Contains(t, r.String(), "duplicates=[1]")
	})

	t.Run("gap", func(t *testing.T) {
		r := newReport("t", []Hit{ok(1), ok(3)}, time.Second)
		assert.Empty(t, r.Duplicates)
		assert.False(t, r.Contiguous)
	})

	t.Run("errors and statuses", func(t *testing.T) {
		r := newReport("t", []Hit{
			ok(1),
			{Status: 500, Latency: 5 * time.Millisecond},
			{Err: errors.New("refused")},
		}, time.Second)
		assert.Equal(t, 3, r.Sent)
		assert.Equal(t, 1, r.Succeeded)
		assert.Equal(t, 2, r.Failed)
		assert.Equal(t, map[int]int{200: 1, 500: 1}, r.StatusCodes)
		assert.Equal(t, 5*time.Millisecond, r.MaxLatency)
		assert.True(t, r.Contiguous)
		assert.False(t, r.Serialized())
	})

	t.Run("no values", func(t *testing.T) {
		r := newReport("t", []Hit{{Status: 200}}, time.Second)
		assert.Empty(t, r.Values)
		assert.False(t, r.Contiguous)
		assert.NotContains(t, r.String(), "values=")
	})
}
