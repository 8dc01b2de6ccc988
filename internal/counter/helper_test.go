package counter

import (
	"context"
	"sort"
	"sync"
	"testing"
)

// upConcurrently releases n goroutines at once, each calling c.Up, and
// returns the successful results sorted ascending plus the error count.
func upConcurrently(t *testing.T, c Counter, n int) ([]int64, int) {
	t.Helper()

	ctx := context.Background()
	gate := make(chan struct{})
	values := make([]int64, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-gate
			values[i], errs[i] = c.Up(ctx)
		}(i)
	}
	close(gate)
	wg.Wait()

	var got []int64
	failed := 0
	for i := range values {
		if errs[i] != nil {
			failed++
			continue
		}
		got = append(got, values[i])
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	return got, failed
}

func seq(from, to int64) []int64 {
	var r []int64
	for v := from; v <= to; v++ {
		r = append(r, v)
	}
	return r
}
