package counter

import (
	"context"
	"sync/atomic"
)

var _ Counter = (*MemoryCounter)(nil)

// MemoryCounter keeps the value in process memory. It does not survive a restart.
type MemoryCounter struct {
	count int64
}

func (c *MemoryCounter) Get(ctx context.Context) (int64, error) {
	return atomic.LoadInt64(&c.count), nil
}

func (c *MemoryCounter) Up(ctx context.Context) (int64, error) {
	return atomic.AddInt64(&c.count, 1), nil
}
