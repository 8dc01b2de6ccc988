package counter

import (
	"context"
	"time"
)

var _ Counter = (*UnguardedFileCounter)(nil)

// UnguardedFileCounter is FileCounter without the lock. Concurrent Up calls
// may read the same value and overwrite each other's result.
// Delay widens the window between read and write.
type UnguardedFileCounter struct {
	path  string
	Delay time.Duration
}

func NewUnguardedFileCounter(path string, delay time.Duration) *UnguardedFileCounter {
	return &UnguardedFileCounter{path: path, Delay: delay}
}

func (c *UnguardedFileCounter) Up(ctx context.Context) (int64, error) {
	cur, err := readRecord(c.path)
	if err != nil {
		return 0, err
	}
	if c.Delay > 0 {
		time.Sleep(c.Delay)
	}
	next := cur + 1
	if err := writeRecord(c.path, next); err != nil {
		return 0, err
	}
	return next, nil
}

func (c *UnguardedFileCounter) Get(ctx context.Context) (int64, error) {
	return readRecord(c.path)
}
