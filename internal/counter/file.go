package counter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

var _ Counter = (*FileCounter)(nil)

// FileCounter stores the value as decimal text in a single file.
// All access goes through one mutex, so increments from concurrent
// requests in the same process never observe the same value.
type FileCounter struct {
	path string

	mu         sync.Mutex
	onLockWait func(time.Duration)
}

type FileOption func(c *FileCounter)

// WithLockWaitObserver registers fn to receive how long each Up waited for the lock.
func WithLockWaitObserver(fn func(time.Duration)) FileOption {
	return FileOption(func(c *FileCounter) {
		c.onLockWait = fn
	})
}

func NewFileCounter(path string, opts ...FileOption) *FileCounter {
	c := &FileCounter{path: path}
	for _, e := range opts {
		e(c)
	}
	return c
}

func (c *FileCounter) Path() string {
	return c.path
}

func (c *FileCounter) Up(ctx context.Context) (int64, error) {
	start := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.onLockWait != nil {
		c.onLockWait(time.Since(start))
	}

	cur, err := readRecord(c.path)
	if err != nil {
		return 0, err
	}
	next := cur + 1
	if err := writeRecord(c.path, next); err != nil {
		return 0, err
	}
	return next, nil
}

func (c *FileCounter) Get(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return readRecord(c.path)
}

func readRecord(path string) (int64, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("os.ReadFile: %w", err)
	}
	return parseValue(string(b))
}

// writeRecord replaces the record through a temp file in the same directory
// and a rename, so readers see either the old or the new value.
func writeRecord(path string, v int64) (retErr error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	f, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("os.CreateTemp: %w", err)
	}
	defer func() {
		if retErr != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if _, err := f.WriteString(strconv.FormatInt(v, 10)); err != nil {
		return fmt.Errorf("f.WriteString: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("f.Sync: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("f.Close: %w", err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}
	return nil
}
