// Package counter provides durable integer counters that advance by one
// without lost updates.
package counter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrCorrupt reports a durable record that does not hold a non-negative integer.
var ErrCorrupt = errors.New("counter: corrupt record")

type Counter interface {
	// Up advances the counter by one and returns the new value.
	Up(ctx context.Context) (int64, error)
	// Get returns the current value, 0 when the record does not exist yet.
	Get(ctx context.Context) (int64, error)
}

func parseValue(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %q", ErrCorrupt, s)
	}
	return v, nil
}
