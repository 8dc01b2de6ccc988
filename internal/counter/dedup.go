package counter

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

var _ Counter = (*Dedup)(nil)

// Dedup remembers the value produced for an idempotency key, so a client
// retrying after a lost response gets the same value instead of a second
// increment. Keys are forgotten after the TTL; a TTL <= 0 disables it.
type Dedup struct {
	next Counter
	ttl  time.Duration

	mu   sync.Mutex
	seen *cache.Cache
}

func NewDedup(next Counter, ttl time.Duration) *Dedup {
	d := &Dedup{next: next, ttl: ttl}
	if ttl > 0 {
		d.seen = cache.New(ttl, ttl)
	}
	return d
}

func (d *Dedup) Up(ctx context.Context) (int64, error) {
	return d.next.Up(ctx)
}

func (d *Dedup) Get(ctx context.Context) (int64, error) {
	return d.next.Get(ctx)
}

// UpOnce advances the counter unless key was already used within the TTL.
// replayed is true when the returned value comes from the earlier call.
func (d *Dedup) UpOnce(ctx context.Context, key string) (v int64, replayed bool, err error) {
	if key == "" || d.seen == nil {
		v, err = d.next.Up(ctx)
		return v, false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.seen.Get(key); ok {
		return prev.(int64), true, nil
	}
	v, err = d.next.Up(ctx)
	if err != nil {
		return 0, false, err
	}
	d.seen.SetDefault(key, v)
	return v, false, nil
}
