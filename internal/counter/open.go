package counter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Backend selects and configures a Counter implementation.
type Backend struct {
	// Kind is one of file, unguarded, memory, redis, postgres, datastore.
	Kind string

	// Path of the record for file and unguarded.
	Path           string
	UnguardedDelay time.Duration
	FileOptions    []FileOption

	// Name is the redis key, the postgres row or the datastore entity name.
	Name string

	RedisAddr   string
	PostgresDSN string
	ProjectID   string
	Namespace   string
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

var nopCloser = closerFunc(func() error { return nil })

// Open builds the counter described by b. The returned closer releases
// any client connection and must be called when done.
func Open(ctx context.Context, b Backend) (Counter, io.Closer, error) {
	switch b.Kind {
	case "file", "unguarded":
		if b.Path == "" {
			return nil, nil, errors.New("counter: Path is required")
		}
		if b.Kind == "unguarded" {
			return NewUnguardedFileCounter(b.Path, b.UnguardedDelay), nopCloser, nil
		}
		return NewFileCounter(b.Path, b.FileOptions...), nopCloser, nil
	case "memory":
		return &MemoryCounter{}, nopCloser, nil
	case "redis":
		if b.Name == "" {
			return nil, nil, errors.New("counter: Name is required")
		}
		cl := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:        []string{b.RedisAddr},
			DialTimeout:  time.Second * 2,
			ReadTimeout:  time.Second * 2,
			WriteTimeout: time.Second * 2,
			PoolSize:     200,
			PoolTimeout:  time.Second * 5,
		})
		if err := cl.Ping(ctx).Err(); err != nil {
			cl.Close()
			return nil, nil, fmt.Errorf("redis.Ping: %w", err)
		}
		return NewRedisCounter(cl, b.Name), cl, nil
	case "postgres":
		if b.PostgresDSN == "" || b.Name == "" {
			return nil, nil, errors.New("counter: PostgresDSN and Name are required")
		}
		db, err := pgxpool.New(ctx, b.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		c := NewPostgresCounter(db, b.Name)
		if err := c.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return c, closerFunc(func() error { db.Close(); return nil }), nil
	case "datastore":
		if b.Name == "" {
			return nil, nil, errors.New("counter: Name is required")
		}
		cl, err := datastore.NewClient(ctx, b.ProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("datastore.NewClient: %w", err)
		}
		return NewDatastoreCounter(cl, b.Namespace, b.Name), cl, nil
	default:
		return nil, nil, fmt.Errorf("counter: unknown backend %q", b.Kind)
	}
}
