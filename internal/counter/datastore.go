package counter

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/datastore"
)

const datastoreKind = "Counter"

type counterEntity struct {
	Value int64 `datastore:"value,noindex"`
}

var _ Counter = (*DatastoreCounter)(nil)

// DatastoreCounter runs the read-increment-write inside a Datastore
// transaction. Conflicting transactions are retried by the client library.
type DatastoreCounter struct {
	client *datastore.Client
	key    *datastore.Key
}

func NewDatastoreCounter(client *datastore.Client, namespace, name string) *DatastoreCounter {
	key := datastore.NameKey(datastoreKind, name, nil)
	key.Namespace = namespace
	return &DatastoreCounter{client: client, key: key}
}

func (c *DatastoreCounter) Up(ctx context.Context) (int64, error) {
	var next int64
	_, err := c.client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		var e counterEntity
		if err := tx.Get(c.key, &e); err != nil && !errors.Is(err, datastore.ErrNoSuchEntity) {
			return err
		}
		if e.Value < 0 {
			return fmt.Errorf("%w: %d", ErrCorrupt, e.Value)
		}
		e.Value++
		if _, err := tx.Put(c.key, &e); err != nil {
			return err
		}
		next = e.Value
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("datastore.RunInTransaction: %w", err)
	}
	return next, nil
}

func (c *DatastoreCounter) Get(ctx context.Context) (int64, error) {
	var e counterEntity
	err := c.client.Get(ctx, c.key, &e)
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("datastore.Get: %w", err)
	}
	return e.Value, nil
}
