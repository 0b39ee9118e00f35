package store

import (
	"context"
	"fmt"
)

// keyedStore keeps one JSON value per show in a bucket. It is the durable
// half of a read-through cache: writes replace the whole value in one
// transaction so readers never see a partial value.
type keyedStore[V any] struct {
	db     Backend
	bucket string
}

func (s keyedStore[V]) read(ctx context.Context, showID int64) (V, bool, error) {
	var value V
	var found bool
	err := s.db.View(ctx, func(tx Tx) error {
		var err error
		found, err = getJSON(tx, s.bucket, idKey(showID), &value)
		return err
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return value, found, nil
}

func (s keyedStore[V]) write(ctx context.Context, showID int64, value V) error {
	err := s.db.Update(ctx, func(tx Tx) error {
		return putJSON(tx, s.bucket, idKey(showID), value)
	})
	if err != nil {
		return fmt.Errorf("write %s for show %d: %w", s.bucket, showID, err)
	}
	return nil
}

func (s keyedStore[V]) delete(ctx context.Context, showID int64) error {
	return s.db.Update(ctx, func(tx Tx) error {
		return tx.Delete(s.bucket, idKey(showID))
	})
}

func (s keyedStore[V]) deleteAll(ctx context.Context) error {
	return s.db.Update(ctx, func(tx Tx) error {
		return tx.DeletePrefix(s.bucket, "")
	})
}
