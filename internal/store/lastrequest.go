package store

import (
	"context"
	"time"

	"github.com/mmcdole/showtrack/internal/domain"
)

// LastRequestStore records when each (request kind, entity) pair was last
// refreshed from the remote provider. Entries only exist after a successful
// refresh.
type LastRequestStore struct {
	db  Backend
	now func() time.Time
}

func NewLastRequestStore(db Backend) *LastRequestStore {
	return &LastRequestStore{db: db, now: time.Now}
}

// WithClock replaces the time source. Used by tests to move through
// freshness windows.
func (s *LastRequestStore) WithClock(now func() time.Time) *LastRequestStore {
	s.now = now
	return s
}

func requestKey(req domain.Request, entityID int64) string {
	return string(req) + ":" + idKey(entityID)
}

// GetLastRequest returns the last refresh time; ok is false if none recorded.
func (s *LastRequestStore) GetLastRequest(ctx context.Context, req domain.Request, entityID int64) (time.Time, bool, error) {
	var nanos int64
	var found bool
	err := s.db.View(ctx, func(tx Tx) error {
		var err error
		found, err = getJSON(tx, bucketLastRequests, requestKey(req, entityID), &nanos)
		return err
	})
	if err != nil || !found {
		return time.Time{}, false, err
	}
	return time.Unix(0, nanos), true, nil
}

// IsRequestValid reports whether the last refresh happened less than maxAge
// ago. An entity with no recorded refresh is never valid.
func (s *LastRequestStore) IsRequestValid(ctx context.Context, req domain.Request, entityID int64, maxAge time.Duration) (bool, error) {
	last, ok, err := s.GetLastRequest(ctx, req, entityID)
	if err != nil || !ok {
		return false, err
	}
	return s.now().Sub(last) < maxAge, nil
}

// UpdateLastRequest stamps the entity as refreshed now.
func (s *LastRequestStore) UpdateLastRequest(ctx context.Context, req domain.Request, entityID int64) error {
	return s.SetLastRequest(ctx, req, entityID, s.now())
}

// SetLastRequest stamps the entity as refreshed at t.
func (s *LastRequestStore) SetLastRequest(ctx context.Context, req domain.Request, entityID int64, t time.Time) error {
	return s.db.Update(ctx, func(tx Tx) error {
		return putJSON(tx, bucketLastRequests, requestKey(req, entityID), t.UnixNano())
	})
}

// Invalidate forgets the refresh record so the next read refetches.
func (s *LastRequestStore) Invalidate(ctx context.Context, req domain.Request, entityID int64) error {
	return s.db.Update(ctx, func(tx Tx) error {
		return tx.Delete(bucketLastRequests, requestKey(req, entityID))
	})
}

// InvalidateAll forgets every record of one request kind.
func (s *LastRequestStore) InvalidateAll(ctx context.Context, req domain.Request) error {
	return s.db.Update(ctx, func(tx Tx) error {
		return tx.DeletePrefix(bucketLastRequests, string(req)+":")
	})
}

// For binds the store to a single request kind.
func (s *LastRequestStore) For(req domain.Request) *RequestTracker {
	return &RequestTracker{store: s, req: req}
}

// RequestTracker is a freshness tracker for one request kind keyed by
// show ID.
type RequestTracker struct {
	store *LastRequestStore
	req   domain.Request
}

func (t *RequestTracker) IsValid(ctx context.Context, showID int64, maxAge time.Duration) (bool, error) {
	return t.store.IsRequestValid(ctx, t.req, showID, maxAge)
}

func (t *RequestTracker) MarkRefreshed(ctx context.Context, showID int64) error {
	return t.store.UpdateLastRequest(ctx, t.req, showID)
}

func (t *RequestTracker) Invalidate(ctx context.Context, showID int64) error {
	return t.store.Invalidate(ctx, t.req, showID)
}

func (t *RequestTracker) InvalidateAll(ctx context.Context) error {
	return t.store.InvalidateAll(ctx, t.req)
}
