// Package cache implements a keyed, read-through cache over a durable source
// of truth. Values are refreshed from a remote Fetcher when the Freshness
// tracker reports them stale, and concurrent refreshes of one key are
// coalesced into a single fetch.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrNoOrigin is returned by a Fetcher, together with a placeholder value,
// when the key has no remote origin to ask. The placeholder is stored but the
// key is not marked refreshed, so a later Get asks the Fetcher again.
var ErrNoOrigin = errors.New("no origin for key")

// Fetcher retrieves the authoritative value for a key from a remote origin.
type Fetcher[K comparable, V any] interface {
	Fetch(ctx context.Context, key K) (V, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

func (f FetcherFunc[K, V]) Fetch(ctx context.Context, key K) (V, error) {
	return f(ctx, key)
}

// SourceOfTruth is the durable local store. Read reports ok=false when the
// key was never written.
type SourceOfTruth[K comparable, V any] interface {
	Read(ctx context.Context, key K) (V, bool, error)
	Write(ctx context.Context, key K, value V) error
	Delete(ctx context.Context, key K) error
	DeleteAll(ctx context.Context) error
}

// Freshness records successful refreshes and answers whether a key is still
// within its freshness window.
type Freshness[K comparable] interface {
	IsValid(ctx context.Context, key K, maxAge time.Duration) (bool, error)
	MarkRefreshed(ctx context.Context, key K) error
}

// Cache composes a Fetcher, a SourceOfTruth and a Freshness tracker.
type Cache[K comparable, V any] struct {
	name      string
	fetcher   Fetcher[K, V]
	sot       SourceOfTruth[K, V]
	freshness Freshness[K]
	maxAge    time.Duration
	stale     bool
	logger    *slog.Logger

	mu       sync.Mutex
	inflight map[K]*call[V]
}

// call is one in-flight refresh shared by every caller waiting on its key.
type call[V any] struct {
	done    chan struct{}
	val     V
	err     error
	waiters int
	cancel  context.CancelFunc

	// force skips the freshness re-check before fetching
	force bool
}

// Option configures a Cache
type Option func(*options)

type options struct {
	name   string
	maxAge time.Duration
	stale  bool
	logger *slog.Logger
}

// WithName labels log lines and metrics.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithMaxAge sets the freshness window.
func WithMaxAge(d time.Duration) Option {
	return func(o *options) { o.maxAge = d }
}

// WithStaleFallback makes Get return the last stored value, instead of the
// fetch error, when a refresh fails and a stored value exists.
func WithStaleFallback(enabled bool) Option {
	return func(o *options) { o.stale = enabled }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// DefaultMaxAge is used when no WithMaxAge option is given.
const DefaultMaxAge = 24 * time.Hour

// New builds a Cache.
func New[K comparable, V any](fetcher Fetcher[K, V], sot SourceOfTruth[K, V], freshness Freshness[K], opts ...Option) *Cache[K, V] {
	o := options{name: "cache", maxAge: DefaultMaxAge}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &Cache[K, V]{
		name:      o.name,
		fetcher:   fetcher,
		sot:       sot,
		freshness: freshness,
		maxAge:    o.maxAge,
		stale:     o.stale,
		logger:    o.logger.With("cache", o.name),
		inflight:  make(map[K]*call[V]),
	}
}

// MaxAge returns the freshness window.
func (c *Cache[K, V]) MaxAge() time.Duration {
	return c.maxAge
}

// Get returns the value for key. Fresh keys are served from the source of
// truth without touching the fetcher; stale or unknown keys are fetched,
// written and marked refreshed before the written value is returned.
func (c *Cache[K, V]) Get(ctx context.Context, key K) (V, error) {
	valid, err := c.freshness.IsValid(ctx, key, c.maxAge)
	if err != nil {
		// Treat an unreadable record as stale; the refresh rewrites it
		c.logger.Warn("freshness check failed", "key", key, "error", err)
		valid = false
	}

	if valid {
		value, _, err := c.sot.Read(ctx, key)
		if err != nil {
			var zero V
			return zero, fmt.Errorf("%s: read %v: %w", c.name, key, err)
		}
		recordOutcome(c.name, outcomeHit)
		c.logger.Debug("cache fresh", "key", key)
		return value, nil
	}

	recordOutcome(c.name, outcomeMiss)
	c.logger.Debug("cache stale, fetching", "key", key)

	value, err := c.refresh(ctx, key, false)
	if err != nil && c.stale && ctx.Err() == nil {
		if cached, ok, rerr := c.sot.Read(ctx, key); rerr == nil && ok {
			recordOutcome(c.name, outcomeStale)
			c.logger.Warn("refresh failed, serving stored value", "key", key, "error", err)
			return cached, nil
		}
	}
	return value, err
}

// Fresh always fetches from the origin, bypassing the freshness window.
// Concurrent Fresh and Get calls for one key still share one fetch.
func (c *Cache[K, V]) Fresh(ctx context.Context, key K) (V, error) {
	return c.refresh(ctx, key, true)
}

// Cached returns the stored value without ever fetching.
func (c *Cache[K, V]) Cached(ctx context.Context, key K) (V, bool, error) {
	return c.sot.Read(ctx, key)
}

// Clear deletes the stored value for key.
func (c *Cache[K, V]) Clear(ctx context.Context, key K) error {
	return c.sot.Delete(ctx, key)
}

// ClearAll deletes every stored value.
func (c *Cache[K, V]) ClearAll(ctx context.Context) error {
	return c.sot.DeleteAll(ctx)
}

// refresh joins the in-flight fetch for key or starts one. The fetch runs
// detached from any single caller; it is cancelled only when every waiting
// caller has given up. A forced refresh that joins a call still before its
// freshness re-check turns that call into a forced one.
func (c *Cache[K, V]) refresh(ctx context.Context, key K, force bool) (V, error) {
	c.mu.Lock()
	cl, ok := c.inflight[key]
	if !ok {
		fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		cl = &call[V]{done: make(chan struct{}), cancel: cancel, force: force}
		c.inflight[key] = cl
		go c.run(fetchCtx, key, cl)
	}
	if force {
		cl.force = true
	}
	cl.waiters++
	c.mu.Unlock()

	select {
	case <-cl.done:
		return cl.val, cl.err
	case <-ctx.Done():
		c.mu.Lock()
		cl.waiters--
		if cl.waiters == 0 {
			cl.cancel()
			if c.inflight[key] == cl {
				delete(c.inflight, key)
			}
		}
		c.mu.Unlock()
		var zero V
		return zero, ctx.Err()
	}
}

func (c *Cache[K, V]) run(ctx context.Context, key K, cl *call[V]) {
	defer func() {
		c.mu.Lock()
		if c.inflight[key] == cl {
			delete(c.inflight, key)
		}
		c.mu.Unlock()
		cl.cancel()
		close(cl.done)
	}()

	c.mu.Lock()
	force := cl.force
	c.mu.Unlock()

	// A caller that saw the key stale may arrive after another call already
	// refreshed it and left the in-flight table
	if !force {
		if value, ok := c.reuse(ctx, key); ok {
			cl.val = value
			return
		}
	}

	cl.val, cl.err = c.load(ctx, key)
}

// reuse serves the stored value when key became fresh since the caller's
// own check.
func (c *Cache[K, V]) reuse(ctx context.Context, key K) (V, bool) {
	var zero V
	valid, err := c.freshness.IsValid(ctx, key, c.maxAge)
	if err != nil || !valid {
		return zero, false
	}
	value, _, err := c.sot.Read(ctx, key)
	if err != nil {
		return zero, false
	}
	c.logger.Debug("refreshed by an earlier call, serving stored value", "key", key)
	return value, true
}

// load performs fetch -> write -> mark refreshed. Nothing is written and the
// freshness record is untouched unless the fetch succeeds.
func (c *Cache[K, V]) load(ctx context.Context, key K) (V, error) {
	var zero V

	start := time.Now()
	value, err := c.fetcher.Fetch(ctx, key)
	noOrigin := errors.Is(err, ErrNoOrigin)
	if noOrigin {
		err = nil
	}
	observeFetch(c.name, time.Since(start), err == nil)
	if err != nil {
		recordOutcome(c.name, outcomeFetchError)
		c.logger.Error("fetch failed", "key", key, "error", err)
		return zero, fmt.Errorf("%s: fetch %v: %w", c.name, key, err)
	}

	if err := c.sot.Write(ctx, key, value); err != nil {
		recordOutcome(c.name, outcomeWriteError)
		c.logger.Error("failed to save fetched value", "key", key, "error", err)
		return zero, fmt.Errorf("%s: write %v: %w", c.name, key, err)
	}

	if noOrigin {
		c.logger.Debug("no origin for key, stored placeholder unmarked", "key", key)
	} else if err := c.freshness.MarkRefreshed(ctx, key); err != nil {
		// The value is durable; an unrecorded refresh only means the next
		// read fetches again
		c.logger.Warn("failed to record refresh", "key", key, "error", err)
	}

	// Return what the source of truth now holds so callers see exactly the
	// durable value
	stored, ok, err := c.sot.Read(ctx, key)
	if err != nil || !ok {
		return value, nil
	}
	return stored, nil
}
