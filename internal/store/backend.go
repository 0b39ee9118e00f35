package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Bucket names
const (
	bucketMeta         = "meta"
	bucketShows        = "shows"
	bucketImages       = "show_images"
	bucketSeasons      = "show_seasons"
	bucketLastRequests = "last_requests"
)

var allBuckets = []string{bucketMeta, bucketShows, bucketImages, bucketSeasons, bucketLastRequests}

// Driver names accepted by Open
const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
)

// Tx is a transaction over named buckets. Values returned by Get are copies
// and stay valid after the transaction ends.
type Tx interface {
	Get(bucket, key string) ([]byte, error)
	Put(bucket, key string, value []byte) error
	Delete(bucket, key string) error
	DeletePrefix(bucket, prefix string) error
	ForEach(bucket, prefix string, fn func(key string, value []byte) error) error
}

// Backend is a durable bucketed key/value store. Update runs fn in a single
// write transaction: either every write in fn commits or none does.
type Backend interface {
	View(ctx context.Context, fn func(Tx) error) error
	Update(ctx context.Context, fn func(Tx) error) error
	Close() error
}

// Open creates the cache directory and opens the backend for driver.
// An empty dir opens an in-memory SQLite database.
func Open(driver, dir string) (Backend, error) {
	if dir == "" {
		return OpenSQLite(":memory:")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	switch driver {
	case "", DriverBolt:
		return OpenBolt(filepath.Join(dir, "showtrack.db"))
	case DriverSQLite:
		return OpenSQLite(filepath.Join(dir, "showtrack.sqlite"))
	default:
		return nil, fmt.Errorf("unknown store driver: %s", driver)
	}
}
