package rowmap

import (
	"context"
	"time"
)

// Cache is the backend contract for cached query results, consumed by
// dialect/sql.CachedDriver. Implementations bring their own store
// (Redis, Memcached, an in-process map); rowmap only reads and writes
// opaque encoded row sets against string keys.
//
// Keys are table-prefixed ("product:<hash>"), so DeletePrefix is how a
// write to one table invalidates that table's entries without touching
// the rest.
type Cache interface {
	// Get retrieves an entry. A missing key is (nil, nil), not an
	// error.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores an entry. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a single entry.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every entry whose key starts with prefix.
	// Invalidation after a write runs through this with the written
	// table's prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes every entry. Used when a statement's target table
	// cannot be determined.
	Clear(ctx context.Context) error
}
