package sql

import (
	"context"
	"encoding/hex"
	"hash/fnv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/codec"
	"github.com/syssam/rowmap/dialect"
)

// CachedDriver wraps a Driver with read-through caching of query
// results. Concurrent cache misses for the same statement are collapsed
// into one database round trip. Exec invalidates the cached results of
// the written table; statements whose table cannot be determined clear
// the whole cache. Transaction statements bypass the cache entirely:
// inside a transaction reads must observe uncommitted writes.
type CachedDriver struct {
	dialect.Driver
	cache rowmap.Cache
	ttl   time.Duration
	group singleflight.Group
	// inTx is read by Query while Begin/Commit/Rollback write it, so it
	// must be atomic: a stale read would serve cached rows inside an
	// open transaction.
	inTx atomic.Bool
}

// NewCachedDriver wraps a Driver with the given cache backend and TTL.
// A TTL of 0 caches without expiry.
func NewCachedDriver(drv dialect.Driver, cache rowmap.Cache, ttl time.Duration) *CachedDriver {
	return &CachedDriver{Driver: drv, cache: cache, ttl: ttl}
}

// cacheKey is table-prefixed so writes can invalidate per table.
func cacheKey(query string, params []rowmap.Value) string {
	h := fnv.New64a()
	h.Write([]byte(query))
	for _, p := range params {
		h.Write([]byte{0})
		h.Write([]byte(p.String()))
	}
	return tableOf(query) + ":" + hex.EncodeToString(h.Sum(nil))
}

// tableOf extracts the table name a statement targets, or "" when it
// cannot be determined. It looks at the token following FROM, INTO or
// UPDATE, which covers every statement the dao package emits.
func tableOf(query string) string {
	tokens := strings.Fields(query)
	for i, tok := range tokens {
		switch strings.ToUpper(tok) {
		case "FROM", "INTO", "UPDATE":
			if i+1 < len(tokens) {
				return strings.Trim(tokens[i+1], `"`)
			}
		}
	}
	return ""
}

// Query returns cached rows when available, otherwise queries the
// underlying driver and caches the result.
func (d *CachedDriver) Query(ctx context.Context, query string, params []rowmap.Value) ([]rowmap.Row, error) {
	if d.inTx.Load() {
		return d.Driver.Query(ctx, query, params)
	}
	key := cacheKey(query, params)
	if blob, err := d.cache.Get(ctx, key); err == nil && blob != nil {
		if rows, err := codec.UnmarshalRows(blob); err == nil {
			return rows, nil
		}
		// A corrupt entry is dropped and refetched.
		_ = d.cache.Delete(ctx, key)
	}
	v, err, _ := d.group.Do(key, func() (any, error) {
		rows, err := d.Driver.Query(ctx, query, params)
		if err != nil {
			return nil, err
		}
		if blob, err := codec.MarshalRows(rows); err == nil {
			_ = d.cache.Set(ctx, key, blob, d.ttl)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]rowmap.Row), nil
}

// QueryOne reuses the cached Query path.
func (d *CachedDriver) QueryOne(ctx context.Context, query string, params []rowmap.Value) (*rowmap.Row, error) {
	rows, err := d.Query(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Exec runs the statement and invalidates the written table's cached
// results.
func (d *CachedDriver) Exec(ctx context.Context, query string, params []rowmap.Value) (int64, error) {
	n, err := d.Driver.Exec(ctx, query, params)
	if err != nil {
		return n, err
	}
	if table := tableOf(query); table != "" {
		_ = d.cache.DeletePrefix(ctx, table+":")
	} else {
		_ = d.cache.Clear(ctx)
	}
	return n, nil
}

// Begin opens a transaction and suspends caching until it ends.
func (d *CachedDriver) Begin(ctx context.Context) error {
	if err := d.Driver.Begin(ctx); err != nil {
		return err
	}
	d.inTx.Store(true)
	return nil
}

// Commit commits the transaction and resumes caching.
func (d *CachedDriver) Commit(ctx context.Context) error {
	d.inTx.Store(false)
	return d.Driver.Commit(ctx)
}

// Rollback rolls back the transaction and resumes caching.
func (d *CachedDriver) Rollback(ctx context.Context) error {
	d.inTx.Store(false)
	return d.Driver.Rollback(ctx)
}

var _ dialect.Driver = (*CachedDriver)(nil)
