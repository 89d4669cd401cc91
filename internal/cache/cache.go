// Package cache memoizes fetcher results for a bounded time window.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// ErrNotFound is returned by a Store when no entry exists for a key.
var ErrNotFound = errors.New("cache entry not found")

// Entry is one memoized result. Entries are never mutated once stored; a
// recomputation replaces the whole entry.
type Entry struct {
	Key      string          `json:"key"`
	Value    json.RawMessage `json:"value"`
	StoredAt time.Time       `json:"storedAt"`
}

// Store persists entries. Expiry is decided by Cache on read, stores only
// keep what they are given.
type Store interface {
	Load(ctx context.Context, key string) (Entry, error)
	Save(ctx context.Context, e Entry) error
}

// Func is the shape of a memoizable call.
type Func[T any] func(ctx context.Context) (T, error)

// Cache owns a Store and the expiration window applied to its entries.
type Cache struct {
	store      Store
	expiration time.Duration
	now        func() time.Time
}

// New creates a Cache. Construct one per process and share it between fetchers.
func New(store Store, expiration time.Duration) *Cache {
	return &Cache{
		store:      store,
		expiration: expiration,
		now:        time.Now,
	}
}

// Expiration reports the freshness window.
func (c *Cache) Expiration() time.Duration {
	return c.expiration
}

func (c *Cache) fresh(e Entry) bool {
	return c.now().Sub(e.StoredAt) < c.expiration
}

// Key builds a deterministic call signature from a function name and its
// arguments.
func Key(name string, args ...any) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		parts = append(parts, fmt.Sprintf("%v", a))
	}
	return strings.Join(parts, "_")
}

// Wrap memoizes fn under key. A fresh entry is returned without calling fn.
// Otherwise fn runs; an error is passed through and nothing is stored, any
// other result (including a nil "no data" value) is stored and returned.
func Wrap[T any](c *Cache, key string, fn Func[T]) Func[T] {
	return func(ctx context.Context) (T, error) {
		if e, err := c.store.Load(ctx, key); err == nil && c.fresh(e) {
			var cached T
			if err := json.Unmarshal(e.Value, &cached); err == nil {
				log.Printf("DEBUG: cache hit for %s", key)
				return cached, nil
			}
			log.Printf("WARN: discarding undecodable cache entry %s", key)
		} else if err != nil && !errors.Is(err, ErrNotFound) {
			log.Printf("WARN: cache load failed for %s: %v", key, err)
		}

		result, err := fn(ctx)
		if err != nil {
			return result, err
		}

		value, err := json.Marshal(result)
		if err != nil {
			log.Printf("WARN: cannot encode result for %s: %v", key, err)
			return result, nil
		}
		if err := c.store.Save(ctx, Entry{Key: key, Value: value, StoredAt: c.now()}); err != nil {
			log.Printf("WARN: cache save failed for %s: %v", key, err)
		}
		return result, nil
	}
}
