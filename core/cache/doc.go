// Package cache provides a thread-safe, generic LRU cache with optional
// per-entry expiry.
//
//	c := cache.NewLRUCache[string, []byte](1000)
//	c.PutWithTTL("news:list", body, time.Minute)
//
//	if body, ok := c.Get("news:list"); ok {
//		...
//	}
//
//	// Drop every key under a prefix.
//	c.RemoveFunc(func(key string, _ []byte) bool {
//		return strings.HasPrefix(key, "news:")
//	})
//
// Expired entries are treated as missing and removed lazily on access.
// SetEvictCallback observes capacity evictions, expiries and removals.
package cache
