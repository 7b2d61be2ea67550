// Package ratelimiter implements token bucket rate limiting.
//
// A Bucket applies one Config to any number of keys; the Store keeps the
// per-key state. The portal uses it to throttle sign-in attempts per client
// address:
//
//	store := ratelimiter.NewMemoryStore()
//	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       10,
//		RefillRate:     1,
//		RefillInterval: 30 * time.Second,
//	})
//
//	res, err := limiter.Allow(ctx, clientIP)
//	if err == nil && !res.Allowed() {
//		// reject, retry after res.RetryAfter()
//	}
//
// MemoryStore drops buckets that have not been touched for a while; run its
// cleanup loop with g.Go(store.Run(ctx)).
package ratelimiter
