// Package query caches the results of remote reads keyed by string.
//
// A Client remembers each fetched value for a stale time. Fetch returns the
// cached value while it is fresh and otherwise calls the fetch function.
// Concurrent fetches of the same key share one call.
//
//	qc := query.New(query.WithStaleTime(30 * time.Second))
//
//	news, err := query.Fetch(ctx, qc, query.Key("news", "list"), func(ctx context.Context) ([]apiclient.News, error) {
//		return api.News.List(ctx, apiclient.ListParams{})
//	})
//
// After a mutation, drop every key under the resource prefix:
//
//	qc.Invalidate(query.Key("news"))
//
// Errors are never cached.
package query
