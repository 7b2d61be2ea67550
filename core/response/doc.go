// Package response writes JSON responses, redirects and structured errors for
// net/http handlers.
//
// Handlers return a Response and let Handler render it:
//
//	r.Get("/news", response.Handler(func(r *http.Request) response.Response {
//		items, err := loadNews(r.Context())
//		if err != nil {
//			return response.Error(err)
//		}
//		return response.JSON(items)
//	}))
//
// Errors are converted to HTTPError and rendered as
// {"code": "...", "message": "..."} with the matching status. Any error that
// implements StatusCode() int keeps its status; everything else becomes 500.
//
// Middleware that has no Response to return can call WriteError directly.
package response
