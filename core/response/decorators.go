package response

import (
	"fmt"
	"net/http"
	"time"
)

// WithHeaders sets headers before resp renders.
func WithHeaders(resp Response, headers map[string]string) Response {
	if resp == nil || len(headers) == 0 {
		return resp
	}
	return func(w http.ResponseWriter, r *http.Request) error {
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		return resp(w, r)
	}
}

// WithCache sets caching headers. maxAge <= 0 disables caching.
func WithCache(resp Response, maxAge time.Duration) Response {
	if resp == nil {
		return nil
	}
	return func(w http.ResponseWriter, r *http.Request) error {
		if maxAge > 0 {
			w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds())))
		} else {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
		}
		return resp(w, r)
	}
}

// Before runs fn with the writer before resp renders. A non-nil error from
// fn is returned without rendering resp.
func Before(resp Response, fn func(w http.ResponseWriter) error) Response {
	if resp == nil || fn == nil {
		return resp
	}
	return func(w http.ResponseWriter, r *http.Request) error {
		if err := fn(w); err != nil {
			return err
		}
		return resp(w, r)
	}
}
