package query

import "errors"

// ErrTypeMismatch is returned when a cached value has a different type than requested.
var ErrTypeMismatch = errors.New("query: cached value has unexpected type")
