package repository

import "errors"

// ErrNotFound is returned when the target row of a mutation does not exist.
// Plain lookups return (nil, nil) instead so callers can decide whether a
// missing document is an error.
var ErrNotFound = errors.New("not found")
