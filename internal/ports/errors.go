package ports

import "errors"

// ErrNotFound reports that the backend has no such client or route.
var ErrNotFound = errors.New("not found")
