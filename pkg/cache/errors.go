package cache

import "errors"

// ErrBackend wraps failures talking to a remote cache backend.
var ErrBackend = errors.New("cache backend unavailable")
