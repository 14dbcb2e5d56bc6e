package types

import "errors"

var (
	// ErrNotFound is returned by loaders when the requested file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrInvalidKey is returned for keys that do not name a file under the served root.
	ErrInvalidKey = errors.New("invalid key")

	// ErrInvalidEntry is returned by Insert for a nil entry, an empty key or a size
	// that does not match the payload.
	ErrInvalidEntry = errors.New("invalid cache entry")

	// ErrEntryTooLarge is returned by Insert when the payload is bigger than the
	// store agreed to retain. The caller still owns the bytes and may serve them.
	ErrEntryTooLarge = errors.New("cache entry too large")

	// ErrClosed is returned by a cache after Close.
	ErrClosed = errors.New("cache is closed")
)
