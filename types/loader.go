package types

import "context"

// Loader is the contract between the cache and the disk.
type Loader interface {

	/*
		Load is called when the cache misses. The file was not found in memory,
		so the cache asks the Loader to read it.
		1. Cache checks its store → key not found
		2. Cache calls Load(key)
		3. Loader reads the file
		4. Cache inserts the result into its store
		5. Cache returns the bytes

		Load returns an error wrapping ErrNotFound when there is no such file and
		ErrInvalidKey when the key does not name a file under the served root.
	*/
	Load(ctx context.Context, key string) ([]byte, error)
}
