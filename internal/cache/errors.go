package cache

import "errors"

var (
	// ErrRead is returned when the cache file exists but cannot be read
	ErrRead = errors.New("failed to read cache")

	// ErrWrite is returned when the cache file cannot be written
	ErrWrite = errors.New("failed to write cache")
)
