// Package cache defines common error types used throughout the caching layer.
package cache

import "errors"

// ErrCacheMiss indicates the requested key was not found in cache.
// This is not an error condition in itself, just the signal to fall
// back to the database.
//
// Example usage:
//
//	err := cache.Get(ctx, key, &data)
//	if err == cache.ErrCacheMiss {
//	    // Load from database
//	} else if err != nil {
//	    // Handle other errors
//	}
var ErrCacheMiss = errors.New("cache miss")
