package repository

import "errors"

// ErrStaleGeneration rejects a dataset older than the stored one.
var ErrStaleGeneration = errors.New("stale dataset generation")
