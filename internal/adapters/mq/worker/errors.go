package worker

import "errors"

// ErrShutdownTimeout is returned when the loop did not stop in time.
var ErrShutdownTimeout = errors.New("worker shutdown timed out")
