package encoder

import "errors"

// ErrWrite means the save directory was not writable or the encode failed.
// Partial output is discarded, never renamed into place.
var ErrWrite = errors.New("write failed")
