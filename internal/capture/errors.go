package capture

import "errors"

// ErrUnavailable means the platform denied screen access, the target rect was
// empty, or the grab did not complete within the bounded interval. No file is
// produced for such an attempt.
var ErrUnavailable = errors.New("capture unavailable")
