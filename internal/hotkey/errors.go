package hotkey

import "errors"

// ErrInstall means the low-level keyboard hook could not be installed,
// commonly for lack of privilege. The listener stays Disabled; callers should
// report it once and fall back to manual triggering.
var ErrInstall = errors.New("failed to install keyboard hook")

// ErrBusy is returned by Rebind while a triggered capture is still in flight.
// Retry once the capture completes.
var ErrBusy = errors.New("hotkey listener busy")
