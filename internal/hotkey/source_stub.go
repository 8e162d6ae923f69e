//go:build !windows

package hotkey

import (
	"errors"

	"github.com/moutend/go-hook/pkg/types"
)

// stubSource stands in on non-Windows builds, where the low-level hook is
// unavailable. Enable reports ErrInstall once and the listener stays Disabled.
type stubSource struct{}

func newPlatformSource() KeySource {
	return &stubSource{}
}

func (stubSource) Install(chan types.KeyboardEvent) error {
	return errors.New("global hotkeys require windows")
}

func (stubSource) Uninstall() error {
	return nil
}
