//go:build windows

package hotkey

import (
	"github.com/moutend/go-hook/pkg/keyboard"
	"github.com/moutend/go-hook/pkg/types"
)

// hookSource adapts the low-level Windows keyboard hook to KeySource.
type hookSource struct{}

func newPlatformSource() KeySource {
	return &hookSource{}
}

func (hookSource) Install(events chan types.KeyboardEvent) error {
	return keyboard.Install(nil, events)
}

func (hookSource) Uninstall() error {
	return keyboard.Uninstall()
}
