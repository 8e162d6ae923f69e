//go:build !windows

package monitor

import (
	"errors"
	"image"
)

// CursorPosition is unavailable off Windows; callers fall back to the
// primary display via ResolveTarget's out-of-bounds handling.
func CursorPosition() (image.Point, error) {
	return image.Point{}, errors.New("cursor position not supported on this platform")
}
