//go:build windows

package monitor

import (
	"errors"
	"image"

	"github.com/lxn/win"
)

// CursorPosition reads the cursor location in virtual-desktop coordinates.
func CursorPosition() (image.Point, error) {
	var pt win.POINT
	if !win.GetCursorPos(&pt) {
		return image.Point{}, errors.New("GetCursorPos failed")
	}
	return image.Pt(int(pt.X), int(pt.Y)), nil
}
