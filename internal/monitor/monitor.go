package monitor

import (
	"errors"
	"image"

	"github.com/kbinani/screenshot"
)

// Mode selects how the capture target is resolved.
type Mode int

const (
	// ModeFullAllScreens targets the union of all connected displays.
	ModeFullAllScreens Mode = iota
	// ModeScreenUnderCursor targets the display containing the cursor.
	ModeScreenUnderCursor
	// ModeManual targets an explicitly supplied rect.
	ModeManual
)

// Monitor is a snapshot of one connected display. Snapshots are never cached:
// display topology can change between any two captures.
type Monitor struct {
	ID      int
	Bounds  image.Rectangle
	Primary bool
}

// Request describes one capture trigger.
type Request struct {
	Mode       Mode
	TargetRect image.Rectangle // only consulted for ModeManual
}

// ErrNoDisplays is returned when the OS reports no active displays.
var ErrNoDisplays = errors.New("no active displays")

// MonitorManager enumerates displays and resolves capture targets.
type MonitorManager struct {
	numDisplays   func() int
	displayBounds func(int) image.Rectangle
}

// NewMonitorManager queries displays through the screenshot library.
func NewMonitorManager() *MonitorManager {
	return &MonitorManager{
		numDisplays:   screenshot.NumActiveDisplays,
		displayBounds: screenshot.GetDisplayBounds,
	}
}

// NewMonitorManagerWithSource injects a display source for tests.
func NewMonitorManagerWithSource(num func() int, bounds func(int) image.Rectangle) *MonitorManager {
	return &MonitorManager{numDisplays: num, displayBounds: bounds}
}

// List re-queries the OS for the connected displays. The primary display is
// the one whose bounds start at the virtual-desktop origin; if none does,
// display 0 is treated as primary.
func (mm *MonitorManager) List() ([]Monitor, error) {
	n := mm.numDisplays()
	if n <= 0 {
		return nil, ErrNoDisplays
	}

	monitors := make([]Monitor, 0, n)
	primarySeen := false
	for i := 0; i < n; i++ {
		b := mm.displayBounds(i)
		primary := b.Min.X == 0 && b.Min.Y == 0
		if primary {
			primarySeen = true
		}
		monitors = append(monitors, Monitor{ID: i, Bounds: b, Primary: primary})
	}
	if !primarySeen {
		monitors[0].Primary = true
	}
	return monitors, nil
}

// ResolveTarget turns a capture request into a concrete pixel rect.
// ScreenUnderCursor falls back to the primary display when the cursor lies in
// no display's bounds, which can happen transiently during reconfiguration.
// Manual rects are clamped to the union of all displays.
func (mm *MonitorManager) ResolveTarget(req Request, cursor image.Point) (image.Rectangle, error) {
	monitors, err := mm.List()
	if err != nil {
		return image.Rectangle{}, err
	}

	union := monitors[0].Bounds
	for _, m := range monitors[1:] {
		union = union.Union(m.Bounds)
	}

	switch req.Mode {
	case ModeFullAllScreens:
		return union, nil
	case ModeScreenUnderCursor:
		for _, m := range monitors {
			if cursor.In(m.Bounds) {
				return m.Bounds, nil
			}
		}
		return primaryOf(monitors).Bounds, nil
	case ModeManual:
		return req.TargetRect.Intersect(union), nil
	}
	return image.Rectangle{}, errors.New("unknown capture mode")
}

func primaryOf(monitors []Monitor) Monitor {
	for _, m := range monitors {
		if m.Primary {
			return m
		}
	}
	return monitors[0]
}
