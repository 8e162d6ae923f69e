package capture

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/kbinani/screenshot"
)

// DefaultTimeout bounds a single grab. A hotkey-triggered capture that hangs
// would also block every subsequent hotkey press, so a slow OS call is
// reported as a failure instead of being left to wedge the pipeline.
const DefaultTimeout = 3 * time.Second

// Grabber produces the raw pixels for a target rect. The real implementation
// goes through the screenshot library; tests inject fakes.
type Grabber func(rect image.Rectangle) (*image.RGBA, error)

// Result is one in-memory capture, owned by the pipeline call that produced
// it until it is handed to the encoder.
type Result struct {
	Image     *image.RGBA
	Timestamp time.Time
}

// CaptureManager performs pixel grabs for resolved target rects.
type CaptureManager struct {
	grab    Grabber
	timeout time.Duration
	clock   func() time.Time
}

// Option customises a CaptureManager.
type Option func(*CaptureManager)

// WithGrabber replaces the platform grabber.
func WithGrabber(g Grabber) Option {
	return func(cm *CaptureManager) { cm.grab = g }
}

// WithTimeout overrides the grab deadline.
func WithTimeout(d time.Duration) Option {
	return func(cm *CaptureManager) { cm.timeout = d }
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(cm *CaptureManager) { cm.clock = clock }
}

// NewCaptureManager creates a capture engine backed by the OS screen grab.
func NewCaptureManager(opts ...Option) *CaptureManager {
	cm := &CaptureManager{
		grab:    screenshot.CaptureRect,
		timeout: DefaultTimeout,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(cm)
	}
	return cm
}

// Capture grabs the pixels inside rect. A zero-area rect, a platform denial
// (secure desktop, protected content), or a grab exceeding the bounded
// timeout all fail with ErrUnavailable.
func (cm *CaptureManager) Capture(ctx context.Context, rect image.Rectangle) (Result, error) {
	if rect.Dx() <= 0 || rect.Dy() <= 0 {
		return Result{}, fmt.Errorf("%w: empty target rect %v", ErrUnavailable, rect)
	}

	type grabOutcome struct {
		img *image.RGBA
		err error
	}
	// Buffered so a grab finishing after the deadline does not leak the goroutine.
	done := make(chan grabOutcome, 1)
	go func() {
		img, err := cm.grab(rect)
		done <- grabOutcome{img: img, err: err}
	}()

	timer := time.NewTimer(cm.timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	case <-timer.C:
		return Result{}, fmt.Errorf("%w: grab exceeded %v", ErrUnavailable, cm.timeout)
	case outcome := <-done:
		if outcome.err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, outcome.err)
		}
		if outcome.img == nil || outcome.img.Bounds().Empty() {
			return Result{}, fmt.Errorf("%w: grab returned no pixels", ErrUnavailable)
		}
		return Result{Image: outcome.img, Timestamp: cm.clock()}, nil
	}
}
