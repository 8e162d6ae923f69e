package capture

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"
)

func solidGrabber(t *testing.T) Grabber {
	t.Helper()
	return func(rect image.Rectangle) (*image.RGBA, error) {
		img := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
		for i := range img.Pix {
			img.Pix[i] = 0x7f
		}
		return img, nil
	}
}

func TestCaptureReturnsImageAndTimestamp(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cm := NewCaptureManager(
		WithGrabber(solidGrabber(t)),
		WithClock(func() time.Time { return now }),
	)

	result, err := cm.Capture(context.Background(), image.Rect(0, 0, 640, 480))
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if got := result.Image.Bounds(); got.Dx() != 640 || got.Dy() != 480 {
		t.Fatalf("unexpected image bounds %v", got)
	}
	if !result.Timestamp.Equal(now) {
		t.Fatalf("expected timestamp %v, got %v", now, result.Timestamp)
	}
}

func TestCaptureZeroAreaRect(t *testing.T) {
	cm := NewCaptureManager(WithGrabber(solidGrabber(t)))

	for _, rect := range []image.Rectangle{
		{},
		image.Rect(10, 10, 10, 500),
		image.Rect(10, 10, 500, 10),
	} {
		if _, err := cm.Capture(context.Background(), rect); !errors.Is(err, ErrUnavailable) {
			t.Fatalf("expected ErrUnavailable for %v, got %v", rect, err)
		}
	}
}

func TestCapturePlatformDenial(t *testing.T) {
	cm := NewCaptureManager(WithGrabber(func(image.Rectangle) (*image.RGBA, error) {
		return nil, errors.New("access denied")
	}))

	_, err := cm.Capture(context.Background(), image.Rect(0, 0, 100, 100))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestCaptureTimesOutInsteadOfHanging(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	cm := NewCaptureManager(
		WithGrabber(func(rect image.Rectangle) (*image.RGBA, error) {
			<-release
			return image.NewRGBA(rect), nil
		}),
		WithTimeout(20*time.Millisecond),
	)

	start := time.Now()
	_, err := cm.Capture(context.Background(), image.Rect(0, 0, 100, 100))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on timeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("capture blocked for %v instead of timing out", elapsed)
	}
}

func TestCaptureHonoursContextCancellation(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	cm := NewCaptureManager(WithGrabber(func(rect image.Rectangle) (*image.RGBA, error) {
		<-release
		return image.NewRGBA(rect), nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := cm.Capture(ctx, image.Rect(0, 0, 100, 100)); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on cancellation, got %v", err)
	}
}
