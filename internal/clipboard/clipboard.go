package clipboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
)

// ErrUnavailable means the system clipboard stayed busy through all retries.
// This is a warning condition only; the capture that triggered the copy
// remains valid.
var ErrUnavailable = errors.New("clipboard unavailable")

const (
	defaultAttempts = 3
	defaultBackoff  = 100 * time.Millisecond
)

// ClipboardManager copies capture paths to the system clipboard.
type ClipboardManager struct {
	write    func(string) error
	attempts int
	backoff  time.Duration
	sleep    func(time.Duration)
}

// Option customises a ClipboardManager.
type Option func(*ClipboardManager)

// WithWriter replaces the clipboard write call.
func WithWriter(write func(string) error) Option {
	return func(cb *ClipboardManager) { cb.write = write }
}

// WithRetry overrides the retry count and backoff.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(cb *ClipboardManager) {
		cb.attempts = attempts
		cb.backoff = backoff
	}
}

// WithSleep overrides the backoff sleep for tests.
func WithSleep(sleep func(time.Duration)) Option {
	return func(cb *ClipboardManager) { cb.sleep = sleep }
}

// NewClipboardManager creates a clipboard bridge with short bounded retries:
// another process holding the clipboard usually releases it within a beat.
func NewClipboardManager(opts ...Option) *ClipboardManager {
	cb := &ClipboardManager{
		write:    clipboard.WriteAll,
		attempts: defaultAttempts,
		backoff:  defaultBackoff,
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

// CopyPath places prefix+path on the clipboard as plain text, replacing prior
// contents. Exhausting the retries returns ErrUnavailable.
func (cb *ClipboardManager) CopyPath(path, prefix string) error {
	content := prefix + path

	var lastErr error
	for attempt := 0; attempt < cb.attempts; attempt++ {
		if attempt > 0 {
			cb.sleep(cb.backoff)
		}
		if lastErr = cb.write(content); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}
