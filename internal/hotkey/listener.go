package hotkey

import (
	"fmt"
	"sync"
	"time"

	"github.com/moutend/go-hook/pkg/types"
)

// State is the listener's position in its lifecycle.
type State int

const (
	// StateDisabled means no hook is installed.
	StateDisabled State = iota
	// StateArmed means the hook is installed and matching the binding.
	StateArmed
	// StateTriggering means a matched trigger is being handled by the consumer.
	StateTriggering
)

func (s State) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateArmed:
		return "armed"
	case StateTriggering:
		return "triggering"
	}
	return "unknown"
}

// DefaultRefractory is the window within which repeated matches are ignored.
// A single physical key press can surface as several low-level events.
const DefaultRefractory = 300 * time.Millisecond

// KeySource installs a stream of raw keyboard events. The real implementation
// wraps the Windows low-level hook; tests inject a fake.
type KeySource interface {
	Install(chan types.KeyboardEvent) error
	Uninstall() error
}

// Logger is the subset of the logger used here.
type Logger interface {
	Info(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// HotkeyManager listens for a key combination on a background hook loop and
// delivers triggers through a single-slot channel with drop-on-busy semantics.
type HotkeyManager struct {
	mu          sync.Mutex
	state       State
	binding     Binding
	source      KeySource
	refractory  time.Duration
	clock       func() time.Time
	logger      Logger
	lastTrigger time.Time

	trigger chan time.Time
	stop    chan struct{}
}

// Option customises a HotkeyManager.
type Option func(*HotkeyManager)

// WithSource replaces the platform key source.
func WithSource(src KeySource) Option {
	return func(hm *HotkeyManager) { hm.source = src }
}

// WithRefractory overrides the debounce window.
func WithRefractory(d time.Duration) Option {
	return func(hm *HotkeyManager) { hm.refractory = d }
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(hm *HotkeyManager) { hm.clock = clock }
}

// NewHotkeyManager creates a listener in the Disabled state.
func NewHotkeyManager(logger Logger, opts ...Option) *HotkeyManager {
	hm := &HotkeyManager{
		state:      StateDisabled,
		source:     newPlatformSource(),
		refractory: DefaultRefractory,
		clock:      time.Now,
		logger:     logger,
		trigger:    make(chan time.Time, 1),
	}
	for _, opt := range opts {
		opt(hm)
	}
	return hm
}

// Triggers returns the channel on which matched hotkey presses arrive.
// Consumers must call Done after handling each trigger.
func (hm *HotkeyManager) Triggers() <-chan time.Time {
	return hm.trigger
}

// State returns the current listener state.
func (hm *HotkeyManager) State() State {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	return hm.state
}

// Enable installs the keyboard hook and arms the listener for binding.
// On hook failure the listener stays Disabled and the error wraps ErrInstall;
// there is no retry loop behind the caller's back.
func (hm *HotkeyManager) Enable(binding Binding) error {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	if hm.state != StateDisabled {
		return fmt.Errorf("listener already enabled (state %s)", hm.state)
	}

	events := make(chan types.KeyboardEvent, 100)
	if err := hm.source.Install(events); err != nil {
		return fmt.Errorf("%w: %v", ErrInstall, err)
	}

	hm.binding = binding
	hm.state = StateArmed
	hm.stop = make(chan struct{})
	go hm.listen(events, hm.stop)

	if hm.logger != nil {
		hm.logger.Info("hotkey armed: %s", binding)
	}
	return nil
}

// Disable tears down the hook from any state.
func (hm *HotkeyManager) Disable() {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	if hm.state == StateDisabled {
		return
	}
	close(hm.stop)
	hm.stop = nil
	hm.source.Uninstall()
	hm.state = StateDisabled
	if hm.logger != nil {
		hm.logger.Info("hotkey disabled")
	}
}

// Rebind swaps the active combination without reinstalling the hook. Valid
// from Armed or Disabled; while a trigger is in flight it fails with ErrBusy.
func (hm *HotkeyManager) Rebind(binding Binding) error {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	if hm.state == StateTriggering {
		return ErrBusy
	}
	hm.binding = binding
	if hm.logger != nil {
		hm.logger.Info("hotkey rebound: %s", binding)
	}
	return nil
}

// Done moves the listener from Triggering back to Armed once the consumer has
// finished handling a trigger.
func (hm *HotkeyManager) Done() {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	if hm.state == StateTriggering {
		hm.state = StateArmed
	}
}

// listen is the background hook loop: it tracks held modifiers, matches the
// exact combination, debounces, and hands off without blocking.
func (hm *HotkeyManager) listen(events <-chan types.KeyboardEvent, stop <-chan struct{}) {
	var held modifiers

	for {
		select {
		case <-stop:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			held.update(event)
			if event.Message != types.WM_KEYDOWN && event.Message != types.WM_SYSKEYDOWN {
				continue
			}
			hm.handleKeyDown(held, event.VKCode)
		}
	}
}

func (hm *HotkeyManager) handleKeyDown(held modifiers, vk types.VKCode) {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	if hm.state != StateArmed {
		return
	}
	if !hm.binding.matches(held, vk) {
		return
	}

	now := hm.clock()
	if !hm.lastTrigger.IsZero() && now.Sub(hm.lastTrigger) < hm.refractory {
		return
	}

	// Single-slot handoff: if the consumer has not drained the previous
	// trigger yet, this one is dropped rather than queued.
	select {
	case hm.trigger <- now:
		hm.lastTrigger = now
		hm.state = StateTriggering
	default:
		if hm.logger != nil {
			hm.logger.Debug("hotkey trigger dropped: capture in flight")
		}
	}
}
