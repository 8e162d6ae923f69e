package app

import (
	"context"
	"errors"
	"image"
	"sync/atomic"

	"screensnap/internal/capture"
	"screensnap/internal/clipboard"
	"screensnap/internal/config"
	"screensnap/internal/encoder"
	"screensnap/internal/history"
	"screensnap/internal/hotkey"
	"screensnap/internal/logger"
	"screensnap/internal/monitor"
)

// ErrInFlight means a trigger arrived while another capture was running.
// The trigger is dropped, not queued; the caller may simply try again.
var ErrInFlight = errors.New("capture already in flight")

// App wires the capture pipeline together and serializes triggers: the hotkey
// path and manual GUI triggers funnel through one in-flight guard, so two
// triggers landing in the same window produce exactly one capture file.
type App struct {
	configs   *config.ConfigManager
	monitors  *monitor.MonitorManager
	captures  *capture.CaptureManager
	encoders  *encoder.EncoderManager
	clipboard *clipboard.ClipboardManager
	histories *history.HistoryManager
	hotkeys   *hotkey.HotkeyManager
	log       *logger.LoggerManager

	inFlight atomic.Bool
}

// Deps collects the managers the app coordinates.
type Deps struct {
	Configs   *config.ConfigManager
	Monitors  *monitor.MonitorManager
	Captures  *capture.CaptureManager
	Encoders  *encoder.EncoderManager
	Clipboard *clipboard.ClipboardManager
	Histories *history.HistoryManager
	Hotkeys   *hotkey.HotkeyManager
	Log       *logger.LoggerManager
}

// NewApp assembles the pipeline.
func NewApp(deps Deps) *App {
	return &App{
		configs:   deps.Configs,
		monitors:  deps.Monitors,
		captures:  deps.Captures,
		encoders:  deps.Encoders,
		clipboard: deps.Clipboard,
		histories: deps.Histories,
		hotkeys:   deps.Hotkeys,
		log:       deps.Log,
	}
}

// TriggerManual runs one capture for an explicit request, e.g. from the GUI's
// capture button. It is dropped with ErrInFlight if a capture is already
// running.
func (a *App) TriggerManual(ctx context.Context, req monitor.Request) (encoder.File, error) {
	return a.runCapture(ctx, req)
}

// runCapture is the single critical section: snapshot config, resolve target,
// grab, encode, copy. Configuration changes made mid-capture only affect the
// next trigger.
func (a *App) runCapture(ctx context.Context, req monitor.Request) (encoder.File, error) {
	if !a.inFlight.CompareAndSwap(false, true) {
		return encoder.File{}, ErrInFlight
	}
	defer a.inFlight.Store(false)

	cfg := a.configs.Snapshot()

	cursor, err := monitor.CursorPosition()
	if err != nil {
		// Out-of-bounds cursor resolves to the primary display anyway.
		cursor = image.Point{}
	}

	rect, err := a.monitors.ResolveTarget(req, cursor)
	if err != nil {
		a.log.LogError(err, "resolving capture target")
		return encoder.File{}, err
	}

	result, err := a.captures.Capture(ctx, rect)
	if err != nil {
		a.log.LogError(err, "capturing screen")
		return encoder.File{}, err
	}

	file, err := a.encoders.Encode(result, config.Quality(cfg.Quality), cfg.SaveDirectory, cfg.FilePrefix)
	if err != nil {
		a.log.LogError(err, "encoding capture")
		return encoder.File{}, err
	}
	a.log.Info("capture saved: %s (%d bytes)", file.Path, file.SizeBytes)

	if cfg.AutoCopyPath {
		if err := a.clipboard.CopyPath(file.Path, cfg.ClipboardPrefix); err != nil {
			// Never invalidates the completed capture.
			a.log.Warn("clipboard copy failed: %v", err)
		} else {
			a.log.Info("path copied to clipboard")
		}
	}

	return file, nil
}

// requestFromConfig maps the configured capture mode to a resolver request.
func requestFromConfig(cfg config.Config) monitor.Request {
	if cfg.CaptureMode == config.ModeMouse {
		return monitor.Request{Mode: monitor.ModeScreenUnderCursor}
	}
	return monitor.Request{Mode: monitor.ModeFullAllScreens}
}

// EnableHotkey arms the global hotkey from the current configuration.
func (a *App) EnableHotkey() error {
	cfg := a.configs.Snapshot()
	binding, err := hotkey.ParseBinding(cfg.Hotkey)
	if err != nil {
		return err
	}
	return a.hotkeys.Enable(binding)
}

// DisableHotkey tears down the hotkey hook.
func (a *App) DisableHotkey() {
	a.hotkeys.Disable()
}

// RebindHotkey validates and applies a new combination, then persists it via
// the config manager. ErrBusy propagates while a capture is in flight.
func (a *App) RebindHotkey(descriptor string) error {
	binding, err := hotkey.ParseBinding(descriptor)
	if err != nil {
		return err
	}
	if err := a.hotkeys.Rebind(binding); err != nil {
		return err
	}
	normalized := binding.String()
	if err := a.configs.Apply(config.Update{Hotkey: &normalized}); err != nil {
		return err
	}
	return a.configs.Save()
}

// OnConfigReload reconciles the hotkey listener with a configuration change
// picked up from disk, so editing the file takes effect without a restart.
func (a *App) OnConfigReload(prev, next config.Config) {
	if prev.HotkeyEnabled == next.HotkeyEnabled && prev.Hotkey == next.Hotkey {
		return
	}

	a.hotkeys.Disable()
	if !next.HotkeyEnabled {
		a.log.Info("hotkey disabled by config reload")
		return
	}
	if err := a.EnableHotkey(); err != nil {
		a.log.LogError(err, "re-arming hotkey after config reload")
		return
	}
	a.log.Info("hotkey re-armed from config reload: %s", next.Hotkey)
}

// Run consumes hotkey triggers until ctx is cancelled. Each trigger captures
// according to the configured mode; a trigger landing while a capture runs is
// dropped by the in-flight guard.
func (a *App) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			a.hotkeys.Disable()
			return ctx.Err()
		case <-a.hotkeys.Triggers():
			cfg := a.configs.Snapshot()
			_, err := a.runCapture(ctx, requestFromConfig(cfg))
			if err != nil && !errors.Is(err, ErrInFlight) {
				a.log.LogError(err, "hotkey capture")
			}
			a.hotkeys.Done()
		}
	}
}

// ListCaptures exposes the history listing for GUI collaborators.
func (a *App) ListCaptures() ([]encoder.File, error) {
	cfg := a.configs.Snapshot()
	return a.histories.List(cfg.SaveDirectory, cfg.FilePrefix)
}

// Cleanup applies a retention policy to the save directory.
func (a *App) Cleanup(policy history.Policy) (history.Stats, error) {
	cfg := a.configs.Snapshot()
	return a.histories.Cleanup(cfg.SaveDirectory, cfg.FilePrefix, policy)
}
