package config

import (
	"fmt"
	"os"
	"strings"

	"screensnap/internal/hotkey"
)

// Update carries a partial configuration change. Nil fields are left as-is.
type Update struct {
	SaveDirectory    *string
	FilePrefix       *string
	Quality          *string
	Hotkey           *string
	HotkeyEnabled    *bool
	AutoCopyPath     *bool
	ClipboardPrefix  *string
	ShowPreview      *bool
	ShowSuccessPopup *bool
	CaptureMode      *string
}

// Apply validates every field of the update and, only if all of them pass,
// commits the change to the live configuration. A rejected update leaves the
// prior configuration untouched.
func (cm *ConfigManager) Apply(u Update) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	next := cm.current

	if u.SaveDirectory != nil {
		dir := strings.TrimSpace(*u.SaveDirectory)
		if dir == "" {
			return fmt.Errorf("%w: save directory must not be empty", ErrInvalid)
		}
		if err := ensureCreatable(dir); err != nil {
			return fmt.Errorf("%w: save directory %q: %v", ErrInvalid, dir, err)
		}
		next.SaveDirectory = dir
	}
	if u.FilePrefix != nil {
		prefix := strings.TrimSpace(*u.FilePrefix)
		if prefix == "" {
			return fmt.Errorf("%w: file prefix must not be empty", ErrInvalid)
		}
		if strings.ContainsAny(prefix, `/\`) {
			return fmt.Errorf("%w: file prefix must not contain path separators", ErrInvalid)
		}
		next.FilePrefix = prefix
	}
	if u.Quality != nil {
		q, err := ParseQuality(*u.Quality)
		if err != nil {
			return err
		}
		next.Quality = string(q)
	}
	if u.Hotkey != nil {
		binding, err := hotkey.ParseBinding(*u.Hotkey)
		if err != nil {
			return fmt.Errorf("%w: hotkey %q: %v", ErrInvalid, *u.Hotkey, err)
		}
		next.Hotkey = binding.String()
	}
	if u.CaptureMode != nil {
		mode := strings.ToLower(strings.TrimSpace(*u.CaptureMode))
		if mode != ModeAll && mode != ModeMouse {
			return fmt.Errorf("%w: unknown capture mode %q", ErrInvalid, *u.CaptureMode)
		}
		next.CaptureMode = mode
	}
	if u.HotkeyEnabled != nil {
		next.HotkeyEnabled = *u.HotkeyEnabled
	}
	if u.AutoCopyPath != nil {
		next.AutoCopyPath = *u.AutoCopyPath
	}
	if u.ClipboardPrefix != nil {
		next.ClipboardPrefix = *u.ClipboardPrefix
	}
	if u.ShowPreview != nil {
		next.ShowPreview = *u.ShowPreview
	}
	if u.ShowSuccessPopup != nil {
		next.ShowSuccessPopup = *u.ShowSuccessPopup
	}

	cm.current = next
	return nil
}

// ensureCreatable accepts directories that already exist or can be created.
// A directory created only for validation is kept; captures will land there.
func ensureCreatable(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("path exists and is not a directory")
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
