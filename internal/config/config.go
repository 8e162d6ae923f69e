package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"screensnap/internal/hotkey"
)

// Quality selects the encoder preset applied to saved captures.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// ParseQuality validates a quality string from config or the GUI.
func ParseQuality(s string) (Quality, error) {
	switch Quality(strings.ToLower(strings.TrimSpace(s))) {
	case QualityLow:
		return QualityLow, nil
	case QualityMedium:
		return QualityMedium, nil
	case QualityHigh:
		return QualityHigh, nil
	}
	return "", fmt.Errorf("%w: unknown quality %q", ErrInvalid, s)
}

// Capture mode values accepted in the capture_mode field.
const (
	ModeAll   = "all"   // every connected display as one image
	ModeMouse = "mouse" // only the display under the cursor
)

// Config holds the persisted settings shared by the GUI and the hotkey path.
type Config struct {
	SaveDirectory    string `mapstructure:"save_directory"`
	FilePrefix       string `mapstructure:"file_prefix"`
	Quality          string `mapstructure:"quality"`
	Hotkey           string `mapstructure:"hotkey"`
	HotkeyEnabled    bool   `mapstructure:"hotkey_enabled"`
	AutoCopyPath     bool   `mapstructure:"auto_copy_path"`
	ClipboardPrefix  string `mapstructure:"clipboard_prefix"`
	ShowPreview      bool   `mapstructure:"show_preview"`
	ShowSuccessPopup bool   `mapstructure:"show_success_popup"`
	CaptureMode      string `mapstructure:"capture_mode"`
	LogFilePath      string `mapstructure:"log_file_path"`
}

// Default returns the configuration used when no file exists or a field is missing.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		SaveDirectory:    filepath.Join(home, "Screenshots"),
		FilePrefix:       "screenshot_",
		Quality:          string(QualityLow),
		Hotkey:           "ctrl+shift+s",
		HotkeyEnabled:    true,
		AutoCopyPath:     true,
		ClipboardPrefix:  "read image: ",
		ShowPreview:      true,
		ShowSuccessPopup: false,
		CaptureMode:      ModeAll,
		LogFilePath:      filepath.Join(home, "Screenshots", "screensnap.log"),
	}
}

// ConfigManager owns the live configuration. Readers take snapshots; writers
// go through Apply and Save so a half-validated change never leaks out.
type ConfigManager struct {
	mu      sync.RWMutex
	current Config
	path    string
	v       *viper.Viper
}

// NewConfigManager prepares a manager bound to the given config file path.
// An empty path falls back to config.yaml next to the binary.
func NewConfigManager(path string) *ConfigManager {
	if path == "" {
		path = "config.yaml"
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	return &ConfigManager{
		current: Default(),
		path:    path,
		v:       v,
	}
}

// Load reads the config file from disk. A missing or malformed file is not an
// error: defaults fill in, and unknown keys in the file are ignored.
func (cm *ConfigManager) Load() Config {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	defaults := Default()
	cm.setDefaults(defaults)

	cfg := defaults
	if err := cm.v.ReadInConfig(); err == nil {
		if err := cm.v.Unmarshal(&cfg); err != nil {
			cfg = defaults
		}
	}
	cfg = sanitize(cfg, defaults)
	cm.current = cfg
	return cfg
}

// sanitize drops individually malformed fields back to their defaults so one
// bad value does not discard the rest of the file.
func sanitize(cfg, defaults Config) Config {
	if _, err := ParseQuality(cfg.Quality); err != nil {
		cfg.Quality = defaults.Quality
	}
	if _, err := hotkey.ParseBinding(cfg.Hotkey); err != nil {
		cfg.Hotkey = defaults.Hotkey
	}
	if cfg.CaptureMode != ModeAll && cfg.CaptureMode != ModeMouse {
		cfg.CaptureMode = defaults.CaptureMode
	}
	if strings.TrimSpace(cfg.SaveDirectory) == "" {
		cfg.SaveDirectory = defaults.SaveDirectory
	}
	if strings.TrimSpace(cfg.FilePrefix) == "" {
		cfg.FilePrefix = defaults.FilePrefix
	}
	if strings.TrimSpace(cfg.LogFilePath) == "" {
		cfg.LogFilePath = defaults.LogFilePath
	}
	return cfg
}

func (cm *ConfigManager) setDefaults(d Config) {
	cm.v.SetDefault("save_directory", d.SaveDirectory)
	cm.v.SetDefault("file_prefix", d.FilePrefix)
	cm.v.SetDefault("quality", d.Quality)
	cm.v.SetDefault("hotkey", d.Hotkey)
	cm.v.SetDefault("hotkey_enabled", d.HotkeyEnabled)
	cm.v.SetDefault("auto_copy_path", d.AutoCopyPath)
	cm.v.SetDefault("clipboard_prefix", d.ClipboardPrefix)
	cm.v.SetDefault("show_preview", d.ShowPreview)
	cm.v.SetDefault("show_success_popup", d.ShowSuccessPopup)
	cm.v.SetDefault("capture_mode", d.CaptureMode)
	cm.v.SetDefault("log_file_path", d.LogFilePath)
}

// Snapshot returns a copy of the live configuration. An in-flight capture
// works from its snapshot; later changes only affect the next trigger.
func (cm *ConfigManager) Snapshot() Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.current
}

// Save persists the live configuration atomically: the full document is
// written to a temp file first and renamed into place, so a crash mid-write
// never leaves a corrupt config behind. The exclusive lock covers the whole
// write, serializing Save against Load (including reloads on the watch
// goroutine) and against other Save calls sharing the temp file.
func (cm *ConfigManager) Save() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cfg := cm.current

	cm.v.Set("save_directory", cfg.SaveDirectory)
	cm.v.Set("file_prefix", cfg.FilePrefix)
	cm.v.Set("quality", cfg.Quality)
	cm.v.Set("hotkey", cfg.Hotkey)
	cm.v.Set("hotkey_enabled", cfg.HotkeyEnabled)
	cm.v.Set("auto_copy_path", cfg.AutoCopyPath)
	cm.v.Set("clipboard_prefix", cfg.ClipboardPrefix)
	cm.v.Set("show_preview", cfg.ShowPreview)
	cm.v.Set("show_success_popup", cfg.ShowSuccessPopup)
	cm.v.Set("capture_mode", cfg.CaptureMode)
	cm.v.Set("log_file_path", cfg.LogFilePath)

	dir := filepath.Dir(cm.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// The tmp name keeps the .yaml extension so viper picks the right encoder.
	tmp := cm.path + ".tmp.yaml"
	if err := cm.v.WriteConfigAs(tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmp, cm.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing config: %w", err)
	}
	return nil
}

// Watch re-reads the config file when it changes on disk and reports the new
// snapshot through onChange. Errors during reload keep the previous config.
func (cm *ConfigManager) Watch(onChange func(Config)) {
	cm.v.OnConfigChange(func(fsnotify.Event) {
		cfg := cm.Load()
		if onChange != nil {
			onChange(cfg)
		}
	})
	cm.v.WatchConfig()
}
