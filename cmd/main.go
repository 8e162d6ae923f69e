package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"screensnap/internal/app"
	"screensnap/internal/capture"
	"screensnap/internal/clipboard"
	"screensnap/internal/config"
	"screensnap/internal/encoder"
	"screensnap/internal/history"
	"screensnap/internal/hotkey"
	"screensnap/internal/logger"
	"screensnap/internal/monitor"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	captureNow := flag.String("capture", "", "take one capture and exit: all or mouse")
	list := flag.Bool("list", false, "list saved captures and exit")
	cleanupAll := flag.Bool("cleanup-all", false, "delete every saved capture and exit")
	cleanupKeep := flag.Int("cleanup-keep", -1, "keep only the N newest captures and exit")
	cleanupOlder := flag.Duration("cleanup-older", 0, "delete captures older than this duration and exit")
	flag.Parse()

	configManager := config.NewConfigManager(*configPath)
	cfg := configManager.Load()

	loggerManager, err := logger.NewLoggerManager(cfg.LogFilePath)
	if err != nil {
		log.Fatal("Error initializing logger: ", err)
	}
	defer loggerManager.Close()

	monitorManager := monitor.NewMonitorManager()
	captureManager := capture.NewCaptureManager()
	encoderManager := encoder.NewEncoderManager()
	clipboardManager := clipboard.NewClipboardManager()
	historyManager := history.NewHistoryManager()
	hotkeyManager := hotkey.NewHotkeyManager(loggerManager)

	application := app.NewApp(app.Deps{
		Configs:   configManager,
		Monitors:  monitorManager,
		Captures:  captureManager,
		Encoders:  encoderManager,
		Clipboard: clipboardManager,
		Histories: historyManager,
		Hotkeys:   hotkeyManager,
		Log:       loggerManager,
	})

	switch {
	case *list:
		listCaptures(application)
		return
	case *cleanupAll:
		runCleanup(application, loggerManager, history.DeleteAll())
		return
	case *cleanupKeep >= 0:
		runCleanup(application, loggerManager, history.KeepNewest(*cleanupKeep))
		return
	case *cleanupOlder > 0:
		runCleanup(application, loggerManager, history.OlderThan(*cleanupOlder))
		return
	case *captureNow != "":
		captureOnce(application, loggerManager, *captureNow)
		return
	}

	serve(application, configManager, loggerManager, cfg)
}

// serve runs the resident mode: hotkey listener plus config file watching,
// until interrupted.
func serve(application *app.App, configManager *config.ConfigManager, loggerManager *logger.LoggerManager, cfg config.Config) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.HotkeyEnabled {
		if err := application.EnableHotkey(); err != nil {
			// Reported once; manual capture keeps working without the hook.
			loggerManager.LogError(err, "enabling hotkey")
		} else {
			loggerManager.Info("ready: press %s to capture", cfg.Hotkey)
		}
	} else {
		loggerManager.Info("ready: hotkey disabled in config")
	}

	// Watch callbacks arrive one at a time on the fsnotify goroutine.
	prev := cfg
	configManager.Watch(func(next config.Config) {
		loggerManager.Info("configuration reloaded from disk")
		application.OnConfigReload(prev, next)
		prev = next
	})

	if err := application.Run(ctx); err != nil && ctx.Err() == nil {
		loggerManager.LogError(err, "trigger loop")
	}
	loggerManager.Info("shutting down")
}

func captureOnce(application *app.App, loggerManager *logger.LoggerManager, mode string) {
	req := monitor.Request{Mode: monitor.ModeFullAllScreens}
	if mode == config.ModeMouse {
		req.Mode = monitor.ModeScreenUnderCursor
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	file, err := application.TriggerManual(ctx, req)
	if err != nil {
		loggerManager.LogError(err, "manual capture")
		os.Exit(1)
	}
	fmt.Println(file.Path)
}

func listCaptures(application *app.App) {
	files, err := application.ListCaptures()
	if err != nil {
		log.Fatal("Error listing captures: ", err)
	}
	for _, f := range files {
		fmt.Printf("%s\t%d bytes\t%s\n", f.Path, f.SizeBytes, f.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

func runCleanup(application *app.App, loggerManager *logger.LoggerManager, policy history.Policy) {
	stats, err := application.Cleanup(policy)
	if err != nil {
		loggerManager.LogError(err, "cleanup")
		os.Exit(1)
	}
	fmt.Printf("deleted %d, kept %d, failed %d\n", stats.Deleted, stats.Skipped, stats.Failed)
}
