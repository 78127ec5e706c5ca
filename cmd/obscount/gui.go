package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"obscount/internal/app"
	"obscount/internal/config"
	"obscount/internal/core/timekeeper"
	"obscount/internal/platform"
	"obscount/internal/ui/overlay"
	"obscount/internal/ui/preferences"
	"obscount/internal/ui/tray"
	"obscount/internal/ui/window"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/spf13/cobra"
)

func newGUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Open the desktop window (default)",
		Args:  cobra.NoArgs,
		RunE:  runGUICmd,
	}
}

func runGUICmd(cmd *cobra.Command, _ []string) error {
	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger)

	activate := make(chan struct{}, 1)
	instance, err := platform.Acquire(config.AppName, func() {
		select {
		case activate <- struct{}{}:
		default:
		}
	}, logger)
	if errors.Is(err, platform.ErrAlreadyRunning) {
		logger.Info("already running, asked the open window to show itself")
		return nil
	}
	if err != nil {
		return fmt.Errorf("single instance: %w", err)
	}
	defer func() {
		_ = instance.Release()
	}()

	fyneApp := fyneapp.NewWithID(appID)
	repo := openRepository(cfg, fyneApp, logger)
	controller := newController(cfg, repo, logger)
	defer controller.Close()
	controller.Load()

	mainWindow := window.New(fyneApp, controller, nil)
	mainWindow.FollowTimer(controller.SubscribeTimer(8))

	var restOverlay *overlay.Window
	if cfg.RestOverlay {
		restOverlay = newRestOverlay(fyneApp, controller)
	}

	prefsWindow := preferences.New(fyneApp, cfg, func(updated config.Config) {
		previous := cfg
		if err := config.Save(configPath, updated); err != nil {
			logger.Error("save config", "path", configPath, "error", err)
			dialog.ShowError(err, mainWindow.Window())
			return
		}
		cfg = updated
		logger.Info("config saved", "path", configPath)

		if cfg.RestOverlay && restOverlay == nil {
			restOverlay = newRestOverlay(fyneApp, controller)
		}
		if !cfg.RestOverlay && restOverlay != nil {
			restOverlay.Hide()
		}
		if preferences.RequiresRestart(previous, cfg) {
			dialog.ShowInformation("Restart required",
				"Storage changes take effect the next time the app starts.", mainWindow.Window())
		}
	})

	var trayManager *tray.Manager
	if desktopApp, ok := fyneApp.(desktop.App); ok {
		mainWindow.HideOnClose()
		trayManager = tray.New(desktopApp, tray.Callbacks{
			OnShow:        mainWindow.Show,
			OnToggleTimer: controller.ToggleTimer,
			OnSaveSession: func() {
				mainWindow.Show()
				mainWindow.SaveSession()
			},
			OnExport: func() {
				mainWindow.Show()
				mainWindow.ExportCSV()
			},
			OnPreferences: prefsWindow.Show,
			OnQuit:        fyneApp.Quit,
		})
		trayManager.SetCanExport(len(controller.State().Sessions) > 0)
		controller.OnChange(func() {
			state := controller.State()
			fyne.Do(func() {
				trayManager.SetCanExport(len(state.Sessions) > 0)
			})
		})
	} else {
		logger.Debug("system tray unsupported on this platform")
	}

	events := controller.SubscribeTimer(8)
	go func() {
		for range events {
			status := controller.State().Timer
			fyne.Do(func() {
				if trayManager != nil {
					trayManager.SetState(status.State)
					trayManager.SetStatus(trayStatus(status))
				}
				if restOverlay != nil && cfg.RestOverlay {
					restOverlay.Apply(status)
				}
			})
		}
	}()

	go func() {
		for range activate {
			fyne.Do(mainWindow.Show)
		}
	}()

	mainWindow.Show()
	fyneApp.Run()
	return nil
}

func newRestOverlay(fyneApp fyne.App, controller *app.Controller) *overlay.Window {
	restOverlay := overlay.New(fyneApp, overlay.DefaultConfig())
	restOverlay.SetOnStop(controller.StopTimer)
	return restOverlay
}

func trayStatus(status timekeeper.Status) string {
	if status.State == timekeeper.StateIdle {
		return status.State.Label()
	}
	return status.State.Label() + " " + app.FormatClock(status.Remaining)
}
