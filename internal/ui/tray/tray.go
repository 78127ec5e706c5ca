package tray

import (
	"fmt"

	"obscount/internal/core/timekeeper"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow        func()
	OnToggleTimer func()
	OnSaveSession func()
	OnExport      func()
	OnPreferences func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	statusItem  *fyne.MenuItem
	toggleItem  *fyne.MenuItem
	exportItem  *fyne.MenuItem
	callbacks   Callbacks
	state       timekeeper.State
	statusLabel string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:         app,
		callbacks:   callbacks,
		state:       timekeeper.StateIdle,
		statusLabel: timekeeper.StateIdle.Label(),
	}

	manager.statusItem = fyne.NewMenuItem("", nil)
	manager.statusItem.Disabled = true

	manager.toggleItem = fyne.NewMenuItem("Start Timer", func() {
		call(manager.callbacks.OnToggleTimer)
	})

	manager.exportItem = fyne.NewMenuItem("Export CSV", func() {
		call(manager.callbacks.OnExport)
	})
	manager.exportItem.Disabled = true

	manager.refreshStatus()
	return manager
}

// SetStatus updates the status line, e.g. with the countdown.
func (manager *Manager) SetStatus(status string) {
	manager.statusLabel = status
	manager.refreshStatus()
}

// SetState updates the timer phase shown by the menu.
func (manager *Manager) SetState(state timekeeper.State) {
	manager.state = state
	if state == timekeeper.StateIdle {
		manager.toggleItem.Label = "Start Timer"
	} else {
		manager.toggleItem.Label = "Stop Timer"
	}
	manager.refreshStatus()
}

// SetCanExport enables the export item when sessions exist.
func (manager *Manager) SetCanExport(canExport bool) {
	manager.exportItem.Disabled = !canExport
	manager.refreshMenu()
}

// Menu returns the menu currently installed in the tray.
func (manager *Manager) Menu() *fyne.Menu {
	return fyne.NewMenu("Observation Counter",
		manager.statusItem,
		fyne.NewMenuItem("Show Window", func() {
			call(manager.callbacks.OnShow)
		}),
		manager.toggleItem,
		fyne.NewMenuItem("Save Session", func() {
			call(manager.callbacks.OnSaveSession)
		}),
		manager.exportItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences", func() {
			call(manager.callbacks.OnPreferences)
		}),
		fyne.NewMenuItem("Quit", func() {
			call(manager.callbacks.OnQuit)
		}),
	)
}

func (manager *Manager) refreshStatus() {
	manager.statusItem.Label = fmt.Sprintf("Status: %s", manager.statusLabel)
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.Menu())
	}
}

func call(callback func()) {
	if callback != nil {
		callback()
	}
}
