package preferences

import (
	"obscount/internal/config"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window      fyne.Window
	config      config.Config
	onSave      func(config.Config)
	backend     *widget.Select
	dataDir     *widget.Entry
	exportDir   *widget.Entry
	logLevel    *widget.Select
	restOverlay *widget.Check
	saveButton  *widget.Button
}

// New creates a preferences window for cfg. onSave receives the edited
// config; persisting it is the caller's job.
func New(fyneApp fyne.App, cfg config.Config, onSave func(config.Config)) *Window {
	window := fyneApp.NewWindow("Observation Counter Preferences")

	prefs := &Window{
		window:      window,
		onSave:      onSave,
		backend:     widget.NewSelect(Backends, nil),
		dataDir:     widget.NewEntry(),
		exportDir:   widget.NewEntry(),
		logLevel:    widget.NewSelect(LogLevels, nil),
		restOverlay: widget.NewCheck("Show rest overlay", nil),
	}
	prefs.UpdateConfig(cfg)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Storage", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(
			widget.NewFormItem("Backend", prefs.backend),
			widget.NewFormItem("Data folder", prefs.dataDir),
		),
		widget.NewLabel("Storage changes apply after restart."),
		widget.NewLabelWithStyle("General", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(
			widget.NewFormItem("Export folder", prefs.exportDir),
			widget.NewFormItem("Log level", prefs.logLevel),
		),
		prefs.restOverlay,
	)

	prefs.saveButton = widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", func() {
		prefs.UpdateConfig(prefs.config)
		window.Hide()
	})
	buttons := container.NewHBox(prefs.saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(460, 360))
	window.SetCloseIntercept(window.Hide)
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateConfig replaces window values.
func (prefs *Window) UpdateConfig(cfg config.Config) {
	prefs.config = cfg
	settings := FromConfig(cfg)
	prefs.backend.SetSelected(settings.Backend)
	prefs.dataDir.SetText(settings.DataDir)
	prefs.exportDir.SetText(settings.ExportDir)
	prefs.logLevel.SetSelected(settings.LogLevel)
	prefs.restOverlay.SetChecked(settings.RestOverlay)
}

func (prefs *Window) handleSave() {
	settings := Settings{
		Backend:     prefs.backend.Selected,
		DataDir:     prefs.dataDir.Text,
		ExportDir:   prefs.exportDir.Text,
		LogLevel:    prefs.logLevel.Selected,
		RestOverlay: prefs.restOverlay.Checked,
	}
	prefs.config = settings.Apply(prefs.config)
	if prefs.onSave != nil {
		prefs.onSave(prefs.config)
	}
	prefs.window.Hide()
}
