package overlay

import (
	"image/color"
	"time"

	"obscount/internal/app"
	"obscount/internal/core/timekeeper"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Config defines overlay visuals.
type Config struct {
	Opacity uint8
	Message string
}

// DefaultConfig returns the overlay look used by the desktop app.
func DefaultConfig() Config {
	return Config{Opacity: 220, Message: "Take a break, counting is paused"}
}

// Window is the small undecorated window shown during the rest phase.
type Window struct {
	window        fyne.Window
	config        Config
	background    *canvas.Rectangle
	titleLabel    *canvas.Text
	subtitleLabel *canvas.Text
	timerLabel    *canvas.Text
	progress      *widget.ProgressBar
	stopButton    *widget.Button
	onStop        func()
	visible       bool
}

const (
	overlayWidthFraction  = float32(0.16)
	overlayHeightFraction = float32(0.16)
	defaultScreenWidth    = float32(1920)
	defaultScreenHeight   = float32(1080)
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// New creates the overlay window. It stays hidden until Show.
func New(fyneApp fyne.App, config Config) *Window {
	window := fyneApp.NewWindow("Resting")
	if driver, ok := fyneApp.Driver().(splashWindowDriver); ok {
		// Splash window is undecorated (no native frame/buttons).
		window = driver.CreateSplashWindow()
	}
	if fyneApp.Icon() != nil {
		window.SetIcon(fyneApp.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(color.NRGBA{A: config.Opacity})

	titleLabel := canvas.NewText("Resting", color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	titleLabel.TextSize = 21

	subtitleLabel := canvas.NewText(config.Message, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	subtitleLabel.TextSize = 14

	timerLabel := canvas.NewText("0:00", color.NRGBA{R: 232, G: 190, B: 66, A: 255})
	timerLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	timerLabel.TextSize = 28

	progress := widget.NewProgressBar()
	progress.TextFormatter = func() string { return "" }

	overlay := &Window{
		window:        window,
		config:        config,
		background:    background,
		titleLabel:    titleLabel,
		subtitleLabel: subtitleLabel,
		timerLabel:    timerLabel,
		progress:      progress,
	}
	overlay.stopButton = widget.NewButton("Stop Timer", func() {
		if overlay.onStop != nil {
			overlay.onStop()
		}
	})

	content := container.NewPadded(container.NewVBox(
		titleLabel,
		subtitleLabel,
		container.NewHBox(timerLabel),
		progress,
		container.NewHBox(overlay.stopButton),
	))
	window.SetContent(container.NewStack(background, content))
	overlay.resizeToScreenFraction()
	return overlay
}

// SetOnStop sets the Stop Timer handler.
func (overlay *Window) SetOnStop(handler func()) {
	overlay.onStop = handler
}

// Visible reports whether the overlay is currently shown.
func (overlay *Window) Visible() bool {
	return overlay.visible
}

// Apply shows, updates or hides the overlay for the given timer status.
// Must be called on the Fyne thread.
func (overlay *Window) Apply(status timekeeper.Status) {
	if status.State != timekeeper.StateResting {
		overlay.Hide()
		return
	}
	overlay.setRemaining(status.Remaining, status.Progress)
	if !overlay.visible {
		overlay.visible = true
		overlay.window.Show()
		overlay.applyWindowAlpha()
		overlay.window.RequestFocus()
	}
}

// Hide closes the overlay.
func (overlay *Window) Hide() {
	if !overlay.visible {
		return
	}
	overlay.visible = false
	overlay.window.Hide()
}

func (overlay *Window) setRemaining(remaining time.Duration, progress float64) {
	overlay.timerLabel.Text = app.FormatClock(remaining)
	overlay.timerLabel.Refresh()
	overlay.progress.SetValue(progress)
}

func (overlay *Window) resizeToScreenFraction() {
	screenSize := fyne.NewSize(defaultScreenWidth, defaultScreenHeight)
	canvasSize := overlay.window.Canvas().Size()
	// Canvas size stands in for monitor size when it is clearly screen-like.
	if canvasSize.Width >= 1024 && canvasSize.Height >= 720 {
		screenSize = canvasSize
	}

	width := screenSize.Width * overlayWidthFraction
	height := screenSize.Height * overlayHeightFraction
	minSize := overlay.window.Content().MinSize()
	if width < minSize.Width {
		width = minSize.Width
	}
	if height < minSize.Height {
		height = minSize.Height
	}

	overlay.window.Resize(fyne.NewSize(width, height))
	overlay.window.CenterOnScreen()
}
