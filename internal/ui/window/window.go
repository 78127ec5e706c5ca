// Package window renders the main observation counter window.
package window

import (
	"errors"
	"image/color"
	"strconv"
	"strings"
	"sync"
	"time"

	"obscount/internal/app"
	"obscount/internal/core/model"
	"obscount/internal/core/recorder"
	"obscount/internal/core/timekeeper"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	fynestorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// warningAutoHide is how long a storage warning stays on screen.
const warningAutoHide = 6 * time.Second

var (
	recordingColor = color.NRGBA{R: 211, G: 47, B: 47, A: 255}
	restingColor   = color.NRGBA{R: 25, G: 118, B: 210, A: 255}
)

// Window is the main application window.
type Window struct {
	window     fyne.Window
	controller *app.Controller
	location   *time.Location

	statusLabel  *canvas.Text
	timeLabel    *canvas.Text
	progress     *widget.ProgressBar
	toggleButton *widget.Button
	recordEntry  *widget.Entry
	restEntry    *widget.Entry

	nameEntry   *widget.Entry
	addButton   *widget.Button
	counterList *fyne.Container

	saveButton   *widget.Button
	exportButton *widget.Button
	sessionList  *fyne.Container

	warningLabel *widget.Label
	warningBar   *fyne.Container

	mu           sync.Mutex
	warningTimer *time.Timer
}

// New creates the main window for controller.
func New(fyneApp fyne.App, controller *app.Controller, location *time.Location) *Window {
	if location == nil {
		location = time.Local
	}
	view := &Window{
		window:     fyneApp.NewWindow("Observation Counter"),
		controller: controller,
		location:   location,
	}
	view.build()

	controller.OnChange(func() {
		fyne.Do(view.refresh)
	})
	controller.OnWarning(func(app.Warning) {
		view.scheduleWarningHide()
	})

	view.refresh()
	return view
}

// Window returns the underlying Fyne window.
func (view *Window) Window() fyne.Window {
	return view.window
}

// Show displays the window.
func (view *Window) Show() {
	view.window.Show()
	view.window.RequestFocus()
}

// HideOnClose keeps the application running in the tray when the window
// is closed.
func (view *Window) HideOnClose() {
	view.window.SetCloseIntercept(func() {
		view.window.Hide()
	})
}

// FollowTimer refreshes the countdown from timer events until the channel
// closes.
func (view *Window) FollowTimer(events <-chan timekeeper.Event) {
	go func() {
		for range events {
			fyne.Do(view.refreshTimer)
		}
	}()
}

// ExportCSV asks for a destination file and writes the export into it.
func (view *Window) ExportCSV() {
	if len(view.controller.State().Sessions) == 0 {
		return
	}
	saveDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, view.window)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()
		if _, err := view.controller.ExportCSV(writer); err != nil {
			dialog.ShowError(err, view.window)
		}
	}, view.window)
	saveDialog.SetFileName(view.controller.ExportFileName())
	saveDialog.SetFilter(fynestorage.NewExtensionFileFilter([]string{".csv"}))
	saveDialog.Show()
}

// SaveSession saves the current counts, telling the user when nothing was
// counted.
func (view *Window) SaveSession() {
	if _, err := view.controller.SaveSession(); err != nil {
		if errors.Is(err, recorder.ErrNothingToSave) {
			dialog.ShowInformation("Nothing to save", recorder.NothingToSaveNotice, view.window)
			return
		}
		dialog.ShowError(err, view.window)
	}
}

func (view *Window) build() {
	view.warningLabel = widget.NewLabel("")
	view.warningLabel.Wrapping = fyne.TextWrapWord
	dismiss := widget.NewButtonWithIcon("", theme.CancelIcon(), view.controller.DismissWarning)
	dismiss.Importance = widget.LowImportance
	view.warningBar = container.NewBorder(nil, nil, widget.NewIcon(theme.WarningIcon()), dismiss, view.warningLabel)
	view.warningBar.Hide()

	title := widget.NewLabelWithStyle("Observation Counter", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	view.content(title)
	view.window.Resize(fyne.NewSize(640, 760))
}

func (view *Window) content(title fyne.CanvasObject) {
	timerPanel := view.buildTimerPanel()
	counterPanel := view.buildCounterPanel()

	view.saveButton = widget.NewButtonWithIcon("Save Session", theme.DocumentSaveIcon(), view.SaveSession)
	view.saveButton.Importance = widget.SuccessImportance
	view.exportButton = widget.NewButtonWithIcon("Export CSV", theme.DownloadIcon(), view.ExportCSV)
	actions := container.NewHBox(view.saveButton, view.exportButton)

	view.sessionList = container.NewVBox()
	sessions := container.NewVBox(
		widget.NewLabelWithStyle("Previous Sessions", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		view.sessionList,
	)

	body := container.NewVBox(
		title,
		timerPanel,
		widget.NewSeparator(),
		counterPanel,
		actions,
		widget.NewSeparator(),
		sessions,
	)
	view.window.SetContent(container.NewBorder(view.warningBar, nil, nil, nil, container.NewVScroll(body)))
}

func (view *Window) buildTimerPanel() fyne.CanvasObject {
	view.recordEntry = widget.NewEntry()
	view.recordEntry.OnChanged = func(value string) {
		view.controller.SetRecordTime(value)
	}
	view.restEntry = widget.NewEntry()
	view.restEntry.OnChanged = func(value string) {
		view.controller.SetRestTime(value)
	}
	settings := widget.NewForm(
		widget.NewFormItem("Record Time (seconds)", view.recordEntry),
		widget.NewFormItem("Rest Time (seconds)", view.restEntry),
	)

	view.statusLabel = canvas.NewText(timekeeper.StateIdle.Label(), theme.Color(theme.ColorNameForeground))
	view.statusLabel.TextStyle = fyne.TextStyle{Bold: true}
	view.statusLabel.TextSize = 18

	view.timeLabel = canvas.NewText(app.FormatClock(0), theme.Color(theme.ColorNameForeground))
	view.timeLabel.TextSize = 34
	view.timeLabel.TextStyle = fyne.TextStyle{Monospace: true}

	view.progress = widget.NewProgressBar()
	view.progress.TextFormatter = func() string { return "" }
	view.progress.Hide()

	view.toggleButton = widget.NewButtonWithIcon("Start Timer", theme.MediaPlayIcon(), view.controller.ToggleTimer)
	view.toggleButton.Importance = widget.HighImportance

	return container.NewVBox(settings, view.statusLabel, view.timeLabel, view.progress, container.NewHBox(view.toggleButton))
}

func (view *Window) buildCounterPanel() fyne.CanvasObject {
	view.nameEntry = widget.NewEntry()
	view.nameEntry.SetPlaceHolder("Counter Name")
	view.addButton = widget.NewButtonWithIcon("Add Counter", theme.ContentAddIcon(), view.addCounter)
	view.addButton.Disable()
	view.nameEntry.OnChanged = func(value string) {
		if strings.TrimSpace(value) == "" {
			view.addButton.Disable()
			return
		}
		view.addButton.Enable()
	}
	view.nameEntry.OnSubmitted = func(string) {
		view.addCounter()
	}

	view.counterList = container.NewVBox()
	form := container.NewBorder(nil, nil, nil, view.addButton, view.nameEntry)
	return container.NewVBox(
		widget.NewLabelWithStyle("Counters", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		form,
		view.counterList,
	)
}

func (view *Window) addCounter() {
	name := strings.TrimSpace(view.nameEntry.Text)
	if name == "" {
		return
	}
	if _, ok := view.controller.AddCounter(name); ok {
		view.nameEntry.SetText("")
	}
}

func (view *Window) refresh() {
	state := view.controller.State()

	view.syncEntry(view.recordEntry, state.Settings.RecordTime)
	view.syncEntry(view.restEntry, state.Settings.RestTime)
	if state.Idle() {
		view.recordEntry.Enable()
		view.restEntry.Enable()
	} else {
		view.recordEntry.Disable()
		view.restEntry.Disable()
	}

	view.counterList.RemoveAll()
	for _, counter := range state.Counters {
		view.counterList.Add(view.counterRow(counter, state.Recording()))
	}
	view.counterList.Refresh()

	view.sessionList.RemoveAll()
	if len(state.Sessions) == 0 {
		view.sessionList.Add(widget.NewLabel("No sessions recorded yet"))
	}
	for _, session := range state.Sessions {
		view.sessionList.Add(view.sessionCard(session))
	}
	view.sessionList.Refresh()

	if len(state.Sessions) == 0 {
		view.exportButton.Disable()
	} else {
		view.exportButton.Enable()
	}

	if state.Warning != nil {
		view.warningLabel.SetText(state.Warning.Message)
		view.warningBar.Show()
	} else {
		view.warningBar.Hide()
	}

	view.applyTimer(state.Timer)
}

func (view *Window) refreshTimer() {
	view.applyTimer(view.controller.State().Timer)
}

func (view *Window) applyTimer(status timekeeper.Status) {
	view.statusLabel.Text = status.State.Label()
	switch status.State {
	case timekeeper.StateRecording:
		view.statusLabel.Color = recordingColor
		view.toggleButton.SetText("Stop Timer")
		view.toggleButton.SetIcon(theme.MediaStopIcon())
		view.toggleButton.Importance = widget.DangerImportance
	case timekeeper.StateResting:
		view.statusLabel.Color = restingColor
		view.toggleButton.SetText("Stop Timer")
		view.toggleButton.SetIcon(theme.MediaStopIcon())
		view.toggleButton.Importance = widget.HighImportance
	default:
		view.statusLabel.Color = theme.Color(theme.ColorNameForeground)
		view.toggleButton.SetText("Start Timer")
		view.toggleButton.SetIcon(theme.MediaPlayIcon())
		view.toggleButton.Importance = widget.HighImportance
	}
	view.toggleButton.Refresh()
	view.statusLabel.Refresh()

	view.timeLabel.Text = app.FormatClock(status.Remaining)
	view.timeLabel.Refresh()

	if status.State == timekeeper.StateIdle {
		view.progress.Hide()
		return
	}
	view.progress.SetValue(status.Progress)
	view.progress.Show()
}

func (view *Window) counterRow(counter model.Counter, recording bool) fyne.CanvasObject {
	id := counter.ID
	name := widget.NewLabelWithStyle(counter.Name, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	count := canvas.NewText(strconv.Itoa(counter.Count), theme.Color(theme.ColorNameForeground))
	count.TextSize = 28

	decrement := widget.NewButtonWithIcon("", theme.ContentRemoveIcon(), func() {
		view.controller.Decrement(id)
	})
	decrement.Importance = widget.DangerImportance
	increment := widget.NewButtonWithIcon("", theme.ContentAddIcon(), func() {
		view.controller.Increment(id)
	})
	increment.Importance = widget.HighImportance
	if !recording {
		increment.Disable()
		decrement.Disable()
	}
	if counter.Count <= 0 {
		decrement.Disable()
	}

	controls := container.NewHBox(decrement, increment)
	if !recording {
		remove := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
			view.controller.RemoveCounter(id)
		})
		remove.Importance = widget.LowImportance
		controls = container.NewHBox(remove, decrement, increment)
	}

	return widget.NewCard("", "", container.NewHBox(container.NewVBox(name, count), layout.NewSpacer(), controls))
}

func (view *Window) sessionCard(session model.Session) fyne.CanvasObject {
	lines := container.NewVBox()
	for _, counter := range session.Counters {
		lines.Add(widget.NewLabel(counter.Name + ": " + strconv.Itoa(counter.Count)))
	}
	return widget.NewCard(
		app.FormatTimestamp(session.Timestamp, view.location),
		app.FormatDuration(session.Duration),
		lines,
	)
}

// syncEntry rewrites an entry only when its parsed value disagrees with the
// state, so typing is not interrupted.
func (view *Window) syncEntry(entry *widget.Entry, seconds int) {
	if model.ParseSeconds(entry.Text) == seconds && entry.Text != "" {
		return
	}
	entry.SetText(strconv.Itoa(seconds))
}

func (view *Window) scheduleWarningHide() {
	view.mu.Lock()
	defer view.mu.Unlock()
	if view.warningTimer != nil {
		view.warningTimer.Stop()
	}
	view.warningTimer = time.AfterFunc(warningAutoHide, func() {
		fyne.Do(view.controller.DismissWarning)
	})
}
