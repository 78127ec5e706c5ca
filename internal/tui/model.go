// Package tui is the terminal front end of the observation counter. It
// drives the same app.Controller as the desktop window.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"obscount/internal/app"
	"obscount/internal/core/recorder"
	"obscount/internal/core/timekeeper"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// statusFadeDelay is how long a notice stays in the status line.
const statusFadeDelay = 5 * time.Second

type inputMode int

const (
	modeNormal inputMode = iota
	modeAddCounter
	modeRecordTime
	modeRestTime
)

// timerEventMsg delivers a timer event to the model.
type timerEventMsg struct {
	event timekeeper.Event
}

// statusFadeMsg clears the status notice it was scheduled for.
type statusFadeMsg struct {
	id int
}

// Options configures a Model.
type Options struct {
	Controller *app.Controller
	// Events is the timer stream, usually Controller.SubscribeTimer.
	Events    <-chan timekeeper.Event
	ExportDir string
	Location  *time.Location
	Keys      *KeyMap
	Theme     *Theme
}

// Model is the bubbletea model for the counter.
type Model struct {
	controller *app.Controller
	events     <-chan timekeeper.Event
	exportDir  string
	location   *time.Location
	keys       KeyMap
	theme      Theme

	state    app.State
	cursor   int
	mode     inputMode
	input    textinput.Model
	progress progress.Model
	help     help.Model
	width    int

	status      string
	statusIsErr bool
	statusID    int
}

// New creates the model. The controller must already be loaded.
func New(options Options) Model {
	keys := DefaultKeyMap
	if options.Keys != nil {
		keys = *options.Keys
	}
	theme := DefaultTheme
	if options.Theme != nil {
		theme = *options.Theme
	}
	if options.Location == nil {
		options.Location = time.Local
	}

	input := textinput.New()
	input.CharLimit = 64
	input.Width = 32

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 40

	model := Model{
		controller: options.Controller,
		events:     options.Events,
		exportDir:  options.ExportDir,
		location:   options.Location,
		keys:       keys,
		theme:      theme,
		input:      input,
		progress:   bar,
		help:       help.New(),
	}
	model.refresh()
	return model
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return listenForTimer(model.events)
}

// listenForTimer blocks until the next timer event arrives.
func listenForTimer(events <-chan timekeeper.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return timerEventMsg{event: event}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.help.Width = message.Width
		model.progress.Width = min(max(message.Width-4, 10), 60)
		return model, nil

	case timerEventMsg:
		model.refresh()
		return model, listenForTimer(model.events)

	case statusFadeMsg:
		if message.id == model.statusID {
			model.status = ""
			model.statusIsErr = false
		}
		return model, nil

	case tea.KeyMsg:
		if model.mode != modeNormal {
			return model.handleInputKeys(message)
		}
		return model.handleKeys(message)
	}
	return model, nil
}

func (model Model) handleKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	var command tea.Cmd
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
		}

	case key.Matches(message, model.keys.Down):
		if model.cursor < len(model.state.Counters)-1 {
			model.cursor++
		}

	case key.Matches(message, model.keys.Increment):
		if id, ok := model.selectedID(); ok {
			model.controller.Increment(id)
		}

	case key.Matches(message, model.keys.Decrement):
		if id, ok := model.selectedID(); ok {
			model.controller.Decrement(id)
		}

	case key.Matches(message, model.keys.Toggle):
		model.controller.ToggleTimer()

	case key.Matches(message, model.keys.Add):
		model.mode = modeAddCounter
		model.input.Placeholder = "Counter name"
		model.input.Reset()
		focus := model.input.Focus()
		return model, focus

	case key.Matches(message, model.keys.Remove):
		if id, ok := model.selectedID(); ok {
			if !model.controller.RemoveCounter(id) {
				command = model.notify("Stop the timer to remove counters", false)
			}
		}

	case key.Matches(message, model.keys.RecordTime), key.Matches(message, model.keys.RestTime):
		if !model.state.Idle() {
			command = model.notify("Stop the timer to change its settings", false)
			break
		}
		model.mode = modeRecordTime
		value := model.state.Settings.RecordTime
		if key.Matches(message, model.keys.RestTime) {
			model.mode = modeRestTime
			value = model.state.Settings.RestTime
		}
		model.input.Placeholder = "Seconds"
		model.input.SetValue(fmt.Sprint(value))
		focus := model.input.Focus()
		model.input.CursorEnd()
		return model, focus

	case key.Matches(message, model.keys.Save):
		command = model.saveSession()

	case key.Matches(message, model.keys.Export):
		command = model.exportCSV()

	case key.Matches(message, model.keys.Dismiss):
		model.controller.DismissWarning()
	}

	model.refresh()
	return model, command
}

func (model Model) handleInputKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Cancel):
		model.closeInput()
		return model, nil

	case key.Matches(message, model.keys.Submit):
		value := model.input.Value()
		switch model.mode {
		case modeAddCounter:
			if _, ok := model.controller.AddCounter(value); ok {
				model.refresh()
				model.cursor = len(model.state.Counters) - 1
			}
		case modeRecordTime:
			model.controller.SetRecordTime(value)
		case modeRestTime:
			model.controller.SetRestTime(value)
		}
		model.closeInput()
		model.refresh()
		return model, nil
	}

	var command tea.Cmd
	model.input, command = model.input.Update(message)
	return model, command
}

func (model *Model) closeInput() {
	model.mode = modeNormal
	model.input.Blur()
	model.input.Reset()
}

func (model *Model) saveSession() tea.Cmd {
	session, err := model.controller.SaveSession()
	if err != nil {
		if errors.Is(err, recorder.ErrNothingToSave) {
			return model.notify(recorder.NothingToSaveNotice, false)
		}
		return model.notify(err.Error(), true)
	}
	return model.notify(fmt.Sprintf("Session saved: %d observations in %s",
		session.Total(), app.FormatDuration(session.Duration)), false)
}

func (model *Model) exportCSV() tea.Cmd {
	path, err := model.controller.ExportCSVFile(model.exportDir)
	if err != nil {
		return model.notify(err.Error(), true)
	}
	if path == "" {
		return model.notify("No sessions to export", false)
	}
	return model.notify("Exported to "+path, false)
}

// notify shows text in the status line and schedules its removal.
func (model *Model) notify(text string, isErr bool) tea.Cmd {
	model.statusID++
	model.status = text
	model.statusIsErr = isErr
	id := model.statusID
	return tea.Tick(statusFadeDelay, func(time.Time) tea.Msg {
		return statusFadeMsg{id: id}
	})
}

func (model *Model) refresh() {
	model.state = model.controller.State()
	if model.cursor >= len(model.state.Counters) {
		model.cursor = len(model.state.Counters) - 1
	}
	if model.cursor < 0 {
		model.cursor = 0
	}
}

func (model Model) selectedID() (string, bool) {
	if model.cursor < 0 || model.cursor >= len(model.state.Counters) {
		return "", false
	}
	return model.state.Counters[model.cursor].ID, true
}

// View implements tea.Model.
func (model Model) View() string {
	var builder strings.Builder
	builder.WriteString(model.renderTimer())
	builder.WriteString("\n\n")
	builder.WriteString(model.renderCounters())
	builder.WriteString("\n")
	builder.WriteString(model.renderSessions())
	builder.WriteString("\n")
	if model.mode != modeNormal {
		builder.WriteString(model.renderInput())
		builder.WriteString("\n")
	}
	builder.WriteString(model.renderStatus())
	return builder.String()
}

func (model Model) renderTimer() string {
	timer := model.state.Timer
	color := model.theme.Idle
	switch timer.State {
	case timekeeper.StateRecording:
		color = model.theme.Recording
	case timekeeper.StateResting:
		color = model.theme.Resting
	}
	stateStyle := lipgloss.NewStyle().Bold(true).Foreground(color)
	mutedStyle := lipgloss.NewStyle().Foreground(model.theme.Muted)

	line := stateStyle.Render(timer.State.Label())
	if timer.State != timekeeper.StateIdle {
		line += "  " + app.FormatClock(timer.Remaining)
	}
	settings := mutedStyle.Render(fmt.Sprintf("record %ds · rest %ds",
		model.state.Settings.RecordTime, model.state.Settings.RestTime))

	out := line + "   " + settings
	if timer.State != timekeeper.StateIdle {
		out += "\n" + model.progress.ViewAs(timer.Progress)
	}
	return out
}

func (model Model) renderCounters() string {
	mutedStyle := lipgloss.NewStyle().Foreground(model.theme.Muted)
	if len(model.state.Counters) == 0 {
		return mutedStyle.Render("No counters yet. Press a to add one.") + "\n"
	}

	selectedStyle := lipgloss.NewStyle().Bold(true).Foreground(model.theme.Selected)
	nameWidth := 0
	for _, counter := range model.state.Counters {
		nameWidth = max(nameWidth, lipgloss.Width(counter.Name))
	}

	var builder strings.Builder
	for index, counter := range model.state.Counters {
		marker := "  "
		row := fmt.Sprintf("%-*s  %d", nameWidth, counter.Name, counter.Count)
		if index == model.cursor {
			marker = "> "
			row = selectedStyle.Render(row)
		}
		builder.WriteString(marker + row + "\n")
	}
	return builder.String()
}

func (model Model) renderSessions() string {
	headerStyle := lipgloss.NewStyle().Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(model.theme.Muted)

	sessions := model.state.Sessions
	if len(sessions) == 0 {
		return mutedStyle.Render("No saved sessions") + "\n"
	}

	var builder strings.Builder
	builder.WriteString(headerStyle.Render(fmt.Sprintf("Sessions (%d)", len(sessions))) + "\n")
	const shown = 3
	for index, session := range sessions {
		if index == shown {
			builder.WriteString(mutedStyle.Render(fmt.Sprintf("… %d more", len(sessions)-shown)) + "\n")
			break
		}
		builder.WriteString(fmt.Sprintf("%s  %s  %d observations\n",
			app.FormatTimestamp(session.Timestamp, model.location),
			app.FormatDuration(session.Duration),
			session.Total(),
		))
	}
	return builder.String()
}

func (model Model) renderInput() string {
	label := "New counter"
	switch model.mode {
	case modeRecordTime:
		label = "Record time (seconds)"
	case modeRestTime:
		label = "Rest time (seconds)"
	}
	return label + ": " + model.input.View()
}

func (model Model) renderStatus() string {
	if warning := model.state.Warning; warning != nil {
		style := lipgloss.NewStyle().Foreground(model.theme.Warning)
		return style.Render("⚠ "+warning.Message) + "  " + model.help.ShortHelpView([]key.Binding{model.keys.Dismiss})
	}
	if model.status != "" {
		color := model.theme.Notice
		if model.statusIsErr {
			color = model.theme.Warning
		}
		return lipgloss.NewStyle().Foreground(color).Render(model.status)
	}
	if model.mode != modeNormal {
		return model.help.ShortHelpView([]key.Binding{model.keys.Submit, model.keys.Cancel})
	}
	return model.help.View(model.keys)
}
