// Package app wires the timer, counter registry, session recorder and
// storage into the handlers used by every front end.
//
// Each handler mutates the in-memory state under one lock and then writes
// the records it touched. Storage is a mirror: failures raise a Warning and
// never undo the change.
package app

import (
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"obscount/internal/core/model"
	"obscount/internal/core/recorder"
	"obscount/internal/core/registry"
	"obscount/internal/core/timekeeper"
	"obscount/internal/export"
	"obscount/internal/storage"
)

// State is a snapshot of everything the presentation layer renders.
type State struct {
	Counters     []model.Counter
	Sessions     []model.Session
	Settings     model.TimerSettings
	Timer        timekeeper.Status
	SessionStart time.Time
	Warning      *Warning
	Loaded       bool
}

// Recording reports whether counters may be incremented and decremented.
func (state State) Recording() bool {
	return state.Timer.State == timekeeper.StateRecording
}

// Idle reports whether timer settings may be edited.
func (state State) Idle() bool {
	return state.Timer.State == timekeeper.StateIdle
}

// Options configures a Controller.
type Options struct {
	Repository *storage.Repository
	Settings   model.TimerSettings
	Timer      timekeeper.Config
	Now        func() time.Time
	NewID      registry.IDFunc
	Location   *time.Location
	Logger     *slog.Logger
}

// Controller owns the application state.
type Controller struct {
	mu        sync.Mutex
	repo      *storage.Repository
	keeper    *timekeeper.Keeper
	registry  *registry.Registry
	recorder  *recorder.Recorder
	now       func() time.Time
	location  *time.Location
	logger    *slog.Logger
	warning   *Warning
	loaded    bool
	onWarning []func(Warning)
	onChange  []func()
}

// New builds a controller. Call Load before handling user input.
func New(options Options) *Controller {
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.NewID == nil {
		options.NewID = registry.NewID
	}
	if options.Location == nil {
		options.Location = time.Local
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Repository == nil {
		options.Repository = storage.NewRepository(storage.NewMemoryStore(), storage.KeysWithPrefix(storage.DefaultKeyPrefix))
	}
	if options.Settings == (model.TimerSettings{}) {
		options.Settings = model.DefaultTimerSettings()
	}
	if options.Timer.Now == nil {
		options.Timer.Now = options.Now
	}

	controller := &Controller{
		repo:     options.Repository,
		keeper:   timekeeper.New(options.Settings, options.Timer),
		registry: registry.New(options.NewID),
		recorder: recorder.New(recorder.Config{Now: options.Now, NewID: options.NewID}),
		now:      options.Now,
		location: options.Location,
		logger:   options.Logger,
	}
	controller.keeper.OnStateChange(controller.handleStateChange)
	return controller
}

// OnWarning registers a callback for storage warnings.
func (controller *Controller) OnWarning(callback func(Warning)) {
	controller.mu.Lock()
	controller.onWarning = append(controller.onWarning, callback)
	controller.mu.Unlock()
}

// OnChange registers a callback invoked after every state change except
// countdown progress; use SubscribeTimer for ticks.
func (controller *Controller) OnChange(callback func()) {
	controller.mu.Lock()
	controller.onChange = append(controller.onChange, callback)
	controller.mu.Unlock()
}

// SubscribeTimer returns the timer event stream.
func (controller *Controller) SubscribeTimer(buffer int) <-chan timekeeper.Event {
	return controller.keeper.Subscribe(buffer)
}

// Load seeds memory from storage. Until it returns no record is written,
// so defaults can never overwrite records that have not been read yet.
// Each record loads independently.
func (controller *Controller) Load() {
	controller.mu.Lock()
	if controller.loaded {
		controller.mu.Unlock()
		return
	}

	var warnings []Warning
	if !controller.repo.Available() {
		warnings = append(warnings, unavailableWarning(controller.repo.ProbeError()))
	} else {
		if sessions, err := controller.repo.LoadSessions(); err == nil {
			controller.recorder.Replace(sessions)
		} else if !errors.Is(err, storage.ErrNotFound) {
			warnings = append(warnings, loadWarning("sessions", err))
		}

		if counters, err := controller.repo.LoadCounters(); err == nil {
			controller.registry.Replace(counters)
		} else if !errors.Is(err, storage.ErrNotFound) {
			warnings = append(warnings, loadWarning("counters", err))
		}

		if settings, err := controller.repo.LoadSettings(); err == nil {
			if err := controller.keeper.UpdateSettings(settings); err != nil {
				warnings = append(warnings, loadWarning("timer settings", err))
			}
		} else if !errors.Is(err, storage.ErrNotFound) {
			warnings = append(warnings, loadWarning("timer settings", err))
		}
	}
	controller.loaded = true
	controller.logger.Debug("state loaded",
		"counters", controller.registry.Len(),
		"sessions", controller.recorder.Len(),
	)
	controller.mu.Unlock()

	for _, warning := range warnings {
		controller.raise(warning)
	}
	controller.changed()
}

// State returns a snapshot of the application state.
func (controller *Controller) State() State {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	startedAt, _ := controller.recorder.StartedAt()
	var warning *Warning
	if controller.warning != nil {
		copied := *controller.warning
		warning = &copied
	}
	return State{
		Counters:     controller.registry.Counters(),
		Sessions:     controller.recorder.Sessions(),
		Settings:     controller.keeper.Settings(),
		Timer:        controller.keeper.Snapshot(),
		SessionStart: startedAt,
		Warning:      warning,
		Loaded:       controller.loaded,
	}
}

// AddCounter appends a counter under the trimmed name. Blank names are
// ignored.
func (controller *Controller) AddCounter(name string) (model.Counter, bool) {
	controller.mu.Lock()
	counter, ok := controller.registry.Add(strings.TrimSpace(name))
	var warnings []Warning
	if ok {
		warnings = controller.persistCountersLocked()
	}
	controller.mu.Unlock()

	controller.finish(ok, warnings)
	return counter, ok
}

// Increment adds one to a counter while recording.
func (controller *Controller) Increment(id string) bool {
	return controller.mutateWhileRecording(func() bool {
		return controller.registry.Increment(id)
	})
}

// Decrement subtracts one from a counter while recording.
func (controller *Controller) Decrement(id string) bool {
	return controller.mutateWhileRecording(func() bool {
		return controller.registry.Decrement(id)
	})
}

// RemoveCounter deletes a counter. Ignored while recording.
func (controller *Controller) RemoveCounter(id string) bool {
	controller.mu.Lock()
	ok := false
	controller.keeper.WithState(func(state timekeeper.State) {
		if state != timekeeper.StateRecording {
			ok = controller.registry.Remove(id)
		}
	})
	var warnings []Warning
	if ok {
		warnings = controller.persistCountersLocked()
	}
	controller.mu.Unlock()

	controller.finish(ok, warnings)
	return ok
}

// StartTimer begins recording.
func (controller *Controller) StartTimer() {
	controller.keeper.Start()
}

// StopTimer returns the timer to idle without saving a session.
func (controller *Controller) StopTimer() {
	controller.keeper.Stop()
}

// ToggleTimer starts an idle timer or stops a running one.
func (controller *Controller) ToggleTimer() {
	controller.keeper.Toggle()
}

// SetRecordTime parses and applies the recording length. Ignored unless idle.
func (controller *Controller) SetRecordTime(value string) bool {
	settings := controller.keeper.Settings()
	settings.RecordTime = model.ParseSeconds(value)
	return controller.UpdateSettings(settings)
}

// SetRestTime parses and applies the resting length. Ignored unless idle.
func (controller *Controller) SetRestTime(value string) bool {
	settings := controller.keeper.Settings()
	settings.RestTime = model.ParseSeconds(value)
	return controller.UpdateSettings(settings)
}

// UpdateSettings applies new phase lengths. Ignored unless idle.
func (controller *Controller) UpdateSettings(settings model.TimerSettings) bool {
	controller.mu.Lock()
	if err := controller.keeper.UpdateSettings(settings); err != nil {
		controller.mu.Unlock()
		controller.logger.Debug("settings edit ignored", "error", err)
		return false
	}
	var warnings []Warning
	if controller.persistingLocked() {
		if err := controller.repo.SaveSettings(controller.keeper.Settings()); err != nil {
			warnings = append(warnings, saveWarning("timer settings", err))
		}
	}
	controller.mu.Unlock()

	controller.finish(true, warnings)
	return true
}

// SaveSession snapshots the counters into a new session and zeroes them.
// It returns recorder.ErrNothingToSave when nothing was counted.
func (controller *Controller) SaveSession() (model.Session, error) {
	controller.mu.Lock()
	session, err := controller.recorder.Save(controller.registry)
	if err != nil {
		controller.mu.Unlock()
		return model.Session{}, err
	}

	var warnings []Warning
	if controller.persistingLocked() {
		if err := controller.repo.SaveSessions(controller.recorder.Sessions()); err != nil {
			warnings = append(warnings, saveWarning("sessions", err))
		}
	}
	warnings = append(warnings, controller.persistCountersLocked()...)
	controller.logger.Info("session saved",
		"session", session.ID,
		"observations", session.Total(),
		"duration_seconds", session.Duration,
	)
	controller.mu.Unlock()

	controller.finish(true, warnings)
	return session, nil
}

// ExportCSV writes every session as CSV into w. It reports false when
// there are no sessions.
func (controller *Controller) ExportCSV(w io.Writer) (bool, error) {
	controller.mu.Lock()
	sessions := controller.recorder.Sessions()
	controller.mu.Unlock()
	return export.Write(w, sessions, controller.location)
}

// ExportCSVFile writes the CSV export into dir and returns its path.
func (controller *Controller) ExportCSVFile(dir string) (string, error) {
	controller.mu.Lock()
	sessions := controller.recorder.Sessions()
	controller.mu.Unlock()
	return export.WriteFile(dir, sessions, controller.now(), controller.location)
}

// ExportFileName returns the suggested CSV file name for now.
func (controller *Controller) ExportFileName() string {
	return export.FileName(controller.now())
}

// DismissWarning clears the current warning.
func (controller *Controller) DismissWarning() {
	controller.mu.Lock()
	dismissed := controller.warning != nil
	controller.warning = nil
	controller.mu.Unlock()
	if dismissed {
		controller.changed()
	}
}

// Close releases the timer. The controller must not be used afterwards.
func (controller *Controller) Close() {
	controller.keeper.Close()
}

// mutateWhileRecording applies mutate only if the timer is recording. The
// phase check and the mutation share the keeper lock, so a tick cannot
// move the timer to resting in between.
func (controller *Controller) mutateWhileRecording(mutate func() bool) bool {
	controller.mu.Lock()
	ok := false
	controller.keeper.WithState(func(state timekeeper.State) {
		if state == timekeeper.StateRecording {
			ok = mutate()
		}
	})
	var warnings []Warning
	if ok {
		warnings = controller.persistCountersLocked()
	}
	controller.mu.Unlock()

	controller.finish(ok, warnings)
	return ok
}

// persistingLocked reports whether writes should reach the store: never
// during the initial load and never when the store failed its probe.
func (controller *Controller) persistingLocked() bool {
	return controller.loaded && controller.repo.Available()
}

func (controller *Controller) persistCountersLocked() []Warning {
	if !controller.persistingLocked() {
		return nil
	}
	if err := controller.repo.SaveCounters(controller.registry.Counters()); err != nil {
		return []Warning{saveWarning("counters", err)}
	}
	return nil
}

func (controller *Controller) handleStateChange(event timekeeper.Event) {
	controller.logger.Debug("timer phase changed", "from", event.Previous, "to", event.State)
	if event.State == timekeeper.StateRecording {
		controller.mu.Lock()
		controller.recorder.MarkStart(event.At)
		controller.mu.Unlock()
	}
	controller.changed()
}

func (controller *Controller) finish(changed bool, warnings []Warning) {
	for _, warning := range warnings {
		controller.raise(warning)
	}
	if changed {
		controller.changed()
	}
}

func (controller *Controller) raise(warning Warning) {
	switch warning.Kind {
	case WarningUnavailable:
		controller.logger.Warn("storage unavailable", "error", warning.Err)
	default:
		controller.logger.Warn(warning.Message, "kind", string(warning.Kind), "error", warning.Err)
	}

	controller.mu.Lock()
	controller.warning = &warning
	callbacks := slices.Clone(controller.onWarning)
	controller.mu.Unlock()

	for _, callback := range callbacks {
		callback(warning)
	}
}

func (controller *Controller) changed() {
	controller.mu.Lock()
	callbacks := slices.Clone(controller.onChange)
	controller.mu.Unlock()

	for _, callback := range callbacks {
		callback()
	}
}
